package simplecms

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind is the domain type distinguishing the two entity families.
type EntityKind string

// Entity kind constants (typed).
const (
	KindContent EntityKind = "content"
	KindBlock   EntityKind = "block"
)

// RootPath is the materialized path of a root entity.
const RootPath = "/"

// Entity represents a hierarchical content or block entity.
//
// Path encodes the full ancestor chain ("/" for roots, parent path plus
// parent id plus "/" for children). Level is the number of id segments in
// Path and is maintained together with it; neither is recomputed from the
// other at read time.
type Entity struct {
	ID            uuid.UUID  `json:"id"`
	Kind          EntityKind `json:"kind"`
	Type          string     `json:"type"`
	Path          string     `json:"path"`
	Level         int        `json:"level"`
	Weight        int        `json:"weight"`
	IsActive      bool       `json:"is_active"`
	IsDeleted     bool       `json:"is_deleted"`
	AuthorID      *uuid.UUID `json:"author_id,omitempty"`
	BlockableID   *uuid.UUID `json:"blockable_id,omitempty"`
	BlockableType string     `json:"blockable_type,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`

	// Populated relations (not persisted on the entity row itself).
	Translations []*Translation `json:"translations,omitempty"`
	Children     []*Entity      `json:"children,omitempty"`
	Blockable    *Blockable     `json:"blockable,omitempty"`
	Files        []*File        `json:"files,omitempty"`
}

// Translation represents one translated rendition of an entity.
//
// For a given (entity, lang code) pair at most one row is active at any
// committed state. Older rows for the pair are retained inactive.
type Translation struct {
	ID        uuid.UUID `json:"id"`
	EntityID  uuid.UUID `json:"entity_id"`
	LangCode  string    `json:"lang_code"`
	IsActive  bool      `json:"is_active"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Body      string    `json:"body,omitempty"`
	Excerpt   string    `json:"excerpt,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Blockable is the polymorphic sub-resource a typed entity may own
// (e.g. the widget payload of a widget block).
type Blockable struct {
	ID        uuid.UUID      `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

// File represents an attachment record. Entities reference files through a
// many-to-many pivot; detaching an entity never deletes the file itself.
type File struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ObjectKey      string    `json:"object_key"`
	StorageBackend string    `json:"storage_backend"`
	CreatedAt      time.Time `json:"created_at"`
}

// FilterOp enumerates the comparison operators a filter may carry.
type FilterOp string

// Filter operator constants (typed).
const (
	OpEq   FilterOp = "eq"
	OpNeq  FilterOp = "neq"
	OpLike FilterOp = "like"
	OpIn   FilterOp = "in"
	OpGt   FilterOp = "gt"
	OpGte  FilterOp = "gte"
	OpLt   FilterOp = "lt"
	OpLte  FilterOp = "lte"
)

// RelationTranslations is the relation tag for translation-field criteria.
const RelationTranslations = "translations"

// Filter is one normalized filter criterion. An empty Relation targets a
// core entity field; RelationTranslations targets a translation field.
type Filter struct {
	Field    string   `json:"field"`
	Op       FilterOp `json:"op"`
	Value    any      `json:"value"`
	Relation string   `json:"relation,omitempty"`
}

// SortDirection is the direction of one order criterion.
type SortDirection string

// Sort direction constants (typed).
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Order is one normalized sort criterion.
type Order struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
	Relation  string        `json:"relation,omitempty"`
}

// ListQuery carries raw, caller-supplied filter/sort/pagination input for a
// listing operation, as decoded from a request payload. Filter values are
// either a bare value (equality) or a map with "op"/"value"/"relation" keys;
// order entries are maps with "field"/"direction"/"relation" keys.
type ListQuery struct {
	Filters map[string]any   `json:"filters,omitempty"`
	OrderBy []map[string]any `json:"order_by,omitempty"`
	Page    *int             `json:"page,omitempty"`
	PerPage *int             `json:"per_page,omitempty"`
}
