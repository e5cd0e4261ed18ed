package simplecms

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// EntityQuery is the normalized query the repository executes. Tree
// predicates (PathEquals, PathPrefix, Level), criteria and pagination are
// all optional; zero values mean "no constraint".
type EntityQuery struct {
	Kind       EntityKind
	IDs        []uuid.UUID
	PathEquals string
	PathPrefix string
	Level      *int
	ExcludeID  *uuid.UUID

	// Criteria produced by the translator. Translation filters and orders
	// resolve against the active translation for Lang.
	Filters            []Filter
	TranslationFilters []Filter
	Lang               string
	OrderBy            []Order
	TranslationOrderBy []Order

	Limit  *int
	Offset *int

	IncludeDeleted   bool
	WithChildren     bool
	WithTranslations bool
}

// Repository defines the interface for entity, translation, blockable and
// file persistence.
//
// WithTx runs fn against a repository view bound to one atomic unit of
// work; if fn returns an error every write made through that view is rolled
// back. Nested calls reuse the enclosing unit.
type Repository interface {
	WithTx(ctx context.Context, fn func(Repository) error) error

	// Entity operations
	CreateEntity(ctx context.Context, entity *Entity) error
	GetEntity(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Entity, error)
	UpdateEntity(ctx context.Context, entity *Entity) error
	DeleteEntity(ctx context.Context, id uuid.UUID) error
	ListEntities(ctx context.Context, query EntityQuery) ([]*Entity, error)

	// Translation operations
	CreateTranslation(ctx context.Context, translation *Translation) error
	GetTranslation(ctx context.Context, id uuid.UUID) (*Translation, error)
	GetActiveTranslation(ctx context.Context, entityID uuid.UUID, langCode string) (*Translation, error)
	ListTranslations(ctx context.Context, entityID uuid.UUID) ([]*Translation, error)
	DeactivateTranslations(ctx context.Context, entityID uuid.UUID, langCode string) error
	DeleteTranslation(ctx context.Context, id uuid.UUID) error

	// Blockable operations
	CreateBlockable(ctx context.Context, blockable *Blockable) error
	GetBlockable(ctx context.Context, id uuid.UUID) (*Blockable, error)

	// File operations
	CreateFile(ctx context.Context, file *File) error
	AttachFile(ctx context.Context, entityID, fileID uuid.UUID) error
	ListFiles(ctx context.Context, entityID uuid.UUID) ([]*File, error)
	DetachFiles(ctx context.Context, entityID uuid.UUID) error
}

// EventBus dispatches lifecycle events synchronously. A handler error
// propagates to the caller and aborts the enclosing unit of work.
type EventBus interface {
	Fire(ctx context.Context, event Event) error
}

// Cache is the coarse key-based invalidation port.
type Cache interface {
	Forget(ctx context.Context, key string) error
}

// BlockableFactory builds the polymorphic sub-resource for one entity type.
type BlockableFactory interface {
	// PayloadKey names the request sub-payload key the factory consumes.
	PayloadKey() string

	// Build constructs the sub-resource from the sub-payload.
	Build(payload map[string]any) (*Blockable, error)
}

// TypeRegistry reports type membership per entity kind and supplies the
// construction strategy for types that require a sub-resource.
type TypeRegistry interface {
	Has(kind EntityKind, entityType string) bool
	Factory(kind EntityKind, entityType string) (BlockableFactory, bool)
}

// LanguageResolver resolves a language identifier to the code string used
// in translation filters.
type LanguageResolver interface {
	Resolve(ctx context.Context, identifier string) (string, error)
}

// FileStore defines the interface for attachment blob storage backends.
type FileStore interface {
	// Upload stores content under the given object key
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download retrieves content stored under the given object key
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes content stored under the given object key
	Delete(ctx context.Context, objectKey string) error
}
