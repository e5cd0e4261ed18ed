package simplecms

import (
	"io"

	"github.com/google/uuid"
)

// Request/Response DTOs

// TranslationPayload carries the content fields of one translation.
type TranslationPayload struct {
	LangCode string `json:"lang_code"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Body     string `json:"body,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
}

// CreateEntityRequest contains parameters for creating a new entity.
//
// Translations must carry at least one payload; the first one becomes the
// entity's initial active translation. SubResources holds the polymorphic
// sub-payloads, keyed by the payload key the type's factory declares
// (e.g. "widget").
type CreateEntityRequest struct {
	Kind         EntityKind                `json:"kind"`
	Type         string                    `json:"type"`
	ParentID     *uuid.UUID                `json:"parent_id,omitempty"`
	Weight       int                       `json:"weight"`
	IsActive     bool                      `json:"is_active"`
	AuthorID     *uuid.UUID                `json:"author_id,omitempty"`
	Translations []TranslationPayload      `json:"translations"`
	SubResources map[string]map[string]any `json:"sub_resources,omitempty"`
}

// UpdateEntityRequest contains the mutable core fields of an entity.
// Translations are never touched by an entity update. Nil fields are left
// unchanged.
type UpdateEntityRequest struct {
	ID       uuid.UUID  `json:"id"`
	Weight   *int       `json:"weight,omitempty"`
	IsActive *bool      `json:"is_active,omitempty"`
	AuthorID *uuid.UUID `json:"author_id,omitempty"`
}

// CreateTranslationRequest contains parameters for creating a translation.
type CreateTranslationRequest struct {
	EntityID uuid.UUID          `json:"entity_id"`
	Payload  TranslationPayload `json:"payload"`
}

// AttachFileRequest contains parameters for attaching a file to an entity.
type AttachFileRequest struct {
	EntityID uuid.UUID `json:"entity_id"`
	Name     string    `json:"name"`
	Backend  string    `json:"backend,omitempty"`
	Reader   io.Reader `json:"-"`
}
