package simplecms

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-cms content store.
//
// Lookup operations report absence as a nil result, not an error. Write
// operations run inside one atomic unit of work and surface failures as
// ValidationError (bad input) or TransactionError (rolled-back unit).
type Service interface {
	// Entity write pipeline
	Create(ctx context.Context, req CreateEntityRequest) (*Entity, error)
	Update(ctx context.Context, req UpdateEntityRequest) (*Entity, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	ForceDelete(ctx context.Context, id uuid.UUID) error

	// Entity lookups
	GetByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	GetByURL(ctx context.Context, kind EntityKind, lang, url string) (*Entity, error)

	// Tree queries
	GetAncestors(ctx context.Context, entity *Entity) ([]*Entity, error)
	GetDescendants(ctx context.Context, entity *Entity, asTree bool) ([]*Entity, error)
	GetChildren(ctx context.Context, entity *Entity, query ListQuery) ([]*Entity, error)
	GetSiblings(ctx context.Context, entity *Entity, query ListQuery) ([]*Entity, error)
	GetRootEntities(ctx context.Context, kind EntityKind, query ListQuery) ([]*Entity, error)

	// Translation operations
	GetActiveTranslation(ctx context.Context, entityID uuid.UUID, langCode string) (*Translation, error)
	GetTranslationByID(ctx context.Context, id uuid.UUID) (*Translation, error)
	CreateTranslation(ctx context.Context, req CreateTranslationRequest) (*Translation, error)
	DeleteTranslation(ctx context.Context, id uuid.UUID) error

	// File attachments
	AttachFile(ctx context.Context, req AttachFileRequest) (*File, error)
}
