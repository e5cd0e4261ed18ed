package simplecms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository       Repository
	events           EventBus
	cache            Cache
	registry         TypeRegistry
	languages        LanguageResolver
	criteria         *CriteriaTranslator
	fileStores       map[string]FileStore
	defaultFileStore string
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithEventBus sets the lifecycle event bus for the service
func WithEventBus(bus EventBus) Option {
	return func(s *service) {
		s.events = bus
	}
}

// WithCache sets the listing cache for the service
func WithCache(cache Cache) Option {
	return func(s *service) {
		s.cache = cache
	}
}

// WithTypeRegistry sets the entity type registry for the service
func WithTypeRegistry(registry TypeRegistry) Option {
	return func(s *service) {
		s.registry = registry
	}
}

// WithLanguageResolver sets the language lookup collaborator
func WithLanguageResolver(languages LanguageResolver) Option {
	return func(s *service) {
		s.languages = languages
	}
}

// WithFileStore adds a file storage backend
func WithFileStore(name string, store FileStore) Option {
	return func(s *service) {
		if s.fileStores == nil {
			s.fileStores = make(map[string]FileStore)
		}
		s.fileStores[name] = store
		if s.defaultFileStore == "" {
			s.defaultFileStore = name
		}
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		fileStores: make(map[string]FileStore),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.events == nil {
		s.events = NewNoopEventBus()
	}
	if s.cache == nil {
		s.cache = NewNoopCache()
	}
	if s.registry == nil {
		s.registry = DefaultRegistry()
	}
	s.criteria = NewCriteriaTranslator(s.languages)

	return s, nil
}

// Write pipeline

func (s *service) Create(ctx context.Context, req CreateEntityRequest) (*Entity, error) {
	switch req.Kind {
	case KindContent, KindBlock:
	default:
		return nil, NewValidationError("kind", fmt.Sprintf("unknown entity kind %q", req.Kind))
	}
	if len(req.Translations) == 0 {
		return nil, NewValidationError("translations", "at least one translation is required")
	}
	if req.Type == "" {
		return nil, NewValidationError("type", "type is required")
	}
	if !s.registry.Has(req.Kind, req.Type) {
		return nil, NewValidationError("type", "type doesn't exist")
	}
	if err := validateTranslationPayload(req.Translations[0]); err != nil {
		return nil, err
	}

	path, level := RootPath, 0
	if req.ParentID != nil {
		parent, err := s.repository.GetEntity(ctx, *req.ParentID, false)
		if err != nil {
			if errors.Is(err, ErrEntityNotFound) {
				return nil, NewValidationError("parent_id", "parent entity not found")
			}
			return nil, err
		}
		path = ChildrenPath(parent)
		level = parent.Level + 1
	}

	now := time.Now().UTC()
	entity := &Entity{
		ID:        uuid.New(),
		Kind:      req.Kind,
		Type:      req.Type,
		Path:      path,
		Level:     level,
		Weight:    req.Weight,
		IsActive:  req.IsActive,
		AuthorID:  req.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repository.WithTx(ctx, func(tx Repository) error {
		if err := s.events.Fire(ctx, NewEvent(ActionCreating, entity)); err != nil {
			return err
		}

		if factory, ok := s.registry.Factory(req.Kind, req.Type); ok {
			payload, ok := req.SubResources[factory.PayloadKey()]
			if !ok {
				return NewValidationError(factory.PayloadKey(), "sub-resource payload is required")
			}
			blockable, err := factory.Build(payload)
			if err != nil {
				return err
			}
			if err := tx.CreateBlockable(ctx, blockable); err != nil {
				return err
			}
			entity.BlockableID = &blockable.ID
			entity.BlockableType = blockable.Type
		}

		if err := tx.CreateEntity(ctx, entity); err != nil {
			return err
		}
		if _, err := createActiveTranslation(ctx, tx, entity.ID, req.Translations[0]); err != nil {
			return err
		}

		if err := s.events.Fire(ctx, NewEvent(ActionCreated, entity)); err != nil {
			return err
		}
		return s.forgetListings(ctx, req.Kind)
	})
	if err != nil {
		return nil, txError("create", err)
	}

	return s.loadEntity(ctx, entity.ID, false)
}

func (s *service) Update(ctx context.Context, req UpdateEntityRequest) (*Entity, error) {
	entity, err := s.repository.GetEntity(ctx, req.ID, false)
	if err != nil {
		return nil, &EntityError{EntityID: req.ID, Op: "update", Err: err}
	}

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		if err := s.events.Fire(ctx, NewEvent(ActionUpdating, entity)); err != nil {
			return err
		}

		if req.Weight != nil {
			entity.Weight = *req.Weight
		}
		if req.IsActive != nil {
			entity.IsActive = *req.IsActive
		}
		if req.AuthorID != nil {
			entity.AuthorID = req.AuthorID
		}
		entity.UpdatedAt = time.Now().UTC()

		if err := tx.UpdateEntity(ctx, entity); err != nil {
			return err
		}

		if err := s.events.Fire(ctx, NewEvent(ActionUpdated, entity)); err != nil {
			return err
		}
		return s.forgetListings(ctx, entity.Kind)
	})
	if err != nil {
		return nil, txError("update", err)
	}

	return s.loadEntity(ctx, entity.ID, false)
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	entity, err := s.repository.GetEntity(ctx, id, false)
	if err != nil {
		return &EntityError{EntityID: id, Op: "delete", Err: err}
	}

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		if err := s.events.Fire(ctx, NewEvent(ActionDeleting, entity)); err != nil {
			return err
		}

		// Detach attached files; the file rows themselves survive.
		if err := tx.DetachFiles(ctx, entity.ID); err != nil {
			return err
		}

		now := time.Now().UTC()
		entity.IsDeleted = true
		entity.DeletedAt = &now
		entity.UpdatedAt = now
		if err := tx.UpdateEntity(ctx, entity); err != nil {
			return err
		}

		if err := s.events.Fire(ctx, NewEvent(ActionDeleted, entity)); err != nil {
			return err
		}
		return s.forgetListings(ctx, entity.Kind)
	})
	return txError("delete", err)
}

func (s *service) ForceDelete(ctx context.Context, id uuid.UUID) error {
	// Lookup must include soft-deleted rows.
	entity, err := s.repository.GetEntity(ctx, id, true)
	if err != nil {
		return &EntityError{EntityID: id, Op: "force_delete", Err: err}
	}

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		if err := s.events.Fire(ctx, NewEvent(ActionForceDeleting, entity)); err != nil {
			return err
		}

		if err := tx.DeleteEntity(ctx, entity.ID); err != nil {
			return err
		}

		if err := s.events.Fire(ctx, NewEvent(ActionForceDeleted, entity)); err != nil {
			return err
		}
		return s.forgetListings(ctx, entity.Kind)
	})
	return txError("force_delete", err)
}

// Lookups

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Entity, error) {
	entity, err := s.loadEntity(ctx, id, false)
	if errors.Is(err, ErrEntityNotFound) {
		return nil, nil
	}
	return entity, err
}

func (s *service) GetByURL(ctx context.Context, kind EntityKind, lang, url string) (*Entity, error) {
	code := lang
	if s.languages != nil {
		resolved, err := s.languages.Resolve(ctx, lang)
		if err != nil {
			return nil, err
		}
		code = resolved
	}

	one := 1
	entities, err := s.repository.ListEntities(ctx, EntityQuery{
		Kind: kind,
		Lang: code,
		TranslationFilters: []Filter{
			{Field: "url", Op: OpEq, Value: url, Relation: RelationTranslations},
		},
		Limit:            &one,
		WithTranslations: true,
	})
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return entities[0], nil
}

// File attachments

func (s *service) AttachFile(ctx context.Context, req AttachFileRequest) (*File, error) {
	if req.Name == "" {
		return nil, NewValidationError("name", "file name is required")
	}
	entity, err := s.repository.GetEntity(ctx, req.EntityID, false)
	if err != nil {
		return nil, &EntityError{EntityID: req.EntityID, Op: "attach_file", Err: err}
	}

	backend := req.Backend
	if backend == "" {
		backend = s.defaultFileStore
	}
	store, ok := s.fileStores[backend]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFileBackendNotFound, backend)
	}

	file := &File{
		ID:             uuid.New(),
		Name:           req.Name,
		StorageBackend: backend,
		CreatedAt:      time.Now().UTC(),
	}
	file.ObjectKey = fmt.Sprintf("%s/%s/%s", entity.ID, file.ID, file.Name)

	if req.Reader != nil {
		if err := store.Upload(ctx, file.ObjectKey, req.Reader); err != nil {
			return nil, err
		}
	}

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateFile(ctx, file); err != nil {
			return err
		}
		return tx.AttachFile(ctx, entity.ID, file.ID)
	})
	if err != nil {
		return nil, txError("attach_file", err)
	}
	return file, nil
}

// Helpers

// loadEntity reloads an entity with its translations, blockable and files.
func (s *service) loadEntity(ctx context.Context, id uuid.UUID, includeDeleted bool) (*Entity, error) {
	entity, err := s.repository.GetEntity(ctx, id, includeDeleted)
	if err != nil {
		return nil, err
	}

	entity.Translations, err = s.repository.ListTranslations(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	if entity.BlockableID != nil {
		entity.Blockable, err = s.repository.GetBlockable(ctx, *entity.BlockableID)
		if err != nil {
			return nil, err
		}
	}
	entity.Files, err = s.repository.ListFiles(ctx, entity.ID)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *service) forgetListings(ctx context.Context, kind EntityKind) error {
	for _, key := range ListingCacheKeys(kind) {
		if err := s.cache.Forget(ctx, key); err != nil {
			return fmt.Errorf("forgetting cache key %q: %w", key, err)
		}
	}
	return nil
}

// txError normalizes a failure raised inside a unit of work. Validation
// failures pass through so callers can distinguish bad input from storage
// trouble; everything else is wrapped as a rolled-back transaction.
func txError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidationError(err) {
		return err
	}
	return &TransactionError{Op: op, Err: err}
}
