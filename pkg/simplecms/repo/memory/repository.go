package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Repository implements simplecms.Repository using in-memory storage
type Repository struct {
	mu            sync.RWMutex
	txMu          sync.Mutex
	entities      map[uuid.UUID]*simplecms.Entity
	translations  map[uuid.UUID]*simplecms.Translation
	blockables    map[uuid.UUID]*simplecms.Blockable
	files         map[uuid.UUID]*simplecms.File
	filesByEntity map[uuid.UUID][]uuid.UUID
}

// New creates a new in-memory repository
func New() simplecms.Repository {
	return &Repository{
		entities:      make(map[uuid.UUID]*simplecms.Entity),
		translations:  make(map[uuid.UUID]*simplecms.Translation),
		blockables:    make(map[uuid.UUID]*simplecms.Blockable),
		files:         make(map[uuid.UUID]*simplecms.File),
		filesByEntity: make(map[uuid.UUID][]uuid.UUID),
	}
}

// WithTx runs fn atomically: the state is snapshotted up front and restored
// wholesale if fn fails. Transactions serialize on txMu, which is the
// memory analogue of the store's transaction boundary.
func (r *Repository) WithTx(ctx context.Context, fn func(simplecms.Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	snapshot := r.snapshot()
	if err := fn(r); err != nil {
		r.restore(snapshot)
		return err
	}
	return nil
}

type state struct {
	entities      map[uuid.UUID]*simplecms.Entity
	translations  map[uuid.UUID]*simplecms.Translation
	blockables    map[uuid.UUID]*simplecms.Blockable
	files         map[uuid.UUID]*simplecms.File
	filesByEntity map[uuid.UUID][]uuid.UUID
}

func (r *Repository) snapshot() state {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := state{
		entities:      make(map[uuid.UUID]*simplecms.Entity, len(r.entities)),
		translations:  make(map[uuid.UUID]*simplecms.Translation, len(r.translations)),
		blockables:    make(map[uuid.UUID]*simplecms.Blockable, len(r.blockables)),
		files:         make(map[uuid.UUID]*simplecms.File, len(r.files)),
		filesByEntity: make(map[uuid.UUID][]uuid.UUID, len(r.filesByEntity)),
	}
	for id, e := range r.entities {
		c := *e
		s.entities[id] = &c
	}
	for id, t := range r.translations {
		c := *t
		s.translations[id] = &c
	}
	for id, b := range r.blockables {
		c := *b
		s.blockables[id] = &c
	}
	for id, f := range r.files {
		c := *f
		s.files[id] = &c
	}
	for id, ids := range r.filesByEntity {
		s.filesByEntity[id] = append([]uuid.UUID(nil), ids...)
	}
	return s
}

func (r *Repository) restore(s state) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities = s.entities
	r.translations = s.translations
	r.blockables = s.blockables
	r.files = s.files
	r.filesByEntity = s.filesByEntity
}

// Entity operations

func (r *Repository) CreateEntity(ctx context.Context, entity *simplecms.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a bare copy; relations are loaded on demand.
	entityCopy := *entity
	entityCopy.Translations = nil
	entityCopy.Children = nil
	entityCopy.Blockable = nil
	entityCopy.Files = nil
	r.entities[entity.ID] = &entityCopy

	return nil
}

func (r *Repository) GetEntity(ctx context.Context, id uuid.UUID, includeDeleted bool) (*simplecms.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entity, exists := r.entities[id]
	if !exists {
		return nil, simplecms.ErrEntityNotFound
	}
	if entity.IsDeleted && !includeDeleted {
		return nil, simplecms.ErrEntityNotFound
	}

	entityCopy := *entity
	return &entityCopy, nil
}

func (r *Repository) UpdateEntity(ctx context.Context, entity *simplecms.Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[entity.ID]; !exists {
		return simplecms.ErrEntityNotFound
	}

	entityCopy := *entity
	entityCopy.Translations = nil
	entityCopy.Children = nil
	entityCopy.Blockable = nil
	entityCopy.Files = nil
	r.entities[entity.ID] = &entityCopy

	return nil
}

// DeleteEntity permanently removes the entity and its dependent rows,
// including soft-deleted ones.
func (r *Repository) DeleteEntity(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entity, exists := r.entities[id]
	if !exists {
		return simplecms.ErrEntityNotFound
	}

	for tid, t := range r.translations {
		if t.EntityID == id {
			delete(r.translations, tid)
		}
	}
	if entity.BlockableID != nil {
		delete(r.blockables, *entity.BlockableID)
	}
	delete(r.filesByEntity, id)
	delete(r.entities, id)

	return nil
}

func (r *Repository) ListEntities(ctx context.Context, query simplecms.EntityQuery) ([]*simplecms.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var idSet map[uuid.UUID]struct{}
	if len(query.IDs) > 0 {
		idSet = make(map[uuid.UUID]struct{}, len(query.IDs))
		for _, id := range query.IDs {
			idSet[id] = struct{}{}
		}
	}

	var result []*simplecms.Entity
	for _, entity := range r.entities {
		if !r.matches(entity, query, idSet) {
			continue
		}
		entityCopy := *entity
		result = append(result, &entityCopy)
	}

	r.sortEntities(result, query)

	if query.Offset != nil && *query.Offset > 0 {
		if *query.Offset >= len(result) {
			return []*simplecms.Entity{}, nil
		}
		result = result[*query.Offset:]
	}
	if query.Limit != nil && *query.Limit >= 0 && *query.Limit < len(result) {
		result = result[:*query.Limit]
	}

	for _, entity := range result {
		if query.WithTranslations {
			entity.Translations = r.translationsOf(entity.ID)
		}
		if query.WithChildren {
			entity.Children = r.childrenOf(entity)
		}
	}

	return result, nil
}

func (r *Repository) matches(entity *simplecms.Entity, query simplecms.EntityQuery, idSet map[uuid.UUID]struct{}) bool {
	if query.Kind != "" && entity.Kind != query.Kind {
		return false
	}
	if entity.IsDeleted && !query.IncludeDeleted {
		return false
	}
	if idSet != nil {
		if _, ok := idSet[entity.ID]; !ok {
			return false
		}
	}
	if query.PathEquals != "" && entity.Path != query.PathEquals {
		return false
	}
	if query.PathPrefix != "" && !strings.HasPrefix(entity.Path, query.PathPrefix) {
		return false
	}
	if query.Level != nil && entity.Level != *query.Level {
		return false
	}
	if query.ExcludeID != nil && entity.ID == *query.ExcludeID {
		return false
	}
	for _, filter := range query.Filters {
		value, ok := entityFieldValue(entity, filter.Field)
		if !ok || !matchValue(value, filter) {
			return false
		}
	}
	if len(query.TranslationFilters) > 0 {
		active := r.activeTranslation(entity.ID, query.Lang)
		if active == nil {
			return false
		}
		for _, filter := range query.TranslationFilters {
			value, ok := translationFieldValue(active, filter.Field)
			if !ok || !matchValue(value, filter) {
				return false
			}
		}
	}
	return true
}

func (r *Repository) sortEntities(entities []*simplecms.Entity, query simplecms.EntityQuery) {
	orders := query.OrderBy
	translationOrders := query.TranslationOrderBy

	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		for _, o := range orders {
			av, _ := entityFieldValue(a, o.Field)
			bv, _ := entityFieldValue(b, o.Field)
			if c := compareValues(av, bv); c != 0 {
				if o.Direction == simplecms.SortDesc {
					return c > 0
				}
				return c < 0
			}
		}
		for _, o := range translationOrders {
			at := r.activeTranslation(a.ID, query.Lang)
			bt := r.activeTranslation(b.ID, query.Lang)
			var av, bv any
			if at != nil {
				av, _ = translationFieldValue(at, o.Field)
			}
			if bt != nil {
				bv, _ = translationFieldValue(bt, o.Field)
			}
			if c := compareValues(av, bv); c != 0 {
				if o.Direction == simplecms.SortDesc {
					return c > 0
				}
				return c < 0
			}
		}
		// Stable fallback: weight, then creation time.
		if a.Weight != b.Weight {
			return a.Weight < b.Weight
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (r *Repository) childrenOf(entity *simplecms.Entity) []*simplecms.Entity {
	childPath := simplecms.ChildrenPath(entity)
	var children []*simplecms.Entity
	for _, candidate := range r.entities {
		if candidate.Path != childPath || candidate.IsDeleted {
			continue
		}
		childCopy := *candidate
		children = append(children, &childCopy)
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].Weight != children[j].Weight {
			return children[i].Weight < children[j].Weight
		}
		return children[i].CreatedAt.Before(children[j].CreatedAt)
	})
	return children
}

func (r *Repository) translationsOf(entityID uuid.UUID) []*simplecms.Translation {
	var result []*simplecms.Translation
	for _, t := range r.translations {
		if t.EntityID == entityID {
			translationCopy := *t
			result = append(result, &translationCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (r *Repository) activeTranslation(entityID uuid.UUID, langCode string) *simplecms.Translation {
	for _, t := range r.translations {
		if t.EntityID == entityID && t.IsActive && (langCode == "" || t.LangCode == langCode) {
			return t
		}
	}
	return nil
}

// Translation operations

func (r *Repository) CreateTranslation(ctx context.Context, translation *simplecms.Translation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[translation.EntityID]; !exists {
		return simplecms.ErrEntityNotFound
	}

	translationCopy := *translation
	r.translations[translation.ID] = &translationCopy

	return nil
}

func (r *Repository) GetTranslation(ctx context.Context, id uuid.UUID) (*simplecms.Translation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	translation, exists := r.translations[id]
	if !exists {
		return nil, simplecms.ErrTranslationNotFound
	}

	translationCopy := *translation
	return &translationCopy, nil
}

func (r *Repository) GetActiveTranslation(ctx context.Context, entityID uuid.UUID, langCode string) (*simplecms.Translation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.translations {
		if t.EntityID == entityID && t.LangCode == langCode && t.IsActive {
			translationCopy := *t
			return &translationCopy, nil
		}
	}
	return nil, simplecms.ErrTranslationNotFound
}

func (r *Repository) ListTranslations(ctx context.Context, entityID uuid.UUID) ([]*simplecms.Translation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.translationsOf(entityID), nil
}

func (r *Repository) DeactivateTranslations(ctx context.Context, entityID uuid.UUID, langCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, t := range r.translations {
		if t.EntityID == entityID && t.LangCode == langCode && t.IsActive {
			t.IsActive = false
			t.UpdatedAt = now
		}
	}
	return nil
}

func (r *Repository) DeleteTranslation(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.translations[id]; !exists {
		return simplecms.ErrTranslationNotFound
	}
	delete(r.translations, id)
	return nil
}

// Blockable operations

func (r *Repository) CreateBlockable(ctx context.Context, blockable *simplecms.Blockable) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blockableCopy := *blockable
	r.blockables[blockable.ID] = &blockableCopy
	return nil
}

func (r *Repository) GetBlockable(ctx context.Context, id uuid.UUID) (*simplecms.Blockable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blockable, exists := r.blockables[id]
	if !exists {
		return nil, simplecms.ErrBlockableNotFound
	}
	blockableCopy := *blockable
	return &blockableCopy, nil
}

// File operations

func (r *Repository) CreateFile(ctx context.Context, file *simplecms.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fileCopy := *file
	r.files[file.ID] = &fileCopy
	return nil
}

func (r *Repository) AttachFile(ctx context.Context, entityID, fileID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entities[entityID]; !exists {
		return simplecms.ErrEntityNotFound
	}
	if _, exists := r.files[fileID]; !exists {
		return simplecms.ErrFileNotFound
	}
	for _, id := range r.filesByEntity[entityID] {
		if id == fileID {
			return nil
		}
	}
	r.filesByEntity[entityID] = append(r.filesByEntity[entityID], fileID)
	return nil
}

func (r *Repository) ListFiles(ctx context.Context, entityID uuid.UUID) ([]*simplecms.File, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplecms.File
	for _, id := range r.filesByEntity[entityID] {
		if file, exists := r.files[id]; exists {
			fileCopy := *file
			result = append(result, &fileCopy)
		}
	}
	return result, nil
}

func (r *Repository) DetachFiles(ctx context.Context, entityID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.filesByEntity, entityID)
	return nil
}
