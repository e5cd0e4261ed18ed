package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func newEntity(kind simplecms.EntityKind, entityType, path string, level, weight int) *simplecms.Entity {
	now := time.Now().UTC()
	return &simplecms.Entity{
		ID:        uuid.New(),
		Kind:      kind,
		Type:      entityType,
		Path:      path,
		Level:     level,
		Weight:    weight,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEntityRoundTrip(t *testing.T) {
	repo := New()
	ctx := context.Background()

	entity := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	require.NoError(t, repo.CreateEntity(ctx, entity))

	got, err := repo.GetEntity(ctx, entity.ID, false)
	require.NoError(t, err)
	assert.Equal(t, entity.ID, got.ID)
	assert.Equal(t, "page", got.Type)

	// Copy-out: mutating the returned value must not touch the store.
	got.Weight = 99
	again, err := repo.GetEntity(ctx, entity.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Weight)
}

func TestGetEntityNotFound(t *testing.T) {
	repo := New()

	_, err := repo.GetEntity(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, simplecms.ErrEntityNotFound)
}

func TestGetEntityRespectsSoftDelete(t *testing.T) {
	repo := New()
	ctx := context.Background()

	entity := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	require.NoError(t, repo.CreateEntity(ctx, entity))

	now := time.Now().UTC()
	entity.IsDeleted = true
	entity.DeletedAt = &now
	require.NoError(t, repo.UpdateEntity(ctx, entity))

	_, err := repo.GetEntity(ctx, entity.ID, false)
	assert.ErrorIs(t, err, simplecms.ErrEntityNotFound)

	got, err := repo.GetEntity(ctx, entity.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := New()
	ctx := context.Background()

	kept := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	require.NoError(t, repo.CreateEntity(ctx, kept))

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx simplecms.Repository) error {
		discarded := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 1)
		if err := tx.CreateEntity(ctx, discarded); err != nil {
			return err
		}
		kept.Weight = 42
		if err := tx.UpdateEntity(ctx, kept); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entities, err := repo.ListEntities(ctx, simplecms.EntityQuery{Kind: simplecms.KindContent})
	require.NoError(t, err)
	require.Len(t, entities, 1, "the entity created inside the failed unit is gone")
	assert.Equal(t, 0, entities[0].Weight, "the update inside the failed unit is undone")
}

func TestWithTxCommits(t *testing.T) {
	repo := New()
	ctx := context.Background()

	entity := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	err := repo.WithTx(ctx, func(tx simplecms.Repository) error {
		return tx.CreateEntity(ctx, entity)
	})
	require.NoError(t, err)

	_, err = repo.GetEntity(ctx, entity.ID, false)
	assert.NoError(t, err)
}

func TestListEntitiesFiltering(t *testing.T) {
	repo := New()
	ctx := context.Background()

	root := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	childPath := simplecms.ChildrenPath(root)
	childA := newEntity(simplecms.KindContent, "page", childPath, 1, 2)
	childB := newEntity(simplecms.KindContent, "article", childPath, 1, 1)
	block := newEntity(simplecms.KindBlock, "text", simplecms.RootPath, 0, 0)

	for _, e := range []*simplecms.Entity{root, childA, childB, block} {
		require.NoError(t, repo.CreateEntity(ctx, e))
	}

	t.Run("by kind", func(t *testing.T) {
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{Kind: simplecms.KindBlock})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, block.ID, got[0].ID)
	})

	t.Run("by exact path", func(t *testing.T) {
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
			Kind: simplecms.KindContent, PathEquals: childPath,
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("by path prefix", func(t *testing.T) {
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
			Kind: simplecms.KindContent, PathPrefix: childPath,
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("by level", func(t *testing.T) {
		level := 0
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
			Kind: simplecms.KindContent, Level: &level,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, root.ID, got[0].ID)
	})

	t.Run("excluding an id", func(t *testing.T) {
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
			Kind: simplecms.KindContent, PathEquals: childPath, ExcludeID: &childA.ID,
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, childB.ID, got[0].ID)
	})

	t.Run("by entity field", func(t *testing.T) {
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
			Kind: simplecms.KindContent,
			Filters: []simplecms.Filter{
				{Field: "weight", Op: simplecms.OpGte, Value: 2},
			},
		})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, childA.ID, got[0].ID)
	})

	t.Run("by id set", func(t *testing.T) {
		got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
			Kind: simplecms.KindContent,
			IDs:  []uuid.UUID{root.ID, childB.ID},
		})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}

func TestListEntitiesTranslationFilter(t *testing.T) {
	repo := New()
	ctx := context.Background()

	matching := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	other := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	require.NoError(t, repo.CreateEntity(ctx, matching))
	require.NoError(t, repo.CreateEntity(ctx, other))

	require.NoError(t, repo.CreateTranslation(ctx, &simplecms.Translation{
		ID: uuid.New(), EntityID: matching.ID, LangCode: "en", IsActive: true,
		Title: "Welcome Home", URL: "welcome",
	}))
	require.NoError(t, repo.CreateTranslation(ctx, &simplecms.Translation{
		ID: uuid.New(), EntityID: other.ID, LangCode: "en", IsActive: true,
		Title: "Pricing", URL: "pricing",
	}))

	got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
		Kind: simplecms.KindContent,
		Lang: "en",
		TranslationFilters: []simplecms.Filter{
			{Field: "title", Op: simplecms.OpLike, Value: "welcome", Relation: simplecms.RelationTranslations},
		},
		WithTranslations: true,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, matching.ID, got[0].ID)
	require.Len(t, got[0].Translations, 1)
}

func TestListEntitiesSortingAndPaging(t *testing.T) {
	repo := New()
	ctx := context.Background()

	weights := []int{3, 1, 2}
	ids := make([]uuid.UUID, len(weights))
	for i, w := range weights {
		e := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, w)
		ids[i] = e.ID
		require.NoError(t, repo.CreateEntity(ctx, e))
	}

	got, err := repo.ListEntities(ctx, simplecms.EntityQuery{
		Kind:    simplecms.KindContent,
		OrderBy: []simplecms.Order{{Field: "weight", Direction: simplecms.SortDesc}},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{got[0].Weight, got[1].Weight, got[2].Weight})

	limit, offset := 1, 1
	page, err := repo.ListEntities(ctx, simplecms.EntityQuery{
		Kind:    simplecms.KindContent,
		OrderBy: []simplecms.Order{{Field: "weight", Direction: simplecms.SortDesc}},
		Limit:   &limit,
		Offset:  &offset,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 2, page[0].Weight)

	past := 10
	empty, err := repo.ListEntities(ctx, simplecms.EntityQuery{
		Kind:   simplecms.KindContent,
		Offset: &past,
	})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeactivateTranslations(t *testing.T) {
	repo := New()
	ctx := context.Background()

	entity := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	require.NoError(t, repo.CreateEntity(ctx, entity))

	english := &simplecms.Translation{
		ID: uuid.New(), EntityID: entity.ID, LangCode: "en", IsActive: true, Title: "Home",
	}
	german := &simplecms.Translation{
		ID: uuid.New(), EntityID: entity.ID, LangCode: "de", IsActive: true, Title: "Startseite",
	}
	require.NoError(t, repo.CreateTranslation(ctx, english))
	require.NoError(t, repo.CreateTranslation(ctx, german))

	require.NoError(t, repo.DeactivateTranslations(ctx, entity.ID, "en"))

	en, err := repo.GetTranslation(ctx, english.ID)
	require.NoError(t, err)
	assert.False(t, en.IsActive)

	de, err := repo.GetTranslation(ctx, german.ID)
	require.NoError(t, err)
	assert.True(t, de.IsActive, "other languages are untouched")

	_, err = repo.GetActiveTranslation(ctx, entity.ID, "en")
	assert.ErrorIs(t, err, simplecms.ErrTranslationNotFound)
}

func TestDeleteEntityRemovesDependents(t *testing.T) {
	repo := New()
	ctx := context.Background()

	blockable := &simplecms.Blockable{ID: uuid.New(), Type: "widget", Data: map[string]any{"a": 1}}
	require.NoError(t, repo.CreateBlockable(ctx, blockable))

	entity := newEntity(simplecms.KindBlock, "widget", simplecms.RootPath, 0, 0)
	entity.BlockableID = &blockable.ID
	entity.BlockableType = blockable.Type
	require.NoError(t, repo.CreateEntity(ctx, entity))

	translation := &simplecms.Translation{
		ID: uuid.New(), EntityID: entity.ID, LangCode: "en", IsActive: true, Title: "Widget",
	}
	require.NoError(t, repo.CreateTranslation(ctx, translation))

	require.NoError(t, repo.DeleteEntity(ctx, entity.ID))

	_, err := repo.GetEntity(ctx, entity.ID, true)
	assert.ErrorIs(t, err, simplecms.ErrEntityNotFound)
	_, err = repo.GetTranslation(ctx, translation.ID)
	assert.ErrorIs(t, err, simplecms.ErrTranslationNotFound)
	_, err = repo.GetBlockable(ctx, blockable.ID)
	assert.ErrorIs(t, err, simplecms.ErrBlockableNotFound)
}

func TestFileAttachment(t *testing.T) {
	repo := New()
	ctx := context.Background()

	entity := newEntity(simplecms.KindContent, "page", simplecms.RootPath, 0, 0)
	require.NoError(t, repo.CreateEntity(ctx, entity))

	file := &simplecms.File{ID: uuid.New(), Name: "hero.png", StorageBackend: "memory"}
	require.NoError(t, repo.CreateFile(ctx, file))
	require.NoError(t, repo.AttachFile(ctx, entity.ID, file.ID))
	// Attaching twice is a no-op.
	require.NoError(t, repo.AttachFile(ctx, entity.ID, file.ID))

	files, err := repo.ListFiles(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	require.NoError(t, repo.DetachFiles(ctx, entity.ID))
	files, err = repo.ListFiles(ctx, entity.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}
