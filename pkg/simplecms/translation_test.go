package simplecms_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestCreateTranslationSupersedesActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity := createPage(t, f.svc, "Home", nil)
	first := entity.Translations[0]

	second, err := f.svc.CreateTranslation(ctx, simplecms.CreateTranslationRequest{
		EntityID: entity.ID,
		Payload:  simplecms.TranslationPayload{LangCode: "en", Title: "Home v2"},
	})
	require.NoError(t, err)
	assert.True(t, second.IsActive)

	translations, err := f.repo.ListTranslations(ctx, entity.ID)
	require.NoError(t, err)
	require.Len(t, translations, 2, "superseded rows are retained")

	activeCount := 0
	for _, tr := range translations {
		if tr.IsActive {
			activeCount++
			assert.Equal(t, second.ID, tr.ID)
		}
		if tr.ID == first.ID {
			assert.False(t, tr.IsActive, "the old row is deactivated, not deleted")
		}
	}
	assert.Equal(t, 1, activeCount, "exactly one active row per (entity, lang)")
}

func TestCreateTranslationPerLanguage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity := createPage(t, f.svc, "Home", nil)

	german, err := f.svc.CreateTranslation(ctx, simplecms.CreateTranslationRequest{
		EntityID: entity.ID,
		Payload:  simplecms.TranslationPayload{LangCode: "de", Title: "Startseite"},
	})
	require.NoError(t, err)

	// Activity is tracked per language; the English row stays active.
	english, err := f.svc.GetActiveTranslation(ctx, entity.ID, "en")
	require.NoError(t, err)
	require.NotNil(t, english)
	assert.Equal(t, "Home", english.Title)

	active, err := f.svc.GetActiveTranslation(ctx, entity.ID, "de")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, german.ID, active.ID)
}

func TestCreateTranslationValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity := createPage(t, f.svc, "Home", nil)

	_, err := f.svc.CreateTranslation(ctx, simplecms.CreateTranslationRequest{
		EntityID: entity.ID,
		Payload:  simplecms.TranslationPayload{Title: "no language"},
	})
	require.Error(t, err)
	assert.True(t, simplecms.IsValidationError(err))

	_, err = f.svc.CreateTranslation(ctx, simplecms.CreateTranslationRequest{
		EntityID: uuid.New(),
		Payload:  simplecms.TranslationPayload{LangCode: "en", Title: "orphan"},
	})
	require.Error(t, err)

	var entityErr *simplecms.EntityError
	assert.ErrorAs(t, err, &entityErr)
}

func TestDeleteTranslationRejectsActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity := createPage(t, f.svc, "Home", nil)
	active := entity.Translations[0]

	err := f.svc.DeleteTranslation(ctx, active.ID)
	require.Error(t, err)
	assert.True(t, simplecms.IsValidationError(err))

	still, err := f.svc.GetTranslationByID(ctx, active.ID)
	require.NoError(t, err)
	require.NotNil(t, still)
}

func TestDeleteTranslationRemovesInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	entity := createPage(t, f.svc, "Home", nil)
	superseded := entity.Translations[0]

	_, err := f.svc.CreateTranslation(ctx, simplecms.CreateTranslationRequest{
		EntityID: entity.ID,
		Payload:  simplecms.TranslationPayload{LangCode: "en", Title: "Home v2"},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTranslation(ctx, superseded.ID))

	gone, err := f.svc.GetTranslationByID(ctx, superseded.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestGetActiveTranslationMissingReturnsNil(t *testing.T) {
	f := newFixture(t)

	entity := createPage(t, f.svc, "Home", nil)

	translation, err := f.svc.GetActiveTranslation(context.Background(), entity.ID, "fr")
	require.NoError(t, err)
	assert.Nil(t, translation)
}
