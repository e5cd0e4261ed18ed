package simplecms_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestParseBareFilterIsEquality(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	split, err := translator.Parse(context.Background(), map[string]any{"type": "page"}, nil)
	require.NoError(t, err)

	require.Len(t, split.Entity, 1)
	assert.Equal(t, "type", split.Entity[0].Field)
	assert.Equal(t, simplecms.OpEq, split.Entity[0].Op)
	assert.Equal(t, "page", split.Entity[0].Value)
	assert.Empty(t, split.Translation)
}

func TestParseSplitsTranslationFilters(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	split, err := translator.Parse(context.Background(), map[string]any{
		"lang":      "en",
		"is_active": true,
		"title": map[string]any{
			"op":       string(simplecms.OpLike),
			"value":    "welcome",
			"relation": simplecms.RelationTranslations,
		},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "en", split.Lang)
	require.Len(t, split.Entity, 1)
	assert.Equal(t, "is_active", split.Entity[0].Field)
	require.Len(t, split.Translation, 1)
	assert.Equal(t, "title", split.Translation[0].Field)
	assert.Equal(t, simplecms.OpLike, split.Translation[0].Op)
}

func TestParseDropsTranslationFiltersWithoutLang(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	split, err := translator.Parse(context.Background(), map[string]any{
		"title": map[string]any{
			"value":    "welcome",
			"relation": simplecms.RelationTranslations,
		},
	}, nil)
	require.NoError(t, err)

	assert.Empty(t, split.Translation, "translation filters are unanswerable without a language")
	assert.Empty(t, split.Entity)
}

func TestParseTranslationSortRequiresLang(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	_, err := translator.Parse(context.Background(), nil, []map[string]any{
		{"field": "title", "relation": simplecms.RelationTranslations},
	})
	require.Error(t, err)
	assert.True(t, simplecms.IsValidationError(err))
	assert.Contains(t, err.Error(), "lang criteria is required")
}

func TestParseTranslationSortWithLang(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	split, err := translator.Parse(context.Background(),
		map[string]any{"lang": "de"},
		[]map[string]any{
			{"field": "title", "direction": "desc", "relation": simplecms.RelationTranslations},
			{"field": "weight", "relation": nil},
		})
	require.NoError(t, err)

	require.Len(t, split.TranslationOrder, 1)
	assert.Equal(t, simplecms.SortDesc, split.TranslationOrder[0].Direction)
	require.Len(t, split.EntityOrder, 1)
	assert.Equal(t, "weight", split.EntityOrder[0].Field)
	assert.Equal(t, simplecms.SortAsc, split.EntityOrder[0].Direction, "direction defaults to ascending")
}

func TestParseOrderMustDeclareRelation(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	_, err := translator.Parse(context.Background(), nil, []map[string]any{
		{"field": "weight"},
	})
	require.Error(t, err)
	assert.True(t, simplecms.IsValidationError(err))
	assert.Contains(t, err.Error(), "declare a relation")
}

func TestParseRejectsUnknownOp(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(nil)

	_, err := translator.Parse(context.Background(), map[string]any{
		"weight": map[string]any{"op": "between", "value": 3},
	}, nil)
	require.Error(t, err)
	assert.True(t, simplecms.IsValidationError(err))
}

func TestParseResolvesLangThroughResolver(t *testing.T) {
	translator := simplecms.NewCriteriaTranslator(staticLanguages{"English": "en"})

	split, err := translator.Parse(context.Background(), map[string]any{"lang": "English"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "en", split.Lang)
}

type staticLanguages map[string]string

func (l staticLanguages) Resolve(ctx context.Context, identifier string) (string, error) {
	if code, ok := l[identifier]; ok {
		return code, nil
	}
	return identifier, nil
}

func TestPageBounds(t *testing.T) {
	intp := func(v int) *int { return &v }

	t.Run("unrestricted when unset", func(t *testing.T) {
		limit, offset, err := simplecms.PageBounds(nil, nil)
		require.NoError(t, err)
		assert.Nil(t, limit)
		assert.Nil(t, offset)
	})

	t.Run("computes offset from page", func(t *testing.T) {
		limit, offset, err := simplecms.PageBounds(intp(3), intp(10))
		require.NoError(t, err)
		require.NotNil(t, limit)
		require.NotNil(t, offset)
		assert.Equal(t, 10, *limit)
		assert.Equal(t, 20, *offset)
	})

	t.Run("rejects page below one", func(t *testing.T) {
		_, _, err := simplecms.PageBounds(intp(0), intp(10))
		require.Error(t, err)
		assert.True(t, simplecms.IsValidationError(err))
	})

	t.Run("rejects negative page size", func(t *testing.T) {
		_, _, err := simplecms.PageBounds(intp(1), intp(-1))
		require.Error(t, err)
		assert.True(t, simplecms.IsValidationError(err))
	})
}
