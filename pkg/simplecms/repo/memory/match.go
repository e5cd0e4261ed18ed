package memory

import (
	"strings"
	"time"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Criteria evaluation over in-memory rows. Field names mirror the column
// names the postgres repository exposes.

func entityFieldValue(entity *simplecms.Entity, field string) (any, bool) {
	switch field {
	case "type":
		return entity.Type, true
	case "path":
		return entity.Path, true
	case "level":
		return entity.Level, true
	case "weight":
		return entity.Weight, true
	case "is_active":
		return entity.IsActive, true
	case "is_deleted":
		return entity.IsDeleted, true
	case "author_id":
		if entity.AuthorID == nil {
			return nil, true
		}
		return entity.AuthorID.String(), true
	case "created_at":
		return entity.CreatedAt, true
	case "updated_at":
		return entity.UpdatedAt, true
	}
	return nil, false
}

func translationFieldValue(translation *simplecms.Translation, field string) (any, bool) {
	switch field {
	case "title":
		return translation.Title, true
	case "url":
		return translation.URL, true
	case "body":
		return translation.Body, true
	case "excerpt":
		return translation.Excerpt, true
	case "lang_code":
		return translation.LangCode, true
	}
	return nil, false
}

func matchValue(value any, filter simplecms.Filter) bool {
	switch filter.Op {
	case simplecms.OpEq:
		return compareValues(value, filter.Value) == 0
	case simplecms.OpNeq:
		return compareValues(value, filter.Value) != 0
	case simplecms.OpLike:
		// Case-insensitive, matching the ILIKE the postgres repository uses.
		s, ok := value.(string)
		sub, ok2 := filter.Value.(string)
		return ok && ok2 && strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	case simplecms.OpIn:
		candidates, ok := filter.Value.([]any)
		if !ok {
			return false
		}
		for _, c := range candidates {
			if compareValues(value, c) == 0 {
				return true
			}
		}
		return false
	case simplecms.OpGt:
		return compareValues(value, filter.Value) > 0
	case simplecms.OpGte:
		return compareValues(value, filter.Value) >= 0
	case simplecms.OpLt:
		return compareValues(value, filter.Value) < 0
	case simplecms.OpLte:
		return compareValues(value, filter.Value) <= 0
	}
	return false
}

// compareValues orders two loosely-typed values. Numbers compare as
// float64 (decoded JSON delivers them that way), everything else by kind.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	}
	return 0
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
