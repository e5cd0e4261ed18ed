package simplecms

import (
	"context"
	"fmt"
)

// SplitCriteria is the translator output: raw criteria normalized and
// separated into core entity-field criteria and translation-field criteria.
type SplitCriteria struct {
	Entity           []Filter
	Translation      []Filter
	Lang             string
	EntityOrder      []Order
	TranslationOrder []Order
}

// CriteriaTranslator normalizes decoded filter/sort input and validates
// relation-sort preconditions.
type CriteriaTranslator struct {
	languages LanguageResolver
}

// NewCriteriaTranslator creates a translator. languages may be nil, in
// which case lang filter values are used as codes verbatim.
func NewCriteriaTranslator(languages LanguageResolver) *CriteriaTranslator {
	return &CriteriaTranslator{languages: languages}
}

// Parse splits raw filters and order entries into entity and translation
// criteria.
//
// Translation-field filters are only resolvable against one language: with
// no lang filter present they are dropped. A translation-field sort with no
// lang filter is ambiguous across language rows and fails with a
// ValidationError instead of silently picking one. Every order entry must
// declare its relation key, even if null.
func (t *CriteriaTranslator) Parse(ctx context.Context, rawFilters map[string]any, rawOrderBy []map[string]any) (*SplitCriteria, error) {
	split := &SplitCriteria{}

	for field, raw := range rawFilters {
		filter, err := parseFilter(field, raw)
		if err != nil {
			return nil, err
		}
		if field == "lang" {
			lang, ok := filter.Value.(string)
			if !ok {
				return nil, NewValidationError("lang", "must be a string")
			}
			code, err := t.resolveLang(ctx, lang)
			if err != nil {
				return nil, err
			}
			split.Lang = code
			continue
		}
		if filter.Relation == RelationTranslations {
			split.Translation = append(split.Translation, filter)
		} else {
			split.Entity = append(split.Entity, filter)
		}
	}

	// Translation filters are unanswerable without a language; drop them.
	if split.Lang == "" {
		split.Translation = nil
	}

	for _, raw := range rawOrderBy {
		order, err := parseOrder(raw)
		if err != nil {
			return nil, err
		}
		if order.Relation == RelationTranslations {
			if split.Lang == "" {
				return nil, NewValidationError("order_by", "lang criteria is required")
			}
			split.TranslationOrder = append(split.TranslationOrder, order)
		} else {
			split.EntityOrder = append(split.EntityOrder, order)
		}
	}

	return split, nil
}

func (t *CriteriaTranslator) resolveLang(ctx context.Context, identifier string) (string, error) {
	if t.languages == nil {
		return identifier, nil
	}
	code, err := t.languages.Resolve(ctx, identifier)
	if err != nil {
		return "", fmt.Errorf("resolving language %q: %w", identifier, err)
	}
	return code, nil
}

// parseFilter normalizes one raw filter value: either a bare value
// (equality on an entity field) or a map with "op"/"value"/"relation" keys.
func parseFilter(field string, raw any) (Filter, error) {
	spec, ok := raw.(map[string]any)
	if !ok {
		return Filter{Field: field, Op: OpEq, Value: raw}, nil
	}

	filter := Filter{Field: field, Op: OpEq, Value: spec["value"]}
	if op, ok := spec["op"]; ok {
		s, ok := op.(string)
		if !ok {
			return Filter{}, NewValidationError(field, "filter op must be a string")
		}
		filter.Op = FilterOp(s)
		if !validOp(filter.Op) {
			return Filter{}, NewValidationError(field, fmt.Sprintf("unknown filter op %q", s))
		}
	}
	if rel, ok := spec["relation"]; ok && rel != nil {
		s, ok := rel.(string)
		if !ok {
			return Filter{}, NewValidationError(field, "filter relation must be a string")
		}
		filter.Relation = s
	}
	return filter, nil
}

// parseOrder normalizes one raw order entry. The "relation" key must be
// present (it may hold null); an entry without the declaration is rejected.
func parseOrder(raw map[string]any) (Order, error) {
	rel, declared := raw["relation"]
	if !declared {
		return Order{}, NewValidationError("order_by", "order criteria must declare a relation")
	}

	order := Order{Direction: SortAsc}
	if rel != nil {
		s, ok := rel.(string)
		if !ok {
			return Order{}, NewValidationError("order_by", "order relation must be a string or null")
		}
		order.Relation = s
	}

	field, ok := raw["field"].(string)
	if !ok || field == "" {
		return Order{}, NewValidationError("order_by", "order criteria requires a field")
	}
	order.Field = field

	if dir, ok := raw["direction"]; ok && dir != nil {
		s, ok := dir.(string)
		if !ok {
			return Order{}, NewValidationError("order_by", "order direction must be a string")
		}
		switch SortDirection(s) {
		case SortAsc, SortDesc:
			order.Direction = SortDirection(s)
		default:
			return Order{}, NewValidationError("order_by", fmt.Sprintf("unknown sort direction %q", s))
		}
	}
	return order, nil
}

func validOp(op FilterOp) bool {
	switch op {
	case OpEq, OpNeq, OpLike, OpIn, OpGt, OpGte, OpLt, OpLte:
		return true
	}
	return false
}

// PageBounds computes limit/offset from page-style pagination. Page numbers
// start at 1; a missing page or page size leaves the result unrestricted.
func PageBounds(page, perPage *int) (limit, offset *int, err error) {
	if page == nil || perPage == nil {
		return nil, nil, nil
	}
	if *page < 1 {
		return nil, nil, NewValidationError("page", "must be >= 1")
	}
	if *perPage < 0 {
		return nil, nil, NewValidationError("per_page", "must be >= 0")
	}
	off := (*page - 1) * *perPage
	lim := *perPage
	return &lim, &off, nil
}
