package simplecms

import "context"

// Tree queries. All methods are read-only and rely on the materialized
// path: no recursive traversal ever hits the store.

// GetAncestors returns the full ancestor chain of an entity ordered by
// ascending level. A root entity has no ancestors.
func (s *service) GetAncestors(ctx context.Context, entity *Entity) ([]*Entity, error) {
	if entity.Path == RootPath {
		return nil, nil
	}
	ids, err := AncestorIDs(entity.Path)
	if err != nil {
		return nil, err
	}
	return s.repository.ListEntities(ctx, EntityQuery{
		Kind:    entity.Kind,
		IDs:     ids,
		OrderBy: []Order{{Field: "level", Direction: SortAsc}},
	})
}

// GetDescendants returns every entity below the given one, ordered by
// ascending level.
//
// In tree mode the fetch eagerly loads each entity's direct children for
// nested rendering, and the returned top-level list holds only the
// immediate children (level == entity.Level + 1); deeper entities are
// reachable solely through the Children relation.
func (s *service) GetDescendants(ctx context.Context, entity *Entity, asTree bool) ([]*Entity, error) {
	descendants, err := s.repository.ListEntities(ctx, EntityQuery{
		Kind:         entity.Kind,
		PathPrefix:   ChildrenPath(entity),
		OrderBy:      []Order{{Field: "level", Direction: SortAsc}},
		WithChildren: asTree,
	})
	if err != nil {
		return nil, err
	}
	if !asTree {
		return descendants, nil
	}

	top := make([]*Entity, 0, len(descendants))
	for _, d := range descendants {
		if d.Level == entity.Level+1 {
			top = append(top, d)
		}
	}
	return top, nil
}

// GetChildren returns the direct children of an entity (exact path match,
// never deeper descendants), filtered, sorted and paginated.
func (s *service) GetChildren(ctx context.Context, entity *Entity, query ListQuery) ([]*Entity, error) {
	return s.listWithCriteria(ctx, EntityQuery{
		Kind:       entity.Kind,
		PathEquals: ChildrenPath(entity),
	}, query)
}

// GetSiblings returns every entity sharing the given entity's path,
// excluding the entity itself.
func (s *service) GetSiblings(ctx context.Context, entity *Entity, query ListQuery) ([]*Entity, error) {
	id := entity.ID
	return s.listWithCriteria(ctx, EntityQuery{
		Kind:       entity.Kind,
		PathEquals: entity.Path,
		ExcludeID:  &id,
	}, query)
}

// GetRootEntities returns the level-zero entities of a kind.
func (s *service) GetRootEntities(ctx context.Context, kind EntityKind, query ListQuery) ([]*Entity, error) {
	root := 0
	return s.listWithCriteria(ctx, EntityQuery{
		Kind:  kind,
		Level: &root,
	}, query)
}

// listWithCriteria runs raw criteria through the translator and pager,
// then merges them into the base tree query.
func (s *service) listWithCriteria(ctx context.Context, base EntityQuery, query ListQuery) ([]*Entity, error) {
	split, err := s.criteria.Parse(ctx, query.Filters, query.OrderBy)
	if err != nil {
		return nil, err
	}
	limit, offset, err := PageBounds(query.Page, query.PerPage)
	if err != nil {
		return nil, err
	}

	base.Filters = split.Entity
	base.TranslationFilters = split.Translation
	base.Lang = split.Lang
	base.OrderBy = split.EntityOrder
	base.TranslationOrderBy = split.TranslationOrder
	base.Limit = limit
	base.Offset = offset

	return s.repository.ListEntities(ctx, base)
}
