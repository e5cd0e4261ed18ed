package simplecms

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Materialized-path codec. Pure string/id decomposition; no storage access.
//
// A root entity has path "/". A child of entity N with path P has path
// P + N.ID + "/", so a path lists every ancestor id from root to parent.
// The level of a path is its number of id segments (root = 0).

// ChildrenPath returns the path shared by the direct children of an entity.
func ChildrenPath(entity *Entity) string {
	return entity.Path + entity.ID.String() + "/"
}

// AncestorIDs parses the ancestor ids out of a path, ordered root to
// parent. A root path yields an empty slice.
func AncestorIDs(path string) ([]uuid.UUID, error) {
	if path == RootPath || path == "" {
		return nil, nil
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	ids := make([]uuid.UUID, 0, len(segments))
	for _, segment := range segments {
		id, err := uuid.Parse(segment)
		if err != nil {
			return nil, fmt.Errorf("malformed path segment %q: %w", segment, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// PathLevel returns the depth encoded in a path (root = 0).
func PathLevel(path string) int {
	if path == RootPath || path == "" {
		return 0
	}
	return strings.Count(strings.Trim(path, "/"), "/") + 1
}

// IsDescendantPath reports whether candidate lies anywhere below the
// entity, i.e. starts with the entity's children path.
func IsDescendantPath(entity *Entity, candidate string) bool {
	return strings.HasPrefix(candidate, ChildrenPath(entity))
}
