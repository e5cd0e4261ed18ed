package simplecms_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

func TestChildrenPath(t *testing.T) {
	root := &simplecms.Entity{ID: uuid.New(), Path: simplecms.RootPath, Level: 0}
	child := &simplecms.Entity{ID: uuid.New(), Path: simplecms.ChildrenPath(root), Level: 1}

	assert.Equal(t, "/"+root.ID.String()+"/", child.Path)
	assert.Equal(t, "/"+root.ID.String()+"/"+child.ID.String()+"/", simplecms.ChildrenPath(child))
}

func TestAncestorIDs(t *testing.T) {
	rootID := uuid.New()
	parentID := uuid.New()
	path := "/" + rootID.String() + "/" + parentID.String() + "/"

	ids, err := simplecms.AncestorIDs(path)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, rootID, ids[0], "root ancestor comes first")
	assert.Equal(t, parentID, ids[1], "direct parent comes last")
}

func TestAncestorIDsRoot(t *testing.T) {
	ids, err := simplecms.AncestorIDs(simplecms.RootPath)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAncestorIDsMalformed(t *testing.T) {
	_, err := simplecms.AncestorIDs("/not-a-uuid/")
	assert.Error(t, err)
}

func TestPathLevel(t *testing.T) {
	a := uuid.New().String()
	b := uuid.New().String()

	tests := []struct {
		path  string
		level int
	}{
		{simplecms.RootPath, 0},
		{"/" + a + "/", 1},
		{"/" + a + "/" + b + "/", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.level, simplecms.PathLevel(tt.path), "path %q", tt.path)
	}
}

func TestIsDescendantPath(t *testing.T) {
	root := &simplecms.Entity{ID: uuid.New(), Path: simplecms.RootPath}
	child := &simplecms.Entity{ID: uuid.New(), Path: simplecms.ChildrenPath(root)}
	grandchildPath := simplecms.ChildrenPath(child)

	assert.True(t, simplecms.IsDescendantPath(root, child.Path))
	assert.True(t, simplecms.IsDescendantPath(root, grandchildPath))
	assert.True(t, simplecms.IsDescendantPath(child, grandchildPath))
	assert.False(t, simplecms.IsDescendantPath(child, root.Path))
	assert.False(t, simplecms.IsDescendantPath(root, simplecms.RootPath), "an entity is not its own descendant")
}
