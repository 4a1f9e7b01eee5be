package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/blazbratanic/service-broker/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"..", ""},
		{".a", "a"},
		{".a.", "a"},
		{".a.b", "a.b"},
		{"a.b.c", "a.b.c"},
		{"a...b", "a.b"},
		{"..a..b.", "a.b"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, name := range []string{"", "...", "a", ".a.b.", "a..b..c"} {
		once := Normalize(name)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestDirectoryAdd(t *testing.T) {
	d := NewDirectory()

	err := d.Add("")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrNameInvalid)

	require.NoError(t, d.Add("a.b"))

	// Same leaf under a different spelling of the same name.
	err = d.Add(".a.b")
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrNameConflict)

	require.NoError(t, d.Add("a.c"))
	assert.ErrorIs(t, d.Add("a.c"), cerrors.ErrNameConflict)

	// A group name cannot become a leaf, and a leaf cannot become a group.
	assert.ErrorIs(t, d.Add("a"), cerrors.ErrNameConflict)
	assert.ErrorIs(t, d.Add("a.b.c"), cerrors.ErrNameConflict)
}

func TestDirectoryRemove(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("a.b"))
	require.NoError(t, d.Add("a.c"))
	require.NoError(t, d.Add("b.a"))
	require.NoError(t, d.Add("b.b"))

	d.Remove("a.c")
	require.NoError(t, d.Add("a.c"))

	d.Remove("a")
	require.NoError(t, d.Add("a.b"))
	require.NoError(t, d.Add("a.c"))
	assert.ErrorIs(t, d.Add("b.a"), cerrors.ErrNameConflict)
	assert.ErrorIs(t, d.Add("b.b"), cerrors.ErrNameConflict)

	// Removing the root clears everything.
	d.Remove("")
	require.NoError(t, d.Add("a.b"))
	require.NoError(t, d.Add("a.c"))
	require.NoError(t, d.Add("b.a"))
	require.NoError(t, d.Add("b.b"))
}

func TestDirectoryList(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("a.b"))
	require.NoError(t, d.Add("a.c"))
	require.NoError(t, d.Add("b.a"))
	require.NoError(t, d.Add("b.b"))

	assert.Equal(t, []string{"a.b", "a.c", "b.a", "b.b"}, d.List(""))
	assert.Equal(t, []string{"a.b", "a.c"}, d.List("a"))
	assert.Equal(t, []string{"b.a", "b.b"}, d.List("b"))
	assert.Equal(t, []string{"a.b"}, d.List("a.b"))
	assert.Empty(t, d.List("nope"))

	d.Remove("b")
	assert.Equal(t, []string{"a.b", "a.c"}, d.List(""))
}

func TestDirectoryListInsertionOrder(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("g.z"))
	require.NoError(t, d.Add("g.a"))
	require.NoError(t, d.Add("g.m"))

	assert.Equal(t, []string{"g.z", "g.a", "g.m"}, d.List("g"))
}

func TestDirectoryNodeType(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("a.b"))

	assert.Equal(t, NodeGroup, d.NodeType("a"))
	assert.Equal(t, NodeService, d.NodeType("a.b"))
	assert.Equal(t, NodeService, d.NodeType(".a.b."))
	assert.Equal(t, NodeNone, d.NodeType("a.c"))
	assert.Equal(t, NodeNone, d.NodeType(""))

	d.Remove("a.b")
	assert.Equal(t, NodeNone, d.NodeType("a.b"), "tombstones report none")
}

func TestDirectoryGroupLeafDisjoint(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("x.y"))

	for _, name := range d.List("") {
		assert.Equal(t, NodeService, d.NodeType(name))
	}
	assert.Equal(t, NodeGroup, d.NodeType("x"))
}

func TestDirectoryPrune(t *testing.T) {
	d := NewDirectory()
	require.NoError(t, d.Add("a.b"))
	require.NoError(t, d.Add("a.c"))
	require.NoError(t, d.Add("b.a"))

	d.Remove("a.b")
	d.Remove("b")
	d.Prune()

	assert.Equal(t, []string{"a.c"}, d.List(""))
	assert.Equal(t, NodeNone, d.NodeType("b"))

	// Pruned names are free for reuse.
	require.NoError(t, d.Add("a.b"))
	require.NoError(t, d.Add("b"))
	assert.Equal(t, NodeService, d.NodeType("b"))
}
