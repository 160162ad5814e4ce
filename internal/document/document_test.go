package document_test

import (
	"testing"

	"github.com/aretw0/heimer/internal/document"
	"github.com/aretw0/heimer/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTree builds root(0) -> a(1), root -> b(2), a -> c(3) and a cross link b -> c.
func newTree(t *testing.T) *document.Document {
	t.Helper()
	doc := document.New()
	for i, text := range []string{"root", "a", "b", "c"} {
		n := doc.NewNode(text, domain.Point{X: float64(i * 100), Y: 0})
		require.NoError(t, doc.AddNode(n))
	}
	for _, e := range []domain.Edge{{Source: 0, Target: 1}, {Source: 0, Target: 2}, {Source: 1, Target: 3}, {Source: 2, Target: 3}} {
		require.NoError(t, doc.AddEdge(e))
	}
	return doc
}

func TestDocument_New(t *testing.T) {
	doc := document.New()
	assert.False(t, doc.HasNodes())
	assert.False(t, doc.IsModified())
	assert.Empty(t, doc.FilePath())
	assert.Equal(t, domain.White, doc.BackgroundColor())
	_, ok := doc.Selected()
	assert.False(t, ok)
}

func TestDocument_RemoveNodeCascades(t *testing.T) {
	doc := newTree(t)
	require.NoError(t, doc.Select(3))

	node, removed, err := doc.RemoveNode(3)
	require.NoError(t, err)
	assert.Equal(t, "c", node.Text)
	assert.ElementsMatch(t, []domain.Edge{{Source: 1, Target: 3}, {Source: 2, Target: 3}}, removed)

	for _, e := range doc.Edges() {
		assert.False(t, e.Connects(3))
	}
	_, err = doc.Node(3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, ok := doc.Selected()
	assert.False(t, ok, "selection must not dangle")
}

func TestDocument_RemoveNodeKeepsOtherSelection(t *testing.T) {
	doc := newTree(t)
	require.NoError(t, doc.Select(1))

	_, _, err := doc.RemoveNode(2)
	require.NoError(t, err)

	id, ok := doc.Selected()
	assert.True(t, ok)
	assert.Equal(t, domain.NodeID(1), id)
}

func TestDocument_RemoveMissingNode(t *testing.T) {
	doc := document.New()
	_, _, err := doc.RemoveNode(7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocument_AddEdgeValidation(t *testing.T) {
	doc := newTree(t)

	assert.ErrorIs(t, doc.AddEdge(domain.Edge{Source: 0, Target: 42}), domain.ErrInvalidReference)
	assert.ErrorIs(t, doc.AddEdge(domain.Edge{Source: 1, Target: 1}), domain.ErrInvalidReference)
	assert.ErrorIs(t, doc.AddEdge(domain.Edge{Source: 1, Target: 0}), domain.ErrDuplicateEdge)
	assert.NoError(t, doc.AddEdge(domain.Edge{Source: 3, Target: 0}))
}

func TestDocument_IdsAreNotReused(t *testing.T) {
	doc := newTree(t)
	_, _, err := doc.RemoveNode(3)
	require.NoError(t, err)

	n := doc.NewNode("d", domain.Point{})
	assert.Equal(t, domain.NodeID(4), n.ID)
}

func TestDocument_IsLeaf(t *testing.T) {
	doc := newTree(t)

	leaf, err := doc.IsLeaf(3)
	require.NoError(t, err)
	assert.True(t, leaf)

	leaf, err = doc.IsLeaf(0)
	require.NoError(t, err)
	assert.False(t, leaf)

	_, err = doc.IsLeaf(99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocument_SnapshotRestore(t *testing.T) {
	doc := newTree(t)
	doc.SetBackgroundColor(domain.MustParseColor("#102030"))
	snap := doc.Snapshot()

	other := document.New()
	other.SetFilePath("keep.alz")
	other.SetModified(true)
	require.NoError(t, other.Restore(snap))

	if diff := cmp.Diff(snap, other.Snapshot()); diff != "" {
		t.Errorf("restored snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "keep.alz", other.FilePath())
	assert.True(t, other.IsModified())
	assert.Equal(t, domain.NodeID(4), other.NewNode("", domain.Point{}).ID)
}

func TestDocument_RestoreRejectsDanglingEdge(t *testing.T) {
	doc := newTree(t)
	before := doc.Snapshot()

	bad := domain.MindMap{
		Nodes: []domain.Node{{ID: 0, Text: "x"}},
		Edges: []domain.Edge{{Source: 0, Target: 5}},
	}
	err := doc.Restore(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	if diff := cmp.Diff(before, doc.Snapshot()); diff != "" {
		t.Errorf("document changed on failed restore:\n%s", diff)
	}
}

func TestDocument_Clear(t *testing.T) {
	doc := newTree(t)
	doc.SetFilePath("a.alz")
	doc.SetModified(true)

	doc.Clear()
	assert.False(t, doc.HasNodes())
	assert.Empty(t, doc.Edges())
	assert.Empty(t, doc.FilePath())
	assert.False(t, doc.IsModified())
}

func TestDocument_Bounds(t *testing.T) {
	doc := document.New()
	empty := doc.Bounds()
	assert.Equal(t, domain.DefaultNodeSize.Width+80, empty.Width)

	require.NoError(t, doc.AddNode(doc.NewNode("a", domain.Point{X: 0, Y: 0})))
	require.NoError(t, doc.AddNode(doc.NewNode("b", domain.Point{X: 300, Y: 100})))

	size := doc.Bounds()
	assert.Equal(t, 300+domain.DefaultNodeSize.Width+80, size.Width)
	assert.Equal(t, 100+domain.DefaultNodeSize.Height+80, size.Height)
}
