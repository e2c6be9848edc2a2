package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id string, kind Kind) *Node {
	return &Node{ID: id, Name: id, Kind: kind}
}

func TestBuilder_BasicGraph(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.a", KindModel))
	b.AddNode(node("model.b", KindModel))
	b.AddNode(node("model.c", KindModel))
	b.AddEdge("model.a", "model.b", EdgeRef)
	b.AddEdge("model.b", "model.c", EdgeRef)

	g, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, []string{"model.b"}, g.Downstream("model.a"))
	assert.Equal(t, []string{"model.a"}, g.Upstream("model.b"))
}

func TestBuilder_PhantomSynthesis(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.a", KindModel))
	b.AddEdge("model.missing", "model.a", EdgeRef)

	g, err := b.Build()
	require.NoError(t, err)

	require.Equal(t, 2, g.NodeCount())
	phantom, ok := g.Node("model.missing")
	require.True(t, ok)
	assert.Equal(t, KindPhantom, phantom.Kind)
}

func TestBuilder_DuplicateEdgesCollapse(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.a", KindModel))
	b.AddNode(node("model.b", KindModel))
	b.AddEdge("model.a", "model.b", EdgeRef)
	b.AddEdge("model.a", "model.b", EdgeRef)

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestBuilder_SelfLoopDropped(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.a", KindModel))
	b.AddEdge("model.a", "model.a", EdgeRef)

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestBuilder_DetectsCycle(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.a", KindModel))
	b.AddNode(node("model.b", KindModel))
	b.AddNode(node("model.c", KindModel))
	b.AddEdge("model.a", "model.b", EdgeRef)
	b.AddEdge("model.b", "model.c", EdgeRef)
	b.AddEdge("model.c", "model.a", EdgeRef)

	_, err := b.Build()
	require.Error(t, err)

	var cyclic *CyclicError
	require.ErrorAs(t, err, &cyclic)
	assert.NotEmpty(t, cyclic.Nodes)
}

func TestBuilder_NoFalseCycleOnDiamond(t *testing.T) {
	b := NewBuilder()
	for _, id := range []string{"model.a", "model.b", "model.c", "model.d"} {
		b.AddNode(node(id, KindModel))
	}
	b.AddEdge("model.a", "model.b", EdgeRef)
	b.AddEdge("model.a", "model.c", EdgeRef)
	b.AddEdge("model.b", "model.d", EdgeRef)
	b.AddEdge("model.c", "model.d", EdgeRef)

	g, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
}

func TestBuilder_AuthoritativeNodeOverridesMetadata(t *testing.T) {
	b := NewBuilder()
	b.AddNode(&Node{ID: "model.a", Name: "a", Kind: KindModel})
	b.AddAuthoritativeNode(&Node{
		ID:              "model.a",
		Name:            "a",
		Kind:            KindModel,
		Materialization: MaterializationIncremental,
		Description:     "from manifest",
	})

	g, err := b.Build()
	require.NoError(t, err)
	n, ok := g.Node("model.a")
	require.True(t, ok)
	assert.Equal(t, MaterializationIncremental, n.Materialization)
	assert.Equal(t, "from manifest", n.Description)
}

func TestBuilder_DiscoveredNodeDoesNotOverwriteAuthoritative(t *testing.T) {
	b := NewBuilder()
	b.AddAuthoritativeNode(&Node{
		ID:              "model.a",
		Name:            "a",
		Kind:            KindModel,
		Materialization: MaterializationTable,
	})
	b.AddNode(&Node{ID: "model.a", Name: "a", Kind: KindModel, Materialization: MaterializationView})

	g, err := b.Build()
	require.NoError(t, err)
	n, ok := g.Node("model.a")
	require.True(t, ok)
	assert.Equal(t, MaterializationTable, n.Materialization)
}

func TestBuilder_TagMergeAcrossSources(t *testing.T) {
	b := NewBuilder()
	b.AddNode(&Node{ID: "model.a", Name: "a", Kind: KindModel, Tags: []string{"nightly"}})
	b.AddNode(&Node{ID: "model.a", Name: "a", Kind: KindModel, Tags: []string{"finance"}})

	g, err := b.Build()
	require.NoError(t, err)
	n, ok := g.Node("model.a")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"finance", "nightly"}, n.Tags)
}

func TestNode_HasTagAndColumn(t *testing.T) {
	n := &Node{
		ID:   "model.a",
		Tags: []string{"nightly", "finance"},
		Columns: []Column{
			{Name: "id", Type: "integer"},
		},
	}
	assert.True(t, n.HasTag("finance"))
	assert.False(t, n.HasTag("hourly"))

	col, ok := n.Column("id")
	require.True(t, ok)
	assert.Equal(t, "integer", col.Type)

	_, ok = n.Column("missing")
	assert.False(t, ok)
}

func TestGraph_NodesSortedDeterministically(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.c", KindModel))
	b.AddNode(node("model.a", KindModel))
	b.AddNode(node("model.b", KindModel))

	g, err := b.Build()
	require.NoError(t, err)

	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"model.a", "model.b", "model.c"}, ids)
}

func TestGraph_SetRunStatus(t *testing.T) {
	b := NewBuilder()
	b.AddNode(node("model.a", KindModel))
	g, err := b.Build()
	require.NoError(t, err)

	g.SetRunStatus("model.a", RunStatusSuccess)
	n, ok := g.Node("model.a")
	require.True(t, ok)
	assert.Equal(t, RunStatusSuccess, n.RunStatus)
}

func TestCyclicError_Error(t *testing.T) {
	err := &CyclicError{Nodes: []string{"a", "b", "a"}}
	assert.Contains(t, err.Error(), "cyclic dependency graph")
}
