package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

func buildFixtureGraph(t *testing.T) *dag.Graph {
	t.Helper()
	b := dag.NewBuilder()
	b.AddNode(&dag.Node{ID: "source.raw.customers", Name: "customers", Kind: dag.KindSource})
	b.AddNode(&dag.Node{ID: "source.raw.orders", Name: "orders", Kind: dag.KindSource})
	b.AddNode(&dag.Node{ID: "source.raw.payments", Name: "payments", Kind: dag.KindSource})
	b.AddNode(&dag.Node{ID: "stg_customers", Name: "stg_customers", Kind: dag.KindModel, Path: "models/staging/stg_customers.sql"})
	b.AddNode(&dag.Node{ID: "stg_orders", Name: "stg_orders", Kind: dag.KindModel, Path: "models/staging/stg_orders.sql"})
	b.AddNode(&dag.Node{ID: "stg_payments", Name: "stg_payments", Kind: dag.KindModel, Path: "models/staging/stg_payments.sql"})
	b.AddNode(&dag.Node{ID: "orders", Name: "orders", Kind: dag.KindModel, Path: "models/marts/orders.sql", Tags: []string{"finance"}})
	b.AddNode(&dag.Node{ID: "customers", Name: "customers", Kind: dag.KindModel, Path: "models/marts/customers.sql"})
	b.AddNode(&dag.Node{ID: "test.not_null_orders_id", Name: "not_null_orders_id", Kind: dag.KindTest})

	b.AddEdge("source.raw.customers", "stg_customers", dag.EdgeSource)
	b.AddEdge("source.raw.orders", "stg_orders", dag.EdgeSource)
	b.AddEdge("source.raw.payments", "stg_payments", dag.EdgeSource)
	b.AddEdge("stg_orders", "orders", dag.EdgeRef)
	b.AddEdge("stg_payments", "orders", dag.EdgeRef)
	b.AddEdge("stg_customers", "customers", dag.EdgeRef)
	b.AddEdge("orders", "customers", dag.EdgeRef)
	b.AddEdge("orders", "test.not_null_orders_id", dag.EdgeRef)

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func nodeIDs(nodes []*dag.Node) []string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestFocusDepth_UpstreamOneDownstreamZero(t *testing.T) {
	g := buildFixtureGraph(t)

	sub, err := FocusDepth(g, "customers", 1, 0)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"customers", "stg_customers", "orders"}, nodeIDs(sub.Nodes()))
	assert.Len(t, sub.Edges(), 2)
}

func TestFocusDepth_Unbounded(t *testing.T) {
	g := buildFixtureGraph(t)

	sub, err := FocusDepth(g, "customers", Unbounded, 0)
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"customers", "stg_customers", "orders", "stg_orders", "stg_payments",
			"source.raw.customers", "source.raw.orders", "source.raw.payments"},
		nodeIDs(sub.Nodes()))
}

func TestFocusDepth_UnknownFocus(t *testing.T) {
	g := buildFixtureGraph(t)
	_, err := FocusDepth(g, "nonexistent", 1, 1)
	require.Error(t, err)
}

func TestSelect_TagAndPathOr(t *testing.T) {
	g := buildFixtureGraph(t)

	sub, err := Select(g, "tag:finance,path:marts")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"orders", "customers"}, nodeIDs(sub.Nodes()))
}

func TestSelect_BareName(t *testing.T) {
	g := buildFixtureGraph(t)

	sub, err := Select(g, "stg_orders")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"stg_orders"}, nodeIDs(sub.Nodes()))
}

func TestSelect_SyntaxError(t *testing.T) {
	g := buildFixtureGraph(t)

	_, err := Select(g, "tag:,foo")
	require.Error(t, err)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
}

func TestApplyKindFilter_ExcludesTestsByDefault(t *testing.T) {
	g := buildFixtureGraph(t)
	sub, err := FocusDepth(g, "orders", Unbounded, Unbounded)
	require.NoError(t, err)

	filtered := ApplyKindFilter(sub, KindFilter{})
	ids := nodeIDs(filtered.Nodes())
	assert.NotContains(t, ids, "test.not_null_orders_id")
}

func TestApplyKindFilter_IncludeTests(t *testing.T) {
	g := buildFixtureGraph(t)
	sub, err := FocusDepth(g, "orders", Unbounded, Unbounded)
	require.NoError(t, err)

	filtered := ApplyKindFilter(sub, KindFilter{IncludeTests: true})
	ids := nodeIDs(filtered.Nodes())
	assert.Contains(t, ids, "test.not_null_orders_id")
}

func TestParseExpr_RejectsEmptyAtom(t *testing.T) {
	_, err := ParseExpr("tag:finance,,path:marts")
	require.Error(t, err)
}
