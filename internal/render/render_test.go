package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

func buildFixture(t *testing.T) (*selector.SubGraph, *layout.Layout) {
	t.Helper()
	b := dag.NewBuilder()
	b.AddNode(&dag.Node{ID: "source.raw.orders", Name: "orders", Kind: dag.KindSource})
	b.AddNode(&dag.Node{ID: "stg_orders", Name: "stg_orders", Kind: dag.KindModel, Tags: []string{"staging"}})
	b.AddEdge("source.raw.orders", "stg_orders", dag.EdgeSource)
	g, err := b.Build()
	require.NoError(t, err)

	sub, err := selector.FocusDepth(g, "stg_orders", selector.Unbounded, selector.Unbounded)
	require.NoError(t, err)

	lay := layout.Compute(sub, layout.Options{})
	return sub, lay
}

func TestRender_JSONRoundTrips(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sub, lay, Options{}))

	var doc jsonDocument
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.SchemaVersion)
	assert.Len(t, doc.Nodes, 2)
	assert.Len(t, doc.Edges, 1)
}

func TestRender_DOTContainsEveryNodeAndEdge(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatDOT, sub, lay, Options{}))

	out := buf.String()
	assert.Contains(t, out, "digraph lineage")
	assert.Contains(t, out, `"stg_orders"`)
	assert.Contains(t, out, `"source.raw.orders" -> "stg_orders"`)
}

func TestRender_MermaidSanitizesDottedIDs(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatMermaid, sub, lay, Options{}))

	out := buf.String()
	assert.Contains(t, out, "flowchart LR")
	assert.NotContains(t, out, "source.raw.orders[")
	assert.Contains(t, out, "n_source_raw_orders")
}

func TestRender_ASCIIContainsNodeLabels(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatASCII, sub, lay, Options{ViewportWidth: 80, ViewportHeight: 20}))

	out := buf.String()
	assert.True(t, strings.Contains(out, "orders"))
	assert.Contains(t, out, "┌")
}

func TestRender_SVGIsWellFormed(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatSVG, sub, lay, Options{}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "</svg>")
	assert.Contains(t, out, "<polyline")
}

func TestRender_HTMLEmbedsSVGAndScript(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatHTML, sub, lay, Options{}))

	out := buf.String()
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, `id="viewport"`)
	assert.Contains(t, out, "<script>")
	assert.Contains(t, out, `id="search"`)
}

func TestRender_UnsupportedFormat(t *testing.T) {
	sub, lay := buildFixture(t)
	var buf bytes.Buffer
	err := Render(&buf, Format("yaml"), sub, lay, Options{})
	require.Error(t, err)
	var unsupported *UnsupportedFormatError
	require.ErrorAs(t, err, &unsupported)
}
