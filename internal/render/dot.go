package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// renderDOT emits a Graphviz digraph with per-kind fill colors, for
// `dot -Tpng` / `dot -Tsvg` consumption downstream of `-o dot`.
func renderDOT(w io.Writer, sub *selector.SubGraph) error {
	var b strings.Builder
	b.WriteString("digraph lineage {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled, fontname=\"sans-serif\"];\n")

	for _, n := range sub.Nodes() {
		fmt.Fprintf(&b, "  %q [label=%q, fillcolor=%q];\n", n.ID, nodeLabel(n), kindColor(n.Kind))
	}
	for _, e := range sub.Edges() {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.From, e.To, e.Kind)
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}
