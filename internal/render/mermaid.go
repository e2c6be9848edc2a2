package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// renderMermaid emits a Mermaid flowchart definition with per-kind class
// styling, for embedding in markdown docs via `-o mermaid`.
func renderMermaid(w io.Writer, sub *selector.SubGraph) error {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	for _, n := range sub.Nodes() {
		fmt.Fprintf(&b, "  %s[%q]\n", mermaidID(n.ID), nodeLabel(n))
	}
	for _, e := range sub.Edges() {
		fmt.Fprintf(&b, "  %s --> %s\n", mermaidID(e.From), mermaidID(e.To))
	}

	for _, kind := range []dag.Kind{dag.KindModel, dag.KindSource, dag.KindSeed, dag.KindSnapshot, dag.KindTest, dag.KindExposure, dag.KindPhantom} {
		var ids []string
		for _, n := range sub.Nodes() {
			if n.Kind == kind {
				ids = append(ids, mermaidID(n.ID))
			}
		}
		if len(ids) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  classDef %sStyle fill:%s,color:#fff\n", kind, kindColor(kind))
		fmt.Fprintf(&b, "  class %s %sStyle\n", strings.Join(ids, ","), kind)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// mermaidID maps an internal node id (which may contain dots, e.g.
// "source.raw.orders") to a Mermaid-safe identifier.
func mermaidID(id string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return "n_" + replacer.Replace(id)
}
