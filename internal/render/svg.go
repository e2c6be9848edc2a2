package render

import (
	"fmt"
	"html"
	"io"

	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

const svgMargin = 20

// renderSVG produces a self-contained (inline-styled) vector rendering of
// the laid-out graph: one rect+text per node, one polyline per edge.
func renderSVG(w io.Writer, sub *selector.SubGraph, lay *layout.Layout) error {
	width := lay.Bounds.MaxX - lay.Bounds.MinX + 2*svgMargin
	height := lay.Bounds.MaxY - lay.Bounds.MinY + 2*svgMargin

	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" font-family="sans-serif" font-size="12">`+"\n", width, height)
	fmt.Fprintf(w, `<rect width="100%%" height="100%%" fill="#1e1e1e"/>`+"\n")

	offsetX := svgMargin - lay.Bounds.MinX
	offsetY := svgMargin - lay.Bounds.MinY

	nodeSize := map[string]layout.Point{}
	for _, n := range lay.Nodes {
		nodeSize[n.ID] = n.Point
	}

	for _, e := range lay.Edges {
		writeSVGPolyline(w, e, offsetX, offsetY)
	}

	byID := make(map[string]*layout.PositionedNode, len(lay.Nodes))
	for i := range lay.Nodes {
		byID[lay.Nodes[i].ID] = &lay.Nodes[i]
	}

	for _, n := range sub.Nodes() {
		pn, ok := byID[n.ID]
		if !ok {
			continue
		}
		x, y := pn.Point.X+offsetX, pn.Point.Y+offsetY
		fmt.Fprintf(w, `<g><rect x="%.1f" y="%.1f" width="120" height="40" rx="6" fill="%s" stroke="#111" stroke-width="1"/>`+"\n",
			x, y, kindColor(n.Kind))
		fmt.Fprintf(w, `<text x="%.1f" y="%.1f" fill="#fff" text-anchor="middle">%s</text></g>`+"\n",
			x+60, y+24, html.EscapeString(nodeLabel(n)))
	}

	fmt.Fprintln(w, `</svg>`)
	return nil
}

func writeSVGPolyline(w io.Writer, e layout.RoutedEdge, offsetX, offsetY float64) {
	fmt.Fprint(w, `<polyline points="`)
	for i, p := range e.Points {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%.1f,%.1f", p.X+offsetX, p.Y+offsetY)
	}
	fmt.Fprintln(w, `" fill="none" stroke="#888" stroke-width="1.5"/>`)
}
