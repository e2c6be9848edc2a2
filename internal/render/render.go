// Package render projects a laid-out graph into one of the output formats
// the CLI and TUI panels present: ASCII, DOT, Mermaid, JSON, SVG, and HTML.
// Every renderer consumes the same read-only (*selector.SubGraph,
// *layout.Layout) pair — grounded on how the teacher's internal/dag package
// keeps rendering concerns (there: a plain String() method) decoupled from
// graph construction — so none of them can mutate graph state.
package render

import (
	"fmt"
	"io"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// Format names an output renderer. The CLI's -o flag accepts these values,
// plus auto, text and markdown, which render as ascii.
type Format string

// Supported formats.
const (
	FormatASCII   Format = "ascii"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
	FormatMermaid Format = "mermaid"
	FormatSVG     Format = "svg"
	FormatHTML    Format = "html"
)

// UnsupportedFormatError reports an -o value outside the supported set.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format: %q", e.Format)
}

// Options tunes renderer output. ViewportWidth/Height bound the ASCII
// renderer's clip rectangle; they are ignored by the other renderers.
type Options struct {
	ViewportWidth  int
	ViewportHeight int
}

func (o Options) withDefaults() Options {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = 120
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 40
	}
	return o
}

// Render writes sub laid out as lay to w in the requested format.
func Render(w io.Writer, format Format, sub *selector.SubGraph, lay *layout.Layout, opts Options) error {
	opts = opts.withDefaults()
	switch format {
	case FormatASCII:
		return renderASCII(w, sub, lay, opts)
	case FormatDOT:
		return renderDOT(w, sub)
	case FormatMermaid:
		return renderMermaid(w, sub)
	case FormatJSON:
		return renderJSON(w, sub)
	case FormatSVG:
		return renderSVG(w, sub, lay)
	case FormatHTML:
		return renderHTML(w, sub, lay)
	default:
		return &UnsupportedFormatError{Format: string(format)}
	}
}

// nodeLabel is the short label every renderer uses: the node's Name, or its
// ID when Name is unset (phantom nodes carry their ID as their Name).
func nodeLabel(n *dag.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// kindColor maps a node Kind to the color every non-ASCII renderer uses for
// per-kind styling.
func kindColor(k dag.Kind) string {
	switch k {
	case dag.KindModel:
		return "#4c8bf5"
	case dag.KindSource:
		return "#34a853"
	case dag.KindSeed:
		return "#a142f4"
	case dag.KindSnapshot:
		return "#fbbc04"
	case dag.KindTest:
		return "#ea4335"
	case dag.KindExposure:
		return "#ff6d01"
	case dag.KindPhantom:
		return "#9aa0a6"
	default:
		return "#9aa0a6"
	}
}
