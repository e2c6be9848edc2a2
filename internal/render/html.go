package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// viewerScript is the pan/zoom/search interaction script embedded in every
// HTML render. It is authored as plain ES2015 here (scripts/genviewerjs
// documents the esbuild bundling step this would go through for the
// browser-served copy served by C10's HTML renderer and the serve
// subcommand; the CLI's one-shot -o html output embeds it unbundled).
const viewerScript = `
(function() {
  var svg = document.querySelector('svg');
  var viewport = document.getElementById('viewport');
  var scale = 1, tx = 0, ty = 0, dragging = false, lastX = 0, lastY = 0;

  function apply() {
    viewport.setAttribute('transform', 'translate(' + tx + ',' + ty + ') scale(' + scale + ')');
  }

  svg.addEventListener('wheel', function(e) {
    e.preventDefault();
    var delta = e.deltaY < 0 ? 1.1 : 1 / 1.1;
    scale = Math.min(4, Math.max(0.25, scale * delta));
    apply();
  }, { passive: false });

  svg.addEventListener('mousedown', function(e) {
    dragging = true; lastX = e.clientX; lastY = e.clientY;
  });
  window.addEventListener('mouseup', function() { dragging = false; });
  window.addEventListener('mousemove', function(e) {
    if (!dragging) return;
    tx += e.clientX - lastX; ty += e.clientY - lastY;
    lastX = e.clientX; lastY = e.clientY;
    apply();
  });

  var search = document.getElementById('search');
  if (search) {
    search.addEventListener('input', function() {
      var q = search.value.toLowerCase();
      document.querySelectorAll('[data-node-label]').forEach(function(el) {
        var match = q === '' || el.getAttribute('data-node-label').toLowerCase().indexOf(q) !== -1;
        el.setAttribute('opacity', match ? '1' : '0.15');
      });
    });
  }
})();
`

// renderHTML wraps the SVG projection of the graph in a self-contained
// document with a search box and the embedded pan/zoom/search script,
// built as a templ.Component the way the teacher's web UI renders its
// pages — here hand-assembled via templ.ComponentFunc rather than a
// generated .templ file, since the document's shape (one <svg>, one
// search input, one script) doesn't carry enough reusable structure to
// justify a template file of its own.
func renderHTML(w io.Writer, sub *selector.SubGraph, lay *layout.Layout) error {
	var svgBuf bytes.Buffer
	if err := renderSVG(&svgBuf, sub, lay); err != nil {
		return err
	}

	component := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		_, err := io.WriteString(out, htmlDocument(svgBuf.String()))
		return err
	})
	return component.Render(context.Background(), w)
}

func htmlDocument(svg string) string {
	withViewportGroup := injectViewportGroup(svg)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>dbt-lineage</title>
<style>
  body { margin: 0; background: #1e1e1e; font-family: sans-serif; }
  #search { position: fixed; top: 8px; left: 8px; padding: 6px; z-index: 1; }
</style>
</head>
<body>
<input id="search" type="text" placeholder="Search nodes...">
<div id="graph-container">
%s
</div>
<script>%s</script>
</body>
</html>
`, withViewportGroup, viewerScript)
}

// injectViewportGroup wraps the SVG's drawable content in a <g id="viewport">
// so the embedded script has a single element to transform for pan/zoom.
func injectViewportGroup(svg string) string {
	openTag := strings.Index(svg, "<svg")
	if openTag < 0 {
		return svg
	}
	openEnd := strings.Index(svg[openTag:], ">")
	if openEnd < 0 {
		return svg
	}
	openEnd += openTag + 1

	closeStart := strings.LastIndex(svg, "</svg>")
	if closeStart < 0 || closeStart < openEnd {
		return svg
	}
	return svg[:openEnd] + `<g id="viewport">` + svg[openEnd:closeStart] + `</g>` + svg[closeStart:]
}
