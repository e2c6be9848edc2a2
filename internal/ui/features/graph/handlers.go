// Package graph provides DAG visualization handlers for the web viewer.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/a-h/templ"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/render"
	"github.com/leapstack-labs/dbt-lineage/internal/runner"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
	graphtypes "github.com/leapstack-labs/dbt-lineage/internal/ui/features/graph/types"
)

// Handlers provides HTTP handlers for the graph feature.
type Handlers struct {
	graph        *dag.Graph
	projectDir   string
	sessionStore sessions.Store
	watch        bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(g *dag.Graph, projectDir string, sessionStore sessions.Store, watch bool) *Handlers {
	return &Handlers{
		graph:        g,
		projectDir:   projectDir,
		sessionStore: sessionStore,
		watch:        watch,
	}
}

// HandleGraphPage renders the full HTML viewer page, focused on the
// "focus" query parameter (or the session's remembered focus, or the
// whole project when neither is set).
func (h *Handlers) HandleGraphPage(w http.ResponseWriter, r *http.Request) {
	focus := h.resolveFocus(r)
	h.rememberFocus(w, r, focus)

	sub, err := subGraphFor(h.graph, focus)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	lay := layout.Compute(sub, layout.Options{})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Render(w, render.FormatHTML, sub, lay, render.Options{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GraphPageUpdates is the /graph/updates SSE endpoint: every time dbt
// writes a new target/run_results.json, it re-renders the graph-container
// fragment with the latest node run statuses patched in, grounded on C12's
// fsnotify-based watcher. The page HandleGraphPage serves contains no
// script that opens this stream.
func (h *Handlers) GraphPageUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	if !h.watch {
		return
	}

	focus := h.resolveFocus(r)

	results, err := runner.WatchRunResults(r.Context(), h.projectDir)
	if err != nil {
		_ = sse.ConsoleError(err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case doc, ok := <-results:
			if !ok {
				return
			}
			for _, entry := range doc.Results {
				h.graph.SetRunStatus(entry.UniqueID, dag.RunStatus(entry.Status))
			}
			if err := h.patchGraphContainer(sse, focus); err != nil {
				_ = sse.ConsoleError(err)
				return
			}
		}
	}
}

func (h *Handlers) patchGraphContainer(sse *datastar.ServerSentEventGenerator, focus string) error {
	sub, err := subGraphFor(h.graph, focus)
	if err != nil {
		return err
	}
	lay := layout.Compute(sub, layout.Options{})

	var svgBuf bytes.Buffer
	if err := render.Render(&svgBuf, render.FormatSVG, sub, lay, render.Options{}); err != nil {
		return err
	}

	fragment := templ.ComponentFunc(func(_ context.Context, out io.Writer) error {
		_, err := io.WriteString(out, `<div id="graph-container">`+svgBuf.String()+`</div>`)
		return err
	})
	return sse.PatchElementTempl(fragment)
}

// ModelNeighborhoodJSON returns the one-hop upstream/downstream
// neighborhood of a model as JSON, for the browser's node-click
// interaction to fetch without a full page reload.
func (h *Handlers) ModelNeighborhoodJSON(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sub, err := selector.FocusDepth(h.graph, id, 1, 1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	nodes := make([]graphtypes.Node, 0, len(sub.Nodes()))
	for _, n := range sub.Nodes() {
		nodes = append(nodes, graphtypes.Node{ID: n.ID, Label: nodeLabel(n), Kind: string(n.Kind)})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := make([]graphtypes.Edge, 0, len(sub.Edges()))
	for _, e := range sub.Edges() {
		edges = append(edges, graphtypes.Edge{Source: e.From, Target: e.To})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Nodes []graphtypes.Node `json:"nodes"`
		Edges []graphtypes.Edge `json:"edges"`
	}{Nodes: nodes, Edges: edges})
}

func nodeLabel(n *dag.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
