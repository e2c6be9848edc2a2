// Package graph provides DAG visualization handlers for the web viewer.
package graph

import (
	"net/http"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

const sessionName = "dbt-lineage"
const focusSessionKey = "focus"

// resolveFocus returns the focus node for this request: the "focus" query
// parameter if present, else the value stashed in the session from a
// previous request, else "" (whole-graph view).
func (h *Handlers) resolveFocus(r *http.Request) string {
	if focus := r.URL.Query().Get("focus"); focus != "" {
		return focus
	}
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return ""
	}
	focus, _ := session.Values[focusSessionKey].(string)
	return focus
}

// rememberFocus persists the current focus node in the session so it
// survives the live-reload SSE connection, which carries no query string.
func (h *Handlers) rememberFocus(w http.ResponseWriter, r *http.Request, focus string) {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return
	}
	session.Values[focusSessionKey] = focus
	_ = session.Save(r, w)
}

// subGraphFor builds the SubGraph a page or SSE fragment should render:
// the whole project when focus is empty, else focus with all of its
// upstream and downstream lineage at unbounded depth.
func subGraphFor(g *dag.Graph, focus string) (*selector.SubGraph, error) {
	if focus == "" {
		return selector.All(g), nil
	}
	return selector.FocusDepth(g, focus, selector.Unbounded, selector.Unbounded)
}
