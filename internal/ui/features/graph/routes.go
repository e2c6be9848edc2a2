package graph

import (
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

// SetupRoutes registers the graph feature's routes: the full-page viewer,
// its live-reload SSE stream, and the node-neighborhood JSON API.
func SetupRoutes(
	router chi.Router,
	g *dag.Graph,
	projectDir string,
	sessionStore sessions.Store,
	watch bool,
) error {
	handlers := NewHandlers(g, projectDir, sessionStore, watch)

	router.Get("/graph", handlers.HandleGraphPage)
	router.Get("/graph/updates", handlers.GraphPageUpdates)

	router.Route("/api/graph", func(r chi.Router) {
		r.Get("/model/{id}", handlers.ModelNeighborhoodJSON)
	})

	return nil
}
