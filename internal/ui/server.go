// Package ui provides a web-based viewer for a dbt project's dependency
// graph — the browser-facing counterpart to the TUI, serving the same
// laid-out SubGraph over HTTP instead of a terminal.
package ui

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	graphFeature "github.com/leapstack-labs/dbt-lineage/internal/ui/features/graph"
)

// Server is the dbt-lineage web viewer.
type Server struct {
	graph        *dag.Graph
	projectDir   string
	sessionStore *sessions.CookieStore
	port         int
	watch        bool
}

// Config holds configuration for the web viewer.
type Config struct {
	Graph         *dag.Graph
	ProjectDir    string
	Port          int
	Watch         bool
	SessionSecret string
}

// NewServer creates a new web viewer instance.
func NewServer(cfg Config) *Server {
	secret := cfg.SessionSecret
	if secret == "" {
		secret = "dbt-lineage-dev-secret"
	}
	sessionStore := sessions.NewCookieStore([]byte(secret))
	sessionStore.MaxAge(86400 * 30)
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		graph:        cfg.Graph,
		projectDir:   cfg.ProjectDir,
		sessionStore: sessionStore,
		port:         cfg.Port,
		watch:        cfg.Watch,
	}
}

// Serve starts the web viewer and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(middleware.Logger, middleware.Recoverer, middleware.Compress(5))

	if err := graphFeature.SetupRoutes(r, s.graph, s.projectDir, s.sessionStore, s.watch); err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
