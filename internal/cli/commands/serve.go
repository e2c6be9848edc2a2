package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbt-lineage/internal/graphbuild"
	"github.com/leapstack-labs/dbt-lineage/internal/ui"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
}

// NewServeCommand creates the `serve` command: a browser-based viewer for
// the project's dependency graph with live run-status reload.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start a local web server for browsing the dependency graph",
		Long: `Start a local web server providing an interactive dependency graph viewer.

Click a node to re-center the graph on its neighborhood. With --watch
(the default), the graph re-renders automatically whenever dbt writes a
new target/run_results.json, coloring nodes by their latest run status.`,
		Example: `  # Start the viewer on the default port
  dbt-lineage serve

  # Start on a custom port without opening a browser
  dbt-lineage serve --port 3000 --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 8765, "port to serve on")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "don't auto-open a browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "watch for new run results and live-reload")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cctx, err := newCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cctx.Cfg

	g, err := graphbuild.Load(cfg.ProjectDir, graphbuild.Options{ManifestPath: cfg.ManifestPath})
	if err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Graph:         g,
		ProjectDir:    cfg.ProjectDir,
		Port:          opts.Port,
		Watch:         opts.Watch,
		SessionSecret: serveSessionSecret(),
	})

	if !opts.NoBrowser {
		go openBrowser(fmt.Sprintf("http://localhost:%d/graph", opts.Port))
	}

	cctx.Renderer.Printf("Serving dependency graph on http://localhost:%d/graph\n", opts.Port)
	cctx.Renderer.Println("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

func serveSessionSecret() string {
	secret := os.Getenv("DBTLINEAGE_SESSION_SECRET")
	if secret == "" {
		secret = "dbt-lineage-dev-secret" //nolint:gosec
	}
	return secret
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}
	_ = cmd.Start()
}
