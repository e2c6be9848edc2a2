package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/render"
	"github.com/leapstack-labs/dbt-lineage/internal/tui"
)

// RunFocus implements the root command: build the graph, filter it to the
// requested focus/selector view, and either render it non-interactively or
// launch the TUI.
func RunFocus(cmd *cobra.Command, focus string) error {
	cctx, err := newCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cctx.Cfg

	g, sub, err := buildSubGraph(cfg, focus)
	if err != nil {
		return err
	}

	if cfg.Interactive {
		return tui.Run(cmd.Context(), cfg.ProjectDir, g, sub, focus)
	}

	lay := layout.Compute(sub, layout.Options{}.WithDefaults())
	format := render.Format(defaultRenderFormat(cfg))
	if err := render.Render(cctx.Renderer.Writer(), format, sub, lay, terminalRenderOptions(format)); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// terminalRenderOptions clips the ASCII renderer's viewport to the
// controlling terminal's actual size when stdout is a TTY, rather than the
// renderer's fixed fallback width.
func terminalRenderOptions(format render.Format) render.Options {
	if format != render.FormatASCII {
		return render.Options{}
	}
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return render.Options{}
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return render.Options{}
	}
	return render.Options{ViewportWidth: w, ViewportHeight: h}
}
