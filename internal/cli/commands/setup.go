// Package commands implements the dbt-lineage subcommands: default
// focus/render, impact, diff, serve, and version.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbt-lineage/internal/cli/config"
	"github.com/leapstack-labs/dbt-lineage/internal/cli/output"
	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/graphbuild"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// commandContext bundles the config and renderer every subcommand needs,
// loaded fresh from cmd's flags rather than threaded through cmd.Context()
// — root's PersistentPreRunE already loaded it once to validate flags, and
// reloading here keeps this package independent of the cli package's
// private context keys.
type commandContext struct {
	Cfg      *config.Config
	Renderer *output.Renderer
}

func newCommandContext(cmd *cobra.Command) (*commandContext, error) {
	cfgFile, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	return &commandContext{Cfg: cfg, Renderer: r}, nil
}

// buildSubGraph runs C1-C5 for the given focus/selector/kind-filter
// combination described by cfg, returning the full graph and the filtered
// subgraph.
func buildSubGraph(cfg *config.Config, focus string) (*dag.Graph, *selector.SubGraph, error) {
	g, err := graphbuild.Load(cfg.ProjectDir, graphbuild.Options{ManifestPath: cfg.ManifestPath})
	if err != nil {
		return nil, nil, err
	}

	sub, err := filterGraph(g, cfg, focus)
	if err != nil {
		return nil, nil, err
	}
	return g, sub, nil
}

// filterGraph applies C5's selector-expression or focus+depth filtering,
// then the per-kind include flags, to g. With neither a selector nor a
// focus node, every node in g is kept.
func filterGraph(g *dag.Graph, cfg *config.Config, focus string) (*selector.SubGraph, error) {
	var sub *selector.SubGraph
	var err error

	switch {
	case cfg.Selector != "":
		sub, err = selector.Select(g, cfg.Selector)
	case focus != "":
		sub, err = selector.FocusDepth(g, focus, cfg.UpstreamDepth, cfg.DownstreamDepth)
	default:
		sub = selector.All(g)
	}
	if err != nil {
		return nil, err
	}

	filter := selector.KindFilter{
		IncludeTests:     cfg.IncludeTests,
		IncludeSeeds:     cfg.IncludeSeeds,
		IncludeSnapshots: cfg.IncludeSnapshots,
		IncludeExposures: cfg.IncludeExposures,
	}
	return selector.ApplyKindFilter(sub, filter), nil
}

func defaultRenderFormat(cfg *config.Config) string {
	switch cfg.OutputFormat {
	case "", config.DefaultOutput, "text", "markdown":
		return "ascii"
	default:
		return cfg.OutputFormat
	}
}
