package commands

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dbt-lineage/internal/cli/output"
	"github.com/leapstack-labs/dbt-lineage/internal/graphbuild"
	"github.com/leapstack-labs/dbt-lineage/internal/impact"
)

// impactJSON is the stable `{schema_version: 1, ...}` wire shape for
// `dbt-lineage impact`.
type impactJSON struct {
	SchemaVersion    int               `json:"schema_version"`
	Root             string            `json:"root"`
	Reached          []string          `json:"reached"`
	CountsBySeverity map[string]int    `json:"counts_by_severity"`
	Classifications  map[string]string `json:"classifications"`
	OverallSeverity  string            `json:"overall_severity,omitempty"`
	Distance         map[string]int    `json:"distance,omitempty"`
}

// NewImpactCommand creates the `impact <MODEL>` command.
func NewImpactCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "impact <MODEL>",
		Short: "Show the downstream blast radius of a model, classified by severity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImpact(cmd, args[0], format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format (text|json)")
	return cmd
}

func runImpact(cmd *cobra.Command, root, format string) error {
	cctx, err := newCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cctx.Cfg

	g, err := graphbuild.Load(cfg.ProjectDir, graphbuild.Options{ManifestPath: cfg.ManifestPath})
	if err != nil {
		return err
	}

	set, err := impact.Analyze(g, root)
	if err != nil {
		return err
	}

	r := cctx.Renderer
	if format == "json" {
		return r.JSON(toImpactJSON(set))
	}
	return renderImpactText(r, set)
}

func toImpactJSON(set *impact.Set) impactJSON {
	counts := make(map[string]int, len(set.CountsBySeverity))
	for sev, n := range set.CountsBySeverity {
		counts[string(sev)] = n
	}
	classifications := make(map[string]string, len(set.Classifications))
	for id, sev := range set.Classifications {
		classifications[id] = string(sev)
	}
	return impactJSON{
		SchemaVersion:    1,
		Root:             set.Root,
		Reached:          set.Reached,
		CountsBySeverity: counts,
		Classifications:  classifications,
		OverallSeverity:  string(set.OverallSeverity),
		Distance:         set.Distance,
	}
}

func renderImpactText(r *output.Renderer, set *impact.Set) error {
	r.Header(1, fmt.Sprintf("Impact of %s", set.Root))
	if len(set.Reached) == 0 {
		r.Muted("No downstream models are affected.")
		return nil
	}

	styles := r.Styles()
	if set.OverallSeverity != "" {
		r.Printf("  overall: %s\n", styles.Bold.Render(string(set.OverallSeverity)))
	}
	severities := make([]string, 0, len(set.CountsBySeverity))
	for sev := range set.CountsBySeverity {
		severities = append(severities, string(sev))
	}
	sort.Strings(severities)
	for _, sev := range severities {
		r.Printf("  %s: %d\n", styles.Bold.Render(sev), set.CountsBySeverity[impact.Severity(sev)])
	}

	r.Println("")
	r.Header(2, "Affected models")

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.AppendHeader(table.Row{"Model", "Severity"})
	for _, id := range set.Reached {
		t.AppendRow(table.Row{id, set.Classifications[id]})
	}
	t.Render()
	return nil
}
