package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// Run builds a Model over sub (laid out fresh via layout.Compute) and drives
// it with a bubbletea program until the user quits.
func Run(ctx context.Context, projectDir string, graph *dag.Graph, sub *selector.SubGraph, focusID string) error {
	lay := layout.Compute(sub, layout.Options{}.WithDefaults())
	m := New(projectDir, graph, sub, lay, focusID)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
