package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/runner"
)

func modelFixture(t *testing.T) (Model, *dag.Graph) {
	t.Helper()
	b := dag.NewBuilder()
	b.AddNode(&dag.Node{ID: "stg_orders", Name: "stg_orders", Kind: dag.KindModel})
	b.AddNode(&dag.Node{ID: "orders", Name: "orders", Kind: dag.KindModel})
	b.AddEdge("stg_orders", "orders", dag.EdgeRef)
	g, err := b.Build()
	require.NoError(t, err)

	lay := &layout.Layout{
		Nodes: []layout.PositionedNode{
			{ID: "stg_orders", Layer: 0, Point: layout.Point{X: 0, Y: 0}},
			{ID: "orders", Layer: 1, Point: layout.Point{X: 140, Y: 120}},
		},
	}

	m := Model{
		graph:    g,
		lay:      lay,
		modes:    NewModeStack(),
		viewport: NewViewport(0, 0),
		selected: "stg_orders",
		runBuf:   runner.NewRingBuffer(10),
	}
	return m, g
}

func TestApplyRunResults_UpdatesGraphRunStatus(t *testing.T) {
	m, g := modelFixture(t)

	m.applyRunResults(&runner.RunResultsDocument{
		Results: []runner.RunResultEntry{
			{UniqueID: "stg_orders", Status: "success"},
			{UniqueID: "orders", Status: "error"},
		},
	})

	n, ok := g.Node("stg_orders")
	require.True(t, ok)
	assert.Equal(t, dag.RunStatusSuccess, n.RunStatus)

	n, ok = g.Node("orders")
	require.True(t, ok)
	assert.Equal(t, dag.RunStatusError, n.RunStatus)
}

func TestApplyRunResults_NilDocIsNoop(t *testing.T) {
	m, _ := modelFixture(t)
	m.applyRunResults(nil)
}

func TestUpdate_RunCompletedAppliesRunResults(t *testing.T) {
	m, g := modelFixture(t)
	m.modes.Push(ModeRunOutput)

	updated, _ := m.Update(RunCompletedMsg{
		Result: &runner.Result{
			RunResults: &runner.RunResultsDocument{
				Results: []runner.RunResultEntry{{UniqueID: "stg_orders", Status: "success"}},
			},
		},
	})

	next := updated.(Model)
	assert.Equal(t, ModeNormal, next.modes.Current())
	n, ok := g.Node("stg_orders")
	require.True(t, ok)
	assert.Equal(t, dag.RunStatusSuccess, n.RunStatus)
}

func TestNodeAtScreen_HitsNodeBox(t *testing.T) {
	m, _ := modelFixture(t)

	id, ok := m.nodeAtScreen(2, canvasRowOffset+1)
	require.True(t, ok)
	assert.Equal(t, "stg_orders", id)
}

func TestNodeAtScreen_MissesEmptyCanvas(t *testing.T) {
	m, _ := modelFixture(t)

	_, ok := m.nodeAtScreen(500, 500)
	assert.False(t, ok)
}

func TestHandleMouse_LeftClickOnNodeSelects(t *testing.T) {
	m, _ := modelFixture(t)
	m.selected = "orders"

	m = m.handleMouse(tea.MouseMsg{X: 2, Y: canvasRowOffset + 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, "stg_orders", m.selected)
	assert.False(t, m.dragging)
}

func TestHandleMouse_LeftClickOnEmptyCanvasStartsDrag(t *testing.T) {
	m, _ := modelFixture(t)

	m = m.handleMouse(tea.MouseMsg{X: 500, Y: 500, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.True(t, m.dragging)
	assert.Equal(t, 500, m.dragLastX)
	assert.Equal(t, 500, m.dragLastY)
}

func TestHandleMouse_LeftDragPansViewport(t *testing.T) {
	m, _ := modelFixture(t)
	m.dragging = true
	m.dragLastX, m.dragLastY = 100, 100
	startCX, startCY := m.viewport.CX, m.viewport.CY

	m = m.handleMouse(tea.MouseMsg{X: 110, Y: 90, Button: tea.MouseButtonLeft, Action: tea.MouseActionMotion})

	assert.Less(t, m.viewport.CX, startCX)
	assert.Greater(t, m.viewport.CY, startCY)
	assert.Equal(t, 110, m.dragLastX)
	assert.Equal(t, 90, m.dragLastY)
}

func TestHandleMouse_LeftReleaseStopsDrag(t *testing.T) {
	m, _ := modelFixture(t)
	m.dragging = true

	m = m.handleMouse(tea.MouseMsg{X: 0, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	assert.False(t, m.dragging)
}

func TestHandleMouse_RightClickOnNodeOpensContextMenu(t *testing.T) {
	m, _ := modelFixture(t)
	m.selected = "orders"

	m = m.handleMouse(tea.MouseMsg{X: 2, Y: canvasRowOffset + 1, Button: tea.MouseButtonRight, Action: tea.MouseActionPress})
	assert.Equal(t, "stg_orders", m.selected)
	assert.Equal(t, ModeContextMenu, m.modes.Current())
}

func TestHandleMouse_RightClickOnEmptyCanvasIsNoop(t *testing.T) {
	m, _ := modelFixture(t)

	m = m.handleMouse(tea.MouseMsg{X: 500, Y: 500, Button: tea.MouseButtonRight, Action: tea.MouseActionPress})
	assert.Equal(t, ModeNormal, m.modes.Current())
}

func TestHandleKey_ContextMenuEnterDispatchesRun(t *testing.T) {
	m, _ := modelFixture(t)
	m.modes.Push(ModeContextMenu)

	updated, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ModeRunOutput, updated.modes.Current())
	assert.NotNil(t, cmd)
}
