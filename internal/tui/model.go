package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/render"
	"github.com/leapstack-labs/dbt-lineage/internal/runner"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// RunCompletedMsg is delivered when a dispatched C12 run finishes.
type RunCompletedMsg struct {
	Result *runner.Result
	Err    error
}

// RunOutputMsg carries one freshly streamed line of subprocess output.
type RunOutputMsg struct {
	Line string
}

// RunResultsChangedMsg is delivered whenever target/run_results.json is
// rewritten on disk, so the graph's run-status coloring stays current even
// when a run was kicked off outside this TUI (a concurrent `dbt run` in
// another terminal).
type RunResultsChangedMsg struct {
	Doc *runner.RunResultsDocument
}

// watchClosedMsg signals the run_results.json watcher's channel closed
// (context cancellation) so Update stops re-arming the listen loop.
type watchClosedMsg struct{}

// Model is the bubbletea program driving the graph canvas: mode stack,
// viewport camera, spatial selection, incremental search, path highlight,
// and the run menu, over one project's laid-out graph.
type Model struct {
	projectDir string

	graph *dag.Graph
	sub   *selector.SubGraph
	lay   *layout.Layout

	modes    *ModeStack
	viewport Viewport
	selected string

	searchQuery   string
	searchResults []string
	searchIndex   int
	prevSelection string

	highlight     PathHighlight
	pathHighlight bool

	runMenuIndex int
	runBuf       *runner.RingBuffer
	runCancel    context.CancelFunc

	outputCh     <-chan string
	outputCancel func()

	watchCh     <-chan *runner.RunResultsDocument
	watchCancel context.CancelFunc

	dragging             bool
	dragLastX, dragLastY int

	width, height int
}

// New builds a Model focused on focusID within sub, laid out by lay. It
// subscribes to the run output ring buffer and to target/run_results.json
// for the program's lifetime, so both run-output tailing and run-status
// coloring start listening immediately rather than only once a run is
// dispatched from this TUI.
func New(projectDir string, graph *dag.Graph, sub *selector.SubGraph, lay *layout.Layout, focusID string) Model {
	runBuf := runner.NewRingBuffer(2000)
	outputCh, outputCancel := runBuf.Subscribe()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	watchCh, err := runner.WatchRunResults(watchCtx, projectDir)
	if err != nil {
		// No target/ directory yet: nothing to tail until a run produces
		// one. watchRunResultsCmd treats a nil channel as a no-op.
		watchCh = nil
	}

	return Model{
		projectDir:   projectDir,
		graph:        graph,
		sub:          sub,
		lay:          lay,
		modes:        NewModeStack(),
		viewport:     NewViewport(0, 0),
		selected:     focusID,
		runBuf:       runBuf,
		outputCh:     outputCh,
		outputCancel: outputCancel,
		watchCh:      watchCh,
		watchCancel:  watchCancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenOutputCmd, m.watchRunResultsCmd)
}

// listenOutputCmd waits for the next line runner.Run pushes onto runBuf
// and delivers it as a RunOutputMsg; Update re-arms this after every
// delivery, the bubbletea "wait on channel, re-arm" pattern for tailing a
// long-lived channel.
func (m Model) listenOutputCmd() tea.Msg {
	if m.outputCh == nil {
		return nil
	}
	line, ok := <-m.outputCh
	if !ok {
		return nil
	}
	return RunOutputMsg{Line: line}
}

// watchRunResultsCmd waits for the next target/run_results.json change and
// delivers it as a RunResultsChangedMsg; Update re-arms the listen after
// each delivery so the graph's status coloring tracks the file for the
// lifetime of the program, matching the web UI's handlers.go subscription
// to the same runner.WatchRunResults channel.
func (m Model) watchRunResultsCmd() tea.Msg {
	if m.watchCh == nil {
		return nil
	}
	doc, ok := <-m.watchCh
	if !ok {
		return watchClosedMsg{}
	}
	return RunResultsChangedMsg{Doc: doc}
}

// applyRunResults pushes every entry in doc back onto the graph via
// dag.Graph.SetRunStatus, the same refresh the web UI's graph handlers do
// on its runner.WatchRunResults channel
// (internal/ui/features/graph/handlers.go).
func (m Model) applyRunResults(doc *runner.RunResultsDocument) {
	if doc == nil {
		return
	}
	for _, entry := range doc.Results {
		m.graph.SetRunStatus(entry.UniqueID, dag.RunStatus(entry.Status))
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport = ResetToFit(m.lay.Bounds.MaxX-m.lay.Bounds.MinX, m.lay.Bounds.MaxY-m.lay.Bounds.MinY,
			float64(m.width), float64(m.height), m.focusPoint().X, m.focusPoint().Y)
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RunOutputMsg:
		// The line is already in runBuf: runner.Run pushes it directly from
		// its scanning goroutine. Receiving it here only triggers the
		// re-render and re-arms the listen for the next one.
		return m, m.listenOutputCmd

	case RunCompletedMsg:
		m.modes.Pop()
		m.modes.Push(ModeRunOutput)
		if msg.Result != nil {
			m.applyRunResults(msg.Result.RunResults)
		}
		return m, nil

	case RunResultsChangedMsg:
		m.applyRunResults(msg.Doc)
		return m, m.watchRunResultsCmd

	case watchClosedMsg:
		return m, nil
	}

	return m, nil
}

func (m Model) focusPoint() layout.Point {
	for _, n := range m.lay.Nodes {
		if n.ID == m.selected {
			return n.Point
		}
	}
	return layout.Point{}
}

func (m Model) positions() map[string]layout.Point {
	out := make(map[string]layout.Point, len(m.lay.Nodes))
	for _, n := range m.lay.Nodes {
		out[n.ID] = n.Point
	}
	return out
}

func (m Model) nodeIDs() []string {
	ids := make([]string, 0, len(m.sub.Nodes()))
	for _, n := range m.sub.Nodes() {
		ids = append(ids, n.ID)
	}
	return ids
}

// canvasRowOffset is how many screen rows sit above the canvas in View:
// the header line plus its trailing newline.
const canvasRowOffset = 1

// handleMouse implements the four mouse interactions, grounded on the
// original's handle_mouse_event (tui/event.rs): left-click selects the
// node under the cursor or, over empty canvas, starts a pan drag;
// left-drag continues that pan; right-click selects the node under the
// cursor and opens the context menu; wheel up/down zoom anchored at the
// cursor.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.viewport = m.viewport.ZoomAt(float64(msg.X), float64(msg.Y), zoomFactor)

	case msg.Button == tea.MouseButtonWheelDown:
		m.viewport = m.viewport.ZoomAt(float64(msg.X), float64(msg.Y), 1/zoomFactor)

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if id, ok := m.nodeAtScreen(msg.X, msg.Y); ok {
			m.selected = id
		} else {
			m.dragging = true
			m.dragLastX, m.dragLastY = msg.X, msg.Y
		}

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionMotion:
		if m.dragging {
			dx, dy := msg.X-m.dragLastX, msg.Y-m.dragLastY
			m.viewport.CX -= float64(dx) / m.viewport.Zoom
			m.viewport.CY -= float64(dy) / m.viewport.Zoom
			m.dragLastX, m.dragLastY = msg.X, msg.Y
		}

	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease:
		m.dragging = false

	case msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress:
		if id, ok := m.nodeAtScreen(msg.X, msg.Y); ok {
			m.selected = id
			m.runMenuIndex = 0
			m.modes.Push(ModeContextMenu)
		}
	}
	return m
}

// nodeAtScreen reports the node id whose rendered box (per render/ascii.go's
// toCell/drawBox grid) contains screen column col, row row. The cell pitch
// (cellWidth/cellHeight) and box geometry are mirrored here because they
// are private to package render, which owns the only other place a mouse
// coordinate needs to become a node id.
func (m Model) nodeAtScreen(col, row int) (string, bool) {
	const (
		cellWidth  = 14
		cellHeight = 3
	)
	row -= canvasRowOffset
	if row < 0 {
		return "", false
	}
	for _, n := range m.lay.Nodes {
		node, ok := m.graph.Node(n.ID)
		if !ok {
			continue
		}
		label := nodeSearchLabel(node)
		width := cellWidth
		if len(label)+2 > width {
			width = len(label) + 2
		}
		top := int(n.Point.Y) / cellHeight
		left := int(n.Point.X) / cellWidth
		if row >= top && row <= top+2 && col >= left && col <= left+width-1 {
			return n.ID, true
		}
	}
	return "", false
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.modes.Current() {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeRunMenu:
		return m.handleRunMenuKey(msg)
	case ModeRunOutput:
		if msg.String() == "esc" || msg.String() == "q" {
			if m.runCancel != nil {
				m.runCancel()
			}
			m.modes.Pop()
		}
		return m, nil
	case ModeContextMenu:
		// Same run choices as the `x` run menu, offered at the point of a
		// right-click instead, per the original's handle_context_menu_mode
		// (tui/event.rs) mirroring handle_run_menu_mode.
		return m.handleRunMenuKey(msg)
	case ModeHelp:
		if msg.String() == "esc" || msg.String() == "q" {
			m.modes.Pop()
		}
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		m.selectDirection(DirLeft)
	case "l", "right":
		m.selectDirection(DirRight)
	case "k", "up":
		m.selectDirection(DirUp)
	case "j", "down":
		m.selectDirection(DirDown)
	case "H":
		m.viewport = m.viewport.PanLeft()
	case "L":
		m.viewport = m.viewport.PanRight()
	case "K":
		m.viewport = m.viewport.PanUp()
	case "J":
		m.viewport = m.viewport.PanDown()
	case "+":
		m.viewport = m.viewport.ZoomIn()
	case "-":
		m.viewport = m.viewport.ZoomOut()
	case "r":
		m.viewport = ResetToFit(m.lay.Bounds.MaxX-m.lay.Bounds.MinX, m.lay.Bounds.MaxY-m.lay.Bounds.MinY,
			float64(m.width), float64(m.height), m.focusPoint().X, m.focusPoint().Y)
	case "tab":
		m.selected = CycleNext(m.nodeIDs(), m.selected)
	case "shift+tab":
		m.selected = CyclePrev(m.nodeIDs(), m.selected)
	case "p":
		m.pathHighlight = !m.pathHighlight
		if m.pathHighlight {
			m.highlight = ComputeHighlight(m.graph, m.selected)
		}
	case "/":
		m.prevSelection = m.selected
		m.searchQuery = ""
		m.searchResults = nil
		m.searchIndex = 0
		m.modes.Push(ModeSearch)
	case "x":
		m.runMenuIndex = 0
		m.modes.Push(ModeRunMenu)
	case "?":
		m.modes.Push(ModeHelp)
	case "q", "ctrl+c":
		m.teardown()
		return m, tea.Quit
	}
	return m, nil
}

// teardown cancels the background subscriptions started in New, so the
// run_results.json watcher goroutine and the ring-buffer subscription
// don't outlive the bubbletea program.
func (m Model) teardown() {
	if m.watchCancel != nil {
		m.watchCancel()
	}
	if m.outputCancel != nil {
		m.outputCancel()
	}
}

func (m *Model) selectDirection(dir Direction) {
	if next, ok := NearestNode(m.positions(), m.selected, dir, m.nodeIDs()); ok {
		m.selected = next
	}
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.selected = m.prevSelection
		m.modes.Pop()
	case "enter":
		m.modes.Pop()
	case "tab":
		if len(m.searchResults) > 0 {
			m.searchIndex = (m.searchIndex + 1) % len(m.searchResults)
			m.selected = m.searchResults[m.searchIndex]
		}
	case "backspace":
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
		}
		m.refreshSearch()
	default:
		if len(msg.String()) == 1 {
			m.searchQuery += msg.String()
			m.refreshSearch()
		}
	}
	return m, nil
}

func (m *Model) refreshSearch() {
	m.searchResults = SearchNodes(m.sub.Nodes(), m.searchQuery)
	m.searchIndex = 0
	if len(m.searchResults) > 0 {
		m.selected = m.searchResults[0]
	}
}

func (m Model) handleRunMenuKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modes.Pop()
	case "j", "down":
		m.runMenuIndex = (m.runMenuIndex + 1) % len(RunMenuActions)
	case "k", "up":
		m.runMenuIndex = (m.runMenuIndex - 1 + len(RunMenuActions)) % len(RunMenuActions)
	case "enter":
		return m.dispatchRun()
	}
	return m, nil
}

func (m Model) dispatchRun() (Model, tea.Cmd) {
	action := RunMenuActions[m.runMenuIndex]
	subcommand := "run"
	if action == RunTest {
		subcommand = "test"
	}
	scope := action.Scope(m.selected)

	ctx, cancel := context.WithCancel(context.Background())
	m.runCancel = cancel
	m.modes.Pop()
	m.modes.Push(ModeRunOutput)

	return m, func() tea.Msg {
		result, err := runner.Run(ctx, m.projectDir, subcommand, scope, m.runBuf)
		return RunCompletedMsg{Result: result, Err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.modes.Current() {
	case ModeHelp:
		b.WriteString(m.renderHelp())
	case ModeSearch:
		b.WriteString(m.renderCanvas())
		b.WriteString("\n")
		b.WriteString(m.renderSearchBar())
	case ModeRunMenu, ModeContextMenu:
		b.WriteString(m.renderRunMenu())
	case ModeRunOutput:
		b.WriteString(m.renderRunOutput())
	default:
		b.WriteString(m.renderCanvas())
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderCanvas() string {
	var buf strings.Builder
	width, height := m.width, m.height-6
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 24
	}
	_ = render.Render(&buf, render.FormatASCII, m.sub, m.lay, render.Options{ViewportWidth: width, ViewportHeight: height})
	return buf.String()
}

func (m Model) renderHeader() string {
	n, _ := m.graph.Node(m.selected)
	name := m.selected
	kind := ""
	if n != nil {
		name = nodeSearchLabel(n)
		kind = string(n.Kind)
	}
	return headerStyle.Render(fmt.Sprintf(" dbt-lineage — %s [%s] ", name, kind))
}

func (m Model) renderFooter() string {
	status := ""
	if m.pathHighlight {
		status = " path-highlight on"
	}
	return footerStyle.Render(fmt.Sprintf(" h/j/k/l select · H/J/K/L pan · +/- zoom · click/drag/right-click · / search · p path · x run · ? help%s ", status))
}

func (m Model) renderHelp() string {
	lines := []string{
		"Normal mode:",
		"  h/j/k/l, arrows   select nearest node in direction",
		"  H/J/K/L           pan viewport",
		"  +/-               zoom in/out",
		"  r                 reset viewport to fit",
		"  Tab/Shift+Tab     cycle nodes",
		"  p                 toggle ancestor/descendant highlight",
		"  /                 incremental search",
		"  x                 run menu",
		"  left-click        select node under cursor, or drag to pan",
		"  right-click       select node and open context menu",
		"  wheel             zoom at cursor",
		"  q                 quit",
	}
	return helpStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderSearchBar() string {
	return searchStyle.Render(fmt.Sprintf("/%s  (%d matches)", m.searchQuery, len(m.searchResults)))
}

func (m Model) renderRunMenu() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Run menu for %s:\n", m.selected))
	for i, action := range RunMenuActions {
		cursor := "  "
		if i == m.runMenuIndex {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, action.Label()))
	}
	return runMenuStyle.Render(b.String())
}

func (m Model) renderRunOutput() string {
	lines := m.runBuf.Lines()
	start := 0
	if len(lines) > 30 {
		start = len(lines) - 30
	}
	return runOutputStyle.Render(strings.Join(lines[start:], "\n"))
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Padding(1, 2)

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	runMenuStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	runOutputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))
)
