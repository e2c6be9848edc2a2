// Package tui implements the interactive terminal controller: a mode-stack
// event loop over a laid-out graph, grounded on the retrieval pack's
// bubbletea diff-review model (services/code_buddy/tui/diff_model.go) —
// same Init/Update/View shape, same lipgloss style-var block, generalized
// from a single linear file-review flow to a stack of modal overlays over
// a spatial canvas.
package tui

// Mode is one entry in the TUI's mode stack. Every mode but Normal is
// pushed on top of whatever was active and popped back on Esc/completion.
type Mode int

// The modes named by the spec's TUI controller.
const (
	ModeNormal Mode = iota
	ModeSearch
	ModeRunMenu
	ModeContextMenu
	ModeRunOutput
	ModeHelp
)

// ModeStack is a LIFO stack of active modes with Normal always at the
// bottom — Pop on an empty-beyond-Normal stack is a no-op.
type ModeStack struct {
	stack []Mode
}

// NewModeStack returns a stack with Normal as its sole entry.
func NewModeStack() *ModeStack {
	return &ModeStack{stack: []Mode{ModeNormal}}
}

// Current returns the active (topmost) mode.
func (s *ModeStack) Current() Mode {
	return s.stack[len(s.stack)-1]
}

// Push activates m on top of the current mode.
func (s *ModeStack) Push(m Mode) {
	s.stack = append(s.stack, m)
}

// Pop deactivates the current mode and restores whatever was beneath it.
// Popping past Normal is a no-op: Normal can never be removed.
func (s *ModeStack) Pop() {
	if len(s.stack) > 1 {
		s.stack = s.stack[:len(s.stack)-1]
	}
}

// Depth returns how many modes are stacked, including Normal.
func (s *ModeStack) Depth() int {
	return len(s.stack)
}
