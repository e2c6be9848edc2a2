// Package output renders CLI results in text, Markdown, or JSON, adapting
// to whether stdout is a terminal the way the teacher's internal/cli/output
// package drives every command in internal/cli/commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	isatty "github.com/mattn/go-isatty"
)

// Mode selects how a Renderer formats its output.
type Mode string

const (
	// ModeAuto resolves to ModeText when stdout is a terminal and
	// ModeMarkdown otherwise (piped, redirected, or running under an agent).
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Renderer writes command output to an out/err writer pair in a chosen Mode.
type Renderer struct {
	out  io.Writer
	err  io.Writer
	mode Mode
}

// NewRenderer returns a Renderer writing to out/err in mode.
func NewRenderer(out, err io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, err: err, mode: mode}
}

// IsTTY reports whether the Renderer's out writer is a terminal.
func (r *Renderer) IsTTY() bool {
	f, ok := r.out.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// EffectiveMode resolves ModeAuto against IsTTY; ModeText, ModeMarkdown, and
// ModeJSON pass through unchanged.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.IsTTY() {
		return ModeText
	}
	return ModeMarkdown
}

// Writer returns the underlying output writer, for callers that need to
// stream raw bytes (e.g. a renderer.Render call for -o ascii|dot|svg|...).
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes s followed by a newline.
func (r *Renderer) Println(s string) { fmt.Fprintln(r.out, s) }

// Printf writes a formatted line without a trailing newline beyond what
// format supplies.
func (r *Renderer) Printf(format string, args ...any) { fmt.Fprintf(r.out, format, args...) }

// Header prints a section heading, styled if EffectiveMode is ModeText and
// out is a TTY, or as a Markdown ATX heading otherwise.
func (r *Renderer) Header(level int, title string) {
	if r.EffectiveMode() == ModeText && r.IsTTY() {
		styles := r.Styles()
		style := styles.Header2
		if level <= 1 {
			style = styles.Header1
		}
		r.Println(style.Render(title))
		return
	}
	r.Println(FormatHeader(level, title))
}

// Success prints a positive status line.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeText && r.IsTTY() {
		r.Println(r.Styles().Success.Render(msg))
		return
	}
	r.Println(msg)
}

// Warning prints a cautionary status line.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText && r.IsTTY() {
		r.Println(r.Styles().Warning.Render(msg))
		return
	}
	r.Println("Warning: " + msg)
}

// Error prints a failure status line to the error writer.
func (r *Renderer) Error(msg string) {
	if r.EffectiveMode() == ModeText && r.IsTTY() {
		fmt.Fprintln(r.err, r.Styles().Error.Render(msg))
		return
	}
	fmt.Fprintln(r.err, "Error: "+msg)
}

// Muted prints a de-emphasized status line.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode() == ModeText && r.IsTTY() {
		r.Println(r.Styles().Muted.Render(msg))
		return
	}
	r.Println(msg)
}

// JSON writes v to the output writer as indented JSON, terminated with a
// trailing newline.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Styles is the set of lipgloss styles a text-mode Renderer applies. Colors
// follow the teacher's palette: cyan for structure, green for success,
// yellow for caution, red for failure.
type Styles struct {
	Header1       lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Muted         lipgloss.Style
	ModelPath     lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	StatusSuccess statusIcon
	StatusFailed  statusIcon
}

// statusIcon is a pre-rendered glyph; callers print it with String() rather
// than Render() since the styling is already baked in.
type statusIcon struct{ rendered string }

func (s statusIcon) String() string { return s.rendered }

// Styles returns the Renderer's style set. It is cheap to call repeatedly;
// the definitions are small and allocation is not worth caching.
func (r *Renderer) Styles() *Styles {
	success := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failed := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	return &Styles{
		Header1:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Bold:          lipgloss.NewStyle().Bold(true),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		ModelPath:     lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
		Success:       success,
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         failed,
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		StatusSuccess: statusIcon{rendered: success.Render("✓")},
		StatusFailed:  statusIcon{rendered: failed.Render("✗")},
	}
}

// FormatHeader renders title as a Markdown ATX heading of the given level.
func FormatHeader(level int, title string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	prefix := ""
	for i := 0; i < level; i++ {
		prefix += "#"
	}
	return prefix + " " + title
}

// FormatKeyValue renders a Markdown bullet of the form "- **key**: value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatCodeBlock renders body as a fenced Markdown code block in the given
// language.
func FormatCodeBlock(lang, body string) string {
	return fmt.Sprintf("```%s\n%s\n```", lang, body)
}
