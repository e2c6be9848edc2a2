package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/layout"
	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// cellWidth/cellHeight convert layout coordinates (pixel-ish units) into
// terminal cells — the ASCII renderer's own fixed grid pitch, independent
// of the layout.Options node_width/height the caller used.
const (
	cellWidth  = 14
	cellHeight = 3
)

// renderASCII composes Unicode box-drawing frames for each node and
// axis-aligned line segments for each edge onto a character grid clipped to
// opts.ViewportWidth x opts.ViewportHeight.
func renderASCII(w io.Writer, sub *selector.SubGraph, lay *layout.Layout, opts Options) error {
	grid := newGrid(opts.ViewportWidth, opts.ViewportHeight)

	positions := make(map[string]layout.Point, len(lay.Nodes))
	for _, n := range lay.Nodes {
		positions[n.ID] = n.Point
	}

	for _, e := range lay.Edges {
		drawEdge(grid, e)
	}
	for _, n := range sub.Nodes() {
		pos, ok := positions[n.ID]
		if !ok {
			continue
		}
		drawBox(grid, toCell(pos), nodeLabel(n))
	}

	_, err := io.WriteString(w, grid.String())
	return err
}

type cell struct {
	row, col int
}

func toCell(p layout.Point) cell {
	return cell{row: int(p.Y) / cellHeight, col: int(p.X) / cellWidth}
}

type grid struct {
	width, height int
	cells         [][]rune
}

func newGrid(width, height int) *grid {
	g := &grid{width: width, height: height}
	g.cells = make([][]rune, height)
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
		for j := range g.cells[i] {
			g.cells[i][j] = ' '
		}
	}
	return g
}

func (g *grid) set(row, col int, r rune) {
	if row < 0 || row >= g.height || col < 0 || col >= g.width {
		return
	}
	g.cells[row][col] = r
}

func (g *grid) String() string {
	var b strings.Builder
	for _, row := range g.cells {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// drawBox renders a node frame whose top-left corner sits at the node's
// grid cell, clipped by grid.set's bounds checks.
func drawBox(g *grid, at cell, label string) {
	width := cellWidth
	if len(label)+2 > width {
		width = len(label) + 2
	}
	top, bottom := at.row, at.row+2
	left, right := at.col, at.col+width-1

	g.set(top, left, '┌')
	g.set(top, right, '┐')
	g.set(bottom, left, '└')
	g.set(bottom, right, '┘')
	for c := left + 1; c < right; c++ {
		g.set(top, c, '─')
		g.set(bottom, c, '─')
	}
	for r := top + 1; r < bottom; r++ {
		g.set(r, left, '│')
		g.set(r, right, '│')
	}

	text := fmt.Sprintf(" %s ", label)
	if len(text) > width {
		text = text[:width]
	}
	for i, r := range text {
		g.set(top+1, left+1+i, r)
	}
}

// drawEdge plots a routed polyline as axis-aligned segments, marking each
// bend with a '┼' glyph.
func drawEdge(g *grid, e layout.RoutedEdge) {
	for i := 0; i+1 < len(e.Points); i++ {
		from := toCell(e.Points[i])
		to := toCell(e.Points[i+1])
		drawSegment(g, from, to)
	}
}

func drawSegment(g *grid, from, to cell) {
	if from.row == to.row {
		r, c1, c2 := from.row, from.col, to.col
		if c1 > c2 {
			c1, c2 = c2, c1
		}
		for c := c1; c <= c2; c++ {
			g.set(r, c, '─')
		}
		return
	}
	if from.col == to.col {
		c, r1, r2 := from.col, from.row, to.row
		if r1 > r2 {
			r1, r2 = r2, r1
		}
		for r := r1; r <= r2; r++ {
			g.set(r, c, '│')
		}
		return
	}

	// Bend: draw the vertical run at from.col, then the horizontal run at
	// to.row, meeting at the corner.
	c, r1, r2 := from.col, from.row, to.row
	if r1 > r2 {
		r1, r2 = r2, r1
	}
	for r := r1; r <= r2; r++ {
		g.set(r, c, '│')
	}
	r, c1, c2 := to.row, from.col, to.col
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	for col := c1; col <= c2; col++ {
		g.set(r, col, '─')
	}
	g.set(to.row, from.col, '┼')
}
