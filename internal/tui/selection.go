package tui

import (
	"sort"

	"github.com/leapstack-labs/dbt-lineage/internal/layout"
)

// Direction is one of the four spatial movement directions h/j/k/l and the
// arrow keys map to.
type Direction int

// Movement directions. Down/Up follow screen convention: Down increases Y.
const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// sameQuadrantBias penalizes candidates whose off-axis offset is large
// relative to their on-axis offset, biasing nearest-node selection toward
// nodes roughly in the same quadrant as the movement direction rather than
// the literal nearest-by-Manhattan-distance node, which could sit almost
// perpendicular to the requested direction.
const sameQuadrantBias = 2.0

// NearestNode finds the node in dir from current's position, among
// candidates, using Manhattan distance with a same-quadrant bias. Returns
// false if no candidate lies in dir from current.
func NearestNode(positions map[string]layout.Point, current string, dir Direction, candidates []string) (string, bool) {
	from, ok := positions[current]
	if !ok {
		return "", false
	}

	best := ""
	bestScore := 0.0
	found := false

	for _, id := range candidates {
		if id == current {
			continue
		}
		pos, ok := positions[id]
		if !ok {
			continue
		}
		dx := pos.X - from.X
		dy := pos.Y - from.Y

		var onAxis, offAxis float64
		switch dir {
		case DirLeft:
			if dx >= 0 {
				continue
			}
			onAxis, offAxis = -dx, abs(dy)
		case DirRight:
			if dx <= 0 {
				continue
			}
			onAxis, offAxis = dx, abs(dy)
		case DirUp:
			if dy >= 0 {
				continue
			}
			onAxis, offAxis = -dy, abs(dx)
		case DirDown:
			if dy <= 0 {
				continue
			}
			onAxis, offAxis = dy, abs(dx)
		}

		score := onAxis + sameQuadrantBias*offAxis
		if !found || score < bestScore || (score == bestScore && id < best) {
			best, bestScore, found = id, score, true
		}
	}

	return best, found
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// CycleNext/CyclePrev advance through ids (assumed sorted in stable id
// order) for Tab/Shift+Tab, wrapping at either end.
func CycleNext(ids []string, current string) string {
	return cycle(ids, current, 1)
}

func CyclePrev(ids []string, current string) string {
	return cycle(ids, current, -1)
}

func cycle(ids []string, current string, step int) string {
	if len(ids) == 0 {
		return current
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	idx := sort.SearchStrings(sorted, current)
	if idx >= len(sorted) || sorted[idx] != current {
		return sorted[0]
	}
	next := (idx + step + len(sorted)) % len(sorted)
	return sorted[next]
}
