package tui

import "github.com/leapstack-labs/dbt-lineage/internal/dag"

// PathHighlight is the set of ancestor and descendant ids of a selection,
// for the `p` path-highlight toggle.
type PathHighlight struct {
	Focus       string
	Ancestors   map[string]bool
	Descendants map[string]bool
}

// ComputeHighlight walks g's upstream and downstream adjacency from focus
// to completion, for the `p` path-highlight toggle.
func ComputeHighlight(g *dag.Graph, focus string) PathHighlight {
	return PathHighlight{
		Focus:       focus,
		Ancestors:   reachable(g, focus, g.Upstream),
		Descendants: reachable(g, focus, g.Downstream),
	}
}

func reachable(g *dag.Graph, start string, neighbors func(string) []string) map[string]bool {
	seen := map[string]bool{}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range neighbors(cur) {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}

// IsHighlighted reports whether id is part of h's ancestor or descendant
// set (the focus node itself is never "highlighted" — it's the selection).
func (h PathHighlight) IsHighlighted(id string) bool {
	return h.Ancestors[id] || h.Descendants[id]
}
