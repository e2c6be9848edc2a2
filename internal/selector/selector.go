// Package selector produces filtered SubGraph views over a dag.Graph:
// focus+depth neighborhoods, comma-separated selector expressions, and
// per-kind include flags, the way the teacher's dag package's Subgraph
// method filters a node-id set but generalized to depth caps and selector
// atoms.
package selector

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/dbt-lineage/internal/dag"
)

// Unbounded represents an infinite depth cap.
const Unbounded = -1

// SyntaxError reports an unparseable selector expression.
type SyntaxError struct {
	Expr string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid selector %q: %s", e.Expr, e.Msg)
}

// KindFilter enables inclusion of kinds that are excluded by default when
// a selection is narrowed. Model, Source, and Phantom are always included.
type KindFilter struct {
	IncludeTests     bool
	IncludeSeeds     bool
	IncludeSnapshots bool
	IncludeExposures bool
}

// SubGraph is a read-only view over a subset of a Graph's nodes and edges.
// It shares node identity with its parent: Node lookups return the same
// *dag.Node pointers the parent Graph holds.
type SubGraph struct {
	parent *dag.Graph
	ids    map[string]bool
	edges  []dag.Edge
	Focus  string
}

// Graph returns the full parent Graph this SubGraph was filtered from.
func (s *SubGraph) Graph() *dag.Graph { return s.parent }

// Contains reports whether id is retained in this view.
func (s *SubGraph) Contains(id string) bool { return s.ids[id] }

// Nodes returns the retained nodes, sorted by id.
func (s *SubGraph) Nodes() []*dag.Node {
	out := make([]*dag.Node, 0, len(s.ids))
	for id := range s.ids {
		if n, ok := s.parent.Node(id); ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Edges returns the retained edges — those whose endpoints are both
// retained.
func (s *SubGraph) Edges() []dag.Edge { return s.edges }

func (s *SubGraph) finalize() {
	for _, e := range s.parent.Edges() {
		if s.ids[e.From] && s.ids[e.To] {
			s.edges = append(s.edges, e)
		}
	}
}

// FocusDepth retains nodes reachable from focusID by at most upstream hops
// upstream or downstream hops downstream (Unbounded for no cap).
func FocusDepth(g *dag.Graph, focusID string, upstream, downstream int) (*SubGraph, error) {
	if _, ok := g.Node(focusID); !ok {
		return nil, fmt.Errorf("focus node %q not found", focusID)
	}

	ids := map[string]bool{focusID: true}
	bfs(g, focusID, upstream, ids, g.Upstream)
	bfs(g, focusID, downstream, ids, g.Downstream)

	sub := &SubGraph{parent: g, ids: ids, Focus: focusID}
	sub.finalize()
	return sub, nil
}

func bfs(g *dag.Graph, start string, maxDepth int, visited map[string]bool, neighbors func(string) []string) {
	if maxDepth == 0 {
		return
	}
	type frame struct {
		id    string
		depth int
	}
	queue := []frame{{id: start, depth: 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth != Unbounded && cur.depth >= maxDepth {
			continue
		}
		for _, next := range neighbors(cur.id) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, frame{id: next, depth: cur.depth + 1})
			}
		}
	}
}

// Atom is one parsed selector clause.
type Atom struct {
	kind string // "tag", "path", "name"
	val  string
}

// ParseExpr parses a comma-separated selector expression into its atoms.
func ParseExpr(expr string) ([]Atom, error) {
	parts := strings.Split(expr, ",")
	atoms := make([]Atom, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, &SyntaxError{Expr: expr, Msg: "empty selector atom"}
		}
		switch {
		case strings.HasPrefix(p, "tag:"):
			val := strings.TrimPrefix(p, "tag:")
			if val == "" {
				return nil, &SyntaxError{Expr: expr, Msg: "tag: requires a value"}
			}
			atoms = append(atoms, Atom{kind: "tag", val: val})
		case strings.HasPrefix(p, "path:"):
			val := strings.TrimPrefix(p, "path:")
			if val == "" {
				return nil, &SyntaxError{Expr: expr, Msg: "path: requires a value"}
			}
			atoms = append(atoms, Atom{kind: "path", val: val})
		default:
			atoms = append(atoms, Atom{kind: "name", val: p})
		}
	}
	return atoms, nil
}

// All returns a SubGraph retaining every node and edge of g — the default
// view when the caller supplies neither a focus node nor a selector
// expression.
func All(g *dag.Graph) *SubGraph {
	ids := make(map[string]bool, len(g.Nodes()))
	for _, n := range g.Nodes() {
		ids[n.ID] = true
	}
	sub := &SubGraph{parent: g, ids: ids}
	sub.finalize()
	return sub
}

// Select applies a parsed selector expression to a Graph: a node is kept
// if it matches any atom (OR semantics).
func Select(g *dag.Graph, expr string) (*SubGraph, error) {
	atoms, err := ParseExpr(expr)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	for _, n := range g.Nodes() {
		if matchesAny(n, atoms) {
			ids[n.ID] = true
		}
	}

	sub := &SubGraph{parent: g, ids: ids}
	sub.finalize()
	return sub, nil
}

func matchesAny(n *dag.Node, atoms []Atom) bool {
	for _, a := range atoms {
		switch a.kind {
		case "tag":
			if n.HasTag(a.val) {
				return true
			}
		case "path":
			if matchesPathSegment(n.Path, a.val) {
				return true
			}
		case "name":
			if n.Name == a.val {
				return true
			}
		}
	}
	return false
}

func matchesPathSegment(path, segment string) bool {
	if path == "" {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// ApplyKindFilter removes nodes of excluded kinds (and their incident
// edges) from a SubGraph. Model, Source, and Phantom nodes are never
// removed by a kind filter.
func ApplyKindFilter(s *SubGraph, filter KindFilter) *SubGraph {
	kept := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		n, ok := s.parent.Node(id)
		if !ok {
			continue
		}
		if isFilterable(n.Kind) && !kindEnabled(n.Kind, filter) {
			continue
		}
		kept[id] = true
	}

	out := &SubGraph{parent: s.parent, ids: kept, Focus: s.Focus}
	out.finalize()
	return out
}

func isFilterable(k dag.Kind) bool {
	switch k {
	case dag.KindTest, dag.KindSeed, dag.KindSnapshot, dag.KindExposure:
		return true
	default:
		return false
	}
}

func kindEnabled(k dag.Kind, filter KindFilter) bool {
	switch k {
	case dag.KindTest:
		return filter.IncludeTests
	case dag.KindSeed:
		return filter.IncludeSeeds
	case dag.KindSnapshot:
		return filter.IncludeSnapshots
	case dag.KindExposure:
		return filter.IncludeExposures
	default:
		return true
	}
}
