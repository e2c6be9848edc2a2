package dag

import "sort"

// Builder unifies node and edge streams from the SQL/YAML extractor and the
// manifest loader into a single Graph. Nodes may be contributed by either
// source; when both contribute the same id, the manifest's fields win for
// metadata (materialization, column types) per the manifest-wins rule, while
// edges from either source are unioned.
type Builder struct {
	nodes     map[string]*Node
	nodeOrder []string
	edgeSeen  map[[2]string]bool
	edges     []Edge
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes:    make(map[string]*Node),
		edgeSeen: make(map[[2]string]bool),
	}
}

// AddNode inserts a discovered node (from SQL/YAML extraction). If a node
// with the same id already exists, discovered fields fill in only what is
// currently empty — a later AddAuthoritativeNode call always wins on
// conflicts, but two AddNode calls (e.g. a SQL file plus its YAML sidecar
// entry) merge additively.
func (b *Builder) AddNode(n *Node) {
	b.upsert(n, false)
}

// AddAuthoritativeNode inserts or overwrites a node's metadata fields with
// manifest-sourced data, per the C4 manifest-wins rule.
func (b *Builder) AddAuthoritativeNode(n *Node) {
	b.upsert(n, true)
}

func (b *Builder) upsert(n *Node, authoritative bool) {
	existing, ok := b.nodes[n.ID]
	if !ok {
		cp := *n
		b.nodes[n.ID] = &cp
		b.nodeOrder = append(b.nodeOrder, n.ID)
		return
	}

	// A phantom placeholder is always fully replaced by real data.
	if existing.Kind == KindPhantom && n.Kind != KindPhantom {
		cp := *n
		b.nodes[n.ID] = &cp
		return
	}

	if authoritative {
		if n.Materialization != "" {
			existing.Materialization = n.Materialization
		}
		if len(n.Columns) > 0 {
			existing.Columns = n.Columns
		}
		if n.Description != "" {
			existing.Description = n.Description
		}
		if n.Kind != "" {
			existing.Kind = n.Kind
		}
	} else {
		if existing.Materialization == "" {
			existing.Materialization = n.Materialization
		}
		if len(existing.Columns) == 0 {
			existing.Columns = n.Columns
		}
		if existing.Description == "" {
			existing.Description = n.Description
		}
	}
	if existing.Path == "" {
		existing.Path = n.Path
	}
	existing.Tags = mergeTags(existing.Tags, n.Tags)
}

func mergeTags(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, t := range append(append([]string{}, a...), b...) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// AddEdge records a dependency edge. Self-loops are dropped; duplicate
// (from, to) tuples are collapsed to the first kind seen.
func (b *Builder) AddEdge(from, to string, kind EdgeKind) {
	if from == to {
		return
	}
	key := [2]string{from, to}
	if b.edgeSeen[key] {
		return
	}
	b.edgeSeen[key] = true
	b.edges = append(b.edges, Edge{From: from, To: to, Kind: kind})
}

// Build synthesizes phantom nodes for any unresolved edge endpoint, detects
// cycles, and produces the final immutable Graph.
func (b *Builder) Build() (*Graph, error) {
	for _, e := range b.edges {
		b.ensurePhantom(e.From)
		b.ensurePhantom(e.To)
	}

	g := &Graph{
		nodes:      b.nodes,
		edges:      b.edges,
		downstream: make(map[string][]string, len(b.nodes)),
		upstream:   make(map[string][]string, len(b.nodes)),
	}
	for id := range b.nodes {
		g.downstream[id] = nil
		g.upstream[id] = nil
	}
	for _, e := range b.edges {
		g.downstream[e.From] = append(g.downstream[e.From], e.To)
		g.upstream[e.To] = append(g.upstream[e.To], e.From)
	}
	for id := range g.downstream {
		sort.Strings(g.downstream[id])
		sort.Strings(g.upstream[id])
	}

	if cyc := detectCycle(g); cyc != nil {
		return nil, &CyclicError{Nodes: cyc}
	}

	return g, nil
}

func (b *Builder) ensurePhantom(id string) {
	if _, ok := b.nodes[id]; ok {
		return
	}
	b.nodes[id] = &Node{ID: id, Name: id, Kind: KindPhantom}
	b.nodeOrder = append(b.nodeOrder, id)
}

// detectCycle runs an iterative-in-spirit DFS with three-color marking
// (white/grey/black) over the graph's downstream adjacency and returns the
// cycle's participants in discovery order, or nil if the graph is acyclic.
func detectCycle(g *Graph) []string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string, len(g.nodes))
	var cycle []string

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		for _, next := range g.downstream[id] {
			switch color[next] {
			case white:
				parent[next] = id
				if visit(next) {
					return true
				}
			case grey:
				// Reconstruct the cycle by walking parents back to next.
				path := []string{next}
				for cur := id; cur != next; cur = parent[cur] {
					path = append(path, cur)
				}
				path = append(path, next)
				// Reverse into discovery order.
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				cycle = path
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range ids {
		if color[id] == white {
			if visit(id) {
				return cycle
			}
		}
	}
	return nil
}
