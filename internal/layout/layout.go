// Package layout computes a Sugiyama-style layered placement over a
// selector.SubGraph: longest-path layering, barycenter-heuristic ordering,
// coordinate assignment, and orthogonal edge routing through dummy
// waypoints. There is no direct teacher analog for this — leapsql has no
// graph-drawing code — so this is grounded on the general shape of the
// algorithm as described by spec.md §4.9, implemented in the teacher's
// idiom of small, independently testable phase functions over plain
// structs (mirroring how internal/dag.go separates construction from
// traversal).
package layout

import (
	"sort"

	"github.com/leapstack-labs/dbt-lineage/internal/selector"
)

// Options configures coordinate assignment. Zero values fall back to
// sensible defaults via WithDefaults.
type Options struct {
	NodeWidth  float64
	NodeHeight float64
	XSpacing   float64
	YSpacing   float64
	// Sweeps is the number of barycenter ordering passes. Defaults to 24.
	Sweeps int
}

// WithDefaults fills unset fields with the values spec.md's layout engine
// names as defaults.
func (o Options) WithDefaults() Options {
	if o.NodeWidth == 0 {
		o.NodeWidth = 120
	}
	if o.NodeHeight == 0 {
		o.NodeHeight = 40
	}
	if o.XSpacing == 0 {
		o.XSpacing = 40
	}
	if o.YSpacing == 0 {
		o.YSpacing = 80
	}
	if o.Sweeps == 0 {
		o.Sweeps = 24
	}
	return o
}

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// PositionedNode is a node placed at a specific coordinate.
type PositionedNode struct {
	ID    string
	Layer int
	Point Point
}

// RoutedEdge is an edge drawn as an axis-aligned polyline, broken at
// intermediate layers by dummy waypoints.
type RoutedEdge struct {
	From   string
	To     string
	Points []Point
}

// BoundingBox is the smallest rectangle containing every placed node.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Layout is the complete positioned output of the four layout phases.
type Layout struct {
	Nodes  []PositionedNode
	Edges  []RoutedEdge
	Bounds BoundingBox
}

// Compute runs all four Sugiyama phases over sub and returns the
// positioned result.
func Compute(sub *selector.SubGraph, opts Options) *Layout {
	opts = opts.WithDefaults()

	layers := assignLayers(sub)
	order := orderWithinLayers(sub, layers, opts.Sweeps)
	positions := assignCoordinates(order, layers, opts)
	edges := routeEdges(sub, positions, layers, opts)

	nodes := make([]PositionedNode, 0, len(positions))
	for id, p := range positions {
		nodes = append(nodes, PositionedNode{ID: id, Layer: layers[id], Point: p})
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	return &Layout{
		Nodes:  nodes,
		Edges:  edges,
		Bounds: boundingBox(nodes, opts),
	}
}

// assignLayers implements Phase 1: longest-path layering. Leaves (nodes
// with no upstream within the subgraph) sit at layer 0; every other node's
// layer is one more than the maximum layer of its upstream neighbors.
func assignLayers(sub *selector.SubGraph) map[string]int {
	layers := make(map[string]int)
	nodes := sub.Nodes()

	upstream := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, u := range sub.Graph().Upstream(n.ID) {
			if sub.Contains(u) {
				upstream[n.ID] = append(upstream[n.ID], u)
			}
		}
	}

	var visit func(id string) int
	visiting := make(map[string]bool)
	visit = func(id string) int {
		if l, ok := layers[id]; ok {
			return l
		}
		if visiting[id] {
			// A cycle should never reach here — dag.Builder refuses to
			// produce cyclic graphs — but guard against infinite
			// recursion defensively.
			return 0
		}
		visiting[id] = true
		defer delete(visiting, id)

		max := -1
		for _, u := range upstream[id] {
			if l := visit(u); l > max {
				max = l
			}
		}
		layers[id] = max + 1
		return layers[id]
	}

	for _, n := range nodes {
		visit(n.ID)
	}
	return layers
}

// orderWithinLayers implements Phase 2: iterative barycenter ordering.
// Returns, for each layer, the node ids in left-to-right order.
func orderWithinLayers(sub *selector.SubGraph, layers map[string]int, sweeps int) [][]string {
	byLayer := groupByLayer(layers)
	maxLayer := len(byLayer) - 1

	positionIn := make(map[string]int)
	for _, ids := range byLayer {
		for i, id := range ids {
			positionIn[id] = i
		}
	}

	neighbors := func(id string) []string {
		var out []string
		for _, n := range sub.Graph().Upstream(id) {
			if sub.Contains(n) {
				out = append(out, n)
			}
		}
		for _, n := range sub.Graph().Downstream(id) {
			if sub.Contains(n) {
				out = append(out, n)
			}
		}
		return out
	}

	for sweep := 0; sweep < sweeps; sweep++ {
		changed := false
		down := sweep%2 == 0
		for layerIdx := 0; layerIdx <= maxLayer; layerIdx++ {
			l := layerIdx
			if down {
				l = maxLayer - layerIdx
			}
			ids := byLayer[l]
			type scored struct {
				id  string
				bc  float64
				has bool
			}
			scoredIDs := make([]scored, len(ids))
			for i, id := range ids {
				sum, count := 0.0, 0
				for _, nb := range neighbors(id) {
					if layers[nb] != l {
						sum += float64(positionIn[nb])
						count++
					}
				}
				if count == 0 {
					scoredIDs[i] = scored{id: id, bc: float64(positionIn[id]), has: false}
				} else {
					scoredIDs[i] = scored{id: id, bc: sum / float64(count), has: true}
				}
			}
			sort.SliceStable(scoredIDs, func(i, j int) bool {
				if scoredIDs[i].bc != scoredIDs[j].bc {
					return scoredIDs[i].bc < scoredIDs[j].bc
				}
				return scoredIDs[i].id < scoredIDs[j].id
			})

			newOrder := make([]string, len(scoredIDs))
			for i, s := range scoredIDs {
				newOrder[i] = s.id
				if positionIn[s.id] != i {
					changed = true
				}
				positionIn[s.id] = i
			}
			byLayer[l] = newOrder
		}
		if !changed {
			break
		}
	}

	out := make([][]string, maxLayer+1)
	for l, ids := range byLayer {
		out[l] = ids
	}
	return out
}

func groupByLayer(layers map[string]int) map[int][]string {
	byLayer := make(map[int][]string)
	for id, l := range layers {
		byLayer[l] = append(byLayer[l], id)
	}
	for l := range byLayer {
		sort.Strings(byLayer[l])
	}
	return byLayer
}

// assignCoordinates implements Phase 3: each layer's nodes are centered
// horizontally and spaced by x_spacing; layer l sits at y = l * y_spacing.
func assignCoordinates(order [][]string, layers map[string]int, opts Options) map[string]Point {
	positions := make(map[string]Point)

	widest := 0
	for _, ids := range order {
		if len(ids) > widest {
			widest = len(ids)
		}
	}
	totalWidth := float64(widest)*opts.NodeWidth + float64(widest-1)*opts.XSpacing

	for l, ids := range order {
		rowWidth := float64(len(ids))*opts.NodeWidth + float64(len(ids)-1)*opts.XSpacing
		offset := (totalWidth - rowWidth) / 2
		for i, id := range ids {
			x := offset + float64(i)*(opts.NodeWidth+opts.XSpacing)
			y := float64(l) * opts.YSpacing
			positions[id] = Point{X: x, Y: y}
		}
	}
	_ = layers
	return positions
}

// routeEdges implements Phase 4: edges spanning exactly one layer are
// drawn as a single horizontal-then-vertical segment; edges spanning
// multiple layers are broken at each intermediate layer into a dummy
// waypoint placed at the barycenter x of the edge's two real endpoints.
func routeEdges(sub *selector.SubGraph, positions map[string]Point, layers map[string]int, opts Options) []RoutedEdge {
	var routed []RoutedEdge
	for _, e := range sub.Edges() {
		from, ok1 := positions[e.From]
		to, ok2 := positions[e.To]
		if !ok1 || !ok2 {
			continue
		}

		fromLayer, toLayer := layers[e.From], layers[e.To]
		points := []Point{{X: from.X + opts.NodeWidth/2, Y: from.Y + opts.NodeHeight}}

		span := toLayer - fromLayer
		if span > 1 {
			for mid := fromLayer + 1; mid < toLayer; mid++ {
				x := (from.X+to.X)/2 + opts.NodeWidth/2
				y := float64(mid) * opts.YSpacing
				points = append(points, Point{X: x, Y: y})
			}
		}

		points = append(points, Point{X: to.X + opts.NodeWidth/2, Y: to.Y})
		routed = append(routed, RoutedEdge{From: e.From, To: e.To, Points: points})
	}
	return routed
}

func boundingBox(nodes []PositionedNode, opts Options) BoundingBox {
	if len(nodes) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{MinX: nodes[0].Point.X, MinY: nodes[0].Point.Y, MaxX: nodes[0].Point.X + opts.NodeWidth, MaxY: nodes[0].Point.Y + opts.NodeHeight}
	for _, n := range nodes[1:] {
		if n.Point.X < box.MinX {
			box.MinX = n.Point.X
		}
		if n.Point.Y < box.MinY {
			box.MinY = n.Point.Y
		}
		if n.Point.X+opts.NodeWidth > box.MaxX {
			box.MaxX = n.Point.X + opts.NodeWidth
		}
		if n.Point.Y+opts.NodeHeight > box.MaxY {
			box.MaxY = n.Point.Y + opts.NodeHeight
		}
	}
	return box
}
