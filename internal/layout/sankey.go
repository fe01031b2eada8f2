// Package layout maps snapshot node, edge and stage lists to screen-space
// geometry.
//
// Every function here is pure: the same input always yields the same layout
// and nothing is carried between calls. Layouts are recomputed each tick.
package layout

import (
	"math"
	"sort"

	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/telemetry"
)

type SankeyGeometry struct {
	Width, Height float64
	Padding       float64
	NodeWidth     float64
	NodeHeight    float64
	Spacing       float64
	MinEdgeWidth  float64
	MaxEdgeWidth  float64
	// MaxNodes keeps only the heaviest nodes; 0 means no limit.
	MaxNodes int
}

func DefaultSankeyGeometry(width, height float64) SankeyGeometry {
	return SankeyGeometry{
		Width:        width,
		Height:       height,
		Padding:      4,
		NodeWidth:    4,
		NodeHeight:   8,
		Spacing:      4,
		MinEdgeWidth: 1,
		MaxEdgeWidth: 6,
	}
}

type Node struct {
	ID     string
	Label  string
	Weight float64
	Column int
	Rect   geom.Rect
}

type Edge struct {
	// Index is the position of the edge in the snapshot's edge list.
	Index int
	Key   string
	From  string
	To    string
	Value float64
	Start geom.Point
	C1    geom.Point
	C2    geom.Point
	End   geom.Point
	Width float64
}

type Sankey struct {
	Nodes []Node
	Edges []Edge
}

// EdgeKey identifies an edge by its endpoints.
func EdgeKey(from, to string) string { return from + "->" + to }

// Node looks up a laid-out node by id.
func (s Sankey) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// ComputeSankey stacks nodes by descending weight and routes edges from the
// right edge of the source to the left edge of the target. Nodes that only
// emit flow form the left column; every other node sits in the right column.
// Edges whose endpoints were not laid out are skipped.
func ComputeSankey(nodes []telemetry.FlowNode, edges []telemetry.FlowEdge, g SankeyGeometry) Sankey {
	sorted := make([]telemetry.FlowNode, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
	if g.MaxNodes > 0 && len(sorted) > g.MaxNodes {
		sorted = sorted[:g.MaxNodes]
	}

	hasIn := make(map[string]bool, len(edges))
	hasOut := make(map[string]bool, len(edges))
	for _, e := range edges {
		hasOut[e.From] = true
		hasIn[e.To] = true
	}

	out := Sankey{Nodes: make([]Node, 0, len(sorted))}
	var y [2]float64
	y[0], y[1] = g.Padding, g.Padding
	colX := [2]float64{g.Padding, math.Max(g.Padding, g.Width-g.Padding-g.NodeWidth)}
	index := make(map[string]int, len(sorted))
	for _, n := range sorted {
		col := 1
		if hasOut[n.ID] && !hasIn[n.ID] {
			col = 0
		}
		index[n.ID] = len(out.Nodes)
		out.Nodes = append(out.Nodes, Node{
			ID:     n.ID,
			Label:  n.Label,
			Weight: n.Weight,
			Column: col,
			Rect:   geom.Rect{X: colX[col], Y: y[col], W: g.NodeWidth, H: g.NodeHeight},
		})
		y[col] += g.NodeHeight + g.Spacing
	}

	for i, e := range edges {
		si, ok := index[e.From]
		if !ok {
			continue
		}
		ti, ok := index[e.To]
		if !ok {
			continue
		}
		src, dst := out.Nodes[si].Rect, out.Nodes[ti].Rect
		start := geom.Point{X: src.Right(), Y: src.Center().Y}
		end := geom.Point{X: dst.X, Y: dst.Center().Y}
		c1, c2 := geom.SControls(start, end)
		out.Edges = append(out.Edges, Edge{
			Index: i,
			Key:   EdgeKey(e.From, e.To),
			From:  e.From,
			To:    e.To,
			Value: e.Value,
			Start: start,
			C1:    c1,
			C2:    c2,
			End:   end,
			Width: EdgeWidth(e.Value, g.MinEdgeWidth, g.MaxEdgeWidth),
		})
	}
	return out
}

// EdgeWidth scales an edge value to a line width, never below min so
// near-zero flows stay visible.
func EdgeWidth(value, min, max float64) float64 {
	w := value * max
	if math.IsNaN(w) || w < min {
		return min
	}
	return w
}
