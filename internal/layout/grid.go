package layout

import (
	"sort"
	"strings"

	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/telemetry"
)

type GridGeometry struct {
	Width, Height float64
	Cols, Rows    int
	Gap           float64
	TopK          int
	WeightGain    float64
	RiskGain      float64
}

func DefaultGridGeometry(width, height float64) GridGeometry {
	return GridGeometry{
		Width:      width,
		Height:     height,
		Cols:       3,
		Rows:       2,
		Gap:        2,
		TopK:       6,
		WeightGain: 2,
		RiskGain:   0.5,
	}
}

type Cell struct {
	ID        string
	Label     string
	Category  string
	Weight    float64
	Intensity float64
	Row, Col  int
	Rect      geom.Rect
}

// Category derives a colour category from a node id: the prefix before ':'
// ("ticker:AAPL" -> "ticker"), or the id itself when it has none.
func Category(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i]
	}
	return id
}

// RiskTerm blends the two risk gauges with equal weight.
func RiskTerm(traction, varPressure float64) float64 {
	return 0.5*traction + 0.5*varPressure
}

// ComputeGrid places the TopK heaviest nodes row-major into the grid.
func ComputeGrid(nodes []telemetry.FlowNode, traction, varPressure float64, g GridGeometry) []Cell {
	if g.Cols <= 0 || g.Rows <= 0 {
		return nil
	}
	k := g.TopK
	if k <= 0 || k > g.Cols*g.Rows {
		k = g.Cols * g.Rows
	}

	sorted := make([]telemetry.FlowNode, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Weight > sorted[j].Weight })
	if len(sorted) > k {
		sorted = sorted[:k]
	}

	cw := (g.Width - g.Gap*float64(g.Cols-1)) / float64(g.Cols)
	ch := (g.Height - g.Gap*float64(g.Rows-1)) / float64(g.Rows)
	if cw < 0 {
		cw = 0
	}
	if ch < 0 {
		ch = 0
	}
	risk := g.RiskGain * RiskTerm(traction, varPressure)

	cells := make([]Cell, len(sorted))
	for i, n := range sorted {
		row, col := i/g.Cols, i%g.Cols
		cells[i] = Cell{
			ID:        n.ID,
			Label:     n.Label,
			Category:  Category(n.ID),
			Weight:    n.Weight,
			Intensity: geom.Clamp01(n.Weight*g.WeightGain + risk),
			Row:       row,
			Col:       col,
			Rect: geom.Rect{
				X: float64(col) * (cw + g.Gap),
				Y: float64(row) * (ch + g.Gap),
				W: cw,
				H: ch,
			},
		}
	}
	return cells
}
