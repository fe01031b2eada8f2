package viz

import (
	"math"
	"sort"

	"github.com/san-kum/quantviz/internal/anim"
	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/telemetry"
)

// Bar is one step of the waterfall: the running total moves from Start to
// End.
type Bar struct {
	ID    string
	Delta float64
	Start float64
	End   float64
}

// Cumulate turns per-position deltas into waterfall steps.
func Cumulate(ids []string, deltas []float64) []Bar {
	bars := make([]Bar, len(deltas))
	total := 0.0
	for i, d := range deltas {
		if math.IsNaN(d) {
			d = 0
		}
		bars[i] = Bar{Delta: d, Start: total, End: total + d}
		if i < len(ids) {
			bars[i].ID = ids[i]
		}
		total += d
	}
	return bars
}

// ContributionWaterfall shows each position's one-day weight change as a
// running total.
//
// Displayed deltas are keyed by node ID so a re-sort by weight never hands
// one position's value to another.
type ContributionWaterfall struct {
	base
	deltas map[string]*anim.Value
	ids    []string
	bars   []Bar
}

func NewContributionWaterfall(env *Env) *ContributionWaterfall {
	return &ContributionWaterfall{
		base:   newBase(env, "waterfall", "Contribution"),
		deltas: make(map[string]*anim.Value),
	}
}

func (w *ContributionWaterfall) Bars() []Bar { return w.bars }

func (w *ContributionWaterfall) Update(s *telemetry.Snapshot, dt float64) {
	set := w.settings()
	nodes := append([]telemetry.FlowNode(nil), s.Nodes()...)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Weight > nodes[j].Weight })
	if set.MaxNodes > 0 && len(nodes) > set.MaxNodes {
		nodes = nodes[:set.MaxNodes]
	}

	shown := make([]float64, len(nodes))
	seen := make(map[string]bool, len(nodes))
	w.ids = w.ids[:0]
	for i, n := range nodes {
		w.ids = append(w.ids, n.ID)
		seen[n.ID] = true
		v, ok := w.deltas[n.ID]
		if !ok {
			v = anim.NewValue(anim.DefaultK)
			w.deltas[n.ID] = v
		}
		switch {
		case n.WeightChange != nil && !math.IsNaN(*n.WeightChange):
			shown[i] = v.Step(*n.WeightChange, dt)
		case !ok:
			// A missing change on a new position starts flat.
			v.Set(0)
		default:
			// Missing change: hold the last displayed value.
			shown[i] = v.Displayed
		}
	}
	for id := range w.deltas {
		if !seen[id] {
			delete(w.deltas, id)
		}
	}
	w.bars = Cumulate(w.ids, shown)
	w.draw()
}

func (w *ContributionWaterfall) draw() {
	c, th := w.canvas, w.env.Theme
	c.Clear()
	if len(w.bars) == 0 || c.Width == 0 || c.Height == 0 {
		return
	}

	lo, hi := 0.0, 0.0
	for _, b := range w.bars {
		lo = math.Min(lo, math.Min(b.Start, b.End))
		hi = math.Max(hi, math.Max(b.Start, b.End))
	}
	if hi-lo < 1e-9 {
		hi, lo = hi+1e-3, lo-1e-3
	}
	h := float64(c.SubHeight() - 1)
	y := func(v float64) float64 { return (1 - (v-lo)/(hi-lo)) * h }

	slot := float64(c.SubWidth()) / float64(len(w.bars))
	c.Pen(th.Muted)
	c.DrawLine(0, round(y(0)), c.SubWidth()-1, round(y(0)))
	for i, b := range w.bars {
		top, bottom := y(math.Max(b.Start, b.End)), y(math.Min(b.Start, b.End))
		col := th.Success
		if b.Delta < 0 {
			col = th.Error
		}
		c.Pen(col)
		c.FillRect(geom.Rect{
			X: float64(i)*slot + 1,
			Y: top,
			W: math.Max(1, slot-2),
			H: math.Max(1, bottom-top),
		})
	}
}

func (w *ContributionWaterfall) Reset() {
	clear(w.deltas)
	w.ids = w.ids[:0]
	w.bars = nil
	w.canvas.Clear()
}

func (w *ContributionWaterfall) Destroy() { w.bars = nil }
