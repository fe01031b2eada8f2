package viz

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/quantviz/internal/ring"
	"github.com/san-kum/quantviz/internal/telemetry"
)

const (
	RibbonCapacity = 120
	// BoundsMargin pads the equity axis by this fraction of the window range.
	BoundsMargin  = 0.01
	DrawdownFloor = 1e-4
)

type EquitySample struct {
	Equity   float64
	Drawdown float64
}

// EquityBounds returns the axis range of the current window padded by
// BoundsMargin. A flat window gets a band of BoundsMargin around its value.
func EquityBounds(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi = floats.Min(values), floats.Max(values)
	pad := (hi - lo) * BoundsMargin
	if pad == 0 {
		pad = math.Abs(hi) * BoundsMargin
	}
	if pad == 0 {
		pad = BoundsMargin
	}
	return lo - pad, hi + pad
}

// DrawdownScale is the largest absolute drawdown in the window, never below
// DrawdownFloor.
func DrawdownScale(drawdowns []float64) float64 {
	m := DrawdownFloor
	for _, d := range drawdowns {
		if a := math.Abs(d); a > m {
			m = a
		}
	}
	return m
}

// RibbonX places sample i of a buffer with the given capacity. Positions
// are anchored to capacity rather than fill level, so a partially filled
// window occupies the left part of the panel.
func RibbonX(i, capacity int, width float64) float64 {
	if capacity <= 1 {
		return 0
	}
	return float64(i) / float64(capacity-1) * width
}

// EquityRibbon plots equity over the last RibbonCapacity snapshots with a
// drawdown band underneath.
type EquityRibbon struct {
	base
	buf  *ring.Buffer[EquitySample]
	last *telemetry.Snapshot

	eq, dd []float64
}

func NewEquityRibbon(env *Env) *EquityRibbon {
	return &EquityRibbon{
		base: newBase(env, "equity", "Equity"),
		buf:  ring.New[EquitySample](RibbonCapacity),
	}
}

// Samples returns the window oldest first.
func (r *EquityRibbon) Samples() []EquitySample { return r.buf.Values() }

func (r *EquityRibbon) Update(s *telemetry.Snapshot, dt float64) {
	if s != r.last {
		r.buf.Push(EquitySample{Equity: s.Equity(), Drawdown: s.Drawdown()})
		r.last = s
	}
	r.draw()
}

func (r *EquityRibbon) draw() {
	c, th := r.canvas, r.env.Theme
	c.Clear()
	n := r.buf.Len()
	if n == 0 || c.Width == 0 || c.Height == 0 {
		return
	}

	r.eq, r.dd = r.eq[:0], r.dd[:0]
	for i := 0; i < n; i++ {
		smp := r.buf.At(i)
		r.eq = append(r.eq, smp.Equity)
		r.dd = append(r.dd, smp.Drawdown)
	}
	lo, hi := EquityBounds(r.eq)
	scale := DrawdownScale(r.dd)

	w := float64(c.SubWidth() - 1)
	h := float64(c.SubHeight())
	lineH := h * 0.7
	bandTop := lineH + 1
	bandH := h - bandTop - 1

	c.Pen(th.Shade(th.Error, 0.7))
	for i, d := range r.dd {
		x := round(RibbonX(i, RibbonCapacity, w))
		depth := math.Abs(d) / scale * bandH
		if depth >= 0.5 {
			c.DrawLine(x, round(bandTop), x, round(bandTop+depth))
		}
	}

	y := func(v float64) int { return round((1 - (v-lo)/(hi-lo)) * (lineH - 1)) }
	c.Pen(th.Secondary)
	px, py := round(RibbonX(0, RibbonCapacity, w)), y(r.eq[0])
	c.Set(px, py)
	for i := 1; i < n; i++ {
		x, yy := round(RibbonX(i, RibbonCapacity, w)), y(r.eq[i])
		c.DrawLine(px, py, x, yy)
		px, py = x, yy
	}

	c.Pen(th.Text)
	c.Text(0, 0, fmt.Sprintf("%.0f", r.eq[n-1]))
	c.Pen(th.Muted)
	if c.Height > 1 {
		c.Text(0, c.Height-1, fmt.Sprintf("dd %.2f%%", r.dd[n-1]*100))
	}
}

func (r *EquityRibbon) Reset() {
	r.buf.Reset()
	r.last = nil
	r.canvas.Clear()
}

func (r *EquityRibbon) Destroy() { r.buf.Reset() }
