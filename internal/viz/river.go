package viz

import (
	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/ring"
	"github.com/san-kum/quantviz/internal/telemetry"
)

const (
	RiverCapacity = 120
	// DefaultConfidence is used when a snapshot carries no regime confidence.
	DefaultConfidence = 0.5
)

type RegimeSample struct {
	Regime     telemetry.Regime
	Confidence float64
}

// RegimeRiver draws the regime history as vertical bands whose height
// follows the classifier's confidence.
type RegimeRiver struct {
	base
	buf  *ring.Buffer[RegimeSample]
	last *telemetry.Snapshot
}

func NewRegimeRiver(env *Env) *RegimeRiver {
	return &RegimeRiver{
		base: newBase(env, "river", "Regime River"),
		buf:  ring.New[RegimeSample](RiverCapacity),
	}
}

func (r *RegimeRiver) Samples() []RegimeSample { return r.buf.Values() }

func (r *RegimeRiver) Update(s *telemetry.Snapshot, dt float64) {
	if s != r.last {
		r.buf.Push(RegimeSample{
			Regime:     s.Regime(),
			Confidence: geom.Clamp01(s.Confidence(DefaultConfidence)),
		})
		r.last = s
	}
	r.draw()
}

func (r *RegimeRiver) draw() {
	c, th := r.canvas, r.env.Theme
	c.Clear()
	n := r.buf.Len()
	if n == 0 {
		return
	}
	w := float64(c.SubWidth() - 1)
	h := float64(c.SubHeight())
	mid := h / 2
	for i := 0; i < n; i++ {
		smp := r.buf.At(i)
		x := round(RibbonX(i, RiverCapacity, w))
		half := smp.Confidence * (h - 2) / 2
		c.Pen(th.RegimeColor(smp.Regime))
		c.DrawLine(x, round(mid-half), x, round(mid+half))
	}
	last := r.buf.At(n - 1)
	c.Pen(th.RegimeColor(last.Regime))
	c.Text(0, 0, string(last.Regime))
}

func (r *RegimeRiver) Reset() {
	r.buf.Reset()
	r.last = nil
	r.canvas.Clear()
}

func (r *RegimeRiver) Destroy() { r.buf.Reset() }
