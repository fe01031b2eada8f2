package viz

import (
	"math"

	"github.com/san-kum/quantviz/internal/anim"
	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/layout"
	"github.com/san-kum/quantviz/internal/telemetry"
)

// RiskHeatmap shows the heaviest positions as a grid whose cell brightness
// blends position weight with the traction and VaR gauges.
type RiskHeatmap struct {
	base
	cells     []layout.Cell
	intensity *anim.Series
	ids       []string
}

func NewRiskHeatmap(env *Env) *RiskHeatmap {
	return &RiskHeatmap{
		base:      newBase(env, "heatmap", "Risk Heatmap"),
		intensity: anim.NewSeries(anim.DefaultK),
	}
}

// Cells returns the grid computed on the last tick.
func (m *RiskHeatmap) Cells() []layout.Cell { return m.cells }

// Intensities returns the displayed, animated cell intensities.
func (m *RiskHeatmap) Intensities() []float64 { return m.intensity.Values() }

func (m *RiskHeatmap) Update(s *telemetry.Snapshot, dt float64) {
	set := m.settings()
	var traction, variance float64
	if s != nil {
		traction = telemetry.GaugeValue(s.TractionRisk)
		variance = telemetry.GaugeValue(s.BrakeVarPressure)
	}
	g := layout.DefaultGridGeometry(float64(m.canvas.SubWidth()), float64(m.canvas.SubHeight()))
	m.cells = layout.ComputeGrid(s.Nodes(), traction, variance, g)

	targets := make([]float64, len(m.cells))
	for i, cell := range m.cells {
		targets[i] = cell.Intensity
	}
	m.intensity.Step(targets)
	// A slot taken over by a different position starts from its own target.
	for i, cell := range m.cells {
		if i < len(m.ids) && m.ids[i] != cell.ID {
			m.intensity.Snap(i, cell.Intensity)
		}
	}
	m.ids = m.ids[:0]
	for _, cell := range m.cells {
		m.ids = append(m.ids, cell.ID)
	}

	m.draw(set.EnableGlow)
}

func (m *RiskHeatmap) draw(glow bool) {
	c, th := m.canvas, m.env.Theme
	c.Clear()
	vals := m.intensity.Values()
	for i, cell := range m.cells {
		level := 0.0
		if i < len(vals) {
			level = vals[i]
		}
		hue := th.CategoryColor(cell.Category)
		c.Pen(th.Shade(hue, 0.25+0.75*level))

		// Fill density tracks intensity: shrink the filled area toward the
		// centre of the cell.
		r := cell.Rect
		inset := geom.Rect{
			X: r.X + 1,
			Y: r.Y + 1,
			W: math.Max(0, r.W-2),
			H: math.Max(0, (r.H-2)*level),
		}
		inset.Y = r.Bottom() - 1 - inset.H
		c.FillRect(inset)
		if glow && level > 0.66 {
			c.Pen(th.Warning)
			c.StrokeRect(r)
		}

		c.Pen(th.Text)
		label := cell.Label
		if label == "" {
			label = cell.ID
		}
		c.Text(int(r.X)/2+1, int(r.Y)/4, label)
	}
}

func (m *RiskHeatmap) Reset() {
	m.intensity.Reset()
	m.cells = nil
	m.ids = m.ids[:0]
	m.canvas.Clear()
}

func (m *RiskHeatmap) Destroy() { m.cells = nil }
