package viz

import (
	"fmt"

	"github.com/san-kum/quantviz/internal/anim"
	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/layout"
	"github.com/san-kum/quantviz/internal/particles"
	"github.com/san-kum/quantviz/internal/telemetry"
)

const (
	FlowPoolSize = 200
	// FlowSpawnChance is the per-edge, per-tick spawn probability at full
	// particle density.
	FlowSpawnChance = 0.08
	// FlowSpeed is edge progress per second.
	FlowSpeed = 0.6
)

// PortfolioFlow draws the capital-allocation Sankey with particles riding
// the edges.
type PortfolioFlow struct {
	base
	pool    *particles.Pool
	weights map[string]*anim.Value
	sankey  layout.Sankey
}

func NewPortfolioFlow(env *Env) (*PortfolioFlow, error) {
	pool, err := particles.NewPool(FlowPoolSize)
	if err != nil {
		return nil, fmt.Errorf("portfolio flow: %w", err)
	}
	return &PortfolioFlow{
		base:    newBase(env, "flow", "Portfolio Flow"),
		pool:    pool,
		weights: make(map[string]*anim.Value),
	}, nil
}

func (f *PortfolioFlow) Particles() int { return f.pool.Active() }

// Layout returns the layout computed on the last tick.
func (f *PortfolioFlow) Layout() layout.Sankey { return f.sankey }

func (f *PortfolioFlow) Update(s *telemetry.Snapshot, dt float64) {
	set := f.settings()
	g := layout.DefaultSankeyGeometry(float64(f.canvas.SubWidth()), float64(f.canvas.SubHeight()))
	g.MaxNodes = set.MaxNodes
	f.sankey = layout.ComputeSankey(s.Nodes(), s.Edges(), g)

	seen := make(map[string]bool, len(f.sankey.Nodes))
	for _, n := range f.sankey.Nodes {
		v, ok := f.weights[n.ID]
		if !ok {
			v = anim.NewValue(anim.DefaultK)
			f.weights[n.ID] = v
		}
		v.Step(n.Weight, dt)
		seen[n.ID] = true
	}
	for id := range f.weights {
		if !seen[id] {
			delete(f.weights, id)
		}
	}

	if set.EnableParticles {
		softCap := int(float64(f.pool.Cap()) * set.ParticleDensity)
		chance := FlowSpawnChance * set.ParticleDensity
		for i, e := range f.sankey.Edges {
			if f.env.Rand.Float64() < chance {
				speed := FlowSpeed * (0.75 + 0.5*f.env.Rand.Float64())
				f.pool.Spawn(i, e.Key, speed, softCap)
			}
		}
	} else if f.pool.Active() > 0 {
		f.pool.Clear()
	}
	f.pool.Advance(dt, f.resolve)

	f.draw(set.EnableGlow)
}

// resolve rejects particles whose edge index no longer carries the same
// from->to pair.
func (f *PortfolioFlow) resolve(path int, key string) (from, to geom.Point, ok bool) {
	if path < 0 || path >= len(f.sankey.Edges) {
		return from, to, false
	}
	e := f.sankey.Edges[path]
	if e.Key != key {
		return from, to, false
	}
	return e.Start, e.End, true
}

func (f *PortfolioFlow) draw(glow bool) {
	c, th := f.canvas, f.env.Theme
	c.Clear()

	for _, e := range f.sankey.Edges {
		c.Pen(th.Shade(th.CategoryColor(layout.Category(e.From)), 0.6))
		c.DrawBezier(e.Start, e.C1, e.C2, e.End, e.Width)
	}

	for _, n := range f.sankey.Nodes {
		col := th.CategoryColor(layout.Category(n.ID))
		c.Pen(col)
		r := n.Rect
		if v, ok := f.weights[n.ID]; ok {
			// Node bar length follows the animated weight.
			r.H = r.H * (0.4 + 0.6*geom.Clamp01(v.Displayed*4))
		}
		c.FillRect(r)
		label := n.Label
		if label == "" {
			label = n.ID
		}
		row := int(n.Rect.Y) / 4
		if n.Column == 0 {
			c.Text(int(n.Rect.Right())/2+1, row, label)
		} else {
			c.Text(int(n.Rect.X)/2-len([]rune(label))-1, row, label)
		}
	}

	c.Pen(th.Accent)
	f.pool.Each(func(_ int, p *particles.Particle) {
		c.Dot(p.Pos, glow)
	})
}

func (f *PortfolioFlow) Reset() {
	f.pool.Clear()
	f.weights = make(map[string]*anim.Value)
	f.sankey = layout.Sankey{}
	f.canvas.Clear()
}

func (f *PortfolioFlow) Destroy() {
	f.pool.Clear()
	f.weights = nil
}
