package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/quantviz/internal/anim"
	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/layout"
	"github.com/san-kum/quantviz/internal/particles"
	"github.com/san-kum/quantviz/internal/telemetry"
)

const (
	PipelinePoolSize = 50
	// LatencyRef is the mean stage latency (ms) at which packets spawn at the
	// full rate.
	LatencyRef    = 100.0
	MinPacketRate = 0.05
	// NoLatencyRate applies when the snapshot carries no latency map.
	NoLatencyRate = 0.5
	// PacketSpeed is segments per second.
	PacketSpeed = 1.5
)

// SpawnRate maps mean stage latency to a spawn rate in [MinPacketRate, 1]:
// slower pipelines emit fewer packets.
func SpawnRate(s *telemetry.Snapshot) float64 {
	mean, ok := s.MeanLatency()
	if !ok {
		return NoLatencyRate
	}
	if mean <= 0 || math.IsNaN(mean) {
		return 1
	}
	return geom.Clamp(LatencyRef/mean, MinPacketRate, 1)
}

// PipelineSignal draws the stage chain with packets travelling from stage to
// stage.
type PipelineSignal struct {
	base
	stages  []telemetry.Stage
	pool    *particles.Pool
	latency *anim.Series
	layout  layout.StageLayout
	status  []string
}

func NewPipelineSignal(env *Env, stages []telemetry.Stage) (*PipelineSignal, error) {
	if err := layout.ValidateStages(stages); err != nil {
		return nil, fmt.Errorf("pipeline signal: %w", err)
	}
	pool, err := particles.NewPool(PipelinePoolSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline signal: %w", err)
	}
	return &PipelineSignal{
		base:    newBase(env, "pipeline", "Pipeline"),
		stages:  append([]telemetry.Stage(nil), stages...),
		pool:    pool,
		latency: anim.NewSeries(anim.DefaultK),
		status:  make([]string, len(stages)),
	}, nil
}

func (p *PipelineSignal) Particles() int { return p.pool.Active() }

func (p *PipelineSignal) Update(s *telemetry.Snapshot, dt float64) {
	set := p.settings()
	p.layout = layout.ComputeStages(p.stages, float64(p.canvas.SubWidth()), float64(p.canvas.SubHeight()))

	targets := make([]float64, len(p.stages))
	for i, st := range p.stages {
		p.status[i] = s.StageStatus(st)
		if v, ok := s.StageLatency(st); ok {
			targets[i] = v
		} else {
			targets[i] = math.NaN()
		}
	}
	p.latency.Step(targets)

	if set.EnableParticles && p.layout.Segments() > 0 {
		chance := set.ParticleDensity * SpawnRate(s)
		if p.env.Rand.Float64() < chance {
			p.pool.Spawn(0, "packet", PacketSpeed, int(float64(p.pool.Cap())*set.ParticleDensity))
		}
	} else if p.pool.Active() > 0 {
		p.pool.Clear()
	}
	p.pool.AdvanceStages(dt, p.layout.Segments(), p.resolve)

	p.draw(set.EnableGlow)
}

func (p *PipelineSignal) resolve(path int, _ string) (geom.Point, geom.Point, bool) {
	return p.layout.Segment(path)
}

func (p *PipelineSignal) draw(glow bool) {
	c, th := p.canvas, p.env.Theme
	c.Clear()

	c.Pen(th.Muted)
	for i := 0; i < p.layout.Segments(); i++ {
		a, b, _ := p.layout.Segment(i)
		c.DrawLine(round(a.X), round(a.Y), round(b.X), round(b.Y))
	}

	for i, slot := range p.layout.Slots {
		c.Pen(th.StatusColor(p.status[i]))
		c.FillRect(geom.Rect{X: slot.Center.X - 2, Y: slot.Center.Y - 2, W: 4, H: 4})
		label := slot.Stage.Short()
		col := int(slot.Center.X)/2 - len(label)/2
		row := int(slot.Center.Y)/4 + 1
		c.Text(col, row, label)
		if ms := p.latency.At(i); ms > 0 {
			c.Pen(th.Muted)
			c.Text(col, row+1, fmt.Sprintf("%.0fms", ms))
		}
	}

	c.Pen(th.Accent)
	p.pool.Each(func(_ int, pt *particles.Particle) {
		c.Dot(pt.Pos, glow)
	})
}

func (p *PipelineSignal) Reset() {
	p.pool.Clear()
	p.latency.Reset()
	p.layout = layout.StageLayout{}
	for i := range p.status {
		p.status[i] = ""
	}
	p.canvas.Clear()
}

func (p *PipelineSignal) Destroy() { p.pool.Clear() }
