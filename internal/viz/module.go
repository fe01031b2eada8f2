package viz

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/telemetry"
)

// Module is one animated chart. The scheduler owns every call: Resize and
// Update never overlap, and nothing is called after Destroy.
type Module interface {
	Name() string
	Title() string
	// Resize sets the canvas size in terminal cells. Zero or negative sizes
	// collapse the canvas.
	Resize(width, height int)
	// Update advances animation state by one tick toward s and redraws.
	Update(s *telemetry.Snapshot, dt float64)
	Canvas() *Canvas
	// Reset drops all animated state, as if no snapshot had been seen.
	Reset()
	Destroy()
}

// ParticleCounter is implemented by modules that own a particle pool.
type ParticleCounter interface {
	Particles() int
}

// SettingsSource supplies the quality settings read at the start of each
// tick.
type SettingsSource interface {
	Settings() quality.Settings
}

// Env is shared by the scheduler and every module. It replaces any global
// state: theme, quality, randomness and logging all flow through it.
type Env struct {
	Quality SettingsSource
	Theme   Theme
	Rand    *rand.Rand
	Log     zerolog.Logger
}

func NewEnv(q SettingsSource, theme Theme, seed int64, log zerolog.Logger) *Env {
	return &Env{
		Quality: q,
		Theme:   theme,
		Rand:    rand.New(rand.NewSource(seed)),
		Log:     log,
	}
}

// StaticSettings is a SettingsSource with fixed settings.
type StaticSettings quality.Settings

func (s StaticSettings) Settings() quality.Settings { return quality.Settings(s) }

// base carries the canvas bookkeeping shared by all modules.
type base struct {
	env    *Env
	name   string
	title  string
	canvas *Canvas
}

func newBase(env *Env, name, title string) base {
	return base{env: env, name: name, title: title, canvas: NewCanvas(0, 0)}
}

func (b *base) Name() string    { return b.name }
func (b *base) Title() string   { return b.title }
func (b *base) Canvas() *Canvas { return b.canvas }
func (b *base) Resize(w, h int) { b.canvas = NewCanvas(w, h) }

func (b *base) settings() quality.Settings { return b.env.Quality.Settings() }

// NewModules builds the standard dashboard in display order.
func NewModules(env *Env, stages []telemetry.Stage) ([]Module, error) {
	flow, err := NewPortfolioFlow(env)
	if err != nil {
		return nil, err
	}
	pipe, err := NewPipelineSignal(env, stages)
	if err != nil {
		return nil, err
	}
	return []Module{
		flow,
		pipe,
		NewEquityRibbon(env),
		NewRiskHeatmap(env),
		NewHazardTape(env),
		NewRegimeRiver(env),
		NewContributionWaterfall(env),
	}, nil
}
