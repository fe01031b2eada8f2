// Package quality measures frame pacing and scales visual richness to fit the
// frame budget.
//
// In auto mode the controller keeps a rolling window of frame times and
// steps the active preset down one level (high, medium, low) after a
// sustained run of frames below the target rate. It never steps back up on
// its own; pinning a preset or re-selecting auto is the only way up.
package quality

import (
	"sync"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/quantviz/internal/ring"
)

const (
	WindowSize     = 60
	LowFPS         = 55.0
	DowngradeAfter = 120
)

// Stats is the overlay snapshot polled by the host at 1-2 Hz.
type Stats struct {
	FPS           float64 `json:"fps"`
	FrameTime     float64 `json:"frame_time_ms"`
	ParticleCount int     `json:"particle_count"`
	DrawCalls     int     `json:"draw_calls"`
	WSRate        float64 `json:"ws_rate"`
}

type Controller struct {
	mu sync.RWMutex

	mode     Mode
	level    Mode
	settings Settings

	samples *ring.Buffer[float64]
	scratch []float64
	last    float64
	primed  bool

	fps       float64
	frameTime float64
	lowTicks  int

	downgrades int
	particles  int
	drawCalls  int
	rate       float64

	log zerolog.Logger
}

// NewController starts in mode. Auto starts from the high preset.
func NewController(mode Mode, log zerolog.Logger) (*Controller, error) {
	c := &Controller{
		samples: ring.New[float64](WindowSize),
		scratch: make([]float64, 0, WindowSize),
		log:     log.With().Str("component", "quality").Logger(),
	}
	c.level = ModeHigh
	c.settings = Presets[ModeHigh]
	if err := c.SetPreset(mode); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordFrame adds the interval since the previous call to the sample window
// and, in auto mode, evaluates the downgrade rule. The first call only primes
// the clock. Non-increasing timestamps are ignored.
func (c *Controller) RecordFrame(nowMillis float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.primed {
		c.last, c.primed = nowMillis, true
		return
	}
	d := nowMillis - c.last
	c.last = nowMillis
	if d <= 0 {
		return
	}

	c.samples.Push(d)
	c.scratch = c.samples.AppendTo(c.scratch[:0])
	c.frameTime = stat.Mean(c.scratch, nil)
	c.fps = 1000 / c.frameTime

	if c.mode != ModeAuto {
		return
	}
	if c.fps >= LowFPS {
		c.lowTicks = 0
		return
	}
	c.lowTicks++
	if c.lowTicks >= DowngradeAfter {
		c.lowTicks = 0
		c.downgrade()
	}
}

func (c *Controller) downgrade() {
	to := next(c.level)
	if to == c.level {
		return
	}
	c.log.Warn().
		Str("from", string(c.level)).
		Str("to", string(to)).
		Float64("fps", c.fps).
		Msg("sustained low frame rate, lowering quality")
	c.level = to
	c.settings = Presets[to]
	c.downgrades++
}

// SetPreset pins a preset, applying it immediately, or returns to auto mode
// from the current settings.
func (c *Controller) SetPreset(mode Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mode == ModeAuto {
		c.mode = ModeAuto
		c.lowTicks = 0
		return nil
	}
	s, err := GetPreset(mode)
	if err != nil {
		return err
	}
	c.mode = mode
	c.level = mode
	c.settings = s
	c.lowTicks = 0
	c.log.Info().Str("preset", string(mode)).Msg("quality pinned")
	return nil
}

func (c *Controller) FPS() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fps
}

func (c *Controller) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Mode is the selected mode; Level is the preset currently in effect.
func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *Controller) Level() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

func (c *Controller) Downgrades() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.downgrades
}

func (c *Controller) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		FPS:           c.fps,
		FrameTime:     c.frameTime,
		ParticleCount: c.particles,
		DrawCalls:     c.drawCalls,
		WSRate:        c.rate,
	}
}

func (c *Controller) SetParticleCount(n int) {
	c.mu.Lock()
	c.particles = n
	c.mu.Unlock()
}

func (c *Controller) SetDrawCalls(n int) {
	c.mu.Lock()
	c.drawCalls = n
	c.mu.Unlock()
}

// SetMessageRate records the snapshot arrival rate in messages per second.
func (c *Controller) SetMessageRate(r float64) {
	c.mu.Lock()
	c.rate = r
	c.mu.Unlock()
}
