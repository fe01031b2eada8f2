// Package engine runs the frame loop: it pairs the steady render cadence
// with the irregular snapshot cadence, supervises the visual modules and
// feeds frame statistics back to the quality controller.
package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/feed"
	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/telemetry"
	"github.com/san-kum/quantviz/internal/viz"
)

const (
	// MaxDelta caps the tick delta in seconds so a stalled host does not
	// make animations jump.
	MaxDelta = 0.1

	// rateWindow is the span in milliseconds over which the snapshot
	// arrival rate is measured.
	rateWindow = 1000.0
)

type Option func(*Scheduler)

// WithSlot shares an existing snapshot slot, typically one a feed pump
// writes to.
func WithSlot(slot *feed.Slot) Option {
	return func(s *Scheduler) { s.slot = slot }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// Scheduler drives the visual modules once per frame. OnFrame, Resize,
// ResetModule and Destroy exclude each other; SetSnapshot may be called from
// any goroutine.
type Scheduler struct {
	mu sync.Mutex

	q       *quality.Controller
	env     *viz.Env
	modules []viz.Module
	slot    *feed.Slot
	log     zerolog.Logger

	faults map[string]*ModuleError

	frame     uint64
	lastTick  float64
	ticked    bool
	destroyed bool
	latest    *telemetry.Snapshot
	// stop is closed by Destroy to end Run.
	stop chan struct{}

	width, height int
	tiles         []Tile

	rateStart   float64
	rateVersion uint64
}

// New builds a scheduler over modules. The environment's quality source
// should be q so modules read the live preset.
func New(q *quality.Controller, env *viz.Env, modules []viz.Module, opts ...Option) (*Scheduler, error) {
	if len(modules) == 0 {
		return nil, ErrNoModules
	}
	if q == nil || env == nil {
		return nil, fmt.Errorf("engine: quality controller and environment are required")
	}
	s := &Scheduler{
		q:       q,
		env:     env,
		modules: modules,
		log:     env.Log,
		faults:  make(map[string]*ModuleError),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.slot == nil {
		s.slot = feed.NewSlot()
	}
	s.log = s.log.With().Str("component", "engine").Logger()
	return s, nil
}

// NewDefault builds the standard seven-module dashboard over stages.
func NewDefault(q *quality.Controller, env *viz.Env, stages []telemetry.Stage, opts ...Option) (*Scheduler, error) {
	mods, err := viz.NewModules(env, stages)
	if err != nil {
		return nil, fmt.Errorf("engine: build modules: %w", err)
	}
	return New(q, env, mods, opts...)
}

// SetSnapshot replaces the latest snapshot. Only the newest value is kept.
func (s *Scheduler) SetSnapshot(snap *telemetry.Snapshot) {
	s.slot.Store(snap)
}

func (s *Scheduler) Slot() *feed.Slot { return s.slot }

// Latest is the snapshot the last frame rendered, or nil before the first
// one arrived. Unlike Slot().Load it does not mark anything as read.
func (s *Scheduler) Latest() *telemetry.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// OnFrame runs one tick at the host clock nowMillis.
func (s *Scheduler) OnFrame(nowMillis float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}

	s.q.RecordFrame(nowMillis)
	dt := 0.0
	if s.ticked {
		dt = (nowMillis - s.lastTick) / 1000
		if dt < 0 {
			dt = 0
		}
		if dt > MaxDelta {
			dt = MaxDelta
		}
	} else {
		s.rateStart = nowMillis
	}
	s.lastTick = nowMillis
	s.ticked = true
	s.frame++

	snap := s.slot.Load()
	if snap == nil {
		s.publish(nowMillis)
		return
	}
	s.latest = snap
	for _, m := range s.modules {
		if _, bad := s.faults[m.Name()]; bad {
			continue
		}
		s.update(m, snap, dt)
	}
	s.publish(nowMillis)
}

func (s *Scheduler) update(m viz.Module, snap *telemetry.Snapshot, dt float64) {
	defer func() {
		if r := recover(); r != nil {
			merr := &ModuleError{Module: m.Name(), Frame: s.frame, Cause: panicError(r)}
			s.faults[m.Name()] = merr
			s.log.Error().Err(merr.Cause).
				Str("module", m.Name()).
				Uint64("frame", s.frame).
				Msg("module faulted")
		}
	}()
	m.Update(snap, dt)
}

// publish reports particle count, draw calls and snapshot rate.
func (s *Scheduler) publish(nowMillis float64) {
	particles, calls := 0, 0
	for _, m := range s.modules {
		if pc, ok := m.(viz.ParticleCounter); ok {
			particles += pc.Particles()
		}
		if c := m.Canvas(); c != nil {
			calls += c.Ops()
		}
	}
	s.q.SetParticleCount(particles)
	s.q.SetDrawCalls(calls)

	if span := nowMillis - s.rateStart; span >= rateWindow {
		v := s.slot.Version()
		s.q.SetMessageRate(float64(v-s.rateVersion) / (span / 1000))
		s.rateVersion = v
		s.rateStart = nowMillis
	}
}

// Resize tiles a width x height surface and resizes every module to its
// tile.
func (s *Scheduler) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.width, s.height = width, height
	s.tiles = Tiles(len(s.modules), width, height)
	for i, m := range s.modules {
		m.Resize(s.tiles[i].CanvasSize())
	}
}

// ResetModule clears a module's state and puts it back in rotation.
func (s *Scheduler) ResetModule(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return ErrDestroyed
	}
	for _, m := range s.modules {
		if m.Name() != name {
			continue
		}
		m.Reset()
		delete(s.faults, name)
		s.log.Info().Str("module", name).Msg("module reset")
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownModule, name)
}

// Faults lists the currently faulted modules ordered by name.
func (s *Scheduler) Faults() []*ModuleError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ModuleError, 0, len(s.faults))
	for _, f := range s.faults {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Module < out[j].Module })
	return out
}

// Destroy stops the scheduler and releases every module. It is safe to call
// more than once.
func (s *Scheduler) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.destroyed = true
	close(s.stop)
	for _, m := range s.modules {
		m.Destroy()
	}
	s.log.Debug().Uint64("frames", s.frame).Msg("scheduler destroyed")
}

func (s *Scheduler) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

func (s *Scheduler) Stats() quality.Stats { return s.q.Stats() }

func (s *Scheduler) Quality() *quality.Controller { return s.q }

// Frame is the number of ticks run so far.
func (s *Scheduler) Frame() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

func (s *Scheduler) Modules() []viz.Module { return s.modules }

func (s *Scheduler) Theme() viz.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Theme
}

// SetTheme switches the palette used from the next tick on.
func (s *Scheduler) SetTheme(t viz.Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Theme = t
}

// Render composes the module canvases into titled panels laid out like the
// last Resize.
func (s *Scheduler) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tiles) != len(s.modules) {
		return ""
	}

	var rows []string
	var row []string
	cur := s.tiles[0].Row
	for i, m := range s.modules {
		t := s.tiles[i]
		if t.Row != cur {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, cur = nil, t.Row
		}
		title := m.Title()
		if f, bad := s.faults[m.Name()]; bad {
			title += " " + viz.StatusFaulted.Render(fmt.Sprintf("faulted @%d", f.Frame))
		}
		row = append(row, viz.Panel(s.env.Theme, title, m.Canvas().Render()))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	return strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, rows...), "\n")
}
