// Package tui hosts the engine in a Bubble Tea program: a 60 Hz tick drives
// the scheduler, window size changes re-tile the modules and a 2 Hz stats
// overlay shows frame pacing.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/engine"
	"github.com/san-kum/quantviz/internal/export"
	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/ring"
	"github.com/san-kum/quantviz/internal/viz"
)

const (
	statsInterval = 500 * time.Millisecond
	// fpsHistory is one minute of stats samples.
	fpsHistory = 120

	headerLines = 1
	helpLines   = 1
	statsLines  = 8
)

type TickMsg time.Time

type statsMsg time.Time

type Options struct {
	FPS int
	// GIFPath receives recordings of the first module; empty disables the
	// record key.
	GIFPath string
	Log     zerolog.Logger
}

// Model is the Bubble Tea model around a scheduler.
type Model struct {
	sched *engine.Scheduler
	opts  Options
	start time.Time

	width, height int
	help          help.Model
	showHelp      bool
	showStats     bool

	stats   quality.Stats
	fps     *ring.Buffer[float64]
	spinner int
	status  string

	recorder *export.Recorder
}

func New(sched *engine.Scheduler, opts Options) Model {
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	return Model{
		sched:     sched,
		opts:      opts,
		help:      help.New(),
		showStats: true,
		fps:       ring.New[float64](fpsHistory),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func pollStats() tea.Cmd {
	return tea.Tick(statsInterval, func(t time.Time) tea.Msg { return statsMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), pollStats())
}

// Update handles input events and drives the scheduler.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.finishRecording()
			m.sched.Destroy()
			return m, tea.Quit
		case key.Matches(msg, keys.Low):
			m.pin(quality.ModeLow)
		case key.Matches(msg, keys.Medium):
			m.pin(quality.ModeMedium)
		case key.Matches(msg, keys.High):
			m.pin(quality.ModeHigh)
		case key.Matches(msg, keys.Auto):
			m.pin(quality.ModeAuto)
		case key.Matches(msg, keys.Reset):
			m.resetFaults()
		case key.Matches(msg, keys.Theme):
			th := viz.NextTheme(m.sched.Theme().Name)
			m.sched.SetTheme(th)
			m.status = "theme " + th.Name
		case key.Matches(msg, keys.Stats):
			m.showStats = !m.showStats
			m.resize()
		case key.Matches(msg, keys.Record):
			m.toggleRecording()
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
		}

	case TickMsg:
		if m.start.IsZero() {
			m.start = time.Time(msg)
		}
		now := time.Time(msg).Sub(m.start)
		m.sched.OnFrame(float64(now.Microseconds()) / 1000)
		m.spinner++
		if m.recorder != nil {
			m.recorder.Capture(m.sched.Modules()[0].Canvas())
		}
		if m.sched.Destroyed() {
			return m, nil
		}
		return m, m.tick()

	case statsMsg:
		m.stats = m.sched.Stats()
		m.fps.Push(m.stats.FPS)
		return m, pollStats()
	}
	return m, nil
}

// resize gives the scheduler everything except the header, help and stats
// lines.
func (m *Model) resize() {
	h := m.height - headerLines - helpLines
	if m.showStats {
		h -= statsLines
	}
	m.sched.Resize(m.width, h)
}

func (m *Model) pin(mode quality.Mode) {
	if err := m.sched.Quality().SetPreset(mode); err != nil {
		m.status = err.Error()
		return
	}
	m.status = "quality " + string(mode)
}

func (m *Model) resetFaults() {
	faults := m.sched.Faults()
	for _, f := range faults {
		if err := m.sched.ResetModule(f.Module); err != nil {
			m.status = err.Error()
			return
		}
	}
	m.status = fmt.Sprintf("reset %d module(s)", len(faults))
}

func (m *Model) toggleRecording() {
	if m.opts.GIFPath == "" {
		m.status = "recording disabled"
		return
	}
	if m.recorder != nil {
		m.finishRecording()
		return
	}
	m.recorder = export.NewRecorder(m.sched.Theme(), 2)
	m.status = "recording"
}

func (m *Model) finishRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Save(m.opts.GIFPath); err != nil {
		m.opts.Log.Error().Err(err).Str("path", m.opts.GIFPath).Msg("save recording")
		m.status = "recording failed"
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.recorder.Len(), m.opts.GIFPath)
	}
	m.recorder = nil
}
