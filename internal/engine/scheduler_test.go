package engine_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/engine"
	"github.com/san-kum/quantviz/internal/feed"
	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/telemetry"
	"github.com/san-kum/quantviz/internal/viz"
)

// fakeModule is a module that records what the scheduler hands it.
type fakeModule struct {
	name      string
	canvas    *viz.Canvas
	updates   int
	dts       []float64
	last      *telemetry.Snapshot
	panicOn   int
	resets    int
	destroyed int
	particles int
}

func newFake(name string) *fakeModule {
	return &fakeModule{name: name, canvas: viz.NewCanvas(0, 0)}
}

func (p *fakeModule) Name() string        { return p.name }
func (p *fakeModule) Title() string       { return p.name }
func (p *fakeModule) Resize(w, h int)     { p.canvas = viz.NewCanvas(w, h) }
func (p *fakeModule) Canvas() *viz.Canvas { return p.canvas }
func (p *fakeModule) Reset()              { p.resets++; p.panicOn = 0 }
func (p *fakeModule) Destroy()            { p.destroyed++ }
func (p *fakeModule) Particles() int      { return p.particles }

func (p *fakeModule) Update(s *telemetry.Snapshot, dt float64) {
	p.updates++
	if p.panicOn > 0 && p.updates >= p.panicOn {
		panic(errors.New("boom"))
	}
	p.dts = append(p.dts, dt)
	p.last = s
	p.canvas.Clear()
	p.canvas.DrawLine(0, 0, 1, 1)
}

func newScheduler(mods ...viz.Module) (*engine.Scheduler, *quality.Controller) {
	q, err := quality.NewController(quality.ModeAuto, zerolog.Nop())
	Expect(err).NotTo(HaveOccurred())
	env := viz.NewEnv(q, viz.DefaultTheme, 7, zerolog.Nop())
	s, err := engine.New(q, env, mods)
	Expect(err).NotTo(HaveOccurred())
	return s, q
}

var _ = Describe("Scheduler", func() {
	var (
		a, b *fakeModule
		s    *engine.Scheduler
		q    *quality.Controller
	)

	BeforeEach(func() {
		a, b = newFake("a"), newFake("b")
		s, q = newScheduler(a, b)
	})

	Describe("construction", func() {
		It("rejects an empty module list", func() {
			q, _ := quality.NewController(quality.ModeAuto, zerolog.Nop())
			env := viz.NewEnv(q, viz.DefaultTheme, 1, zerolog.Nop())
			_, err := engine.New(q, env, nil)
			Expect(err).To(MatchError(engine.ErrNoModules))
		})

		It("wraps module construction errors", func() {
			q, _ := quality.NewController(quality.ModeAuto, zerolog.Nop())
			env := viz.NewEnv(q, viz.DefaultTheme, 1, zerolog.Nop())
			_, err := engine.NewDefault(q, env, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("engine: build modules"))
		})

		It("builds the standard dashboard", func() {
			q, _ := quality.NewController(quality.ModeAuto, zerolog.Nop())
			env := viz.NewEnv(q, viz.DefaultTheme, 1, zerolog.Nop())
			s, err := engine.NewDefault(q, env, telemetry.CanonicalStages)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Modules()).To(HaveLen(7))
		})
	})

	Describe("OnFrame", func() {
		It("does no module work before the first snapshot", func() {
			for i := 0; i < 10; i++ {
				s.OnFrame(float64(i) * 16)
			}
			Expect(a.updates).To(BeZero())
			Expect(s.Frame()).To(Equal(uint64(10)))
			Expect(q.FPS()).To(BeNumerically("~", 62.5, 0.01))
		})

		It("updates every module with the latest snapshot", func() {
			first := &telemetry.Snapshot{RunID: "1"}
			second := &telemetry.Snapshot{RunID: "2"}
			s.SetSnapshot(first)
			s.SetSnapshot(second)
			s.OnFrame(0)
			Expect(a.last).To(BeIdenticalTo(second))
			Expect(b.last).To(BeIdenticalTo(second))
			Expect(s.Slot().Drops()).To(Equal(uint64(1)))
		})

		It("exposes the rendered snapshot without consuming the slot", func() {
			Expect(s.Latest()).To(BeNil())
			first := &telemetry.Snapshot{RunID: "1"}
			s.SetSnapshot(first)
			s.OnFrame(0)
			Expect(s.Latest()).To(BeIdenticalTo(first))

			s.SetSnapshot(&telemetry.Snapshot{RunID: "2"})
			Expect(s.Latest()).To(BeIdenticalTo(first))
			s.SetSnapshot(&telemetry.Snapshot{RunID: "3"})
			Expect(s.Slot().Drops()).To(Equal(uint64(1)))
		})

		It("computes a capped, non-negative delta", func() {
			s.SetSnapshot(&telemetry.Snapshot{})
			s.OnFrame(1000)
			s.OnFrame(1016)
			s.OnFrame(2000)
			s.OnFrame(1500)
			Expect(a.dts).To(HaveLen(4))
			Expect(a.dts[0]).To(BeZero())
			Expect(a.dts[1]).To(BeNumerically("~", 0.016, 1e-9))
			Expect(a.dts[2]).To(Equal(engine.MaxDelta))
			Expect(a.dts[3]).To(BeZero())
		})

		It("publishes particles and draw calls", func() {
			a.particles, b.particles = 3, 4
			s.SetSnapshot(&telemetry.Snapshot{})
			s.Resize(40, 20)
			s.OnFrame(0)
			st := s.Stats()
			Expect(st.ParticleCount).To(Equal(7))
			Expect(st.DrawCalls).To(Equal(2))
		})

		It("measures the snapshot arrival rate", func() {
			now := 0.0
			for i := 0; i < 4; i++ {
				s.SetSnapshot(&telemetry.Snapshot{})
				s.OnFrame(now)
				now += 500
			}
			// Three snapshots landed in the first full second window.
			Expect(s.Stats().WSRate).To(BeNumerically("~", 3, 1e-9))
		})
	})

	Describe("supervision", func() {
		It("faults a panicking module and keeps the others running", func() {
			a.panicOn = 2
			s.SetSnapshot(&telemetry.Snapshot{})
			s.OnFrame(0)
			s.OnFrame(16)
			s.OnFrame(32)

			Expect(b.updates).To(Equal(3))
			Expect(a.updates).To(Equal(2))
			faults := s.Faults()
			Expect(faults).To(HaveLen(1))
			Expect(faults[0].Module).To(Equal("a"))
			Expect(faults[0].Frame).To(Equal(uint64(2)))
			Expect(faults[0].Error()).To(ContainSubstring("boom"))
		})

		It("puts a reset module back in rotation", func() {
			a.panicOn = 1
			s.SetSnapshot(&telemetry.Snapshot{})
			s.OnFrame(0)
			Expect(s.Faults()).To(HaveLen(1))

			Expect(s.ResetModule("a")).To(Succeed())
			Expect(a.resets).To(Equal(1))
			Expect(s.Faults()).To(BeEmpty())
			s.OnFrame(16)
			Expect(a.updates).To(Equal(2))
		})

		It("rejects unknown module names", func() {
			err := s.ResetModule("nope")
			Expect(errors.Is(err, engine.ErrUnknownModule)).To(BeTrue())
		})
	})

	Describe("Resize", func() {
		It("tiles the surface and survives degenerate sizes", func() {
			s.Resize(100, 30)
			Expect(a.canvas.Width).To(BeNumerically(">", 0))
			s.Resize(0, 0)
			Expect(a.canvas.Width).To(BeZero())
			s.Resize(-10, -10)
			s.SetSnapshot(&telemetry.Snapshot{})
			Expect(func() { s.OnFrame(0) }).NotTo(Panic())
		})

		It("renders one panel per module", func() {
			s.Resize(40, 20)
			s.SetSnapshot(&telemetry.Snapshot{})
			s.OnFrame(0)
			out := s.Render()
			Expect(out).To(ContainSubstring("a"))
			Expect(out).To(ContainSubstring("b"))
		})
	})

	Describe("Destroy", func() {
		It("is idempotent and stops further ticks", func() {
			s.SetSnapshot(&telemetry.Snapshot{})
			s.OnFrame(0)
			s.Destroy()
			s.Destroy()
			Expect(a.destroyed).To(Equal(1))
			s.OnFrame(16)
			Expect(a.updates).To(Equal(1))
			Expect(s.ResetModule("a")).To(MatchError(engine.ErrDestroyed))
		})

		It("is called when Run returns", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			Expect(s.Run(ctx, 200)).To(Succeed())
			Expect(s.Destroyed()).To(BeTrue())
			Expect(s.Run(ctx, 200)).To(MatchError(engine.ErrDestroyed))
		})

		It("ends a running loop", func() {
			done := make(chan error, 1)
			go func() { done <- s.Run(context.Background(), 200) }()
			Eventually(s.Frame).Should(BeNumerically(">", 1))
			s.Destroy()
			Eventually(done, time.Second).Should(Receive(BeNil()))
			frames := s.Frame()
			Consistently(s.Frame, 50*time.Millisecond).Should(Equal(frames))
		})
	})

	Describe("adaptive quality", func() {
		It("downgrades the live modules after sustained slow frames", func() {
			q, _ := quality.NewController(quality.ModeAuto, zerolog.Nop())
			env := viz.NewEnv(q, viz.DefaultTheme, 1, zerolog.Nop())
			s, err := engine.NewDefault(q, env, telemetry.CanonicalStages, engine.WithSlot(feed.NewSlot()))
			Expect(err).NotTo(HaveOccurred())
			s.Resize(120, 40)
			s.SetSnapshot(&telemetry.Snapshot{})

			end := s.RunFrames(downgradeFrames(), 25, nil)
			Expect(end).To(BeNumerically("~", 25*float64(downgradeFrames()), 1e-6))
			Expect(q.Level()).To(Equal(quality.ModeMedium))
			Expect(env.Quality.Settings()).To(Equal(quality.Presets[quality.ModeMedium]))
		})
	})
})

var _ = Describe("RunFrames", func() {
	It("adds the per-frame load to the virtual clock", func() {
		s, _ := newScheduler(newFake("a"))
		var seen []float64
		end := s.RunFrames(3, 10, func(i int, now float64) float64 {
			seen = append(seen, now)
			return float64(i)
		})
		Expect(seen).To(Equal([]float64{0, 10, 21}))
		Expect(end).To(Equal(33.0))
	})
})

var _ = Describe("Tiles", func() {
	It("uses one column on narrow surfaces", func() {
		ts := engine.Tiles(3, 60, 30)
		Expect(ts).To(HaveLen(3))
		for i, t := range ts {
			Expect(t.Row).To(Equal(i))
			Expect(t.Width).To(Equal(60))
			Expect(t.Height).To(Equal(10))
		}
	})

	It("gives the first module a full row in an odd two-column layout", func() {
		ts := engine.Tiles(7, 120, 40)
		Expect(ts[0]).To(Equal(engine.Tile{Col: 0, Row: 0, Width: 120, Height: 10}))
		Expect(ts[1]).To(Equal(engine.Tile{Col: 0, Row: 1, Width: 60, Height: 10}))
		Expect(ts[2]).To(Equal(engine.Tile{Col: 1, Row: 1, Width: 60, Height: 10}))
		Expect(ts[6]).To(Equal(engine.Tile{Col: 1, Row: 3, Width: 60, Height: 10}))
	})

	It("clamps the canvas inside tiny tiles", func() {
		w, h := engine.Tile{Width: 1, Height: 1}.CanvasSize()
		Expect(w).To(BeZero())
		Expect(h).To(BeZero())
		Expect(engine.Tiles(0, 10, 10)).To(BeNil())
	})
})

// downgradeFrames is enough frames to fill the window and then trip the
// downgrade once.
func downgradeFrames() int {
	return quality.WindowSize + quality.DowngradeAfter
}
