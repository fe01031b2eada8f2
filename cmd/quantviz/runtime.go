package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/config"
	"github.com/san-kum/quantviz/internal/engine"
	"github.com/san-kum/quantviz/internal/feed"
	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/telemetry"
	"github.com/san-kum/quantviz/internal/viz"
)

// runtime is everything a command needs to drive the dashboard.
type runtime struct {
	cfg    *config.Config
	log    zerolog.Logger
	q      *quality.Controller
	env    *viz.Env
	sched  *engine.Scheduler
	source feed.Source
}

func newRuntime(cfg *config.Config, log zerolog.Logger) (*runtime, error) {
	mode, err := quality.ParseMode(cfg.Engine.Quality)
	if err != nil {
		return nil, err
	}
	q, err := quality.NewController(mode, log)
	if err != nil {
		return nil, err
	}
	env := viz.NewEnv(q, viz.GetTheme(cfg.Engine.Theme), cfg.Engine.Seed, log)
	sched, err := engine.NewDefault(q, env, telemetry.CanonicalStages)
	if err != nil {
		return nil, err
	}
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("quality", string(mode)).
		Str("scenario", cfg.Feed.Scenario).
		Str("replay", cfg.Feed.Replay).
		Dur("interval", cfg.Feed.Interval).
		Msg("runtime ready")
	return &runtime{cfg: cfg, log: log, q: q, env: env, sched: sched, source: src}, nil
}

func newSource(cfg *config.Config) (feed.Source, error) {
	if cfg.Feed.Replay != "" {
		return feed.LoadReplay(cfg.Feed.Replay, cfg.Feed.Loop)
	}
	sc, err := feed.GetScenario(cfg.Feed.Scenario)
	if err != nil {
		return nil, err
	}
	return feed.NewSynthetic(sc, cfg.Feed.Seed, cfg.Feed.Interval), nil
}

// startFeed pumps the source into the scheduler's slot until ctx is done.
func (rt *runtime) startFeed(ctx context.Context) {
	go func() {
		if err := feed.Pump(ctx, rt.source, rt.sched.Slot(), rt.cfg.Feed.Interval, rt.log); err != nil {
			rt.log.Error().Err(err).Msg("feed stopped")
		}
	}()
}

// serveMetrics exposes the quality stats on addr until ctx is done.
func (rt *runtime) serveMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(quality.NewCollector(rt.q), collectors.NewGoCollector())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		rt.log.Info().Str("addr", addr).Msg("serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.Error().Err(err).Msg("metrics server")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
}

// headless drives the scheduler on a virtual clock, storing a fresh
// snapshot every feed interval. observe, if set, runs after each frame's
// load is computed and before the frame executes.
func (rt *runtime) headless(n int, width, height int, load func(i int) float64, observe func(i int, now float64)) error {
	rt.sched.Resize(width, height)
	step := 1000 / float64(rt.cfg.Engine.FPS)
	every := float64(rt.cfg.Feed.Interval.Milliseconds())
	next := 0.0
	var ferr error
	rt.sched.RunFrames(n, step, func(i int, now float64) float64 {
		if ferr == nil && now >= next {
			snap, err := rt.source.Next()
			switch {
			case errors.Is(err, io.EOF):
				next = now + 1e18
			case err != nil:
				ferr = fmt.Errorf("feed: %w", err)
			default:
				rt.sched.SetSnapshot(snap)
				next += every
			}
		}
		if observe != nil {
			observe(i, now)
		}
		if load == nil {
			return 0
		}
		return load(i)
	})
	return ferr
}
