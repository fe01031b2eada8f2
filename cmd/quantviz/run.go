package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/san-kum/quantviz/internal/logger"
	"github.com/san-kum/quantviz/internal/tui"
)

// plainWidth and plainHeight size the plain output when stdout is not a
// terminal.
const plainWidth, plainHeight = 120, 40

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file or nowhere.
	log, closer, err := logger.OpenFile(cfg.Log.File, logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	if err != nil {
		return err
	}
	defer closer.Close()

	rt, err := newRuntime(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rt.startFeed(ctx)
	rt.serveMetrics(ctx, cfg.Metrics.Addr)

	if plain {
		w, h, err := term.GetSize(os.Stdout.Fd())
		if err != nil || w <= 0 || h <= 0 {
			w, h = plainWidth, plainHeight
		}
		rt.sched.Resize(w, h-1)
		return tui.RunPlain(ctx, rt.sched, tui.NewPlainRenderer(os.Stdout, 10), cfg.Engine.FPS)
	}

	m := tui.New(rt.sched, tui.Options{FPS: cfg.Engine.FPS, GIFPath: gifPath, Log: log})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	rt.sched.Destroy()
	return nil
}
