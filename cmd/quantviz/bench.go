package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/quantviz/internal/logger"
	"github.com/san-kum/quantviz/internal/quality"
)

const (
	benchWidth, benchHeight = 160, 48
	// benchSample is how often, in frames, the bench records stats.
	benchSample = 30
)

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: "warn", Pretty: true, Writer: os.Stderr})
	rt, err := newRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer rt.sched.Destroy()

	fmt.Printf("benchmarking %d frames at %d fps (load %.1fms from frame %d)\n\n",
		benchFrames, cfg.Engine.FPS, loadMS, loadAfter)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAME\tTIME\tFPS\tLEVEL\tPARTICLES\tDRAWS\tSNAPSHOTS/S")

	var fpsHist []float64
	level := rt.q.Level()
	row := func(i int, now float64) {
		st := rt.q.Stats()
		fmt.Fprintf(w, "%d\t%.1fs\t%.1f\t%s\t%d\t%d\t%.1f\n",
			i, now/1000, st.FPS, rt.q.Level(), st.ParticleCount, st.DrawCalls, st.WSRate)
	}
	observe := func(i int, now float64) {
		if i == 0 {
			return
		}
		if i%benchSample == 0 {
			fpsHist = append(fpsHist, rt.q.FPS())
			row(i, now)
		}
		if l := rt.q.Level(); l != level {
			fmt.Fprintf(w, "%d\t%.1fs\tdowngrade\t%s -> %s\t\t\t\n", i, now/1000, level, l)
			level = l
		}
	}
	load := func(i int) float64 {
		if i >= loadAfter {
			return loadMS
		}
		return 0
	}
	if err := rt.headless(benchFrames, benchWidth, benchHeight, load, observe); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(fpsHist) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(fpsHist,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.LowerBound(0),
			asciigraph.Caption("fps")))
	}
	fmt.Printf("\nfinal level %s after %d downgrade(s), %.1f fps\n",
		rt.q.Level(), rt.q.Downgrades(), rt.q.FPS())
	if rt.q.Mode() == quality.ModeAuto && rt.q.Downgrades() == 0 && loadMS > 0 {
		fmt.Println("load was absorbed without a downgrade")
	}
	return nil
}
