package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/quantviz/internal/config"
	"github.com/san-kum/quantviz/internal/feed"
	"github.com/san-kum/quantviz/internal/quality"
)

var (
	configFile  string
	preset      string
	qualityMode string
	scenario    string
	replayFile  string
	interval    time.Duration
	fps         int
	theme       string
	seed        int64
	metricsAddr string
	plain       bool
	gifPath     string
	// bench
	benchFrames int
	loadMS      float64
	loadAfter   int
	// export-svg
	exportFrames int
	outDir       string
	scale        float64
	// config init
	force bool
)

// main registers the quantviz commands and runs the dashboard when no
// subcommand is given.
func main() {
	rootCmd := &cobra.Command{
		Use:          "quantviz",
		Short:        "adaptive real-time trading telemetry dashboard",
		SilenceUsage: true,
		RunE:         runDashboard,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	addRunFlags(rootCmd)
	addDashboardFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the live dashboard",
		Args:  cobra.NoArgs,
		RunE:  runDashboard,
	}
	addRunFlags(runCmd)
	addDashboardFlags(runCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run frames headless on a virtual clock and report pacing",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchFrames, "frames", 1200, "frames to run")
	benchCmd.Flags().Float64Var(&loadMS, "load", 0, "artificial extra frame time in ms")
	benchCmd.Flags().IntVar(&loadAfter, "load-after", 0, "frame from which the artificial load applies")

	exportCmd := &cobra.Command{
		Use:   "export-svg",
		Short: "render frames headless and write one SVG per module",
		Args:  cobra.NoArgs,
		RunE:  runExportSVG,
	}
	addRunFlags(exportCmd)
	exportCmd.Flags().IntVar(&exportFrames, "frames", 300, "frames to render before export")
	exportCmd.Flags().StringVar(&outDir, "out", "svg", "output directory")
	exportCmd.Flags().Float64Var(&scale, "scale", 4, "pixels per braille dot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list quality presets, feed scenarios and config presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage configuration files",
	}
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	configCmd.AddCommand(initCmd)

	rootCmd.AddCommand(runCmd, benchCmd, exportCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&qualityMode, "quality", config.DefaultQuality, "quality mode (auto, low, medium, high)")
	cmd.Flags().StringVar(&scenario, "scenario", config.DefaultScenario, "synthetic feed scenario")
	cmd.Flags().StringVar(&replayFile, "replay", "", "replay a frames.jsonl recording instead of the synthetic feed")
	cmd.Flags().DurationVar(&interval, "interval", config.DefaultInterval, "snapshot interval")
	cmd.Flags().IntVar(&fps, "fps", config.DefaultFPS, "target frame rate")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "colour theme")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
}

// addDashboardFlags adds the flags that only make sense with a live terminal.
func addDashboardFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&plain, "plain", false, "paint with plain ANSI output instead of the full-screen UI")
	cmd.Flags().StringVar(&gifPath, "gif", "quantviz.gif", "recording output path (g key)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
}

// loadConfig resolves the file or preset, then environment, then flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
	} else {
		var err error
		if cfg, err = config.Resolve(configFile); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("quality") {
		cfg.Engine.Quality = qualityMode
	}
	if flags.Changed("scenario") {
		cfg.Feed.Scenario = scenario
	}
	if flags.Changed("replay") {
		cfg.Feed.Replay = replayFile
	}
	if flags.Changed("interval") {
		cfg.Feed.Interval = interval
	}
	if flags.Changed("fps") {
		cfg.Engine.FPS = fps
	}
	if flags.Changed("theme") {
		cfg.Engine.Theme = theme
	}
	if flags.Changed("seed") {
		cfg.Feed.Seed = seed
		cfg.Engine.Seed = seed
	}
	if flags.Lookup("metrics-addr") != nil && flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}
	return cfg, cfg.Validate()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUALITY\tDENSITY\tGLOW\tPARTICLES\tMAX HAZARDS\tMAX NODES")
	for _, m := range quality.ListModes() {
		if m == quality.ModeAuto {
			fmt.Fprintln(w, "auto\t(starts high, steps down under load)\t\t\t\t")
			continue
		}
		s := quality.Presets[m]
		fmt.Fprintf(w, "%s\t%.2f\t%v\t%v\t%d\t%d\n",
			m, s.ParticleDensity, s.EnableGlow, s.EnableParticles, s.MaxHazards, s.MaxNodes)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SCENARIO\tVOLATILITY\tHAZARD RATE\tFAILURE RATE\tLATENCY\tPOSITIONS")
	for _, name := range feed.ListScenarios() {
		sc := feed.Scenarios[name]
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.0fms\t%d\n",
			name, sc.Volatility, sc.HazardRate, sc.FailureRate, sc.LatencyMS, sc.Positions)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PRESET\tSCENARIO\tINTERVAL\tQUALITY\tTHEME")
	for _, name := range config.ListPresets() {
		p := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name, p.Feed.Scenario, p.Feed.Interval, p.Engine.Quality, p.Engine.Theme)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "quantviz.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s exists (use --force to overwrite)", path)
	}
	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
