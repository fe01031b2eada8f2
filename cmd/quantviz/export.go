package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/quantviz/internal/export"
	"github.com/san-kum/quantviz/internal/viz"
)

const exportWidth, exportHeight = 120, 48

func runExportSVG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, zerolog.Nop())
	if err != nil {
		return err
	}
	defer rt.sched.Destroy()

	if err := rt.headless(exportFrames, exportWidth, exportHeight, nil, nil); err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	for _, m := range rt.sched.Modules() {
		path := filepath.Join(outDir, m.Name()+".svg")
		if err := os.WriteFile(path, []byte(export.CanvasToSVG(m.Canvas(), scale, rt.env.Theme)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)

		ribbon, ok := m.(*viz.EquityRibbon)
		if !ok {
			continue
		}
		var equity []float64
		for _, s := range ribbon.Samples() {
			equity = append(equity, s.Equity)
		}
		if svg := export.LineToSVG(equity, 800, 300, string(rt.env.Theme.Success)); svg != "" {
			path := filepath.Join(outDir, "equity-line.svg")
			if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		}
	}
	return nil
}
