package viz

import (
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/telemetry"
)

func testEnv(mode quality.Mode) *Env {
	return NewEnv(StaticSettings(quality.Presets[mode]), DefaultTheme, 1, zerolog.Nop())
}

func ptr(v float64) *float64 { return &v }

func flowSnapshot() *telemetry.Snapshot {
	return &telemetry.Snapshot{
		PortfolioFlow: &telemetry.PortfolioFlow{
			Nodes: []telemetry.FlowNode{
				{ID: "cash", Label: "Cash", Weight: 0.4, WeightChange: ptr(-0.02)},
				{ID: "ticker:AAPL", Label: "AAPL", Weight: 0.35, WeightChange: ptr(0.03)},
				{ID: "ticker:MSFT", Label: "MSFT", Weight: 0.25},
			},
			Edges: []telemetry.FlowEdge{
				{From: "cash", To: "ticker:AAPL", Value: 0.35},
				{From: "cash", To: "ticker:MSFT", Value: 0.25},
			},
		},
		PnL:                 &telemetry.PnLStrip{Equity: 100000, Drawdown: -0.01},
		TractionRisk:        &telemetry.Gauge{Value: 0.4},
		BrakeVarPressure:    &telemetry.Gauge{Value: 0.2},
		RegimeState:         telemetry.RegimeRain,
		PipelineStageStatus: map[telemetry.Stage]string{telemetry.StagePredict: telemetry.StatusRunning},
		PipelineLatencyMS:   map[telemetry.Stage]float64{telemetry.StagePredict: 50},
	}
}

func allModules(t *testing.T, env *Env) []Module {
	t.Helper()
	mods, err := NewModules(env, telemetry.CanonicalStages)
	if err != nil {
		t.Fatal(err)
	}
	return mods
}

func TestModules_EmptySnapshotIsSafe(t *testing.T) {
	for _, m := range allModules(t, testEnv(quality.ModeHigh)) {
		t.Run(m.Name(), func(t *testing.T) {
			m.Resize(40, 10)
			m.Update(&telemetry.Snapshot{}, 0.016)
			m.Resize(0, 0)
			m.Update(&telemetry.Snapshot{}, 0.016)
			m.Resize(-5, -5)
			m.Update(flowSnapshot(), 0.016)
			m.Reset()
			m.Destroy()
		})
	}
}

func TestModules_NamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range allModules(t, testEnv(quality.ModeLow)) {
		if seen[m.Name()] {
			t.Errorf("duplicate module name %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 7 {
		t.Errorf("expected 7 modules, got %d", len(seen))
	}
}

func TestNewPipelineSignal_InvalidStages(t *testing.T) {
	env := testEnv(quality.ModeHigh)
	if _, err := NewPipelineSignal(env, nil); err == nil {
		t.Error("expected error for empty stage list")
	}
	dup := []telemetry.Stage{telemetry.StageExecute, telemetry.StageExecute}
	if _, err := NewModules(env, dup); err == nil {
		t.Error("expected error for duplicate stages")
	}
}

func TestPortfolioFlow_SpawnsUnderSoftCap(t *testing.T) {
	env := testEnv(quality.ModeMedium)
	f, err := NewPortfolioFlow(env)
	if err != nil {
		t.Fatal(err)
	}
	f.Resize(60, 16)
	s := flowSnapshot()
	softCap := int(FlowPoolSize * quality.Presets[quality.ModeMedium].ParticleDensity)
	for i := 0; i < 2000; i++ {
		f.Update(s, 0.001)
		if f.Particles() > softCap {
			t.Fatalf("tick %d: %d particles above soft cap %d", i, f.Particles(), softCap)
		}
	}
	if f.Particles() == 0 {
		t.Error("expected particles to spawn")
	}
}

func TestPortfolioFlow_StaleEdgeDropsParticles(t *testing.T) {
	f, _ := NewPortfolioFlow(testEnv(quality.ModeHigh))
	f.Resize(60, 16)
	s := flowSnapshot()
	for i := 0; i < 200 && f.Particles() == 0; i++ {
		f.Update(s, 0.001)
	}
	if f.Particles() == 0 {
		t.Fatal("no particles spawned")
	}
	// Same index, different endpoints: every particle is stale.
	next := flowSnapshot()
	next.PortfolioFlow.Edges = []telemetry.FlowEdge{{From: "ticker:MSFT", To: "ticker:AAPL", Value: 0.1}}
	next.PortfolioFlow.Nodes[2].Weight = 0.5
	before := f.Particles()
	f.Update(next, 0.001)
	if f.Particles() > 1 || before == 0 {
		t.Errorf("expected stale particles dropped, %d remain of %d", f.Particles(), before)
	}
}

func TestPortfolioFlow_NoParticlesWhenDisabled(t *testing.T) {
	f, _ := NewPortfolioFlow(testEnv(quality.ModeLow))
	f.Resize(60, 16)
	for i := 0; i < 500; i++ {
		f.Update(flowSnapshot(), 0.016)
	}
	if f.Particles() != 0 {
		t.Errorf("expected no particles on low preset, got %d", f.Particles())
	}
}

func TestSpawnRate(t *testing.T) {
	tests := []struct {
		name    string
		latency map[telemetry.Stage]float64
		want    float64
	}{
		{"no latency", nil, NoLatencyRate},
		{"fast", map[telemetry.Stage]float64{telemetry.StagePredict: 10}, 1},
		{"at reference", map[telemetry.Stage]float64{telemetry.StagePredict: LatencyRef}, 1},
		{"slow", map[telemetry.Stage]float64{telemetry.StagePredict: 400}, 0.25},
		{"very slow", map[telemetry.Stage]float64{telemetry.StagePredict: 1e6}, MinPacketRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &telemetry.Snapshot{PipelineLatencyMS: tt.latency}
			if got := SpawnRate(s); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestPipelineSignal_PacketsBounded(t *testing.T) {
	p, err := NewPipelineSignal(testEnv(quality.ModeHigh), telemetry.CanonicalStages)
	if err != nil {
		t.Fatal(err)
	}
	p.Resize(80, 6)
	s := flowSnapshot()
	max := 0
	for i := 0; i < 3000; i++ {
		p.Update(s, 0.016)
		if p.Particles() > max {
			max = p.Particles()
		}
	}
	if max == 0 {
		t.Error("expected packets to spawn")
	}
	if max > PipelinePoolSize {
		t.Errorf("pool overflow: %d", max)
	}
}

func TestEquityRibbon_PushesOnlyNewSnapshots(t *testing.T) {
	r := NewEquityRibbon(testEnv(quality.ModeHigh))
	r.Resize(40, 8)
	s := flowSnapshot()
	for i := 0; i < 10; i++ {
		r.Update(s, 0.016)
	}
	if got := len(r.Samples()); got != 1 {
		t.Fatalf("expected 1 sample for a repeated snapshot, got %d", got)
	}
	for i := 0; i < 130; i++ {
		r.Update(&telemetry.Snapshot{PnL: &telemetry.PnLStrip{Equity: 100000 + float64(i)}}, 0.016)
	}
	smp := r.Samples()
	if len(smp) != RibbonCapacity {
		t.Fatalf("expected %d samples, got %d", RibbonCapacity, len(smp))
	}
	if smp[0].Equity != 100010 {
		t.Errorf("expected oldest 100010, got %f", smp[0].Equity)
	}
}

func TestEquityBounds(t *testing.T) {
	lo, hi := EquityBounds([]float64{100, 200, 150})
	if lo != 99 || hi != 201 {
		t.Errorf("expected [99, 201], got [%f, %f]", lo, hi)
	}
	lo, hi = EquityBounds([]float64{500, 500})
	if lo != 495 || hi != 505 {
		t.Errorf("flat series: expected [495, 505], got [%f, %f]", lo, hi)
	}
	lo, hi = EquityBounds([]float64{0})
	if lo >= hi {
		t.Errorf("zero series must still have a range, got [%f, %f]", lo, hi)
	}
}

func TestDrawdownScale(t *testing.T) {
	if got := DrawdownScale([]float64{0, 0}); got != DrawdownFloor {
		t.Errorf("expected floor, got %f", got)
	}
	if got := DrawdownScale([]float64{-0.05, 0.02, -0.01}); got != 0.05 {
		t.Errorf("expected 0.05, got %f", got)
	}
}

func TestRibbonX(t *testing.T) {
	if got := RibbonX(0, 120, 238); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := RibbonX(119, 120, 238); got != 238 {
		t.Errorf("expected 238, got %f", got)
	}
	// Partially filled buffers stay left-anchored.
	if got := RibbonX(9, 120, 238); math.Abs(got-18) > 1e-9 {
		t.Errorf("expected 18, got %f", got)
	}
	if got := RibbonX(0, 1, 100); got != 0 {
		t.Errorf("capacity 1 should not divide by zero, got %f", got)
	}
}

func TestRegimeRiver_DefaultConfidence(t *testing.T) {
	r := NewRegimeRiver(testEnv(quality.ModeHigh))
	r.Resize(30, 6)
	r.Update(&telemetry.Snapshot{}, 0.016)
	r.Update(&telemetry.Snapshot{RegimeState: telemetry.RegimeStorm, RegimeConfidence: ptr(0.9)}, 0.016)
	smp := r.Samples()
	if len(smp) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(smp))
	}
	if smp[0].Regime != telemetry.RegimeClear || smp[0].Confidence != DefaultConfidence {
		t.Errorf("expected clear/%v default, got %+v", DefaultConfidence, smp[0])
	}
	if smp[1].Regime != telemetry.RegimeStorm || smp[1].Confidence != 0.9 {
		t.Errorf("unexpected sample %+v", smp[1])
	}
}

func TestCumulate(t *testing.T) {
	bars := Cumulate([]string{"a", "b", "c"}, []float64{0.1, math.NaN(), -0.3})
	want := []Bar{
		{ID: "a", Delta: 0.1, Start: 0, End: 0.1},
		{ID: "b", Delta: 0, Start: 0.1, End: 0.1},
		{ID: "c", Delta: -0.3, Start: 0.1, End: 0.1 - 0.3},
	}
	for i := range want {
		b := bars[i]
		if b.ID != want[i].ID || math.Abs(b.Delta-want[i].Delta) > 1e-12 ||
			math.Abs(b.Start-want[i].Start) > 1e-12 || math.Abs(b.End-want[i].End) > 1e-12 {
			t.Errorf("bar %d: expected %+v, got %+v", i, want[i], b)
		}
	}
}

func TestContributionWaterfall_ReorderKeepsValuesByID(t *testing.T) {
	w := NewContributionWaterfall(testEnv(quality.ModeHigh))
	w.Resize(40, 8)
	snap := func(wa, wb float64) *telemetry.Snapshot {
		return &telemetry.Snapshot{PortfolioFlow: &telemetry.PortfolioFlow{
			Nodes: []telemetry.FlowNode{
				{ID: "a", Weight: wa, WeightChange: ptr(0.05)},
				{ID: "b", Weight: wb},
			},
		}}
	}
	w.Update(snap(0.6, 0.4), 0.016)
	w.Update(snap(0.3, 0.7), 0.016)

	bars := w.Bars()
	if len(bars) != 2 || bars[0].ID != "b" || bars[1].ID != "a" {
		t.Fatalf("expected b before a, got %+v", bars)
	}
	if bars[0].Delta != 0 {
		t.Errorf("b has no change and must stay at 0, got %f", bars[0].Delta)
	}
	if math.Abs(bars[1].Delta-0.05) > 1e-12 {
		t.Errorf("a must keep its own delta 0.05, got %f", bars[1].Delta)
	}
}

func TestContributionWaterfall_MissingChangeHolds(t *testing.T) {
	w := NewContributionWaterfall(testEnv(quality.ModeHigh))
	w.Resize(40, 8)
	node := func(change *float64) *telemetry.Snapshot {
		return &telemetry.Snapshot{PortfolioFlow: &telemetry.PortfolioFlow{
			Nodes: []telemetry.FlowNode{{ID: "a", Weight: 1, WeightChange: change}},
		}}
	}
	w.Update(node(ptr(0.04)), 0.016)
	w.Update(node(nil), 0.016)
	if got := w.Bars()[0].Delta; math.Abs(got-0.04) > 1e-12 {
		t.Errorf("expected held 0.04, got %f", got)
	}
}

func TestContributionWaterfall_CapsAndRetains(t *testing.T) {
	w := NewContributionWaterfall(testEnv(quality.ModeLow))
	w.Resize(40, 8)
	w.Update(flowSnapshot(), 0.016)
	bars := w.Bars()
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].ID != "cash" || bars[0].Delta != -0.02 {
		t.Errorf("unexpected first bar %+v", bars[0])
	}
	if bars[2].Delta != 0 {
		t.Errorf("missing change should start at 0, got %f", bars[2].Delta)
	}

	many := &telemetry.Snapshot{PortfolioFlow: &telemetry.PortfolioFlow{}}
	for i := 0; i < 20; i++ {
		many.PortfolioFlow.Nodes = append(many.PortfolioFlow.Nodes, telemetry.FlowNode{ID: string(rune('a' + i)), Weight: 0.05})
	}
	w.Update(many, 0.016)
	if got := len(w.Bars()); got != quality.Presets[quality.ModeLow].MaxNodes {
		t.Errorf("expected %d bars, got %d", quality.Presets[quality.ModeLow].MaxNodes, got)
	}
}

func TestRiskHeatmap_IntensityConverges(t *testing.T) {
	m := NewRiskHeatmap(testEnv(quality.ModeHigh))
	m.Resize(30, 8)
	s := flowSnapshot()
	m.Update(s, 0.016)
	cells := m.Cells()
	if len(cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(cells))
	}
	// cash: 0.4*2 + 0.5*(0.5*0.4 + 0.5*0.2) = 0.95
	if math.Abs(cells[0].Intensity-0.95) > 1e-9 {
		t.Errorf("expected 0.95, got %f", cells[0].Intensity)
	}
	s2 := flowSnapshot()
	s2.TractionRisk.Value = 0
	s2.BrakeVarPressure.Value = 0
	prev := m.Intensities()[1]
	for i := 0; i < 200; i++ {
		m.Update(s2, 0.016)
	}
	got := m.Intensities()[1]
	want := m.Cells()[1].Intensity
	if math.Abs(got-want) > 1e-6 || prev == want {
		t.Errorf("expected convergence to %f from %f, got %f", want, prev, got)
	}
}
