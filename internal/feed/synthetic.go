package feed

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/san-kum/quantviz/internal/telemetry"
)

// Scenario shapes the synthetic market.
type Scenario struct {
	Name string `yaml:"name" json:"name"`
	// Volatility scales every noise-driven quantity.
	Volatility float64 `yaml:"volatility" json:"volatility"`
	// Drift is the mean equity return per snapshot.
	Drift float64 `yaml:"drift" json:"drift"`
	// HazardRate is the chance of a new hazard per snapshot.
	HazardRate float64 `yaml:"hazard_rate" json:"hazard_rate"`
	// StormBias pushes the regime toward rain and storm.
	StormBias float64 `yaml:"storm_bias" json:"storm_bias"`
	// FailureRate is the chance the running stage reports failed.
	FailureRate float64 `yaml:"failure_rate" json:"failure_rate"`
	LatencyMS   float64 `yaml:"latency_ms" json:"latency_ms"`
	Positions   int     `yaml:"positions" json:"positions"`
}

var Scenarios = map[string]Scenario{
	"calm": {
		Name: "calm", Volatility: 0.3, Drift: 0.0002, HazardRate: 0.05,
		StormBias: 0, FailureRate: 0.01, LatencyMS: 40, Positions: 5,
	},
	"volatile": {
		Name: "volatile", Volatility: 1.0, Drift: 0, HazardRate: 0.2,
		StormBias: 0.15, FailureRate: 0.03, LatencyMS: 90, Positions: 8,
	},
	"stressed": {
		Name: "stressed", Volatility: 1.6, Drift: -0.0008, HazardRate: 0.4,
		StormBias: 0.3, FailureRate: 0.1, LatencyMS: 250, Positions: 12,
	},
}

func GetScenario(name string) (Scenario, error) {
	sc, ok := Scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("feed: unknown scenario %q", name)
	}
	return sc, nil
}

func ListScenarios() []string {
	names := make([]string, 0, len(Scenarios))
	for n := range Scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var tickers = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "GOOG", "META",
	"TSLA", "JPM", "XOM", "UNH", "V", "KO",
}

var hazardKinds = []string{"earnings", "news", "macro", "filing"}

const (
	startEquity = 100000.0
	// hazardLinger keeps a hazard in the stream this long after its eta
	// passes, so consumers see eta <= 0 events.
	hazardLinger = 2.0
)

// Synthetic generates a plausible telemetry stream from smooth noise. The
// same scenario, seed and step produce the same values apart from hazard
// ids and timestamps.
type Synthetic struct {
	sc    Scenario
	noise opensimplex.Noise
	rng   *rand.Rand
	step  time.Duration
	clock func() time.Time

	n       int
	equity  float64
	peak    float64
	weights map[string]float64
	hazards []telemetry.HazardEvent
	runID   string
}

// NewSynthetic builds a generator that advances step of market time per
// snapshot.
func NewSynthetic(sc Scenario, seed int64, step time.Duration) *Synthetic {
	if sc.Positions <= 0 {
		sc.Positions = 1
	}
	if sc.Positions > len(tickers) {
		sc.Positions = len(tickers)
	}
	if step <= 0 {
		step = 500 * time.Millisecond
	}
	return &Synthetic{
		sc:      sc,
		noise:   opensimplex.NewNormalized(seed),
		rng:     rand.New(rand.NewSource(seed)),
		step:    step,
		clock:   time.Now,
		equity:  startEquity,
		peak:    startEquity,
		weights: make(map[string]float64),
		runID:   uuid.NewString(),
	}
}

func (g *Synthetic) Scenario() Scenario { return g.sc }

// Next never fails.
func (g *Synthetic) Next() (*telemetry.Snapshot, error) {
	g.n++
	t := float64(g.n)
	dt := g.step.Seconds()

	s := &telemetry.Snapshot{
		SchemaVersion: "1.0",
		TsUTC:         g.clock().UTC().Format(time.RFC3339),
		ExecutionMode: "paper",
		RunID:         g.runID,
	}
	s.TradingDate = g.clock().UTC().Format("20060102")

	s.SpeedAlpha = g.gauge(t, 1, 0.5)
	s.RPMTurnover = g.gauge(t, 2, 0.3)
	s.TractionRisk = g.gauge(t, 3, 0.3+g.sc.StormBias)
	s.BrakeVarPressure = g.gauge(t, 4, 0.25+g.sc.StormBias/2)

	g.stepEquity(t)
	dd := g.equity/g.peak - 1
	ret := g.equity/startEquity - 1
	s.PnL = &telemetry.PnLStrip{Equity: g.equity, Drawdown: dd, Return1D: &ret}
	if dd < -0.05 {
		s.Warnings = append(s.Warnings, telemetry.WarningItem{
			Code: "DRAWDOWN", Severity: 2, Message: fmt.Sprintf("drawdown %.1f%%", dd*100),
		})
	}

	stress := g.noise.Eval2(t*0.02, 20) + g.sc.StormBias
	conf := 0.4 + 0.6*g.noise.Eval2(t*0.05, 21)
	s.RegimeConfidence = &conf
	switch {
	case stress > 0.75:
		s.RegimeState = telemetry.RegimeStorm
	case stress > 0.55:
		s.RegimeState = telemetry.RegimeRain
	default:
		s.RegimeState = telemetry.RegimeClear
	}

	g.pipeline(s, t)
	s.PortfolioFlow = g.flow(t)
	g.stepHazards(s, dt)
	return s, nil
}

// gauge samples a 0..1 gauge around bias on noise channel ch.
func (g *Synthetic) gauge(t, ch, bias float64) *telemetry.Gauge {
	v := bias + (g.noise.Eval2(t*0.05, ch*10)-0.5)*g.sc.Volatility
	v = math.Max(0, math.Min(1, v))
	trend := (g.noise.Eval2(t*0.05, ch*10) - g.noise.Eval2((t-1)*0.05, ch*10)) * 100
	return &telemetry.Gauge{Value: v, Trend1D: &trend}
}

func (g *Synthetic) stepEquity(t float64) {
	shock := (g.noise.Eval2(t*0.3, 10) - 0.5) * 0.01 * g.sc.Volatility
	g.equity *= 1 + g.sc.Drift + shock
	if g.equity > g.peak {
		g.peak = g.equity
	}
}

func (g *Synthetic) pipeline(s *telemetry.Snapshot, t float64) {
	stages := telemetry.CanonicalStages
	cur := g.n % (len(stages) + 1)
	s.PipelineStageStatus = make(map[telemetry.Stage]string, len(stages))
	s.PipelineLatencyMS = make(map[telemetry.Stage]float64, len(stages))
	s.PipelineStatus = telemetry.StatusRunning
	for i, st := range stages {
		switch {
		case i < cur:
			s.PipelineStageStatus[st] = telemetry.StatusOK
			jitter := g.noise.Eval2(t*0.1, 30+float64(i))
			s.PipelineLatencyMS[st] = g.sc.LatencyMS * (0.5 + jitter)
		case i == cur:
			if g.rng.Float64() < g.sc.FailureRate {
				s.PipelineStageStatus[st] = telemetry.StatusFailed
				s.PipelineStatus = telemetry.StatusFailed
			} else {
				s.PipelineStageStatus[st] = telemetry.StatusRunning
			}
		}
	}
	if cur == len(stages) {
		s.PipelineStatus = telemetry.StatusOK
	}
}

func (g *Synthetic) flow(t float64) *telemetry.PortfolioFlow {
	n := g.sc.Positions
	raw := make([]float64, n+1)
	total := 0.0
	for i := range raw {
		raw[i] = 0.2 + g.noise.Eval2(t*0.03, 50+float64(i)*3)
		total += raw[i]
	}

	pf := &telemetry.PortfolioFlow{}
	hhi := 0.0
	add := func(id, label string, w float64) {
		node := telemetry.FlowNode{ID: id, Label: label, Weight: w}
		if prev, ok := g.weights[id]; ok {
			d := w - prev
			node.WeightChange = &d
		}
		g.weights[id] = w
		pf.Nodes = append(pf.Nodes, node)
		hhi += w * w
	}
	add("cash", "Cash", raw[0]/total)
	for i := 0; i < n; i++ {
		w := raw[i+1] / total
		id := "ticker:" + tickers[i]
		add(id, tickers[i], w)
		pf.Edges = append(pf.Edges, telemetry.FlowEdge{From: "cash", To: id, Value: w})
	}
	pf.ConcentrationHHI = &hhi
	return pf
}

func (g *Synthetic) stepHazards(s *telemetry.Snapshot, dt float64) {
	kept := g.hazards[:0]
	for _, h := range g.hazards {
		h.EtaSeconds -= dt
		if h.EtaSeconds > -hazardLinger {
			kept = append(kept, h)
		}
	}
	g.hazards = kept

	if g.rng.Float64() < g.sc.HazardRate {
		ticker := tickers[g.rng.Intn(g.sc.Positions)]
		dir := telemetry.DirectionUp
		if g.rng.Float64() < 0.5+g.sc.StormBias {
			dir = telemetry.DirectionDown
		}
		kind := hazardKinds[g.rng.Intn(len(hazardKinds))]
		g.hazards = append(g.hazards, telemetry.HazardEvent{
			ID:         uuid.NewString(),
			TsUTC:      s.TsUTC,
			Ticker:     ticker,
			Source:     "synthetic",
			Kind:       kind,
			Title:      fmt.Sprintf("%s %s", ticker, kind),
			Direction:  dir,
			RiskProb:   math.Min(1, g.rng.Float64()*g.sc.Volatility),
			EtaSeconds: 5 + g.rng.Float64()*25,
		})
	}
	s.Hazards = append([]telemetry.HazardEvent(nil), g.hazards...)
}
