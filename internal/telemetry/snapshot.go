// Package telemetry defines the snapshot model consumed by the render engine.
//
// A [Snapshot] mirrors the backend's TelemetryFrame v1.0 JSON document. The
// engine treats every value as an opaque display quantity and never mutates a
// snapshot once it has been published. Optional fields are pointers or nil
// maps/slices; use the accessor methods, which return neutral values when a
// field is absent.
package telemetry

// Gauge is a normalized 0..1 metric with optional raw value and unit.
type Gauge struct {
	Value      float64  `json:"value"`
	Raw        *float64 `json:"raw,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Trend1D    *float64 `json:"trend_1d,omitempty"`
	Trend5D    *float64 `json:"trend_5d,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type FlowNode struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Weight       float64  `json:"weight"`
	WeightChange *float64 `json:"weight_change_1d,omitempty"`
}

type FlowEdge struct {
	From  string  `json:"from"`
	To    string  `json:"to"`
	Value float64 `json:"value"`
}

type PortfolioFlow struct {
	Nodes              []FlowNode `json:"nodes"`
	Edges              []FlowEdge `json:"edges"`
	ConcentrationHHI   *float64   `json:"concentration_hhi,omitempty"`
	MaxClusterExposure *float64   `json:"max_cluster_exposure,omitempty"`
}

type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionUnknown Direction = "unknown"
)

type HazardEvent struct {
	ID           string    `json:"id"`
	TsUTC        string    `json:"ts_utc"`
	Ticker       string    `json:"ticker"`
	Source       string    `json:"source"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	Direction    Direction `json:"direction"`
	RiskProb     float64   `json:"risk_prob"`
	NegProb      *float64  `json:"neg_prob,omitempty"`
	ImpactBucket string    `json:"impact_bucket,omitempty"`
	EtaSeconds   float64   `json:"eta_seconds"`
}

type WarningItem struct {
	Code     string `json:"code"`
	Severity int    `json:"severity"`
	Message  string `json:"message,omitempty"`
}

type PnLStrip struct {
	Equity    float64  `json:"equity"`
	Drawdown  float64  `json:"drawdown"`
	Return1D  *float64 `json:"return_1d,omitempty"`
	Return5D  *float64 `json:"return_5d,omitempty"`
	ReturnMTD *float64 `json:"return_mtd,omitempty"`
	ReturnYTD *float64 `json:"return_ytd,omitempty"`
}

type Regime string

const (
	RegimeClear Regime = "clear"
	RegimeRain  Regime = "rain"
	RegimeStorm Regime = "storm"
)

type Snapshot struct {
	SchemaVersion string `json:"schema_version"`
	TsUTC         string `json:"ts_utc"`
	TradingDate   string `json:"trading_date"`
	ExecutionMode string `json:"execution_mode"`

	PipelineStatus      string            `json:"pipeline_status"`
	PipelineStageStatus map[Stage]string  `json:"pipeline_stage_status"`
	PipelineLatencyMS   map[Stage]float64 `json:"pipeline_latency_ms,omitempty"`
	PipelineMessage     string            `json:"pipeline_message,omitempty"`

	SpeedAlpha       *Gauge `json:"speed_alpha,omitempty"`
	RPMTurnover      *Gauge `json:"rpm_turnover,omitempty"`
	TractionRisk     *Gauge `json:"traction_risk,omitempty"`
	BrakeVarPressure *Gauge `json:"brake_var_pressure,omitempty"`

	RegimeState      Regime   `json:"regime_state"`
	RegimeConfidence *float64 `json:"regime_confidence,omitempty"`

	Warnings []WarningItem `json:"warnings,omitempty"`
	Hazards  []HazardEvent `json:"hazards,omitempty"`

	PortfolioFlow *PortfolioFlow `json:"portfolio_flow,omitempty"`
	PnL           *PnLStrip      `json:"pnl,omitempty"`

	RunID string `json:"run_id,omitempty"`
}

// GaugeValue returns g.Value, or 0 for a nil gauge.
func GaugeValue(g *Gauge) float64 {
	if g == nil {
		return 0
	}
	return g.Value
}

// TopWarning returns the most severe warning, the earliest one on ties.
func (s *Snapshot) TopWarning() (WarningItem, bool) {
	if s == nil || len(s.Warnings) == 0 {
		return WarningItem{}, false
	}
	top := s.Warnings[0]
	for _, w := range s.Warnings[1:] {
		if w.Severity > top.Severity {
			top = w
		}
	}
	return top, true
}

func (s *Snapshot) Nodes() []FlowNode {
	if s == nil || s.PortfolioFlow == nil {
		return nil
	}
	return s.PortfolioFlow.Nodes
}

func (s *Snapshot) Edges() []FlowEdge {
	if s == nil || s.PortfolioFlow == nil {
		return nil
	}
	return s.PortfolioFlow.Edges
}

func (s *Snapshot) Equity() float64 {
	if s == nil || s.PnL == nil {
		return 0
	}
	return s.PnL.Equity
}

func (s *Snapshot) Drawdown() float64 {
	if s == nil || s.PnL == nil {
		return 0
	}
	return s.PnL.Drawdown
}

// Regime returns the regime label, defaulting to clear.
func (s *Snapshot) Regime() Regime {
	if s == nil || s.RegimeState == "" {
		return RegimeClear
	}
	return s.RegimeState
}

// Confidence returns the regime confidence, or def when absent.
func (s *Snapshot) Confidence(def float64) float64 {
	if s == nil || s.RegimeConfidence == nil {
		return def
	}
	return *s.RegimeConfidence
}

// StageStatus returns the reported status of a stage, or "" when absent.
func (s *Snapshot) StageStatus(st Stage) string {
	if s == nil {
		return ""
	}
	return s.PipelineStageStatus[st]
}

// StageLatency returns the reported latency of a stage in milliseconds.
func (s *Snapshot) StageLatency(st Stage) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.PipelineLatencyMS[st]
	return v, ok
}

// MeanLatency averages the reported stage latencies. ok is false when no
// latency was reported.
func (s *Snapshot) MeanLatency() (mean float64, ok bool) {
	if s == nil || len(s.PipelineLatencyMS) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range s.PipelineLatencyMS {
		sum += v
	}
	return sum / float64(len(s.PipelineLatencyMS)), true
}
