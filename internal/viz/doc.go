// Package viz renders trading telemetry as animated terminal charts.
//
// Each chart is a [Module] drawing into its own braille [Canvas] (2x4
// sub-pixels per cell, one colour per cell):
//
//   - [PortfolioFlow]: capital allocation Sankey with edge particles
//   - [PipelineSignal]: stage chain with packets sized by stage latency
//   - [EquityRibbon]: equity line over a drawdown band
//   - [RiskHeatmap]: top positions shaded by weight and risk gauges
//   - [HazardTape]: scrolling tags for upcoming event hazards
//   - [RegimeRiver]: regime history banded by confidence
//   - [ContributionWaterfall]: one-day weight changes as a running total
//
// Modules never touch global state. Theme, quality settings, randomness and
// logging come from the shared [Env].
package viz
