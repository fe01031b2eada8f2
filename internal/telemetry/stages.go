package telemetry

type Stage string

const (
	StageIngestPrices       Stage = "ingest_prices"
	StageIngestEvents       Stage = "ingest_events"
	StageBuildFeatures      Stage = "build_features"
	StagePredict            Stage = "predict"
	StageConstructPortfolio Stage = "construct_portfolio"
	StageExecute            Stage = "execute"
	StageReport             Stage = "report"
)

// CanonicalStages is the fixed left-to-right ordering of the pipeline.
var CanonicalStages = []Stage{
	StageIngestPrices,
	StageIngestEvents,
	StageBuildFeatures,
	StagePredict,
	StageConstructPortfolio,
	StageExecute,
	StageReport,
}

// Stage status values reported by the backend.
const (
	StatusOK      = "ok"
	StatusRunning = "running"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Short returns a compact label for narrow panels.
func (s Stage) Short() string {
	switch s {
	case StageIngestPrices:
		return "PRC"
	case StageIngestEvents:
		return "EVT"
	case StageBuildFeatures:
		return "FEAT"
	case StagePredict:
		return "PRED"
	case StageConstructPortfolio:
		return "PORT"
	case StageExecute:
		return "EXEC"
	case StageReport:
		return "RPT"
	default:
		return string(s)
	}
}
