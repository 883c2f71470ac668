package analysis

import (
	"context"

	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/scoring"
)

// Analyzer is the contract every factor analyzer implements. Analyze never
// returns an error: provider failures (including the per-analyzer timeout
// the orchestrator imposes through ctx) are recovered locally by returning
// the factor's neutral default, so one broken provider cannot fail the
// overall request.
type Analyzer interface {
	Factor() string
	Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult
}

// neutralResult is the documented degraded default: midpoint score,
// confidence 0, no detail.
func neutralResult(factor string) FactorResult {
	return FactorResult{
		Factor:     factor,
		Score:      scoring.NeutralScore,
		Confidence: 0,
	}
}
