package analysis

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/scoring"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"
)

// defaultTrendWeights blends the six factor scores into the neighborhood
// trend. Forward-looking signals carry more weight than present-day
// convenience.
var defaultTrendWeights = map[string]float64{
	FactorProximity:      0.15,
	FactorSchools:        0.15,
	FactorTransit:        0.10,
	FactorCrime:          0.20,
	FactorDevelopment:    0.20,
	FactorPropertyValues: 0.20,
}

// opportunityAdjustments shifts the trend score per direction before
// bucketing into an opportunity level.
var opportunityAdjustments = map[string]int{
	TrendStrongPositive: 15,
	TrendPositive:       10,
	TrendStable:         0,
	TrendNegative:       -10,
	TrendStrongNegative: -15,
}

// Orchestrator runs factor analyzers concurrently and assembles the
// complete spatial context for a coordinate.
type Orchestrator struct {
	analyzers       map[string]Analyzer
	trendWeights    map[string]float64
	analyzerTimeout time.Duration
	maxRadiusMiles  float64
	log             *logger.Logger
}

// NewOrchestrator wires the analyzers. trendWeights may be nil to use the
// defaults. analyzerTimeout bounds each analyzer independently; a timed-out
// analyzer degrades to its neutral default instead of failing the request.
func NewOrchestrator(analyzers []Analyzer, trendWeights map[string]float64, analyzerTimeout time.Duration, maxRadiusMiles float64, log *logger.Logger) *Orchestrator {
	byFactor := make(map[string]Analyzer, len(analyzers))
	for _, analyzer := range analyzers {
		byFactor[analyzer.Factor()] = analyzer
	}

	if trendWeights == nil {
		trendWeights = defaultTrendWeights
	}

	return &Orchestrator{
		analyzers:       byFactor,
		trendWeights:    trendWeights,
		analyzerTimeout: analyzerTimeout,
		maxRadiusMiles:  maxRadiusMiles,
		log:             log,
	}
}

// Analyze runs the requested factors (all six when factors is empty)
// against the coordinate and derives the trend and opportunity conclusions.
func (o *Orchestrator) Analyze(ctx context.Context, center geo.Coordinates, radiusMiles float64, factors []string) (*SpatialContext, error) {
	if !center.Valid() {
		return nil, apperr.Validation("coordinates out of range")
	}

	if radiusMiles > o.maxRadiusMiles {
		radiusMiles = o.maxRadiusMiles
	}
	radiusMeters := geo.MilesToMeters(radiusMiles)

	selected, err := o.selectFactors(factors)
	if err != nil {
		return nil, err
	}

	results := make(map[string]FactorResult, len(selected))
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	for _, factor := range selected {
		analyzer := o.analyzers[factor]
		g.Go(func() error {
			result := o.runAnalyzer(groupCtx, analyzer, center, radiusMeters)
			mu.Lock()
			results[result.Factor] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Caller cancellation is the only way out of the group early.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trend := o.deriveTrend(results)
	opportunity := o.deriveOpportunity(trend)

	return &SpatialContext{
		Location:    center,
		RadiusMiles: radiusMiles,
		Factors:     results,
		Trend:       trend,
		Opportunity: opportunity,
		AnalyzedAt:  time.Now().UTC(),
	}, nil
}

// selectFactors resolves the requested subset, defaulting to all analyzers.
// Unknown factor names fail fast.
func (o *Orchestrator) selectFactors(factors []string) ([]string, error) {
	if len(factors) == 0 {
		all := make([]string, 0, len(o.analyzers))
		for _, factor := range AllFactors() {
			if _, ok := o.analyzers[factor]; ok {
				all = append(all, factor)
			}
		}
		return all, nil
	}

	selected := make([]string, 0, len(factors))
	seen := make(map[string]bool, len(factors))
	for _, factor := range factors {
		if _, ok := o.analyzers[factor]; !ok {
			return nil, apperr.Validation("unknown analysis factor: " + factor)
		}
		if seen[factor] {
			continue
		}
		seen[factor] = true
		selected = append(selected, factor)
	}
	return selected, nil
}

// runAnalyzer bounds one analyzer with the per-analyzer timeout and maps a
// timeout to the factor's neutral default.
func (o *Orchestrator) runAnalyzer(ctx context.Context, analyzer Analyzer, center geo.Coordinates, radiusMeters float64) FactorResult {
	analyzerCtx, cancel := context.WithTimeout(ctx, o.analyzerTimeout)
	defer cancel()

	result := analyzer.Analyze(analyzerCtx, center, radiusMeters)
	if analyzerCtx.Err() != nil && ctx.Err() == nil {
		o.log.Warn("analyzer timed out, using neutral default",
			"factor", analyzer.Factor(),
			"timeout", o.analyzerTimeout.String(),
		)
		return neutralResult(analyzer.Factor())
	}
	return result
}

// deriveTrend blends the factor scores under the trend weights and
// classifies a direction from the forward-looking detail signals.
func (o *Orchestrator) deriveTrend(results map[string]FactorResult) NeighborhoodTrend {
	components := make(map[string]scoring.Component, len(results))
	for factor, result := range results {
		weight, ok := o.trendWeights[factor]
		if !ok {
			continue
		}
		components[factor] = scoring.Component{Score: float64(result.Score), Weight: weight}
	}

	return NeighborhoodTrend{
		Score:     scoring.Aggregate(components),
		Direction: o.classifyDirection(results),
	}
}

// classifyDirection reads the development investment level and the property
// value forecast. Two increasing signals make a strong positive, two
// decreasing a strong negative, one of either a plain positive or negative,
// anything else stable.
func (o *Orchestrator) classifyDirection(results map[string]FactorResult) string {
	development := detailSignal(results[FactorDevelopment])
	values := detailSignal(results[FactorPropertyValues])

	increasing := countSignal(development, values, "increasing")
	decreasing := countSignal(development, values, "decreasing")

	switch {
	case increasing == 2:
		return TrendStrongPositive
	case increasing == 1 && decreasing == 0:
		return TrendPositive
	case decreasing == 2:
		return TrendStrongNegative
	case decreasing == 1 && increasing == 0:
		return TrendNegative
	default:
		return TrendStable
	}
}

func (o *Orchestrator) deriveOpportunity(trend NeighborhoodTrend) OpportunityScore {
	score := scoring.ClampScore(trend.Score + opportunityAdjustments[trend.Direction])
	return OpportunityScore{
		Score: score,
		Level: scoring.OpportunityLevel(score),
	}
}

// detailSignal extracts the directional string from a factor result's
// detail payload. Degraded results carry no detail and yield no signal.
func detailSignal(result FactorResult) string {
	switch detail := result.Detail.(type) {
	case DevelopmentDetail:
		return detail.InvestmentLevel
	case PropertyValueDetail:
		return detail.Forecast
	default:
		return ""
	}
}

func countSignal(a, b, signal string) int {
	count := 0
	if a == signal {
		count++
	}
	if b == signal {
		count++
	}
	return count
}
