// Package scoring provides the weighted-aggregation primitive shared by the
// location analysis orchestrator and the lead scorer. It is pure: no state,
// no I/O, and the result is independent of map iteration order.
package scoring

import (
	"fmt"
	"math"

	"leadscout_backend/platform/apperr"
)

// NeutralScore is the documented midpoint returned when nothing at all can
// be measured. It keeps the aggregate from biasing toward pessimism or
// optimism when a data source is empty.
const NeutralScore = 50

// Component is one named input to an aggregation: a score on the 0-100
// scale and the weight it carries relative to its siblings.
type Component struct {
	Score  float64
	Weight float64
}

// Aggregate combines the supplied components into a single bounded score.
// The weighted sum is divided by the sum of weights of components actually
// supplied, so a missing component is excluded from both numerator and
// denominator rather than scored as zero. Rounding to the nearest integer
// happens only here, never on intermediate sums.
func Aggregate(components map[string]Component) int {
	if len(components) == 0 {
		return NeutralScore
	}

	var weightedSum, totalWeight float64
	for _, component := range components {
		weightedSum += component.Score * component.Weight
		totalWeight += component.Weight
	}

	if totalWeight == 0 {
		return NeutralScore
	}

	return clampScore(weightedSum / totalWeight)
}

// Contributions returns each component's weighted share of the aggregate,
// keyed by component name, for explanation payloads. Shares are rounded to
// one decimal for display; the aggregate itself never uses these values.
func Contributions(components map[string]Component) map[string]float64 {
	var totalWeight float64
	for _, component := range components {
		totalWeight += component.Weight
	}

	result := make(map[string]float64, len(components))
	if totalWeight == 0 {
		return result
	}

	for name, component := range components {
		share := component.Score * component.Weight / totalWeight
		result[name] = math.Round(share*10) / 10
	}
	return result
}

// ValidateWeights rejects negative weights and weights referencing a
// component no analyzer produces. Called at the start of every scoring
// entry point so bad weight maps fail fast instead of skewing results.
func ValidateWeights(weights map[string]float64, known []string) error {
	knownSet := make(map[string]struct{}, len(known))
	for _, name := range known {
		knownSet[name] = struct{}{}
	}

	for name, weight := range weights {
		if weight < 0 {
			return apperr.Validation(fmt.Sprintf("weight for %q cannot be negative", name))
		}
		if _, ok := knownSet[name]; !ok {
			return apperr.Validation(fmt.Sprintf("weight references unknown component %q", name))
		}
	}
	return nil
}

// Lead category thresholds.
const (
	hotThreshold  = 80
	warmThreshold = 50
)

// LeadCategory buckets a lead score into Hot, Warm, or Cold.
func LeadCategory(score int) string {
	switch {
	case score >= hotThreshold:
		return "Hot"
	case score >= warmThreshold:
		return "Warm"
	default:
		return "Cold"
	}
}

// Opportunity level thresholds.
const (
	excellentThreshold = 85
	goodThreshold      = 70
	moderateThreshold  = 50
	fairThreshold      = 30
)

// OpportunityLevel buckets an opportunity score into five qualitative levels.
func OpportunityLevel(score int) string {
	switch {
	case score >= excellentThreshold:
		return "excellent"
	case score >= goodThreshold:
		return "good"
	case score >= moderateThreshold:
		return "moderate"
	case score >= fairThreshold:
		return "fair"
	default:
		return "poor"
	}
}

func clampScore(value float64) int {
	rounded := int(math.Round(value))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}

// ClampScore bounds an already-rounded score to [0,100]. Exposed for the
// orchestrator's trend adjustment, which operates on integer scores.
func ClampScore(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
