package analysis

import (
	"time"

	"leadscout_backend/internal/geo"
)

// Factor names. These are the component keys the orchestrator feeds the
// score engine and the keys callers use to request a subset.
const (
	FactorProximity      = "proximity"
	FactorSchools        = "schools"
	FactorTransit        = "transit"
	FactorCrime          = "crime"
	FactorDevelopment    = "development"
	FactorPropertyValues = "propertyValues"
)

// AllFactors returns the six factor names in presentation order.
func AllFactors() []string {
	return []string{
		FactorProximity,
		FactorSchools,
		FactorTransit,
		FactorCrime,
		FactorDevelopment,
		FactorPropertyValues,
	}
}

// FactorResult is one analyzer's output. Confidence 0 marks a degraded
// result (the provider failed and the analyzer fell back to its neutral
// default); measured results always carry confidence > 0, so consumers can
// tell "measured 50" apart from "degraded to 50".
type FactorResult struct {
	Factor     string      `json:"factor"`
	Score      int         `json:"score"`
	Confidence float64     `json:"confidence"`
	Detail     interface{} `json:"detail,omitempty"`
}

// NeighborhoodTrend is the weighted blend of all factor scores plus a
// direction classified from the development and property-value signals.
type NeighborhoodTrend struct {
	Score     int    `json:"score"`
	Direction string `json:"direction"`
}

// Trend directions.
const (
	TrendStrongPositive = "strong_positive"
	TrendPositive       = "positive"
	TrendStable         = "stable"
	TrendNegative       = "negative"
	TrendStrongNegative = "strong_negative"
)

// OpportunityScore is the investment-attractiveness conclusion: the trend
// score shifted by a directional adjustment and bucketed into five levels.
type OpportunityScore struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

// SpatialContext is the complete analysis of one coordinate. Immutable once
// produced; the caller owns any further persistence.
type SpatialContext struct {
	Location    geo.Coordinates         `json:"location"`
	RadiusMiles float64                 `json:"radiusMiles"`
	Factors     map[string]FactorResult `json:"factors"`
	Trend       NeighborhoodTrend       `json:"trend"`
	Opportunity OpportunityScore        `json:"opportunity"`
	AnalyzedAt  time.Time               `json:"analyzedAt"`
}

// ProximityTypeScore is the per-amenity-type breakdown in the proximity detail.
type ProximityTypeScore struct {
	Score          int     `json:"score"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// ProximityDetail is the proximity analyzer's structured detail payload.
type ProximityDetail struct {
	Provider        string                        `json:"provider"`
	AmenityCount    int                           `json:"amenityCount"`
	TypeScores      map[string]ProximityTypeScore `json:"typeScores"`
	WalkScore       int                           `json:"walkScore"`
	WalkScoreSource string                        `json:"walkScoreSource"` // estimated | provider
}

// SchoolsDetail is the schools analyzer's structured detail payload.
type SchoolsDetail struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
	TopRating     float64 `json:"topRating"`
}

// TransitDetail is the transit analyzer's structured detail payload.
type TransitDetail struct {
	Provider      string  `json:"provider"`
	StopCount     int     `json:"stopCount"`
	NearestMeters float64 `json:"nearestMeters"`
	NearestStop   string  `json:"nearestStop,omitempty"`
}

// CrimeDetail is the crime analyzer's structured detail payload.
type CrimeDetail struct {
	IncidentsPerThousand float64 `json:"incidentsPerThousand"`
	NationalAverage      float64 `json:"nationalAverage"`
	YoYChangePct         float64 `json:"yoyChangePct"`
}

// DevelopmentDetail is the development analyzer's structured detail payload.
// InvestmentLevel feeds the neighborhood trend direction.
type DevelopmentDetail struct {
	InvestmentLevel string  `json:"investmentLevel"`
	ActivePermits   int     `json:"activePermits"`
	TotalValueUSD   float64 `json:"totalValueUsd"`
}

// PropertyValueDetail is the property-values analyzer's structured detail
// payload. Forecast feeds the neighborhood trend direction.
type PropertyValueDetail struct {
	Forecast          string  `json:"forecast"`
	MedianValueUSD    float64 `json:"medianValueUsd"`
	YoYChangePct      float64 `json:"yoyChangePct"`
	FiveYearChangePct float64 `json:"fiveYearChangePct"`
}
