package analysis

import (
	"context"
	"math"

	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/geodata"
	"leadscout_backend/platform/logger"
)

// SchoolsAnalyzer scores school quality from the civic data gateway.
type SchoolsAnalyzer struct {
	civic *geodata.CivicClient
	log   *logger.Logger
}

func NewSchoolsAnalyzer(civic *geodata.CivicClient, log *logger.Logger) *SchoolsAnalyzer {
	return &SchoolsAnalyzer{civic: civic, log: log}
}

func (a *SchoolsAnalyzer) Factor() string { return FactorSchools }

// Analyze scores the area's schools by average rating, with a small bonus
// for having multiple schools in range and for a standout top school.
func (a *SchoolsAnalyzer) Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult {
	summary, err := a.civic.Schools(ctx, center, radiusMeters)
	if err != nil {
		return neutralResult(FactorSchools)
	}

	if summary.Count == 0 {
		return FactorResult{
			Factor:     FactorSchools,
			Score:      30,
			Confidence: 1,
			Detail:     SchoolsDetail{},
		}
	}

	// Ratings arrive on a 0-10 scale.
	score := summary.AverageRating * 10

	switch {
	case summary.Count >= 5:
		score += 10
	case summary.Count >= 3:
		score += 5
	}
	if summary.TopRating >= 9 {
		score += 5
	}

	return FactorResult{
		Factor:     FactorSchools,
		Score:      clampInt(int(math.Round(score))),
		Confidence: 1,
		Detail: SchoolsDetail{
			Count:         summary.Count,
			AverageRating: summary.AverageRating,
			TopRating:     summary.TopRating,
		},
	}
}

// TransitAnalyzer scores transit access from the amenity provider's
// station and stop data.
type TransitAnalyzer struct {
	provider geodata.AmenityProvider
	log      *logger.Logger
}

func NewTransitAnalyzer(provider geodata.AmenityProvider, log *logger.Logger) *TransitAnalyzer {
	return &TransitAnalyzer{provider: provider, log: log}
}

func (a *TransitAnalyzer) Factor() string { return FactorTransit }

// Analyze scores transit access from the nearest stop distance plus a
// density bonus for stop count inside the radius.
func (a *TransitAnalyzer) Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult {
	amenities, err := a.provider.FindAmenities(ctx, center, radiusMeters)
	if err != nil {
		return neutralResult(FactorTransit)
	}

	var (
		stopCount   int
		nearest     float64
		nearestName string
	)
	for _, amenity := range amenities {
		if classifyAmenity(amenity.Category) != amenityTransit {
			continue
		}
		distance := geo.DistanceMeters(center, amenity.Location)
		if stopCount == 0 || distance < nearest {
			nearest = distance
			nearestName = amenity.Name
		}
		stopCount++
	}

	if stopCount == 0 {
		return FactorResult{
			Factor:     FactorTransit,
			Score:      20,
			Confidence: 1,
			Detail:     TransitDetail{Provider: a.provider.Name()},
		}
	}

	var score int
	switch {
	case nearest <= 250:
		score = 90
	case nearest <= 500:
		score = 80
	case nearest <= 1000:
		score = 60
	case nearest <= 2000:
		score = 40
	default:
		score = 25
	}

	switch {
	case stopCount >= 10:
		score += 10
	case stopCount >= 5:
		score += 5
	}

	return FactorResult{
		Factor:     FactorTransit,
		Score:      clampInt(score),
		Confidence: 1,
		Detail: TransitDetail{
			Provider:      a.provider.Name(),
			StopCount:     stopCount,
			NearestMeters: math.Round(nearest),
			NearestStop:   nearestName,
		},
	}
}

// CrimeAnalyzer scores safety from reported incident rates. Higher score
// means safer.
type CrimeAnalyzer struct {
	civic *geodata.CivicClient
	log   *logger.Logger
}

func NewCrimeAnalyzer(civic *geodata.CivicClient, log *logger.Logger) *CrimeAnalyzer {
	return &CrimeAnalyzer{civic: civic, log: log}
}

func (a *CrimeAnalyzer) Factor() string { return FactorCrime }

// Analyze compares the local incident rate against the national average and
// nudges the score for the year-over-year direction.
func (a *CrimeAnalyzer) Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult {
	summary, err := a.civic.Crime(ctx, center, radiusMeters)
	if err != nil {
		return neutralResult(FactorCrime)
	}

	ratio := 1.0
	if summary.NationalAverage > 0 {
		ratio = summary.IncidentsPerThousand / summary.NationalAverage
	}

	var score int
	switch {
	case ratio <= 0.5:
		score = 95
	case ratio <= 0.75:
		score = 85
	case ratio <= 1.0:
		score = 70
	case ratio <= 1.25:
		score = 55
	case ratio <= 1.5:
		score = 40
	case ratio <= 2.0:
		score = 25
	default:
		score = 10
	}

	// Trend nudge: falling crime is worth a few points, rising costs a few.
	switch {
	case summary.YoYChangePct <= -5:
		score += 5
	case summary.YoYChangePct >= 5:
		score -= 5
	}

	return FactorResult{
		Factor:     FactorCrime,
		Score:      clampInt(score),
		Confidence: 1,
		Detail: CrimeDetail{
			IncidentsPerThousand: summary.IncidentsPerThousand,
			NationalAverage:      summary.NationalAverage,
			YoYChangePct:         summary.YoYChangePct,
		},
	}
}

// DevelopmentAnalyzer scores construction and investment momentum from
// permit activity.
type DevelopmentAnalyzer struct {
	civic *geodata.CivicClient
	log   *logger.Logger
}

func NewDevelopmentAnalyzer(civic *geodata.CivicClient, log *logger.Logger) *DevelopmentAnalyzer {
	return &DevelopmentAnalyzer{civic: civic, log: log}
}

func (a *DevelopmentAnalyzer) Factor() string { return FactorDevelopment }

// Analyze scores by permit volume with an adjustment for the reported
// investment level.
func (a *DevelopmentAnalyzer) Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult {
	activity, err := a.civic.Permits(ctx, center, radiusMeters)
	if err != nil {
		return neutralResult(FactorDevelopment)
	}

	var score int
	switch {
	case activity.ActivePermits >= 50:
		score = 85
	case activity.ActivePermits >= 25:
		score = 75
	case activity.ActivePermits >= 10:
		score = 65
	case activity.ActivePermits >= 5:
		score = 55
	case activity.ActivePermits >= 1:
		score = 45
	default:
		score = 30
	}

	switch activity.InvestmentLevel {
	case "increasing":
		score += 10
	case "decreasing":
		score -= 10
	}

	return FactorResult{
		Factor:     FactorDevelopment,
		Score:      clampInt(score),
		Confidence: 1,
		Detail: DevelopmentDetail{
			InvestmentLevel: activity.InvestmentLevel,
			ActivePermits:   activity.ActivePermits,
			TotalValueUSD:   activity.TotalValueUSD,
		},
	}
}

// PropertyValueAnalyzer scores the area's property value trajectory.
type PropertyValueAnalyzer struct {
	civic *geodata.CivicClient
	log   *logger.Logger
}

func NewPropertyValueAnalyzer(civic *geodata.CivicClient, log *logger.Logger) *PropertyValueAnalyzer {
	return &PropertyValueAnalyzer{civic: civic, log: log}
}

func (a *PropertyValueAnalyzer) Factor() string { return FactorPropertyValues }

// Analyze scores from year-over-year appreciation, with adjustments for the
// longer five-year trend and the published forecast.
func (a *PropertyValueAnalyzer) Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult {
	trend, err := a.civic.PropertyValues(ctx, center, radiusMeters)
	if err != nil {
		return neutralResult(FactorPropertyValues)
	}

	var score int
	switch {
	case trend.YoYChangePct >= 10:
		score = 90
	case trend.YoYChangePct >= 5:
		score = 80
	case trend.YoYChangePct >= 2:
		score = 65
	case trend.YoYChangePct >= 0:
		score = 50
	case trend.YoYChangePct >= -5:
		score = 35
	default:
		score = 20
	}

	switch {
	case trend.FiveYearChangePct >= 25:
		score += 5
	case trend.FiveYearChangePct < 0:
		score -= 5
	}

	switch trend.Forecast {
	case "increasing":
		score += 5
	case "decreasing":
		score -= 5
	}

	return FactorResult{
		Factor:     FactorPropertyValues,
		Score:      clampInt(score),
		Confidence: 1,
		Detail: PropertyValueDetail{
			Forecast:          trend.Forecast,
			MedianValueUSD:    trend.MedianValueUSD,
			YoYChangePct:      trend.YoYChangePct,
			FiveYearChangePct: trend.FiveYearChangePct,
		},
	}
}

func clampInt(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
