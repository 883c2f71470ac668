package analysis

import (
	"context"
	"math"

	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/geodata"
	"leadscout_backend/internal/scoring"
	"leadscout_backend/platform/logger"
)

// Canonical amenity types. Raw provider categories are folded into these
// nine before scoring; anything unrecognized becomes "other".
const (
	amenitySchool     = "school"
	amenityHospital   = "hospital"
	amenityPark       = "park"
	amenityGrocery    = "grocery"
	amenityRestaurant = "restaurant"
	amenityMall       = "shopping_mall"
	amenityTransit    = "transit_station"
	amenityPolice     = "police"
	amenityFire       = "fire_station"
	amenityOther      = "other"
)

// amenityCategoryMap folds raw provider categories (OSM tags, Google place
// types) into canonical amenity types.
var amenityCategoryMap = map[string]string{
	"school":                 amenitySchool,
	"kindergarten":           amenitySchool,
	"college":                amenitySchool,
	"university":             amenitySchool,
	"primary_school":         amenitySchool,
	"secondary_school":       amenitySchool,
	"hospital":               amenityHospital,
	"clinic":                 amenityHospital,
	"doctors":                amenityHospital,
	"park":                   amenityPark,
	"supermarket":            amenityGrocery,
	"grocery":                amenityGrocery,
	"convenience":            amenityGrocery,
	"grocery_or_supermarket": amenityGrocery,
	"restaurant":             amenityRestaurant,
	"cafe":                   amenityRestaurant,
	"fast_food":              amenityRestaurant,
	"mall":                   amenityMall,
	"shopping_mall":          amenityMall,
	"department_store":       amenityMall,
	"station":                amenityTransit,
	"bus_stop":               amenityTransit,
	"bus_station":            amenityTransit,
	"transit_station":        amenityTransit,
	"subway_station":         amenityTransit,
	"train_station":          amenityTransit,
	"light_rail_station":     amenityTransit,
	"police":                 amenityPolice,
	"fire_station":           amenityFire,
}

const defaultIdealMaxDistance = 1000.0

// idealMaxDistances is the distance in meters at which an amenity type's
// contribution falls to zero under the linear falloff.
var idealMaxDistances = map[string]float64{
	amenitySchool:     1500,
	amenityGrocery:    1000,
	amenityPark:       800,
	amenityRestaurant: 800,
	amenityTransit:    500,
	amenityHospital:   3000,
	amenityMall:       2000,
	amenityPolice:     3000,
	amenityFire:       3000,
}

const defaultTypeWeight = 0.05

// proximityTypeWeights weights each amenity type's contribution to the
// overall proximity score.
var proximityTypeWeights = map[string]float64{
	amenitySchool:     0.25,
	amenityGrocery:    0.20,
	amenityPark:       0.15,
	amenityRestaurant: 0.10,
	amenityTransit:    0.10,
	amenityHospital:   0.10,
	amenityMall:       0.05,
	amenityPolice:     0.025,
	amenityFire:       0.025,
}

// walkScoreWeights is the smaller table behind the walkability estimate:
// day-to-day trips only.
var walkScoreWeights = map[string]float64{
	amenityGrocery:    0.30,
	amenityRestaurant: 0.20,
	amenityPark:       0.20,
	amenityTransit:    0.20,
	amenitySchool:     0.10,
}

// walkScoreMinCoverage is the minimum summed walk weight that must be
// backed by local data before the estimate is trusted over the external
// provider.
const walkScoreMinCoverage = 0.5

// ProximityAnalyzer scores a coordinate by how close everyday amenities are.
type ProximityAnalyzer struct {
	provider  geodata.AmenityProvider
	walkScore geodata.WalkScoreProvider // optional
	idealMax  map[string]float64
	log       *logger.Logger
}

// NewProximityAnalyzer creates a proximity analyzer. walkScore may be nil;
// idealMaxOverrides remaps per-type falloff distances and may be nil.
func NewProximityAnalyzer(provider geodata.AmenityProvider, walkScore geodata.WalkScoreProvider, idealMaxOverrides map[string]float64, log *logger.Logger) *ProximityAnalyzer {
	idealMax := make(map[string]float64, len(idealMaxDistances))
	for amenityType, distance := range idealMaxDistances {
		idealMax[amenityType] = distance
	}
	for amenityType, distance := range idealMaxOverrides {
		idealMax[amenityType] = distance
	}

	return &ProximityAnalyzer{
		provider:  provider,
		walkScore: walkScore,
		idealMax:  idealMax,
		log:       log,
	}
}

// Factor returns the factor name this analyzer produces.
func (a *ProximityAnalyzer) Factor() string { return FactorProximity }

// Analyze fetches amenities inside the radius and scores each canonical
// type by the minimum observed distance under a linear falloff.
func (a *ProximityAnalyzer) Analyze(ctx context.Context, center geo.Coordinates, radiusMeters float64) FactorResult {
	amenities, err := a.provider.FindAmenities(ctx, center, radiusMeters)
	if err != nil {
		return neutralResult(FactorProximity)
	}

	if len(amenities) == 0 {
		return FactorResult{
			Factor:     FactorProximity,
			Score:      scoring.NeutralScore,
			Confidence: 1,
			Detail: ProximityDetail{
				Provider:   a.provider.Name(),
				TypeScores: map[string]ProximityTypeScore{},
			},
		}
	}

	minDistances := a.minDistanceByType(center, amenities)
	typeScores := make(map[string]ProximityTypeScore, len(minDistances))
	components := make(map[string]scoring.Component, len(minDistances))

	for amenityType, distance := range minDistances {
		score := a.distanceScore(amenityType, distance)
		typeScores[amenityType] = ProximityTypeScore{Score: score, DistanceMeters: math.Round(distance)}

		weight, ok := proximityTypeWeights[amenityType]
		if !ok {
			weight = defaultTypeWeight
		}
		components[amenityType] = scoring.Component{Score: float64(score), Weight: weight}
	}

	overall := scoring.Aggregate(components)
	walk, walkSource := a.estimateWalkScore(ctx, center, typeScores)

	return FactorResult{
		Factor:     FactorProximity,
		Score:      overall,
		Confidence: 1,
		Detail: ProximityDetail{
			Provider:        a.provider.Name(),
			AmenityCount:    len(amenities),
			TypeScores:      typeScores,
			WalkScore:       walk,
			WalkScoreSource: walkSource,
		},
	}
}

// minDistanceByType classifies each amenity and tracks the minimum observed
// distance per canonical type.
func (a *ProximityAnalyzer) minDistanceByType(center geo.Coordinates, amenities []geodata.Amenity) map[string]float64 {
	minDistances := make(map[string]float64)
	for _, amenity := range amenities {
		amenityType := classifyAmenity(amenity.Category)
		distance := geo.DistanceMeters(center, amenity.Location)

		current, seen := minDistances[amenityType]
		if !seen || distance < current {
			minDistances[amenityType] = distance
		}
	}
	return minDistances
}

// distanceScore converts a distance to 0-100 via linear falloff against the
// type's ideal max distance.
func (a *ProximityAnalyzer) distanceScore(amenityType string, distance float64) int {
	idealMax, ok := a.idealMax[amenityType]
	if !ok {
		idealMax = defaultIdealMaxDistance
	}

	score := 100 - 100*distance/idealMax
	if score < 0 {
		score = 0
	}
	return int(math.Round(score))
}

// estimateWalkScore derives a walkability metric from the per-type scores.
// When local data covers too little of the walk weight table and an
// external provider is configured, the provider's value is used verbatim.
func (a *ProximityAnalyzer) estimateWalkScore(ctx context.Context, center geo.Coordinates, typeScores map[string]ProximityTypeScore) (int, string) {
	var weightedSum, covered float64
	for amenityType, weight := range walkScoreWeights {
		typeScore, ok := typeScores[amenityType]
		if !ok {
			continue
		}
		weightedSum += float64(typeScore.Score) * weight
		covered += weight
	}

	if covered < walkScoreMinCoverage && a.walkScore != nil {
		if providerScore, err := a.walkScore.Score(ctx, center); err == nil {
			return providerScore, "provider"
		}
		// Provider failed; fall through to the local estimate.
	}

	if covered == 0 {
		return scoring.NeutralScore, "estimated"
	}
	return int(math.Round(weightedSum / covered)), "estimated"
}

// classifyAmenity folds a raw provider category into a canonical type.
func classifyAmenity(category string) string {
	if canonical, ok := amenityCategoryMap[category]; ok {
		return canonical
	}
	return amenityOther
}
