// Package analysis provides the location analysis bounded context: factor
// analyzers, the orchestrator, and route registration.
package analysis

import (
	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/config"
	"leadscout_backend/internal/geodata"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is the analysis bounded context module implementing http.Module.
// The handler is attached separately to avoid an import cycle with the
// handler package; see Wire.
type Module struct {
	service *Service
	routes  RouteRegistrar
}

// RouteRegistrar mounts the context's routes on the analysis group.
// Implemented by the handler package.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// NewModule builds the full analysis stack: provider clients selected from
// configuration, the six analyzers, the orchestrator, and the cached service.
// The HTTP handler is built by the composition root and attached via Wire,
// which keeps the handler package free to import this one.
func NewModule(cfg *config.Config, resultCache *cache.Cache, log *logger.Logger) *Module {
	amenities, geocoders := buildProviders(cfg, log)
	civic := geodata.NewCivicClient(cfg.CivicDataBaseURL, log)

	var walkScore geodata.WalkScoreProvider
	if cfg.WalkScoreAPIKey != "" {
		walkScore = geodata.NewWalkScoreClient(cfg.WalkScoreAPIKey, log)
	}

	analyzers := []Analyzer{
		NewProximityAnalyzer(amenities, walkScore, cfg.IdealMaxDistanceOverrides, log),
		NewSchoolsAnalyzer(civic, log),
		NewTransitAnalyzer(amenities, log),
		NewCrimeAnalyzer(civic, log),
		NewDevelopmentAnalyzer(civic, log),
		NewPropertyValueAnalyzer(civic, log),
	}

	orchestrator := NewOrchestrator(analyzers, trendWeightsFromConfig(cfg.FactorWeights), cfg.AnalyzerTimeout, cfg.MaxRadiusMiles, log)
	svc := NewService(orchestrator, geocoders, resultCache, cfg.DefaultRadiusMiles, log)

	return &Module{service: svc}
}

// trendWeightsFromConfig maps the configured factor weights onto factor names.
func trendWeightsFromConfig(w config.FactorWeights) map[string]float64 {
	return map[string]float64{
		FactorProximity:      w.Proximity,
		FactorSchools:        w.Schools,
		FactorTransit:        w.Transit,
		FactorCrime:          w.Crime,
		FactorDevelopment:    w.Development,
		FactorPropertyValues: w.PropertyValues,
	}
}

// buildProviders selects the amenity and geocoding providers. A configured
// Google Maps key selects the commercial stack; otherwise the public
// OpenStreetMap services are used.
func buildProviders(cfg *config.Config, log *logger.Logger) (geodata.AmenityProvider, []geodata.GeocodingProvider) {
	if cfg.GoogleMapsAPIKey != "" {
		return geodata.NewPlacesClient(cfg.GoogleMapsAPIKey, log),
			[]geodata.GeocodingProvider{
				geodata.NewGoogleGeocodeClient(cfg.GoogleMapsAPIKey, log),
				geodata.NewNominatimClient(cfg.NominatimBaseURL, log),
			}
	}

	return geodata.NewOverpassClient(cfg.OverpassBaseURL, log),
		[]geodata.GeocodingProvider{
			geodata.NewNominatimClient(cfg.NominatimBaseURL, log),
		}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "analysis"
}

// Service returns the analysis service for other contexts (lead scoring,
// scheduler) and the composition root.
func (m *Module) Service() *Service {
	return m.service
}

// Wire attaches the HTTP route registrar built by the composition root.
func (m *Module) Wire(routes RouteRegistrar) {
	m.routes = routes
}

// RegisterRoutes mounts analysis routes on /api/v1/analysis.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.routes != nil {
		m.routes.RegisterRoutes(ctx.V1.Group("/analysis"))
	}
}

var _ apphttp.Module = (*Module)(nil)
