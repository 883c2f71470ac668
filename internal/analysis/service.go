package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/geodata"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"
)

// Service fronts the orchestrator with caching and address resolution.
type Service struct {
	orchestrator  *Orchestrator
	geocoders     []geodata.GeocodingProvider
	cache         *cache.Cache
	defaultRadius float64
	log           *logger.Logger
}

// NewService wires the analysis service. geocoders are tried in order until
// one resolves; an empty slice means address requests always fail.
func NewService(orchestrator *Orchestrator, geocoders []geodata.GeocodingProvider, resultCache *cache.Cache, defaultRadiusMiles float64, log *logger.Logger) *Service {
	return &Service{
		orchestrator:  orchestrator,
		geocoders:     geocoders,
		cache:         resultCache,
		defaultRadius: defaultRadiusMiles,
		log:           log,
	}
}

// Request is one location analysis request. Either Location or Address must
// be set; Location wins when both are present. Zero RadiusMiles takes the
// configured default. Empty Factors means all factors.
type Request struct {
	Location    *geo.Coordinates
	Address     string
	RadiusMiles float64
	Factors     []string
}

// Analyze resolves the request to a coordinate, then serves the spatial
// context from cache or computes it fresh.
func (s *Service) Analyze(ctx context.Context, req Request) (*SpatialContext, error) {
	center, err := s.resolveLocation(ctx, req)
	if err != nil {
		return nil, err
	}

	radius := s.effectiveRadius(req.RadiusMiles)

	var result SpatialContext
	key := cacheKey(center, radius, req.Factors)
	err = s.cache.Fetch(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		return s.orchestrator.Analyze(ctx, center, radius, req.Factors)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Refresh recomputes the analysis for a coordinate and replaces the cached
// entry. Used by the scheduler to keep hot locations warm.
func (s *Service) Refresh(ctx context.Context, center geo.Coordinates, radiusMiles float64) (*SpatialContext, error) {
	radiusMiles = s.effectiveRadius(radiusMiles)

	result, err := s.orchestrator.Analyze(ctx, center, radiusMiles, nil)
	if err != nil {
		return nil, err
	}

	key := cacheKey(center, radiusMiles, nil)
	s.cache.Invalidate(ctx, key)

	var cached SpatialContext
	if err := s.cache.Fetch(ctx, key, &cached, func(context.Context) (interface{}, error) {
		return result, nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// effectiveRadius applies the default and the maximum before the radius is
// used anywhere, so the cache key always states the radius the orchestrator
// actually analyzed. DTO validation caps HTTP callers already; this covers
// internal callers like the scheduler payload.
func (s *Service) effectiveRadius(radiusMiles float64) float64 {
	if radiusMiles <= 0 {
		radiusMiles = s.defaultRadius
	}
	if max := s.orchestrator.maxRadiusMiles; radiusMiles > max {
		radiusMiles = max
	}
	return radiusMiles
}

// resolveLocation returns the request coordinate, geocoding the address
// through the provider chain when no coordinate was supplied.
func (s *Service) resolveLocation(ctx context.Context, req Request) (geo.Coordinates, error) {
	if req.Location != nil {
		return *req.Location, nil
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return geo.Coordinates{}, apperr.Validation("either location or address is required")
	}

	var lastErr error
	for _, geocoder := range s.geocoders {
		coords, err := geocoder.Geocode(ctx, address)
		if err == nil {
			return coords, nil
		}
		lastErr = err
		if !errors.Is(err, geodata.ErrNoResults) {
			s.log.ProviderError(geocoder.Name(), "geocode", err)
		}
	}

	if errors.Is(lastErr, geodata.ErrNoResults) {
		return geo.Coordinates{}, apperr.NotFound("address could not be resolved to coordinates")
	}
	return geo.Coordinates{}, apperr.Unavailable("geocoding providers unavailable")
}

// cacheKey builds the canonical cache key. Coordinates are truncated to six
// decimals (about 10cm) so nearby float noise hits the same entry, and the
// factor list is sorted so subset requests are order-insensitive.
func cacheKey(center geo.Coordinates, radiusMiles float64, factors []string) string {
	names := factors
	if len(names) == 0 {
		names = AllFactors()
	}
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	return fmt.Sprintf("analysis:%.6f:%.6f:%.2f:%s",
		center.Latitude, center.Longitude, radiusMiles, strings.Join(sorted, ","))
}
