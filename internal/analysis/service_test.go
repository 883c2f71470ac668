package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"leadscout_backend/internal/cache"
	"leadscout_backend/internal/geo"
	"leadscout_backend/internal/geodata"
	"leadscout_backend/platform/apperr"
	"leadscout_backend/platform/logger"
)

type stubGeocoder struct {
	name   string
	coords geo.Coordinates
	err    error
	calls  int
}

func (s *stubGeocoder) Name() string { return s.name }

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (geo.Coordinates, error) {
	s.calls++
	if s.err != nil {
		return geo.Coordinates{}, s.err
	}
	return s.coords, nil
}

func newTestService(t *testing.T, geocoders []geodata.GeocodingProvider) *Service {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	resultCache := cache.NewWithClient(client, time.Hour, logger.New("test"))

	orchestrator := testOrchestrator(fullAnalyzerSet("stable", "stable"))
	return NewService(orchestrator, geocoders, resultCache, 1, logger.New("test"))
}

func TestServiceAnalyzeIdempotentWithinTTL(t *testing.T) {
	svc := newTestService(t, nil)
	req := Request{Location: &testCenter, RadiusMiles: 2}

	first, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.AnalyzedAt.Equal(second.AnalyzedAt) {
		t.Fatalf("expected the cached context, got timestamps %v and %v", first.AnalyzedAt, second.AnalyzedAt)
	}
	if first.Trend != second.Trend || first.Opportunity != second.Opportunity {
		t.Fatalf("cached context differs: %+v vs %+v", first, second)
	}
}

func TestServiceDefaultRadius(t *testing.T) {
	svc := newTestService(t, nil)

	result, err := svc.Analyze(context.Background(), Request{Location: &testCenter})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RadiusMiles != 1 {
		t.Fatalf("expected default radius 1 mile, got %v", result.RadiusMiles)
	}
}

func TestServiceGeocodeFallbackChain(t *testing.T) {
	fixture := geo.Coordinates{Latitude: 40.7128, Longitude: -74.006}
	primary := &stubGeocoder{name: "primary", err: geodata.ErrNoResults}
	secondary := &stubGeocoder{name: "secondary", coords: fixture}
	svc := newTestService(t, []geodata.GeocodingProvider{primary, secondary})

	result, err := svc.Analyze(context.Background(), Request{Address: "12 Elm Street, New York"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("expected both providers tried, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
	if result.Location != fixture {
		t.Fatalf("expected fixture coordinates %+v, got %+v", fixture, result.Location)
	}
}

func TestServiceGeocodeExhaustionSurfaces(t *testing.T) {
	broken := &stubGeocoder{name: "broken", err: context.DeadlineExceeded}
	svc := newTestService(t, []geodata.GeocodingProvider{broken})

	_, err := svc.Analyze(context.Background(), Request{Address: "12 Elm Street"})
	if err == nil {
		t.Fatalf("expected geocoding failure to surface")
	}
	if apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable kind, got %v", err)
	}
}

func TestServiceAddressNotFound(t *testing.T) {
	empty := &stubGeocoder{name: "empty", err: geodata.ErrNoResults}
	svc := newTestService(t, []geodata.GeocodingProvider{empty})

	_, err := svc.Analyze(context.Background(), Request{Address: "nowhere at all"})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found kind, got %v", err)
	}
}

func TestServiceRequiresLocationOrAddress(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Analyze(context.Background(), Request{})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceClampsRadiusBeforeCaching(t *testing.T) {
	// An over-limit radius is analyzed at the maximum, so it must share
	// the maximum's cache entry instead of filing the same result under a
	// key that misstates the radius.
	svc := newTestService(t, nil)

	over, err := svc.Analyze(context.Background(), Request{Location: &testCenter, RadiusMiles: 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if over.RadiusMiles != 5 {
		t.Fatalf("expected radius clamped to 5, got %v", over.RadiusMiles)
	}

	atMax, err := svc.Analyze(context.Background(), Request{Location: &testCenter, RadiusMiles: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !over.AnalyzedAt.Equal(atMax.AnalyzedAt) {
		t.Fatalf("expected the clamped request to share the max-radius cache entry")
	}
}

func TestCacheKeyCanonical(t *testing.T) {
	center := geo.Coordinates{Latitude: 40.7128, Longitude: -74.006}

	ordered := cacheKey(center, 1, []string{FactorCrime, FactorProximity})
	reversed := cacheKey(center, 1, []string{FactorProximity, FactorCrime})
	if ordered != reversed {
		t.Fatalf("factor order must not change the key: %q vs %q", ordered, reversed)
	}

	all := cacheKey(center, 1, nil)
	subset := cacheKey(center, 1, []string{FactorCrime})
	if all == subset {
		t.Fatalf("subset requests must not share the full-analysis key")
	}

	other := cacheKey(geo.Coordinates{Latitude: 40.7129, Longitude: -74.006}, 1, nil)
	if all == other {
		t.Fatalf("different coordinates must not share a key")
	}
}
