package analysis

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadscout_backend/internal/geodata"
	"leadscout_backend/platform/logger"
)

func civicFixture(t *testing.T, responses map[string]string) *geodata.CivicClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for dataset, body := range responses {
			if r.URL.Path == "/"+dataset {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	return geodata.NewCivicClient(srv.URL, logger.New("test"))
}

func TestSchoolsAnalyzerScoresFromRatings(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"schools": `{"count":5,"averageRating":8.0,"topRating":9.5}`,
	})
	a := NewSchoolsAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// 8.0*10 + 10 (count>=5) + 5 (top>=9) = 95.
	if result.Score != 95 {
		t.Fatalf("expected score 95, got %d", result.Score)
	}
	if result.Confidence != 1 {
		t.Fatalf("expected measured confidence, got %v", result.Confidence)
	}
}

func TestSchoolsAnalyzerNoSchools(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"schools": `{"count":0,"averageRating":0,"topRating":0}`,
	})
	a := NewSchoolsAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	if result.Score != 30 {
		t.Fatalf("expected low score 30 with no schools in range, got %d", result.Score)
	}
	if result.Confidence == 0 {
		t.Fatalf("no schools is a measured result, expected confidence > 0")
	}
}

func TestSchoolsAnalyzerDegradesOnProviderFailure(t *testing.T) {
	civic := civicFixture(t, nil) // every dataset 404s
	a := NewSchoolsAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	if result.Score != 50 || result.Confidence != 0 {
		t.Fatalf("expected degraded result (50, confidence 0), got score=%d confidence=%v", result.Score, result.Confidence)
	}
}

func TestCrimeAnalyzerSaferThanAverage(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"crime": `{"incidentsPerThousand":10,"nationalAverage":40,"yoyChangePct":-6}`,
	})
	a := NewCrimeAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// Ratio 0.25 scores 95, falling crime adds 5, clamped to 100.
	if result.Score != 100 {
		t.Fatalf("expected score 100, got %d", result.Score)
	}
}

func TestCrimeAnalyzerHighCrime(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"crime": `{"incidentsPerThousand":90,"nationalAverage":40,"yoyChangePct":8}`,
	})
	a := NewCrimeAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// Ratio 2.25 scores 10, rising crime subtracts 5.
	if result.Score != 5 {
		t.Fatalf("expected score 5, got %d", result.Score)
	}
}

func TestDevelopmentAnalyzerInvestmentAdjustment(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"permits": `{"activePermits":30,"totalValueUsd":12500000,"investmentLevel":"increasing"}`,
	})
	a := NewDevelopmentAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// 25+ permits scores 75, increasing investment adds 10.
	if result.Score != 85 {
		t.Fatalf("expected score 85, got %d", result.Score)
	}

	detail, ok := result.Detail.(DevelopmentDetail)
	if !ok {
		t.Fatalf("expected DevelopmentDetail, got %T", result.Detail)
	}
	if detail.InvestmentLevel != "increasing" {
		t.Fatalf("expected investment level carried in detail, got %q", detail.InvestmentLevel)
	}
}

func TestPropertyValueAnalyzerAppreciation(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"property-values": `{"medianValueUsd":450000,"yoyChangePct":6,"fiveYearChangePct":30,"forecast":"increasing"}`,
	})
	a := NewPropertyValueAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// YoY 6% scores 80, five-year +30% adds 5, increasing forecast adds 5.
	if result.Score != 90 {
		t.Fatalf("expected score 90, got %d", result.Score)
	}
}

func TestPropertyValueAnalyzerDecline(t *testing.T) {
	civic := civicFixture(t, map[string]string{
		"property-values": `{"medianValueUsd":210000,"yoyChangePct":-8,"fiveYearChangePct":-4,"forecast":"decreasing"}`,
	})
	a := NewPropertyValueAnalyzer(civic, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// YoY -8% scores 20, negative five-year subtracts 5, decreasing forecast subtracts 5.
	if result.Score != 10 {
		t.Fatalf("expected score 10, got %d", result.Score)
	}
}

func TestTransitAnalyzerNearestStop(t *testing.T) {
	provider := &stubAmenityProvider{amenities: []geodata.Amenity{
		{Category: "bus_stop", Name: "Central", Location: offsetNorth(testCenter, 200)},
		{Category: "station", Name: "Main St", Location: offsetNorth(testCenter, 900)},
		{Category: "school", Name: "PS 1", Location: offsetNorth(testCenter, 100)},
	}}
	a := NewTransitAnalyzer(provider, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	// Nearest stop at 200m scores 90; two stops earn no density bonus.
	if result.Score != 90 {
		t.Fatalf("expected score 90, got %d", result.Score)
	}

	detail := result.Detail.(TransitDetail)
	if detail.StopCount != 2 {
		t.Fatalf("expected 2 transit stops (the school is not one), got %d", detail.StopCount)
	}
	if detail.NearestStop != "Central" {
		t.Fatalf("expected nearest stop Central, got %q", detail.NearestStop)
	}
}

func TestTransitAnalyzerNoStops(t *testing.T) {
	a := NewTransitAnalyzer(&stubAmenityProvider{}, logger.New("test"))

	result := a.Analyze(context.Background(), testCenter, 2000)
	if result.Score != 20 {
		t.Fatalf("expected score 20 with no transit in range, got %d", result.Score)
	}
	if result.Confidence == 0 {
		t.Fatalf("no stops is a measured result, expected confidence > 0")
	}
}
