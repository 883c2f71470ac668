package geodata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"leadscout_backend/internal/geo"
	"leadscout_backend/platform/logger"

	"github.com/sony/gobreaker"
)

// ErrNotConfigured is returned when the civic data base URL is unset.
// Analyzers treat it like any other provider failure and degrade to their
// neutral default.
var ErrNotConfigured = errors.New("geodata: civic data provider not configured")

// CivicClient fetches neighborhood statistics (school quality, crime rates,
// permit activity, property value trends) from a civic open-data gateway.
// One client serves all four datasets; each dataset has its own endpoint.
type CivicClient struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	log        *logger.Logger
}

// NewCivicClient creates a civic data client. An empty baseURL is allowed;
// every call will then return ErrNotConfigured.
func NewCivicClient(baseURL string, log *logger.Logger) *CivicClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "civicdata",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &CivicClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		circuit:    cb,
		log:        log,
	}
}

// SchoolSummary describes school coverage near a coordinate.
type SchoolSummary struct {
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"` // 0-10 scale
	TopRating     float64 `json:"topRating"`
}

// CrimeSummary describes reported incident rates near a coordinate.
type CrimeSummary struct {
	IncidentsPerThousand float64 `json:"incidentsPerThousand"`
	NationalAverage      float64 `json:"nationalAverage"`
	YoYChangePct         float64 `json:"yoyChangePct"`
}

// PermitActivity describes construction and investment activity.
type PermitActivity struct {
	ActivePermits   int     `json:"activePermits"`
	TotalValueUSD   float64 `json:"totalValueUsd"`
	InvestmentLevel string  `json:"investmentLevel"` // increasing | stable | decreasing
}

// ValueTrend describes the property value trajectory of an area.
type ValueTrend struct {
	MedianValueUSD    float64 `json:"medianValueUsd"`
	YoYChangePct      float64 `json:"yoyChangePct"`
	FiveYearChangePct float64 `json:"fiveYearChangePct"`
	Forecast          string  `json:"forecast"` // increasing | stable | decreasing
}

// Schools fetches the school summary for the area around a coordinate.
func (c *CivicClient) Schools(ctx context.Context, center geo.Coordinates, radiusMeters float64) (*SchoolSummary, error) {
	var summary SchoolSummary
	if err := c.fetch(ctx, "schools", center, radiusMeters, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Crime fetches the incident rate summary for the area around a coordinate.
func (c *CivicClient) Crime(ctx context.Context, center geo.Coordinates, radiusMeters float64) (*CrimeSummary, error) {
	var summary CrimeSummary
	if err := c.fetch(ctx, "crime", center, radiusMeters, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Permits fetches construction permit activity for the area around a coordinate.
func (c *CivicClient) Permits(ctx context.Context, center geo.Coordinates, radiusMeters float64) (*PermitActivity, error) {
	var activity PermitActivity
	if err := c.fetch(ctx, "permits", center, radiusMeters, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// PropertyValues fetches the property value trend for the area around a coordinate.
func (c *CivicClient) PropertyValues(ctx context.Context, center geo.Coordinates, radiusMeters float64) (*ValueTrend, error) {
	var trend ValueTrend
	if err := c.fetch(ctx, "property-values", center, radiusMeters, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}

func (c *CivicClient) fetch(ctx context.Context, dataset string, center geo.Coordinates, radiusMeters float64, out interface{}) error {
	if c.baseURL == "" {
		return ErrNotConfigured
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%.6f", center.Latitude))
	params.Set("lon", fmt.Sprintf("%.6f", center.Longitude))
	params.Set("radius", fmt.Sprintf("%.0f", radiusMeters))

	_, err := c.circuit.Execute(func() (interface{}, error) {
		reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, dataset, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNoResults
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("civicdata %s status %d", dataset, resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		c.log.ProviderError("civicdata", dataset, err)
		return err
	}

	return nil
}
