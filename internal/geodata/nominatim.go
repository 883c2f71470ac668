package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"leadscout_backend/internal/geo"
	"leadscout_backend/platform/logger"

	"golang.org/x/time/rate"
)

// NominatimClient geocodes addresses through the public OpenStreetMap
// Nominatim service. It is the keyless fallback geocoder. Nominatim's usage
// policy caps anonymous clients at one request per second.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewNominatimClient creates a Nominatim geocoding provider.
func NewNominatimClient(baseURL string, log *logger.Logger) *NominatimClient {
	return &NominatimClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		log:        log,
	}
}

// Name identifies the provider in logs.
func (c *NominatimClient) Name() string { return "nominatim" }

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves an address to coordinates, taking the best match.
func (c *NominatimClient) Geocode(ctx context.Context, address string) (geo.Coordinates, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return geo.Coordinates{}, err
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.Coordinates{}, err
	}
	req.Header.Set("User-Agent", "LeadScout/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ProviderError(c.Name(), "geocode", err)
		return geo.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("nominatim status %d", resp.StatusCode)
		c.log.ProviderError(c.Name(), "geocode", err)
		return geo.Coordinates{}, err
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		c.log.ProviderError(c.Name(), "geocode", err)
		return geo.Coordinates{}, err
	}

	if len(results) == 0 {
		return geo.Coordinates{}, ErrNoResults
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("nominatim latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geo.Coordinates{}, fmt.Errorf("nominatim longitude %q: %w", results[0].Lon, err)
	}

	return geo.Coordinates{Latitude: lat, Longitude: lon}, nil
}
