package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"leadscout_backend/internal/geo"
	"leadscout_backend/platform/logger"
)

const defaultGeocodeBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocodeClient geocodes addresses through the Google Geocoding API.
// It is the primary geocoder, selected when a Google Maps key is configured.
type GoogleGeocodeClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewGoogleGeocodeClient creates a Google geocoding provider.
func NewGoogleGeocodeClient(apiKey string, log *logger.Logger) *GoogleGeocodeClient {
	return &GoogleGeocodeClient{
		baseURL:    defaultGeocodeBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        log,
	}
}

// Name identifies the provider in logs.
func (c *GoogleGeocodeClient) Name() string { return "google_geocoding" }

type googleGeocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address to coordinates, taking the best match.
func (c *GoogleGeocodeClient) Geocode(ctx context.Context, address string) (geo.Coordinates, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return geo.Coordinates{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ProviderError(c.Name(), "geocode", err)
		return geo.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("google geocoding status %d", resp.StatusCode)
		c.log.ProviderError(c.Name(), "geocode", err)
		return geo.Coordinates{}, err
	}

	var payload googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.ProviderError(c.Name(), "geocode", err)
		return geo.Coordinates{}, err
	}

	if payload.Status == "ZERO_RESULTS" || len(payload.Results) == 0 {
		return geo.Coordinates{}, ErrNoResults
	}
	if payload.Status != "OK" {
		return geo.Coordinates{}, fmt.Errorf("google geocoding response status %s", payload.Status)
	}

	location := payload.Results[0].Geometry.Location
	return geo.Coordinates{Latitude: location.Lat, Longitude: location.Lng}, nil
}
