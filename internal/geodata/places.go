package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"leadscout_backend/internal/geo"
	"leadscout_backend/platform/logger"

	"github.com/sony/gobreaker"
)

const defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// PlacesClient queries the Google Places Nearby Search API for amenities.
// It is the primary amenity provider, selected when a Google Maps key is
// configured.
type PlacesClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	log        *logger.Logger
}

// NewPlacesClient creates a Google Places amenity provider.
func NewPlacesClient(apiKey string, log *logger.Logger) *PlacesClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google_places",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &PlacesClient{
		baseURL:    defaultPlacesBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		circuit:    cb,
		log:        log,
	}
}

// Name identifies the provider in logs and factor detail payloads.
func (c *PlacesClient) Name() string { return "google_places" }

type placesResult struct {
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

type placesResponse struct {
	Status  string         `json:"status"`
	Results []placesResult `json:"results"`
}

// FindAmenities returns raw points of interest inside the radius.
func (c *PlacesClient) FindAmenities(ctx context.Context, center geo.Coordinates, radiusMeters float64) ([]Amenity, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", center.Latitude, center.Longitude))
	params.Set("radius", fmt.Sprintf("%.0f", radiusMeters))
	params.Set("key", c.apiKey)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("places status %d", resp.StatusCode)
		}

		var payload placesResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
			return nil, fmt.Errorf("places response status %s", payload.Status)
		}
		return payload, nil
	})
	if err != nil {
		c.log.ProviderError(c.Name(), "find_amenities", err)
		return nil, err
	}

	payload := result.(placesResponse)
	amenities := make([]Amenity, 0, len(payload.Results))
	for _, place := range payload.Results {
		if len(place.Types) == 0 {
			continue
		}
		amenities = append(amenities, Amenity{
			// The first type entry is the most specific one.
			Category: place.Types[0],
			Name:     place.Name,
			Location: geo.Coordinates{Latitude: place.Geometry.Location.Lat, Longitude: place.Geometry.Location.Lng},
		})
	}

	return amenities, nil
}
