package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadscout_backend/internal/geo"
	"leadscout_backend/platform/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const defaultHTTPTimeout = 10 * time.Second

// OverpassClient queries the OpenStreetMap Overpass API for amenities.
// It is the public, keyless provider, selected when no Google Maps key is
// configured. Overpass asks for at most one request per second from
// anonymous clients, so all calls go through a shared limiter.
type OverpassClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	circuit    *gobreaker.CircuitBreaker
	log        *logger.Logger
}

// NewOverpassClient creates an Overpass amenity provider.
func NewOverpassClient(baseURL string, log *logger.Logger) *OverpassClient {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "overpass",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &OverpassClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		circuit:    cb,
		log:        log,
	}
}

// Name identifies the provider in logs and factor detail payloads.
func (c *OverpassClient) Name() string { return "overpass" }

type overpassElement struct {
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// FindAmenities returns raw points of interest inside the radius.
func (c *OverpassClient) FindAmenities(ctx context.Context, center geo.Coordinates, radiusMeters float64) ([]Amenity, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := buildOverpassQuery(center, radiusMeters)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		form := url.Values{}
		form.Set("data", query)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("overpass status %d", resp.StatusCode)
		}

		var payload overpassResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		c.log.ProviderError(c.Name(), "find_amenities", err)
		return nil, err
	}

	payload := result.(overpassResponse)
	amenities := make([]Amenity, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		category := pickCategory(element.Tags)
		if category == "" {
			continue
		}
		amenities = append(amenities, Amenity{
			Category: category,
			Name:     element.Tags["name"],
			Location: geo.Coordinates{Latitude: element.Lat, Longitude: element.Lon},
		})
	}

	return amenities, nil
}

// buildOverpassQuery selects the node classes the proximity analyzer can
// classify: amenities, food shops, parks, and rail/bus stops.
func buildOverpassQuery(center geo.Coordinates, radiusMeters float64) string {
	around := fmt.Sprintf("(around:%.0f,%.6f,%.6f)", radiusMeters, center.Latitude, center.Longitude)
	return fmt.Sprintf(`[out:json][timeout:8];(node[amenity]%s;node[shop~"^(supermarket|grocery|convenience|mall)$"]%s;node[leisure=park]%s;node[railway=station]%s;node[highway=bus_stop]%s;);out body;`,
		around, around, around, around, around)
}

// pickCategory flattens OSM tag namespaces into a single raw category.
func pickCategory(tags map[string]string) string {
	if value := tags["amenity"]; value != "" {
		return value
	}
	if value := tags["shop"]; value != "" {
		return value
	}
	if tags["leisure"] == "park" {
		return "park"
	}
	if tags["railway"] == "station" {
		return "station"
	}
	if tags["highway"] == "bus_stop" {
		return "bus_stop"
	}
	return ""
}
