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

const defaultWalkScoreBaseURL = "https://api.walkscore.com/score"

// WalkScoreClient fetches walkability scores from the Walk Score API.
// Only used when local amenity data is too sparse for an estimate.
type WalkScoreClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewWalkScoreClient creates a Walk Score provider.
func NewWalkScoreClient(apiKey string, log *logger.Logger) *WalkScoreClient {
	return &WalkScoreClient{
		baseURL:    defaultWalkScoreBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		log:        log,
	}
}

// Name identifies the provider in logs.
func (c *WalkScoreClient) Name() string { return "walkscore" }

type walkScoreResponse struct {
	Status    int `json:"status"`
	WalkScore int `json:"walkscore"`
}

// Score returns the provider's walkability score for a coordinate.
func (c *WalkScoreClient) Score(ctx context.Context, location geo.Coordinates) (int, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", fmt.Sprintf("%.6f", location.Latitude))
	params.Set("lon", fmt.Sprintf("%.6f", location.Longitude))
	params.Set("wsapikey", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ProviderError(c.Name(), "score", err)
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("walkscore status %d", resp.StatusCode)
		c.log.ProviderError(c.Name(), "score", err)
		return 0, err
	}

	var payload walkScoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.ProviderError(c.Name(), "score", err)
		return 0, err
	}

	// Walk Score uses status 1 for a successful score calculation.
	if payload.Status != 1 {
		return 0, fmt.Errorf("walkscore response status %d", payload.Status)
	}

	return payload.WalkScore, nil
}
