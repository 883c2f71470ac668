// Package geodata provides HTTP clients for the external geospatial data
// providers. Each client is a narrow interface implementation; provider
// selection happens at wiring time based on which credentials are configured.
package geodata

import (
	"context"
	"errors"

	"leadscout_backend/internal/geo"
)

// ErrNoResults is returned when a provider responds successfully but has
// nothing for the query. Callers decide whether that is an error.
var ErrNoResults = errors.New("geodata: no results")

// Amenity is a point of interest near a coordinate. Category carries the
// provider's raw tag (e.g. "supermarket", "station"); canonical
// classification is the proximity analyzer's job, not the client's.
type Amenity struct {
	Category string
	Name     string
	Location geo.Coordinates
}

// AmenityProvider finds points of interest within a radius of a coordinate.
type AmenityProvider interface {
	Name() string
	FindAmenities(ctx context.Context, center geo.Coordinates, radiusMeters float64) ([]Amenity, error)
}

// GeocodingProvider resolves a free-form address to coordinates.
type GeocodingProvider interface {
	Name() string
	Geocode(ctx context.Context, address string) (geo.Coordinates, error)
}

// WalkScoreProvider returns an externally computed walkability score (0-100).
// Optional: the proximity analyzer estimates locally when none is configured.
type WalkScoreProvider interface {
	Name() string
	Score(ctx context.Context, location geo.Coordinates) (int, error)
}
