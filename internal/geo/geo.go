// Package geo provides coordinate types and spherical distance math shared
// by the analyzers and provider clients.
package geo

import "github.com/golang/geo/s2"

const (
	// EarthRadiusMeters is Earth's mean radius in meters.
	EarthRadiusMeters = 6371000.0

	// MetersPerMile converts request radii (miles) to provider radii (meters).
	MetersPerMile = 1609.344
)

// Coordinates is a WGS84 point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the point lies inside the WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// DistanceMeters calculates the great-circle distance between two points in meters.
func DistanceMeters(a, b Coordinates) float64 {
	p1 := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	p2 := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// MilesToMeters converts a radius in miles to meters.
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}
