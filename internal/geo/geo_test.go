package geo

import (
	"math"
	"testing"
)

func TestDistanceMetersKnownPair(t *testing.T) {
	// Empire State Building to Statue of Liberty, roughly 8.3 km.
	a := Coordinates{Latitude: 40.748440, Longitude: -73.985660}
	b := Coordinates{Latitude: 40.689250, Longitude: -74.044500}

	got := DistanceMeters(a, b)
	if math.Abs(got-8300) > 200 {
		t.Fatalf("expected ~8300m, got %.1f", got)
	}
}

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	p := Coordinates{Latitude: 51.5074, Longitude: -0.1278}
	if got := DistanceMeters(p, p); got != 0 {
		t.Fatalf("expected 0 for identical points, got %v", got)
	}
}

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		name string
		c    Coordinates
		want bool
	}{
		{"origin", Coordinates{}, true},
		{"poles", Coordinates{Latitude: 90, Longitude: 180}, true},
		{"antimeridian", Coordinates{Latitude: -90, Longitude: -180}, true},
		{"latitude too high", Coordinates{Latitude: 90.1}, false},
		{"latitude too low", Coordinates{Latitude: -91}, false},
		{"longitude too high", Coordinates{Longitude: 181}, false},
		{"longitude too low", Coordinates{Longitude: -180.5}, false},
	}

	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestMilesToMeters(t *testing.T) {
	if got := MilesToMeters(1); got != 1609.344 {
		t.Fatalf("expected 1609.344, got %v", got)
	}
}
