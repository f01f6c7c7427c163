package geo

import (
	"math"
	"testing"
)

func TestHaversineZeroDistance(t *testing.T) {
	if d := Haversine(37.0, -122.0, 37.0, -122.0); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestHaversineLatitudeOffset(t *testing.T) {
	// 0.0003 degrees of latitude is roughly 33.4m on the reference sphere.
	d := Haversine(37.0000, -122.0000, 37.0003, -122.0000)
	if d < 33.0 || d > 33.7 {
		t.Fatalf("expected ~33.4m, got %f", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := Haversine(37.0000, -122.0000, 37.0003, -122.0004)
	b := Haversine(37.0003, -122.0004, 37.0000, -122.0000)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %f vs %f", a, b)
	}
}

func TestHaversineKnownCities(t *testing.T) {
	// SFO to LAX is about 543km.
	d := Haversine(37.6188, -122.3758, 33.9416, -118.4085)
	if d < 540000 || d > 548000 {
		t.Fatalf("expected ~543km, got %f", d)
	}
}
