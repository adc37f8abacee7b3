package geo

import (
	"math"
	"testing"
)

func TestDistanceKmZeroForSamePoint(t *testing.T) {
	if d := DistanceKm(-33.9249, 18.4241, -33.9249, 18.4241); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestDistanceKmKnownPair(t *testing.T) {
	// Cape Town city centre to Stellenbosch, roughly 41 km.
	d := DistanceKm(-33.9249, 18.4241, -33.9321, 18.8602)
	if math.Abs(d-40.3) > 1.5 {
		t.Fatalf("expected ~40 km, got %v", d)
	}
}

func TestDistanceKmShortRange(t *testing.T) {
	// Two points ~500 m apart.
	d := DistanceKm(-33.9249, 18.4241, -33.9294, 18.4241)
	if d < 0.45 || d > 0.55 {
		t.Fatalf("expected ~0.5 km, got %v", d)
	}
}
