package geo

import (
	"math"
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestDistance_Symmetric(t *testing.T) {
	points := []Point{
		{Lat: -8.5069, Lng: 115.2625}, // Ubud
		{Lat: -8.7180, Lng: 115.1686}, // Kuta
		{Lat: -8.3405, Lng: 115.0920},
		{Lat: 0, Lng: 0},
		{Lat: 51.5, Lng: -0.12},
		{Lat: -33.86, Lng: 151.2},
	}

	for i := range points {
		for j := range points {
			a, b := points[i], points[j]
			ab := Distance(&a, &b)
			ba := Distance(&b, &a)
			if ab == nil || ba == nil {
				t.Fatalf("expected distance for %v/%v", a, b)
			}
			if math.Abs(*ab-*ba) > 1e-9 {
				t.Errorf("distance not symmetric for %v/%v: %f vs %f", a, b, *ab, *ba)
			}
		}
	}
}

func TestDistance_KnownValue(t *testing.T) {
	ubud := &Point{Lat: -8.5069, Lng: 115.2625}
	kuta := &Point{Lat: -8.7180, Lng: 115.1686}

	d := Distance(ubud, kuta)
	if d == nil {
		t.Fatalf("expected distance")
	}
	// ~25.6 km as the crow flies
	if *d < 24 || *d > 27 {
		t.Errorf("unexpected Ubud-Kuta distance: %f", *d)
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	p := &Point{Lat: -8.65, Lng: 115.22}
	d := Distance(p, p)
	if d == nil || *d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestDistance_MissingPointIsNil(t *testing.T) {
	p := &Point{Lat: -8.65, Lng: 115.22}
	if Distance(nil, p) != nil {
		t.Errorf("expected nil when origin is missing")
	}
	if Distance(p, nil) != nil {
		t.Errorf("expected nil when target is missing")
	}
	if Distance(nil, nil) != nil {
		t.Errorf("expected nil when both are missing")
	}
}

func TestParsePoint(t *testing.T) {
	if ParsePoint(nil, fptr(115)) != nil {
		t.Errorf("expected nil for missing lat")
	}
	if ParsePoint(fptr(-8), nil) != nil {
		t.Errorf("expected nil for missing lng")
	}
	if ParsePoint(fptr(95), fptr(115)) != nil {
		t.Errorf("expected nil for out of range lat")
	}
	if ParsePoint(fptr(-8), fptr(190)) != nil {
		t.Errorf("expected nil for out of range lng")
	}
	p := ParsePoint(fptr(-8.5), fptr(115.2))
	if p == nil || p.Lat != -8.5 || p.Lng != 115.2 {
		t.Errorf("unexpected point: %+v", p)
	}
}
