package geo

import (
	"math"
	"testing"
)

func square(x1, y1, x2, y2 float64) Ring {
	return Ring{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
}

func TestPointInRing_InteriorAndExterior(t *testing.T) {
	ring := square(0, 0, 10, 10)

	cases := []struct {
		name     string
		lon, lat float64
		want     bool
	}{
		{"center", 5, 5, true},
		{"near edge inside", 9.99, 9.99, true},
		{"outside right", 10.5, 5, false},
		{"outside above", 5, 10.5, false},
		{"far away", 100, 50, false},
		{"negative outside", -1, -1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointInRing(tc.lon, tc.lat, ring); got != tc.want {
				t.Fatalf("PointInRing(%v, %v) = %v, want %v", tc.lon, tc.lat, got, tc.want)
			}
		})
	}
}

func TestPointInRing_ClosedAndOpenRingsAgree(t *testing.T) {
	open := square(0, 0, 10, 10)
	closed := append(append(Ring{}, open...), open[0])

	for _, p := range []Position{{5, 5}, {-1, 5}, {11, 5}, {5, -1}} {
		if PointInRing(p.Lon(), p.Lat(), open) != PointInRing(p.Lon(), p.Lat(), closed) {
			t.Fatalf("open/closed ring disagree at %v", p)
		}
	}
}

func TestPointInRing_ZeroHeightEdgeDoesNotPanic(t *testing.T) {
	// horizontal edge exactly at the query latitude
	ring := Ring{{0, 5}, {10, 5}, {10, 10}, {0, 10}}
	got := PointInRing(5, 5, ring)
	// boundary behavior is implementation-defined but must be deterministic
	for i := 0; i < 10; i++ {
		if PointInRing(5, 5, ring) != got {
			t.Fatal("boundary result not deterministic")
		}
	}
}

func TestPointInRing_ConcavePolygon(t *testing.T) {
	// U-shape: the notch between the arms is outside
	ring := Ring{{0, 0}, {10, 0}, {10, 10}, {7, 10}, {7, 3}, {3, 3}, {3, 10}, {0, 10}}
	if !PointInRing(1, 5, ring) {
		t.Fatal("left arm should be inside")
	}
	if !PointInRing(9, 5, ring) {
		t.Fatal("right arm should be inside")
	}
	if PointInRing(5, 8, ring) {
		t.Fatal("notch should be outside")
	}
}

func TestPointInRing_DegenerateRings(t *testing.T) {
	if PointInRing(1, 1, nil) {
		t.Fatal("nil ring must not contain anything")
	}
	if PointInRing(1, 1, Ring{{0, 0}, {2, 2}}) {
		t.Fatal("two-vertex ring must not contain anything")
	}
}

func TestPolygonPart_HolesIgnored(t *testing.T) {
	outer := square(0, 0, 10, 10)
	hole := square(4, 4, 6, 6)
	part := PolygonPart{outer, hole}

	// points inside the hole still count as contained (outer ring only)
	if !part.Contains(5, 5) {
		t.Fatal("hole must not exclude the point")
	}
	if part.Contains(11, 5) {
		t.Fatal("point outside outer ring must not be contained")
	}
}

func TestHaversineKm_ZeroAndSymmetry(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{59.3293, 18.0686},  // Stockholm
		{35.6762, 139.6503}, // Tokyo
		{-33.8688, 151.2093},
	}
	for _, p := range points {
		if d := HaversineKm(p[0], p[1], p[0], p[1]); d != 0 {
			t.Fatalf("d(a,a) = %v, want 0", d)
		}
	}
	for i := range points {
		for j := range points {
			a, b := points[i], points[j]
			d1 := HaversineKm(a[0], a[1], b[0], b[1])
			d2 := HaversineKm(b[0], b[1], a[0], a[1])
			if math.Abs(d1-d2) > 1e-9 {
				t.Fatalf("asymmetric: d=%v reverse=%v", d1, d2)
			}
			if d1 < 0 {
				t.Fatalf("negative distance %v", d1)
			}
		}
	}
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Paris to London, roughly 344 km
	d := HaversineKm(48.8566, 2.3522, 51.5074, -0.1278)
	if d < 330 || d > 360 {
		t.Fatalf("Paris-London = %v km, want ~344", d)
	}
}
