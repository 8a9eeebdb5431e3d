package geo

import (
	"math"
	"testing"
)

func TestHaversine_KnownDistances(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantMeters             float64
		tolerance              float64
	}{
		{
			name:       "two campus stops ~370m apart",
			lat1:       1.5580, lon1: 103.6320,
			lat2:       1.5580, lon2: 103.6353,
			wantMeters: 367,
			tolerance:  15,
		},
		{
			name:       "same point returns zero",
			lat1:       1.558, lon1: 103.632,
			lat2:       1.558, lon2: 103.632,
			wantMeters: 0,
			tolerance:  0.001,
		},
		{
			name:       "north pole to south pole",
			lat1:       90, lon1: 0,
			lat2:       -90, lon2: 0,
			wantMeters: math.Pi * earthRadiusMeters,
			tolerance:  1,
		},
		{
			name:       "equator quarter circumference",
			lat1:       0, lon1: 0,
			lat2:       0, lon2: 90,
			wantMeters: math.Pi / 2 * earthRadiusMeters,
			tolerance:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantMeters) > tt.tolerance {
				t.Errorf("Haversine() = %.1f m, want %.1f m (±%.0f)", got, tt.wantMeters, tt.tolerance)
			}
		})
	}
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Haversine(1.558, 103.632, 1.572, 103.620)
	b := Haversine(1.572, 103.620, 1.558, 103.632)
	if a != b {
		t.Errorf("Haversine not symmetric: %f != %f", a, b)
	}
}

func TestDist_MatchesHaversine(t *testing.T) {
	a := Point{Lat: 1.558, Lon: 103.632}
	b := Point{Lat: 1.572, Lon: 103.620}
	if Dist(a, b) != Haversine(a.Lat, a.Lon, b.Lat, b.Lon) {
		t.Errorf("Dist and Haversine disagree")
	}
}

func TestPolylineLength(t *testing.T) {
	// A straight line split into two equal segments should sum to the
	// same length as the direct Haversine distance between the ends.
	line := [][2]float64{
		{103.632, 1.558},
		{103.6335, 1.558},
		{103.635, 1.558},
	}
	direct := Haversine(1.558, 103.632, 1.558, 103.635)
	got := PolylineLength(line)
	if math.Abs(got-direct) > 1 {
		t.Errorf("PolylineLength() = %.2f, want ~%.2f", got, direct)
	}
}

func TestPolylineLength_EmptyAndSingle(t *testing.T) {
	if got := PolylineLength(nil); got != 0 {
		t.Errorf("empty polyline length = %f, want 0", got)
	}
	if got := PolylineLength([][2]float64{{103.632, 1.558}}); got != 0 {
		t.Errorf("single-point polyline length = %f, want 0", got)
	}
}
