package geocache

import (
	"context"
	"testing"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/static"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

func sampleData() *static.Data {
	stops := []static.Stop{
		{ID: "KP1", Name: "KP1", Lat: 1.550, Lon: 103.630},
		{ID: "CP", Name: "Central Plaza", Lat: 1.5545, Lon: 103.6345},
		{ID: "KDOJ", Name: "KDOJ", Lat: 1.559, Lon: 103.639},
	}
	locations := []static.Location{
		{ID: "ARKED", Name: "Arked Meranti", Lat: 1.5546, Lon: 103.6346, Category: "food"},
	}
	d := &static.Data{Stops: stops, Locations: locations, RouteDurations: map[string][]int{}}
	static.BuildIndices(d)
	return d
}

func TestResolveLocation_ExactLocationID(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	loc, err := r.ResolveLocation("ARKED")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Name != "Arked Meranti" {
		t.Errorf("got %+v", loc)
	}
}

func TestResolveLocation_StopIDFallsBackToSyntheticLocation(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	loc, err := r.ResolveLocation("KP1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Category != "bus_stop" {
		t.Errorf("expected synthetic bus_stop location, got %+v", loc)
	}
}

func TestResolveLocation_CaseInsensitiveNameMatch(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	loc, err := r.ResolveLocation("arked meranti")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.ID != "ARKED" {
		t.Errorf("got %+v", loc)
	}
}

func TestResolveLocation_SubstringMatchAmongStops(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	loc, err := r.ResolveLocation("plaza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.ID != "CP" {
		t.Errorf("got %+v", loc)
	}
}

func TestResolveLocation_NoMatchReturnsError(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	if _, err := r.ResolveLocation("nowhere"); err == nil {
		t.Error("expected an error for an unresolvable identifier")
	}
}

func TestNearestStops_OrdersByDistance(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	point := geo.Point{Lat: 1.5546, Lon: 103.6346}

	near := r.NearestStops(context.Background(), point, 2, GreatCircleOnly)
	if len(near) != 2 {
		t.Fatalf("expected 2 results, got %d", len(near))
	}
	if near[0].StopID != "CP" {
		t.Errorf("expected CP closest, got %+v", near)
	}
	if near[0].Meters > near[1].Meters {
		t.Error("results should be sorted ascending by distance")
	}
}

func TestNearestStops_CachesByRoundedCoordinate(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	point := geo.Point{Lat: 1.5546, Lon: 103.6346}

	first := r.NearestStops(context.Background(), point, 1, GreatCircleOnly)
	second := r.NearestStops(context.Background(), point, 1, GreatCircleOnly)
	if first[0].StopID != second[0].StopID {
		t.Error("expected cached result to be stable across repeated queries")
	}
}

func TestNearestStops_RefinedWithoutRouterFallsBackToGreatCircle(t *testing.T) {
	r := New(sampleData(), nil)
	point := geo.Point{Lat: 1.5546, Lon: 103.6346}

	near := r.NearestStops(context.Background(), point, 1, Refined)
	if len(near) != 1 || near[0].StopID != "CP" {
		t.Errorf("expected great-circle fallback to still rank CP first, got %+v", near)
	}
}

func TestStopsInBounds_ReturnsStopsWithinViewport(t *testing.T) {
	r := New(sampleData(), walkrouter.None{})
	stops := r.StopsInBounds(1.549, 103.629, 1.556, 103.636)

	names := map[string]bool{}
	for _, s := range stops {
		names[s.ID] = true
	}
	if !names["KP1"] || !names["CP"] {
		t.Errorf("expected KP1 and CP within viewport, got %+v", stops)
	}
	if names["KDOJ"] {
		t.Errorf("expected KDOJ outside viewport, got %+v", stops)
	}
}
