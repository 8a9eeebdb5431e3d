package itinerary

import (
	"context"
	"testing"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/pathfind"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

func testConfig() Config {
	return Config{ShortWalkThresholdM: 300, WalkOnlyThresholdM: 500, WalkSpeedKPH: 5, ImminentBusMinutes: 10}
}

func TestBuild_ZeroBusLegsYieldsWalkOnly(t *testing.T) {
	journey := &pathfind.Journey{
		Steps: []pathfind.Step{
			pathfind.WalkStep{ToStopID: "KP1", From: geo.Point{Lat: 1.55, Lon: 103.63}, To: geo.Point{Lat: 1.5505, Lon: 103.6305}, DistanceM: 70, DurationMin: 1},
			pathfind.WalkStep{FromStopID: "KP1", From: geo.Point{Lat: 1.5505, Lon: 103.6305}, To: geo.Point{Lat: 1.551, Lon: 103.631}, DistanceM: 70, DurationMin: 1},
		},
		ArrivalElapsed: 2,
	}
	req := BuildRequest{OriginPoint: geo.Point{Lat: 1.55, Lon: 103.63}, DestPoint: geo.Point{Lat: 1.551, Lon: 103.631}, QueryTime: 600, QueryDay: "monday"}

	it, err := Build(context.Background(), journey, testConfig(), req, walkrouter.None{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	wo, ok := it.(WalkOnly)
	if !ok {
		t.Fatalf("expected WalkOnly, got %T", it)
	}
	if wo.Walk.Source != "greatcircle" {
		t.Errorf("expected greatcircle source with a None router, got %q", wo.Walk.Source)
	}
}

func TestBuild_SingleBusLegYieldsDirect(t *testing.T) {
	journey := &pathfind.Journey{
		Steps: []pathfind.Step{
			pathfind.WalkStep{ToStopID: "KP1", DistanceM: 50, DurationMin: 1},
			pathfind.BusStep{RouteName: "Route A", Headsign: "To KDOJ", FromStopID: "KP1", FromIndex: 0, ToStopID: "CP", ToIndex: 1, DepartureElapsed: 5, ArrivalElapsed: 15, Day: "monday"},
			pathfind.WalkStep{FromStopID: "CP", DistanceM: 2000, DurationMin: 1},
		},
	}
	req := BuildRequest{OriginPoint: geo.Point{Lat: 1.55, Lon: 103.63}, DestPoint: geo.Point{Lat: 1.59, Lon: 103.66}, QueryTime: 600, QueryDay: "monday"}

	it, err := Build(context.Background(), journey, testConfig(), req, walkrouter.None{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	direct, ok := it.(Direct)
	if !ok {
		t.Fatalf("expected Direct, got %T", it)
	}
	if direct.Bus.RouteName != "Route A" {
		t.Errorf("unexpected route %q", direct.Bus.RouteName)
	}
	if direct.Summary.DepartureTime != 605 {
		t.Errorf("DepartureTime = %d, want 605", direct.Summary.DepartureTime)
	}
}

func TestBuild_ConsecutiveSameRouteLegsMerge(t *testing.T) {
	journey := &pathfind.Journey{
		Steps: []pathfind.Step{
			pathfind.WalkStep{ToStopID: "KP1", DistanceM: 10, DurationMin: 0},
			pathfind.BusStep{RouteName: "Route A", Headsign: "To KDOJ", FromStopID: "KP1", FromIndex: 0, ToStopID: "CP", ToIndex: 1, DepartureElapsed: 5, ArrivalElapsed: 10, Day: "monday"},
			pathfind.BusStep{RouteName: "Route A", Headsign: "To KDOJ", FromStopID: "CP", FromIndex: 1, ToStopID: "KDOJ", ToIndex: 2, DepartureElapsed: 10, ArrivalElapsed: 15, Day: "monday"},
			pathfind.WalkStep{FromStopID: "KDOJ", DistanceM: 10, DurationMin: 0},
		},
	}
	req := BuildRequest{OriginPoint: geo.Point{Lat: 1.55, Lon: 103.63}, DestPoint: geo.Point{Lat: 1.59, Lon: 103.66}, QueryTime: 600, QueryDay: "monday"}

	it, err := Build(context.Background(), journey, testConfig(), req, walkrouter.None{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	direct, ok := it.(Direct)
	if !ok {
		t.Fatalf("expected the two same-route legs to merge into Direct, got %T", it)
	}
	if direct.Bus.ToStopID != "KDOJ" {
		t.Errorf("merged leg should end at KDOJ, got %q", direct.Bus.ToStopID)
	}
}

func TestBuild_TransferYieldsTwoLegs(t *testing.T) {
	journey := &pathfind.Journey{
		Steps: []pathfind.Step{
			pathfind.WalkStep{ToStopID: "KP1", DistanceM: 10, DurationMin: 0},
			pathfind.BusStep{RouteName: "Route A", Headsign: "To CP", FromStopID: "KP1", FromIndex: 0, ToStopID: "CP", ToIndex: 1, DepartureElapsed: 5, ArrivalElapsed: 10, Day: "monday"},
			pathfind.BusStep{RouteName: "Route B", Headsign: "To FKT", FromStopID: "CP", FromIndex: 0, ToStopID: "FKT", ToIndex: 1, DepartureElapsed: 12, ArrivalElapsed: 20, Day: "monday"},
			pathfind.WalkStep{FromStopID: "FKT", DistanceM: 2000, DurationMin: 1},
		},
	}
	req := BuildRequest{OriginPoint: geo.Point{Lat: 1.55, Lon: 103.63}, DestPoint: geo.Point{Lat: 1.60, Lon: 103.70}, QueryTime: 600, QueryDay: "monday"}

	it, err := Build(context.Background(), journey, testConfig(), req, walkrouter.None{}, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	transfer, ok := it.(Transfer)
	if !ok {
		t.Fatalf("expected Transfer, got %T", it)
	}
	if len(transfer.BusLegs) != 2 {
		t.Fatalf("expected 2 bus legs, got %d", len(transfer.BusLegs))
	}
}
