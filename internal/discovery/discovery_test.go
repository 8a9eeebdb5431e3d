package discovery

import (
	"testing"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/static"
)

func weekday() map[string]bool {
	return map[string]bool{"monday": true, "tuesday": true, "wednesday": true, "thursday": true, "friday": true}
}

func buildData(routes []static.Route, stops []static.Stop) *static.Data {
	d := &static.Data{Routes: routes, Stops: stops, RouteDurations: map[string][]int{}}
	static.BuildIndices(d)
	return d
}

func TestDirectRoutes_OrderedMatch(t *testing.T) {
	trip := &static.Trip{RouteName: "Route A", Headsign: "To KDOJ", StopsSequence: []string{"KP1", "CP", "KDOJ"}, Times: []string{"07:00"}}
	svc := &static.Service{ServiceID: "wd", ServiceDays: weekday(), Trips: []*static.Trip{trip}}
	route := static.Route{Name: "Route A", Services: []*static.Service{svc}}
	stops := []static.Stop{{ID: "KP1", Lat: 1.55, Lon: 103.63}, {ID: "CP", Lat: 1.551, Lon: 103.631}, {ID: "KDOJ", Lat: 1.552, Lon: 103.632}}

	d := buildData([]static.Route{route}, stops)
	disc := New(d, []string{"CP"})

	cands := disc.DirectRoutes("KP1", "CP")
	if len(cands) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cands))
	}
	if cands[0].OriginIndex != 0 || cands[0].DestIndex != 1 {
		t.Errorf("unexpected indices: %+v", cands[0])
	}
}

func TestDirectRoutes_RejectsReversedOrder(t *testing.T) {
	trip := &static.Trip{RouteName: "Route A", Headsign: "To KDOJ", StopsSequence: []string{"KP1", "CP", "KDOJ"}, Times: []string{"07:00"}}
	svc := &static.Service{ServiceID: "wd", ServiceDays: weekday(), Trips: []*static.Trip{trip}}
	route := static.Route{Name: "Route A", Services: []*static.Service{svc}}
	stops := []static.Stop{{ID: "KP1"}, {ID: "CP"}, {ID: "KDOJ"}}

	d := buildData([]static.Route{route}, stops)
	disc := New(d, nil)

	if got := disc.DirectRoutes("CP", "KP1"); len(got) != 0 {
		t.Errorf("reversed order must not match, got %d candidates", len(got))
	}
}

func TestLoopPairs_SuppressionHonored(t *testing.T) {
	tripOut := &static.Trip{RouteName: "Route A", Headsign: "To KDOJ", StopsSequence: []string{"KP1", "CP", "KDOJ"}, Times: []string{"07:00"}}
	tripBack := &static.Trip{RouteName: "Route A", Headsign: "To Cluster", StopsSequence: []string{"KDOJ", "CLUSTER"}, Times: []string{"07:20"}}
	svc := &static.Service{ServiceID: "wd", ServiceDays: weekday(), Trips: []*static.Trip{tripOut, tripBack}}
	route := static.Route{Name: "Route A", IsLoop: true, Services: []*static.Service{svc}}
	stops := []static.Stop{{ID: "KP1"}, {ID: "CP"}, {ID: "KDOJ"}, {ID: "CLUSTER"}}

	d := buildData([]static.Route{route}, stops)
	disc := New(d, nil)

	if got := disc.DirectRoutes("KP1", "CLUSTER"); len(got) != 0 {
		t.Errorf("suppressed loop chain must not be synthesized, got %d", len(got))
	}
}

func TestLoopPairs_UnsuppressedChainSynthesized(t *testing.T) {
	tripOut := &static.Trip{RouteName: "Route B", Headsign: "To KDOJ", StopsSequence: []string{"KP1", "CP", "KDOJ"}, Times: []string{"07:00"}}
	tripBack := &static.Trip{RouteName: "Route B", Headsign: "To Cluster", StopsSequence: []string{"KDOJ", "CLUSTER"}, Times: []string{"07:20"}}
	svc := &static.Service{ServiceID: "wd", ServiceDays: weekday(), Trips: []*static.Trip{tripOut, tripBack}}
	route := static.Route{Name: "Route B", IsLoop: true, Services: []*static.Service{svc}}
	stops := []static.Stop{{ID: "KP1"}, {ID: "CP"}, {ID: "KDOJ"}, {ID: "CLUSTER"}}

	d := buildData([]static.Route{route}, stops)
	disc := New(d, nil)

	if got := disc.DirectRoutes("KP1", "CLUSTER"); len(got) == 0 {
		t.Error("unsuppressed loop chain should be synthesized")
	}
}

func TestRoutesToNearbyStops_DedupesByRouteHeadsignStop(t *testing.T) {
	trip := &static.Trip{RouteName: "Route A", Headsign: "To KDOJ", StopsSequence: []string{"KP1", "CP", "KDOJ"}, Times: []string{"07:00"}}
	svc := &static.Service{ServiceID: "wd", ServiceDays: weekday(), Trips: []*static.Trip{trip}}
	route := static.Route{Name: "Route A", Services: []*static.Service{svc}}
	stops := []static.Stop{
		{ID: "KP1", Lat: 1.5500, Lon: 103.6300},
		{ID: "CP", Lat: 1.5505, Lon: 103.6305},
		{ID: "KDOJ", Lat: 1.5510, Lon: 103.6310},
	}
	d := buildData([]static.Route{route}, stops)
	disc := New(d, nil)

	dest := geo.Point{Lat: 1.5511, Lon: 103.6311}
	got := disc.RoutesToNearbyStops("KP1", dest, 1000)
	if len(got) != 2 {
		t.Fatalf("expected 2 downstream candidates within radius, got %d", len(got))
	}
}

func TestTransferCandidates_SkipsOriginAsHub(t *testing.T) {
	trip := &static.Trip{RouteName: "Route A", Headsign: "To KDOJ", StopsSequence: []string{"KP1", "CP"}, Times: []string{"07:00"}}
	svc := &static.Service{ServiceID: "wd", ServiceDays: weekday(), Trips: []*static.Trip{trip}}
	route := static.Route{Name: "Route A", Services: []*static.Service{svc}}
	stops := []static.Stop{{ID: "KP1", Lat: 1.55, Lon: 103.63}, {ID: "CP", Lat: 1.551, Lon: 103.631}}
	d := buildData([]static.Route{route}, stops)
	disc := New(d, []string{"KP1"})

	got := disc.TransferCandidates("KP1", geo.Point{Lat: 1.551, Lon: 103.631}, 1000)
	if len(got) != 0 {
		t.Errorf("hub equal to origin must be skipped, got %d candidates", len(got))
	}
}
