// Package static holds the process-wide, read-only data store described
// in spec.md §3: stops, locations, routes/services/trips, per-segment
// durations, and route geometries, plus the derived indices every upper
// layer (schedule, geocache, discovery, pathfind) queries against.
//
// A *Data value is built once by a loader (jsonload.go or pgload.go) and
// never mutated afterward — there is no package-level singleton here,
// answering spec.md §9's "process-wide cached data" design note.
package static

import (
	"strings"

	geojson "github.com/paulmach/go.geojson"

	"github.com/campusshuttle/planner/internal/geo"
)

// Stop is a physical boarding point, identified by a short code.
type Stop struct {
	ID        string
	Name      string
	Lat       float64
	Lon       float64
	Elevation *float64
}

func (s Stop) Point() geo.Point { return geo.Point{Lat: s.Lat, Lon: s.Lon} }

// Location is a named, queryable destination that may or may not be a
// stop. Every stop whose id is not already a location id is also exposed
// as a synthetic bus-stop location; on an id collision the explicit
// Location is kept (see buildIndices).
type Location struct {
	ID          string
	Name        string
	Lat         float64
	Lon         float64
	Elevation   *float64
	NearestStop string
	Category    string
}

func (l Location) Point() geo.Point { return geo.Point{Lat: l.Lat, Lon: l.Lon} }

// Trip is a single directional pattern of a route: an ordered stop
// sequence and a list of start times, "HH:MM".
type Trip struct {
	RouteName     string
	Headsign      string
	StopsSequence []string
	Times         []string // "HH:MM"

	stopSet map[string]bool // built by buildIndices; stop membership
}

// StopIndex returns the position of stopID within the trip's sequence,
// or -1 if the trip never visits it.
func (t *Trip) StopIndex(stopID string) int {
	for i, id := range t.StopsSequence {
		if id == stopID {
			return i
		}
	}
	return -1
}

// HasStop reports trip membership in O(1) using the index built at load
// time (spec.md §3: "tripsByRoute ... enables O(1) is-stop-on-trip").
func (t *Trip) HasStop(stopID string) bool {
	if t.stopSet != nil {
		return t.stopSet[stopID]
	}
	return t.StopIndex(stopID) >= 0
}

// Offset returns the cumulative minutes from the trip's start to
// stopIndex, and whether segment-duration coverage exists for every
// segment up to that index (spec.md §3's trip-integrity invariant).
// When ok is false, callers fall back to schedule.DynamicOffset's single
// named constant rather than inventing their own fallback.
func (t *Trip) Offset(stopIndex int, durations map[string][]int) (minutes int, ok bool) {
	if stopIndex <= 0 {
		return 0, true
	}
	segs, present := durations[DurationsKey(t.RouteName, t.Headsign)]
	if !present || len(segs) < stopIndex {
		return 0, false
	}
	totalSecs := 0
	for i := 0; i < stopIndex; i++ {
		totalSecs += segs[i]
	}
	return (totalSecs + 30) / 60, true // round to nearest minute
}

// DurationsKey builds the "routeName_headsign" key spec.md §6 defines
// for the per-route-durations dataset.
func DurationsKey(routeName, headsign string) string {
	return routeName + "_" + headsign
}

// GeometryKey builds the "routeName : headsign" key spec.md §6 defines
// for the route-geometries dataset.
func GeometryKey(routeName, headsign string) string {
	return routeName + " : " + headsign
}

// Service groups trips that share a set of serving weekdays.
type Service struct {
	ServiceID   string
	ServiceDays map[string]bool // subset of {"monday", ..., "sunday"}
	Trips       []*Trip
}

// Serves reports whether this service runs on the given lowercase
// weekday name.
func (s *Service) Serves(day string) bool {
	return s.ServiceDays[strings.ToLower(day)]
}

// Route is identified by name (e.g. "Route A") and holds one or more
// Services.
type Route struct {
	Name     string
	IsLoop   bool
	Services []*Service
}

// RouteStopRef is an entry in RoutesByStop: one trip that visits a stop,
// together with its position in that trip's sequence.
type RouteStopRef struct {
	RouteName  string
	Headsign   string
	Trip       *Trip
	StopIndex  int
}

// Data is the immutable, process-wide static data store (C2).
type Data struct {
	Stops     []Stop
	Locations []Location
	Routes    []Route

	// RouteDurations maps "routeName_headsign" -> per-segment seconds,
	// segments[i] spanning stop index i to i+1 (spec.md §6).
	RouteDurations map[string][]int

	// Geometries maps "routeName : headsign" -> GeoJSON LineString
	// (spec.md §6), used only by itinerary for response enrichment.
	Geometries map[string]*geojson.Geometry

	// Derived indices (spec.md §3).
	StopsByID       map[string]*Stop
	LocationsByID   map[string]*Location
	LocationsByName map[string]*Location
	RoutesByName    map[string]*Route
	RoutesByStop    map[string][]RouteStopRef
	TripsByRoute    map[string][]*Trip
	TripStopSets    map[string]map[string]bool // key: routeName+"\x00"+headsign

	StopIndex *StopIndex
}
