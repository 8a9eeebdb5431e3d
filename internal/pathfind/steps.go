package pathfind

import (
	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/static"
)

// Step is the tagged variant spec.md §9 asks for in place of the
// source's runtime-tagged dicts: a Go interface with an unexported
// marker method, never a map keyed by a "type" string.
type Step interface {
	isStep()
}

// WalkStep is a walking leg: origin-to-stop, stop-to-stop (a transfer),
// or stop-to-destination. FromStopID/ToStopID are empty when that end
// is an arbitrary point rather than a stop.
type WalkStep struct {
	FromStopID string
	ToStopID   string
	From       geo.Point
	To         geo.Point
	DistanceM  float64
	DurationMin float64
}

func (WalkStep) isStep() {}

// BusStep is a ride on one trip from FromIndex to ToIndex in its stop
// sequence. TripStartMin is the trip's own "HH:MM" start time, used to
// extend this step (same-route-hop) without re-querying the oracle.
type BusStep struct {
	RouteName string
	Headsign  string
	Trip       *static.Trip
	FromStopID string
	FromIndex  int
	ToStopID   string
	ToIndex    int

	TripStartMin     int
	DepartureElapsed int // minutes since the query instant, at boarding
	ArrivalElapsed   int // minutes since the query instant, at alighting
	Day              string
	WaitMins         int // wait absorbed at boarding, for anytime-mode accounting
}

func (BusStep) isStep() {}
