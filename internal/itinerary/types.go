// Package itinerary implements the itinerary builder (C7): turning a
// *pathfind.Journey into the tagged response shape of spec.md §6
// (WalkOnly / Direct / Transfer), merging same-route bus legs, timing
// every step, and enriching the initial/final walks with turn-by-turn
// detail when the external walking router is available.
package itinerary

import (
	geojson "github.com/paulmach/go.geojson"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

// Itinerary is the tagged variant from spec.md §6, implemented as an
// interface with an unexported marker method — matching the
// pathfind.Step pattern rather than a runtime-tagged map (spec.md §9).
type Itinerary interface {
	isItinerary()
}

// WalkLeg is a single walking segment, optionally enriched with
// turn-by-turn detail. Source is "router" when the external walking
// router answered, "greatcircle" when it degraded to a straight-line
// estimate (spec.md §7 propagation policy).
type WalkLeg struct {
	From        geo.Point
	To          geo.Point
	DistanceM   float64
	DurationMin float64
	Turns       []walkrouter.Turn
	Source      string
}

// BusLeg is one ride, after same-route-leg merging, on a single
// (routeName, headsign).
type BusLeg struct {
	RouteName     string
	Headsign      string
	FromStopID    string
	ToStopID      string
	DepartureTime int // minutes since midnight
	ArrivalTime   int // minutes since midnight, may exceed 1440 on rollover
	Day           string
	NumStops      int
	Geometry      *geojson.Geometry // nil when the dataset has no entry for this route+headsign
}

// NextDeparture annotates a degraded or anytime response with the next
// concrete departure the planner found, possibly on a later day
// (spec.md §4.5.6, §7's NoPath fallback).
type NextDeparture struct {
	RouteName     string
	Headsign      string
	DepartureTime int
	Day           string
}

// Summary carries the headline numbers shared by DIRECT and TRANSFER
// itineraries.
type Summary struct {
	DepartureTime    int // minutes since midnight, at first boarding
	BusArrivalTime   int // minutes since midnight, at last alighting
	TotalDurationMin int
	ETA              int // minutes since midnight
	DepartureDay     string
}

// WalkOnly is returned when the path has no bus legs, or the
// walk-only short-circuit fires (spec.md §4.5.1).
type WalkOnly struct {
	Walk           WalkLeg
	ETA            int
	AlternativeBus *NextDeparture
}

func (WalkOnly) isItinerary() {}

// Direct is returned for exactly one bus leg.
type Direct struct {
	InitialWalk *WalkLeg
	Bus         BusLeg
	FinalWalk   *WalkLeg
	Summary     Summary
}

func (Direct) isItinerary() {}

// Transfer is returned for two or more bus legs after merging.
type Transfer struct {
	InitialWalk   *WalkLeg
	BusLegs       []BusLeg
	TransferWalks []*WalkLeg // parallel to BusLegs: entry i is the walk before BusLegs[i] (entry 0 is always nil); nil entry if no walk was needed
	FinalWalk     *WalkLeg
	Summary       Summary
}

func (Transfer) isItinerary() {}
