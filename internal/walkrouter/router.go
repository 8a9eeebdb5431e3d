// Package walkrouter models the external walking-router collaborator
// from spec.md §6: an optional turn-by-turn directions service and a
// walking-distance matrix, both of which must tolerate "no route"
// (identical points, unreachable) by returning none rather than an
// error — the core then falls back to great-circle estimates (§7).
package walkrouter

import (
	"context"

	"github.com/campusshuttle/planner/internal/geo"
)

// Turn is one instruction in a turn-by-turn walking leg.
type Turn struct {
	Instruction string
	DistanceM   float64
}

// Directions is the result of a successful directions call.
type Directions struct {
	DistanceM float64
	Duration  float64 // seconds
	Turns     []Turn
	Geometry  [][2]float64 // decoded polyline, (lon, lat) pairs
}

// Router is the interface the core depends on. Implementations must
// never block past their own internal timeout and must return
// (nil/nil, false) rather than an error on failure — propagation of
// external-router failures as core errors is explicitly forbidden by
// spec.md §7.
type Router interface {
	// Directions returns turn-by-turn walking directions from one point
	// to another, or ok=false if unavailable.
	Directions(ctx context.Context, from, to geo.Point) (*Directions, bool)

	// Matrix returns the walking distance in meters from a single
	// origin to each of the given destinations, in order, or ok=false
	// if unavailable.
	Matrix(ctx context.Context, from geo.Point, to []geo.Point) ([]float64, bool)
}

// None is a zero-dependency stub that always degrades. It is the
// default when no router is configured, and what tests use so engine
// behavior never depends on network access (spec.md §7: the core must
// function, degraded, without this collaborator).
type None struct{}

func (None) Directions(context.Context, geo.Point, geo.Point) (*Directions, bool) {
	return nil, false
}

func (None) Matrix(context.Context, geo.Point, []geo.Point) ([]float64, bool) {
	return nil, false
}
