package itinerary

import (
	"context"
	"math"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"golang.org/x/sync/errgroup"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/pathfind"
	"github.com/campusshuttle/planner/internal/static"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

// BuildRequest carries the request-scoped context Build needs beyond
// the journey itself.
type BuildRequest struct {
	OriginPoint geo.Point
	DestPoint   geo.Point
	QueryTime   int // minutes since midnight
	QueryDay    string
	Anytime     bool
}

// Build implements spec.md §4.5: the walk-only short-circuit, leg
// classification, same-route-leg merging, timing, and concurrent
// turn-by-turn enrichment of a winning pathfind.Journey.
func Build(ctx context.Context, journey *pathfind.Journey, cfg Config, req BuildRequest, router walkrouter.Router, geometries map[string]*geojson.Geometry) (Itinerary, error) {
	built := merge(journey.Steps)

	if len(built.legs) == 0 {
		return finishWalkOnly(ctx, cfg, req, router, nil)
	}

	for i := range built.legs {
		built.legs[i].Geometry = geometries[static.GeometryKey(built.legs[i].RouteName, built.legs[i].Headsign)]
	}

	// rawFirstDeparture is still elapsed-minutes-since-query at this
	// point (merge() copies pathfind's elapsed clock verbatim); the
	// short-circuit's "imminent bus" check wants exactly that.
	rawFirstDeparture := built.legs[0].DepartureTime
	directDist := geo.Dist(req.OriginPoint, req.DestPoint)
	imminent := rawFirstDeparture <= cfg.ImminentBusMinutes

	if directDist < cfg.ShortWalkThresholdM || (directDist < cfg.WalkOnlyThresholdM && !imminent) {
		alt := &NextDeparture{
			RouteName:     built.legs[0].RouteName,
			Headsign:      built.legs[0].Headsign,
			DepartureTime: req.QueryTime + rawFirstDeparture,
			Day:           built.legs[0].Day,
		}
		return finishWalkOnly(ctx, cfg, req, router, alt)
	}

	for i := range built.legs {
		built.legs[i].DepartureTime += req.QueryTime
		built.legs[i].ArrivalTime += req.QueryTime
	}

	var eg errgroup.Group
	enrich := func(leg *WalkLeg) {
		if leg == nil {
			return
		}
		eg.Go(func() error {
			enrichWalk(ctx, leg, router)
			return nil
		})
	}
	enrich(built.initial)
	enrich(built.final)
	for _, w := range built.precedingWalk {
		enrich(w)
	}
	eg.Wait() // errgroup.Group never returns an error here: enrichWalk always degrades silently.

	lastLeg := built.legs[len(built.legs)-1]
	eta := lastLeg.ArrivalTime
	if built.final != nil {
		eta += roundMinutes(built.final.DurationMin)
	}

	summary := Summary{
		DepartureTime:    built.legs[0].DepartureTime,
		BusArrivalTime:   lastLeg.ArrivalTime,
		TotalDurationMin: eta - req.QueryTime,
		ETA:              eta,
		DepartureDay:     built.legs[0].Day,
	}

	if len(built.legs) == 1 {
		return Direct{InitialWalk: built.initial, Bus: built.legs[0], FinalWalk: built.final, Summary: summary}, nil
	}
	return Transfer{
		InitialWalk:   built.initial,
		BusLegs:       built.legs,
		TransferWalks: built.precedingWalk,
		FinalWalk:     built.final,
		Summary:       summary,
	}, nil
}

// WalkOnlyFallback builds a pure great-circle walk-only response for
// the cases the pathfinder itself cannot recover from (spec.md §7:
// NoPath, no stop within walking range) — always annotated with
// whatever next-bus hint the caller has on hand, if any.
func WalkOnlyFallback(ctx context.Context, cfg Config, req BuildRequest, router walkrouter.Router, alt *NextDeparture) (WalkOnly, error) {
	it, err := finishWalkOnly(ctx, cfg, req, router, alt)
	if err != nil {
		return WalkOnly{}, err
	}
	return it.(WalkOnly), nil
}

func finishWalkOnly(ctx context.Context, cfg Config, req BuildRequest, router walkrouter.Router, alt *NextDeparture) (Itinerary, error) {
	dist := geo.Dist(req.OriginPoint, req.DestPoint)
	walk := &WalkLeg{
		From:        req.OriginPoint,
		To:          req.DestPoint,
		DistanceM:   dist,
		DurationMin: cfg.walkMinutes(dist),
		Source:      "greatcircle",
	}
	enrichWalk(ctx, walk, router)

	eta := req.QueryTime + roundMinutes(walk.DurationMin)
	return WalkOnly{Walk: *walk, ETA: eta, AlternativeBus: alt}, nil
}

// enrichWalk requests turn-by-turn detail for leg, bounded by a 5s
// timeout (spec.md §5); any failure or timeout leaves leg at its
// great-circle estimate rather than failing the request (§7).
func enrichWalk(ctx context.Context, leg *WalkLeg, router walkrouter.Router) {
	if leg.Source == "" {
		leg.Source = "greatcircle"
	}
	if router == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	dirs, ok := router.Directions(cctx, leg.From, leg.To)
	if !ok {
		return
	}
	leg.DistanceM = dirs.DistanceM
	leg.DurationMin = dirs.Duration / 60
	leg.Turns = dirs.Turns
	leg.Source = "router"
}

func roundMinutes(m float64) int {
	return int(math.Round(m))
}
