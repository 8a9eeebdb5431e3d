// Package pathfind implements the core algorithm (C6): a heuristic A*
// search over (stop, elapsed-time, penalty) states combining walking
// and scheduled bus edges. The planner does no I/O — every lookup it
// makes is a synchronous in-memory call against *static.Data, the
// schedule oracle, or the route discoverer.
//
// The search is grounded on the pack's own A* router
// (impactsolutionsas-passbi_core/internal/routing/astar.go): a
// container/heap open set, a bestG closed-set table, a context-bounded
// exploration loop that checks cancellation every 1000 pops, and a
// configurable ceiling on total explored states.
package pathfind

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/campusshuttle/planner/internal/discovery"
	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/schedule"
	"github.com/campusshuttle/planner/internal/static"
)

// ErrNoCandidates means no stop falls within MaxWalkOriginM of the
// origin point — the caller should fall back to a walk-only response.
var ErrNoCandidates = errors.New("pathfind: no stop within walking range of origin")

// ErrNoPath means the search exhausted its open set (or its explored-
// states ceiling) without ever reaching the destination.
var ErrNoPath = errors.New("pathfind: no feasible itinerary within the search horizon")

// Request describes one planning query. OriginPoint/DestPoint are
// always concrete coordinates — callers resolve stop ids and named
// locations to points before calling Search.
type Request struct {
	OriginPoint geo.Point
	DestPoint   geo.Point
	QueryTime   int // minutes since midnight
	QueryDay    string

	// IgnoreWait implements "anytime" mode (spec.md §9, resolved):
	// ranking subtracts accumulated boarding wait from g, so the search
	// prefers the itinerary with the least ride+walk+penalty time
	// regardless of how long the first bus happens to take to arrive.
	// Schedule feasibility (service days, Friday blackout, rollover)
	// still uses the real elapsed clock.
	IgnoreWait bool
}

// Journey is the winning path: an ordered step sequence plus the
// bookkeeping the itinerary builder needs to render it.
type Journey struct {
	Steps          []Step
	Penalty        float64
	ArrivalElapsed int // minutes since the query instant
	ArrivalDay     string
}

// Search is the single entry point (spec.md §4.4's "the core
// algorithm"). It never mutates data, oracle, or disc.
func Search(ctx context.Context, data *static.Data, oracle *schedule.Oracle, disc *discovery.Discoverer, cfg Config, req Request) (*Journey, error) {
	e := &searchEngine{data: data, oracle: oracle, disc: disc, cfg: cfg, req: req, bestG: make(map[string]float64)}
	return e.run(ctx)
}

type searchEngine struct {
	data   *static.Data
	oracle *schedule.Oracle
	disc   *discovery.Discoverer
	cfg    Config
	req    Request

	explored int
	seq      int
	bestG    map[string]float64
}

func (e *searchEngine) run(ctx context.Context) (*Journey, error) {
	open := &priorityQueue{}
	heap.Init(open)

	for _, s := range e.startStates() {
		e.setGF(s)
		heap.Push(open, s)
		e.bestG[s.stopID] = s.g
	}
	if open.Len() == 0 {
		return nil, ErrNoCandidates
	}

	var best *searchState

	for open.Len() > 0 {
		if e.explored%1000 == 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("pathfind: search canceled after exploring %d states: %w", e.explored, ctx.Err())
			default:
			}
		}
		if e.explored >= e.cfg.MaxExploredStates {
			break
		}

		cur := heap.Pop(open).(*searchState)
		e.explored++

		if bg, ok := e.bestG[cur.stopID]; ok && cur.g > bg {
			continue
		}

		if cand := e.tryGoal(cur); cand != nil && (best == nil || cand.g < best.g) {
			best = cand
		}

		if float64(cur.elapsed) > float64(e.cfg.SearchHorizonMin) {
			continue
		}

		for _, next := range e.expand(cur) {
			if bg, ok := e.bestG[next.stopID]; ok && next.g >= bg {
				continue
			}
			e.bestG[next.stopID] = next.g
			heap.Push(open, next)
		}
	}

	if best == nil {
		return nil, ErrNoPath
	}
	return &Journey{
		Steps:          best.path,
		Penalty:        best.penalty,
		ArrivalElapsed: best.elapsed,
		ArrivalDay:     lastDay(best.path, e.req.QueryDay),
	}, nil
}

// startStates builds the initial frontier: every stop within
// MaxWalkOriginM of the origin, keeping only the closest stop per
// (routeName, headsign) pair so the search never re-enters the same
// trip through a second nearby stop (spec.md §4.4.3).
func (e *searchEngine) startStates() []*searchState {
	latR := geo.DegreesLat(e.cfg.MaxWalkOriginM)
	lonR := geo.DegreesLon(e.cfg.MaxWalkOriginM, e.req.OriginPoint.Lat)
	ids := e.data.StopIndex.CandidatesWithinBox(e.req.OriginPoint, latR, lonR)

	type winner struct {
		stopID string
		dist   float64
	}
	byRoute := make(map[string]winner)

	for _, id := range ids {
		stop, ok := e.data.StopsByID[id]
		if !ok {
			continue
		}
		dist := geo.Dist(e.req.OriginPoint, stop.Point())
		if dist > e.cfg.MaxWalkOriginM {
			continue
		}
		for _, ref := range e.data.RoutesByStop[id] {
			key := ref.RouteName + "\x00" + ref.Headsign
			if w, ok := byRoute[key]; !ok || dist < w.dist {
				byRoute[key] = winner{stopID: id, dist: dist}
			}
		}
	}

	distByStop := make(map[string]float64, len(byRoute))
	for _, w := range byRoute {
		distByStop[w.stopID] = w.dist
	}

	states := make([]*searchState, 0, len(distByStop))
	for stopID, dist := range distByStop {
		states = append(states, e.makeStartState(stopID, dist))
	}
	return states
}

func (e *searchEngine) makeStartState(stopID string, distM float64) *searchState {
	walkMin := e.cfg.walkMinutes(distM)
	reluctance := e.cfg.InitialWalkReluctance
	if len(e.disc.RoutesToNearbyStops(stopID, e.req.DestPoint, e.cfg.NearStopColocationM)) > 0 {
		reluctance *= e.cfg.DirectToDestBonus
	}
	penalty := walkMin * (reluctance - 1)

	stop := e.data.StopsByID[stopID]
	step := WalkStep{
		ToStopID:    stopID,
		From:        e.req.OriginPoint,
		To:          stop.Point(),
		DistanceM:   distM,
		DurationMin: walkMin,
	}

	e.seq++
	return &searchState{
		stopID:  stopID,
		elapsed: roundMinutes(walkMin),
		penalty: penalty,
		path:    []Step{step},
		seq:     e.seq,
	}
}

// tryGoal computes a tentative final-walk completion from cur, if
// cur's stop is within MaxWalkDestM of the destination. It never
// mutates the open set; the caller keeps the best completion seen.
func (e *searchEngine) tryGoal(cur *searchState) *searchState {
	stop, ok := e.data.StopsByID[cur.stopID]
	if !ok {
		return nil
	}
	distToDest := geo.Dist(stop.Point(), e.req.DestPoint)
	if distToDest > e.cfg.MaxWalkDestM {
		return nil
	}

	colocatedElsewhere := false
	for id, s := range e.data.StopsByID {
		if id == cur.stopID {
			continue
		}
		if geo.Dist(s.Point(), e.req.DestPoint) <= e.cfg.NearStopColocationM {
			colocatedElsewhere = true
			break
		}
	}
	const lowFinalFactor = 1.1
	reluctance := lowFinalFactor
	if colocatedElsewhere {
		reluctance = e.cfg.FinalWalkReluctance
	}

	walkMin := e.cfg.walkMinutes(distToDest)
	finalPenalty := walkMin * (reluctance - 1)

	finalStep := WalkStep{
		FromStopID:  cur.stopID,
		From:        stop.Point(),
		To:          e.req.DestPoint,
		DistanceM:   distToDest,
		DurationMin: walkMin,
	}

	newPath := make([]Step, len(cur.path)+1)
	copy(newPath, cur.path)
	newPath[len(cur.path)] = finalStep

	e.seq++
	cand := &searchState{
		stopID:    cur.stopID,
		elapsed:   cur.elapsed + roundMinutes(walkMin),
		waitAccum: cur.waitAccum,
		penalty:   cur.penalty + finalPenalty,
		path:      newPath,
		seq:       e.seq,
	}
	e.setGF(cand)
	return cand
}

func (e *searchEngine) setGF(s *searchState) {
	timeComponent := float64(s.elapsed)
	if e.req.IgnoreWait {
		timeComponent -= float64(s.waitAccum)
	}
	s.g = timeComponent + s.penalty
	s.f = s.g + e.heuristic(s.stopID)
}

// heuristic is h(stop) = haversine(stop, destination) / BUS_SPEED_H.
// Admissible because no bus on this network moves faster than
// BusSpeedHeuristicKPH, and penalties only ever raise g, never lower
// the true remaining cost below this bound.
func (e *searchEngine) heuristic(stopID string) float64 {
	stop, ok := e.data.StopsByID[stopID]
	if !ok {
		return 0
	}
	dist := geo.Dist(stop.Point(), e.req.DestPoint)
	speedMetersPerMin := e.cfg.BusSpeedHeuristicKPH * 1000 / 60
	return dist / speedMetersPerMin
}

func roundMinutes(m float64) int {
	return int(math.Round(m))
}

// elapsedDayInfo translates elapsed (minutes since the query instant)
// into the weekday it falls on, the minute-of-that-day, and how many
// whole days past queryDay it rolled over — the single place that
// reinterprets the search's continuous elapsed-minutes axis back onto
// the calendar, so every caller (departure lookup, blackout checks)
// agrees on the same day for the same elapsed value.
func (e *searchEngine) elapsedDayInfo(elapsed int) (day string, minuteOfDay int, dayOffset int) {
	absoluteClock := e.req.QueryTime + elapsed
	dayOffset = absoluteClock / 1440
	minuteOfDay = absoluteClock % 1440
	day = schedule.AdvanceDay(e.req.QueryDay, dayOffset)
	return
}

func lastDay(path []Step, fallback string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if bs, ok := path[i].(BusStep); ok {
			return bs.Day
		}
	}
	return fallback
}
