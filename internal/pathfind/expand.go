package pathfind

import (
	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/schedule"
	"github.com/campusshuttle/planner/internal/static"
)

// transferWalk is a candidate stop reachable on foot from the current
// state's stop, including the zero-distance loopback to the same stop
// (spec.md §4.4.3: "a bus boarding at the current stop is considered
// without penalty").
type transferWalk struct {
	stopID      string
	distanceM   float64
	walkMin     float64
	walkPenalty float64
}

func (e *searchEngine) transferWalks(fromStopID string) []transferWalk {
	from, ok := e.data.StopsByID[fromStopID]
	if !ok {
		return nil
	}

	out := []transferWalk{{stopID: fromStopID, distanceM: 0, walkMin: 0, walkPenalty: 0}}

	latR := geo.DegreesLat(e.cfg.TransferWalkLimitM)
	lonR := geo.DegreesLon(e.cfg.TransferWalkLimitM, from.Lat)
	for _, id := range e.data.StopIndex.CandidatesWithinBox(from.Point(), latR, lonR) {
		if id == fromStopID {
			continue
		}
		stop, ok := e.data.StopsByID[id]
		if !ok {
			continue
		}
		dist := geo.Dist(from.Point(), stop.Point())
		if dist > e.cfg.TransferWalkLimitM {
			continue
		}
		walkMin := e.cfg.walkMinutes(dist)
		out = append(out, transferWalk{
			stopID:      id,
			distanceM:   dist,
			walkMin:     walkMin,
			walkPenalty: walkMin * e.cfg.WalkReluctanceFactor,
		})
	}
	return out
}

// expand produces every neighbor state reachable from cur: walk to a
// nearby stop (or stay put) then board any route there, per spec.md
// §4.4.3's neighbor-expansion rules.
func (e *searchEngine) expand(cur *searchState) []*searchState {
	var out []*searchState

	var lastBus *BusStep
	if n := len(cur.path); n > 0 {
		if bs, ok := cur.path[n-1].(BusStep); ok {
			lastBus = &bs
		}
	}

	for _, tw := range e.transferWalks(cur.stopID) {
		boardElapsed := cur.elapsed + roundMinutes(tw.walkMin)

		for _, ref := range e.data.RoutesByStop[tw.stopID] {
			trip := ref.Trip
			boardIdx := ref.StopIndex
			if boardIdx >= len(trip.StopsSequence)-1 {
				continue
			}

			if extension := e.tryExtendSameRoute(cur, lastBus, tw, trip, boardIdx); extension != nil {
				out = append(out, extension...)
				continue
			}

			svc := e.disc.ServiceOwning(ref.RouteName, trip)
			if svc == nil {
				continue
			}
			dep, elapsedArrival, ok := e.departureAfter(svc, trip, boardIdx, boardElapsed)
			if !ok {
				continue
			}

			boardPenalty := e.boardPenalty(lastBus, tw, ref.RouteName, ref.Headsign)

			for j := boardIdx + 1; j < len(trip.StopsSequence); j++ {
				offsetDelta := e.oracle.DynamicOffset(trip, j) - e.oracle.DynamicOffset(trip, boardIdx)
				arrivalAtJ := elapsedArrival + offsetDelta

				arrivalDay, arrivalMinute, _ := e.elapsedDayInfo(arrivalAtJ)
				if schedule.FridayBlackout(arrivalDay, arrivalMinute) {
					continue
				}

				bs := BusStep{
					RouteName: ref.RouteName, Headsign: ref.Headsign, Trip: trip,
					FromStopID: tw.stopID, FromIndex: boardIdx,
					ToStopID: trip.StopsSequence[j], ToIndex: j,
					TripStartMin:     dep.TripStart,
					DepartureElapsed: elapsedArrival,
					ArrivalElapsed:   arrivalAtJ,
					Day:              dep.Day,
					WaitMins:         dep.WaitMins,
				}
				next := e.pushBus(cur, bs, dep.WaitMins, boardPenalty, false)
				if lastBus != nil && tw.distanceM > 0 {
					// Record the stop-to-stop transfer walk between the two rides.
					from, to := e.data.StopsByID[cur.stopID], e.data.StopsByID[tw.stopID]
					walk := WalkStep{
						FromStopID: cur.stopID, ToStopID: tw.stopID,
						From: from.Point(), To: to.Point(),
						DistanceM: tw.distanceM, DurationMin: tw.walkMin,
					}
					n := len(cur.path)
					next.path = append(append(next.path[:n:n], walk), bs)
				}
				out = append(out, next)
			}
		}
	}
	return out
}

// tryExtendSameRoute handles the "stay on the same trip, no intervening
// walk" case: extend the previous BusStep to a later stop instead of
// appending a new boarding, charging only SameRouteHopPenalty per
// additional segment (spec.md §4.4.3). Returns nil when this case
// doesn't apply, so the caller falls through to a fresh boarding.
func (e *searchEngine) tryExtendSameRoute(cur *searchState, lastBus *BusStep, tw transferWalk, trip *static.Trip, boardIdx int) []*searchState {
	if lastBus == nil || tw.distanceM != 0 || tw.stopID != cur.stopID || lastBus.Trip != trip {
		return nil
	}

	var out []*searchState
	for j := boardIdx + 1; j < len(trip.StopsSequence); j++ {
		offsetDelta := e.oracle.DynamicOffset(trip, j) - e.oracle.DynamicOffset(trip, lastBus.FromIndex)
		arrivalAtJ := lastBus.DepartureElapsed + offsetDelta
		if arrivalAtJ < cur.elapsed {
			continue
		}
		arrivalDay, arrivalMinute, _ := e.elapsedDayInfo(arrivalAtJ)
		if schedule.FridayBlackout(arrivalDay, arrivalMinute) {
			continue
		}
		hopPenalty := float64(j-boardIdx) * e.cfg.SameRouteHopPenalty

		bs := *lastBus
		bs.ToStopID = trip.StopsSequence[j]
		bs.ToIndex = j
		bs.ArrivalElapsed = arrivalAtJ

		out = append(out, e.pushBus(cur, bs, 0, hopPenalty, true))
	}
	return out
}

// boardPenalty computes the incremental penalty for a fresh boarding
// (not a same-route extension), per spec.md §4.4.3.
func (e *searchEngine) boardPenalty(lastBus *BusStep, tw transferWalk, routeName, headsign string) float64 {
	penalty := e.cfg.BusBoardPenaltyMin
	if tw.distanceM > 0 {
		penalty += tw.walkPenalty
	}
	if lastBus != nil {
		if tw.distanceM > 0 {
			penalty += e.cfg.TransferWalkPenalty
		}
		if lastBus.RouteName != routeName || lastBus.Headsign != headsign {
			penalty += e.cfg.TransferPenaltyMin
		}
	}
	return penalty
}

// pushBus builds the successor state for bs, either appended to cur's
// path (extend=false) or replacing cur's last step (extend=true, the
// same-route-hop case). accumWait is added to the running wait total
// used by anytime-mode ranking; it is zero for an extension, since the
// wait was already absorbed when the original boarding was pushed.
func (e *searchEngine) pushBus(cur *searchState, bs BusStep, accumWait int, incPenalty float64, extend bool) *searchState {
	var newPath []Step
	if extend {
		newPath = make([]Step, len(cur.path))
		copy(newPath, cur.path)
		newPath[len(newPath)-1] = bs
	} else {
		newPath = make([]Step, len(cur.path)+1)
		copy(newPath, cur.path)
		newPath[len(cur.path)] = bs
	}

	e.seq++
	s := &searchState{
		stopID:    bs.ToStopID,
		elapsed:   bs.ArrivalElapsed,
		waitAccum: cur.waitAccum + accumWait,
		penalty:   cur.penalty + incPenalty,
		path:      newPath,
		seq:       e.seq,
	}
	e.setGF(s)
	return s
}

// departureAfter finds the next departure at or after elapsedBase
// minutes into the query, rolling across days via the oracle,
// expressed back on the continuous elapsed-minutes axis the search
// uses for g.
func (e *searchEngine) departureAfter(svc *static.Service, trip *static.Trip, stopIndex int, elapsedBase int) (schedule.Departure, int, bool) {
	day, clockOfDay, dayOffset := e.elapsedDayInfo(elapsedBase)

	if dep, ok := e.oracle.NextDepartureAt(svc, trip, stopIndex, day, clockOfDay); ok {
		return dep, dayOffset*1440 + dep.AbsoluteTime - e.req.QueryTime, true
	}
	if dep, ok := e.oracle.NextDepartureAnyDay(svc, trip, stopIndex, day, clockOfDay); ok {
		return dep, dayOffset*1440 + dep.AbsoluteTime - e.req.QueryTime, true
	}
	return schedule.Departure{}, 0, false
}
