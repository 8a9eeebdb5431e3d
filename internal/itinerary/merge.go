package itinerary

import "github.com/campusshuttle/planner/internal/pathfind"

// spuriousWalkThresholdM drops walk artifacts shorter than this when
// they sit between two other legs — grounded on passbi_core's
// buildSteps, which discards sub-15m "stop-matching" walks and
// back-and-forth walk pairs rather than surfacing them to the rider.
const spuriousWalkThresholdM = 15

// builtLegs is the intermediate shape merge() produces: the initial
// walk (nil if the journey starts by boarding immediately), the merged
// bus legs with the walk (if any) preceding each non-first leg, and
// the final walk.
type builtLegs struct {
	initial       *WalkLeg
	legs          []BusLeg
	precedingWalk []*WalkLeg // len(precedingWalk) == len(legs); precedingWalk[0] is always nil
	final         *WalkLeg
}

// merge converts a journey's raw step sequence into classified legs:
// drops spurious sub-15m interior walks, then consolidates consecutive
// BusSteps on the same (routeName, headsign) that share a stop with no
// intervening walk into a single BusLeg (spec.md §4.5.3).
func merge(steps []pathfind.Step) builtLegs {
	steps = dropSpuriousWalks(steps)

	var out builtLegs
	var pendingWalk *WalkLeg

	for i, step := range steps {
		switch s := step.(type) {
		case pathfind.WalkStep:
			wl := &WalkLeg{From: s.From, To: s.To, DistanceM: s.DistanceM, DurationMin: s.DurationMin}
			if i == 0 && s.FromStopID == "" {
				out.initial = wl
			} else if i == len(steps)-1 && s.ToStopID == "" {
				out.final = wl
			} else {
				pendingWalk = wl
			}

		case pathfind.BusStep:
			if n := len(out.legs); n > 0 && pendingWalk == nil &&
				out.legs[n-1].RouteName == s.RouteName && out.legs[n-1].Headsign == s.Headsign &&
				out.legs[n-1].ToStopID == s.FromStopID {
				out.legs[n-1].ToStopID = s.ToStopID
				out.legs[n-1].ArrivalTime = s.ArrivalElapsed
				out.legs[n-1].NumStops += s.ToIndex - s.FromIndex
				continue
			}
			out.legs = append(out.legs, BusLeg{
				RouteName:     s.RouteName,
				Headsign:      s.Headsign,
				FromStopID:    s.FromStopID,
				ToStopID:      s.ToStopID,
				DepartureTime: s.DepartureElapsed,
				ArrivalTime:   s.ArrivalElapsed,
				Day:           s.Day,
				NumStops:      s.ToIndex - s.FromIndex,
			})
			out.precedingWalk = append(out.precedingWalk, pendingWalk)
			pendingWalk = nil
		}
	}
	return out
}

// dropSpuriousWalks removes interior walk steps shorter than
// spuriousWalkThresholdM and collapses back-and-forth walk pairs
// (A->B immediately followed by B->A), the way passbi_core's
// buildSteps cleans up its raw step list before returning it.
func dropSpuriousWalks(steps []pathfind.Step) []pathfind.Step {
	out := make([]pathfind.Step, 0, len(steps))
	for i, step := range steps {
		ws, isWalk := step.(pathfind.WalkStep)
		isInterior := i > 0 && i < len(steps)-1
		if isWalk && isInterior {
			if ws.DistanceM < spuriousWalkThresholdM {
				continue
			}
			if len(out) > 0 {
				if prev, ok := out[len(out)-1].(pathfind.WalkStep); ok &&
					prev.FromStopID == ws.ToStopID && prev.ToStopID == ws.FromStopID {
					out = out[:len(out)-1]
					continue
				}
			}
		}
		out = append(out, step)
	}
	return out
}
