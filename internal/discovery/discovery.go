// Package discovery implements route discovery (C5): turning a stop
// pair or a stop-and-destination pair into candidate ride descriptors
// for the pathfinder to weigh, without doing any search itself.
//
// Trips, direct-route descriptors, and loop-pair descriptors are kept
// as distinct, structured types rather than merged into one ad hoc
// shape (spec.md §9's "heterogeneous route records" note), and loop
// trips carry their two constituent *static.Trip pointers rather than
// an arrow-joined headsign string (§9's "headsign-as-identifier
// fragility" note).
package discovery

import (
	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/static"
)

// DirectCandidate is one trip that visits both stops of a query, in
// order, on a service that might run it. For a synthetic through-ride
// (spec.md §3's "loop trip pair"), OriginIndex/DestIndex describe only
// the boarding leg — board Trip at OriginIndex, ride to its terminus at
// DestIndex — since the candidate's Trip/Service fields can't also hold
// the second trip; Loop carries the full two-trip ride for any caller
// that needs the actual destination arrival rather than the terminus.
// Loop is nil for a genuine single-trip direct match.
type DirectCandidate struct {
	RouteName   string
	Headsign    string
	Trip        *static.Trip
	Service     *static.Service
	OriginIndex int
	DestIndex   int
	Loop        *LoopRideSpec
}

// NearbyStopCandidate is one (trip, downstream stop) pair reachable
// from an origin stop, where the downstream stop lies within walking
// distance of a destination point.
type NearbyStopCandidate struct {
	RouteName        string
	Headsign         string
	Trip             *static.Trip
	Service          *static.Service
	OriginIndex      int
	DownstreamStopID string
	DownstreamIndex  int
	WalkMetersToDest float64
}

// LoopRideSpec is a synthetic through-ride built from two trips of the
// same route chained at a common terminus (spec.md §3's "loop trip
// pair"): ride Trip1 from Idx1 to its end, then Trip2 from its start
// to Idx2.
type LoopRideSpec struct {
	RouteName string
	Trip1     *static.Trip
	Service1  *static.Service
	Idx1      int
	Trip2     *static.Trip
	Service2  *static.Service
	Idx2      int
}

// TransferCandidate combines a direct ride to a transfer hub with a
// nearby-stop candidate onward from that hub.
type TransferCandidate struct {
	Hub  string
	Leg1 DirectCandidate
	Leg2 NearbyStopCandidate
}

// loopSuppression excludes a specific (route, fromHeadsign, toHeadsign)
// chaining as physically invalid. Data, not code, per spec.md §9: add a
// row here rather than special-casing a string comparison inline.
type loopSuppression struct {
	RouteName    string
	FromHeadsign string
	ToHeadsign   string
}

var suppressedLoopChains = []loopSuppression{
	{RouteName: "Route A", FromHeadsign: "To KDOJ", ToHeadsign: "To Cluster"},
}

func isSuppressed(routeName, from, to string) bool {
	for _, s := range suppressedLoopChains {
		if s.RouteName == routeName && s.FromHeadsign == from && s.ToHeadsign == to {
			return true
		}
	}
	return false
}

// Discoverer answers route-discovery queries against a *static.Data.
// TransferHubs comes from configuration (spec.md §9 open question,
// resolved as configuration rather than a code constant).
type Discoverer struct {
	data         *static.Data
	transferHubs []string
}

func New(data *static.Data, transferHubs []string) *Discoverer {
	return &Discoverer{data: data, transferHubs: transferHubs}
}

// ServiceOwning finds the Service that holds trip, by pointer identity,
// within the named route. Routes hold few services at campus scale, so
// a linear scan is the right tool here, not another index.
func (d *Discoverer) ServiceOwning(routeName string, trip *static.Trip) *static.Service {
	route, ok := d.data.RoutesByName[routeName]
	if !ok {
		return nil
	}
	for _, svc := range route.Services {
		for _, t := range svc.Trips {
			if t == trip {
				return svc
			}
		}
	}
	return nil
}

// DirectRoutes returns every trip visiting both stops with origin
// strictly before destination in the stop sequence. When none exist,
// it falls back to synthesizing loop pairs (spec.md §4.3).
func (d *Discoverer) DirectRoutes(originStopID, destStopID string) []DirectCandidate {
	var out []DirectCandidate
	for _, ref := range d.data.RoutesByStop[originStopID] {
		destIdx := ref.Trip.StopIndex(destStopID)
		if destIdx < 0 || destIdx <= ref.StopIndex {
			continue
		}
		out = append(out, DirectCandidate{
			RouteName:   ref.RouteName,
			Headsign:    ref.Headsign,
			Trip:        ref.Trip,
			Service:     d.ServiceOwning(ref.RouteName, ref.Trip),
			OriginIndex: ref.StopIndex,
			DestIndex:   destIdx,
		})
	}
	if len(out) > 0 {
		return out
	}
	return d.loopPairs(originStopID, destStopID)
}

// loopPairs synthesizes through-rides on loop routes: ride one trip to
// its terminus, transfer in place to a second trip of the same route
// that then reaches destStopID, honoring the suppression table. Each
// synthesized LoopRideSpec is surfaced as a DirectCandidate describing
// only its boarding leg, with the full spec attached via Loop — the
// pathfinder re-derives the second hop itself once it reaches the
// terminus, but any other caller reading DestIndex needs Loop to know
// it names the terminus, not destStopID.
func (d *Discoverer) loopPairs(originStopID, destStopID string) []DirectCandidate {
	specs := d.loopRideSpecs(originStopID, destStopID)
	out := make([]DirectCandidate, 0, len(specs))
	for i := range specs {
		spec := specs[i]
		out = append(out, DirectCandidate{
			RouteName:   spec.RouteName,
			Headsign:    spec.Trip1.Headsign,
			Trip:        spec.Trip1,
			Service:     spec.Service1,
			OriginIndex: spec.Idx1,
			DestIndex:   len(spec.Trip1.StopsSequence) - 1,
			Loop:        &spec,
		})
	}
	return out
}

// loopRideSpecs finds every structured LoopRideSpec chaining a trip
// through originStopID to a second trip of the same route that reaches
// destStopID, honoring the suppression table (spec.md §3's "loop trip
// pair").
func (d *Discoverer) loopRideSpecs(originStopID, destStopID string) []LoopRideSpec {
	var out []LoopRideSpec
	for i := range d.data.Routes {
		route := &d.data.Routes[i]
		if !route.IsLoop {
			continue
		}
		for _, svc1 := range route.Services {
			for _, trip1 := range svc1.Trips {
				idx1 := trip1.StopIndex(originStopID)
				if idx1 < 0 {
					continue
				}
				terminusID := trip1.StopsSequence[len(trip1.StopsSequence)-1]

				for _, svc2 := range route.Services {
					if !daysOverlap(svc1.ServiceDays, svc2.ServiceDays) {
						continue
					}
					for _, trip2 := range svc2.Trips {
						if trip2 == trip1 || isSuppressed(route.Name, trip1.Headsign, trip2.Headsign) {
							continue
						}
						if trip2.StopsSequence[0] != terminusID {
							continue
						}
						idx2 := trip2.StopIndex(destStopID)
						if idx2 <= 0 {
							continue
						}
						out = append(out, LoopRideSpec{
							RouteName: route.Name,
							Trip1:     trip1,
							Service1:  svc1,
							Idx1:      idx1,
							Trip2:     trip2,
							Service2:  svc2,
							Idx2:      idx2,
						})
					}
				}
			}
		}
	}
	return out
}

// RoutesToNearbyStops returns every (trip, downstream stop) pair
// reachable from originStopID whose downstream stop lies within
// maxWalkM of destPoint, de-duplicated by (routeName, headsign,
// downstreamStopId).
func (d *Discoverer) RoutesToNearbyStops(originStopID string, destPoint geo.Point, maxWalkM float64) []NearbyStopCandidate {
	seen := make(map[string]bool)
	var out []NearbyStopCandidate

	for _, ref := range d.data.RoutesByStop[originStopID] {
		trip := ref.Trip
		for j := ref.StopIndex + 1; j < len(trip.StopsSequence); j++ {
			stopID := trip.StopsSequence[j]
			stop, ok := d.data.StopsByID[stopID]
			if !ok {
				continue
			}
			dist := geo.Dist(stop.Point(), destPoint)
			if dist > maxWalkM {
				continue
			}
			key := ref.RouteName + "\x00" + ref.Headsign + "\x00" + stopID
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, NearbyStopCandidate{
				RouteName:        ref.RouteName,
				Headsign:         ref.Headsign,
				Trip:             trip,
				Service:          d.ServiceOwning(ref.RouteName, trip),
				OriginIndex:      ref.StopIndex,
				DownstreamStopID: stopID,
				DownstreamIndex:  j,
				WalkMetersToDest: dist,
			})
		}
	}
	return out
}

// TransferCandidates combines a direct ride to each configured transfer
// hub with a nearby-stop candidate onward from that hub (spec.md §4.3).
func (d *Discoverer) TransferCandidates(originStopID string, destPoint geo.Point, maxWalkM float64) []TransferCandidate {
	var out []TransferCandidate
	for _, hub := range d.transferHubs {
		if hub == originStopID {
			continue
		}
		legs1 := d.DirectRoutes(originStopID, hub)
		if len(legs1) == 0 {
			continue
		}
		legs2 := d.RoutesToNearbyStops(hub, destPoint, maxWalkM)
		if len(legs2) == 0 {
			continue
		}
		for _, l1 := range legs1 {
			for _, l2 := range legs2 {
				out = append(out, TransferCandidate{Hub: hub, Leg1: l1, Leg2: l2})
			}
		}
	}
	return out
}

// TransferHubs reports the configured hub set.
func (d *Discoverer) TransferHubs() []string { return d.transferHubs }

func daysOverlap(a, b map[string]bool) bool {
	for day := range a {
		if b[day] {
			return true
		}
	}
	return false
}
