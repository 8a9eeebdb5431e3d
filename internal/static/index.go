package static

import "strings"

// buildIndices derives every lookup table in §3 from the raw
// Stops/Locations/Routes slices. Both loaders (jsonload.go, pgload.go)
// call this as their last step so pathfind/discovery/geocache never see
// a Data value with stale or partial indices.
func buildIndices(d *Data) {
	d.StopsByID = make(map[string]*Stop, len(d.Stops))
	for i := range d.Stops {
		d.StopsByID[d.Stops[i].ID] = &d.Stops[i]
	}

	d.LocationsByID = make(map[string]*Location, len(d.Locations))
	d.LocationsByName = make(map[string]*Location, len(d.Locations))
	for i := range d.Locations {
		loc := &d.Locations[i]
		d.LocationsByID[loc.ID] = loc
		d.LocationsByName[strings.ToLower(loc.Name)] = loc
	}

	// Synthetic bus-stop locations: a stop id that doesn't already
	// appear as a location is exposed as a Location too, so resolution
	// by stop id/name always succeeds from the location side as well
	// (spec.md §3: "If a location id collides with a stop id, the stop
	// is exposed as a synthetic bus-stop location").
	for i := range d.Stops {
		s := &d.Stops[i]
		if _, exists := d.LocationsByID[s.ID]; exists {
			continue
		}
		synthetic := &Location{
			ID:       s.ID,
			Name:     s.Name,
			Lat:      s.Lat,
			Lon:      s.Lon,
			Category: "bus_stop",
		}
		d.LocationsByID[s.ID] = synthetic
		if _, taken := d.LocationsByName[strings.ToLower(s.Name)]; !taken {
			d.LocationsByName[strings.ToLower(s.Name)] = synthetic
		}
	}

	d.RoutesByName = make(map[string]*Route, len(d.Routes))
	d.RoutesByStop = make(map[string][]RouteStopRef)
	d.TripsByRoute = make(map[string][]*Trip)
	d.TripStopSets = make(map[string]map[string]bool)

	for i := range d.Routes {
		route := &d.Routes[i]
		d.RoutesByName[route.Name] = route

		for _, svc := range route.Services {
			for _, trip := range svc.Trips {
				trip.RouteName = route.Name

				set := make(map[string]bool, len(trip.StopsSequence))
				for _, sid := range trip.StopsSequence {
					set[sid] = true
				}
				trip.stopSet = set

				key := tripStopSetKey(route.Name, trip.Headsign)
				if existing, ok := d.TripStopSets[key]; ok {
					for sid := range set {
						existing[sid] = true
					}
				} else {
					merged := make(map[string]bool, len(set))
					for sid := range set {
						merged[sid] = true
					}
					d.TripStopSets[key] = merged
				}

				d.TripsByRoute[route.Name] = append(d.TripsByRoute[route.Name], trip)

				for idx, sid := range trip.StopsSequence {
					d.RoutesByStop[sid] = append(d.RoutesByStop[sid], RouteStopRef{
						RouteName: route.Name,
						Headsign:  trip.Headsign,
						Trip:      trip,
						StopIndex: idx,
					})
				}
			}
		}
	}

	d.StopIndex = newStopIndex(d.Stops)
}

// BuildIndices is the exported entry point other packages' tests use to
// derive indices over hand-built fixtures without going through a
// loader. Production code always reaches this via jsonload.LoadJSON or
// pgload.LoadPostgres.
func BuildIndices(d *Data) { buildIndices(d) }

func tripStopSetKey(routeName, headsign string) string {
	return routeName + "\x00" + headsign
}

// TripStopSet returns the merged set of stop ids visited by any trip of
// (routeName, headsign), built once at load time (spec.md §3).
func (d *Data) TripStopSet(routeName, headsign string) map[string]bool {
	return d.TripStopSets[tripStopSetKey(routeName, headsign)]
}
