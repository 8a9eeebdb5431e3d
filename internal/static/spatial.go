package static

import (
	"github.com/tidwall/rtree"

	"github.com/campusshuttle/planner/internal/geo"
)

// StopIndex is an R-tree over stop coordinates (lon, lat), built once
// when Data is constructed. It gives geocache.NearestStops a sub-linear
// way to gather the bounding-box candidates that spec.md §4.2 then
// re-ranks by true Haversine distance, rather than scanning every stop
// on every request.
type StopIndex struct {
	tree  *rtree.RTreeG[string]
	byID  map[string]geo.Point
}

func newStopIndex(stops []Stop) *StopIndex {
	idx := &StopIndex{
		tree: &rtree.RTreeG[string]{},
		byID: make(map[string]geo.Point, len(stops)),
	}
	for _, s := range stops {
		p := [2]float64{s.Lon, s.Lat}
		idx.tree.Insert(p, p, s.ID)
		idx.byID[s.ID] = s.Point()
	}
	return idx
}

// CandidatesWithinBox returns stop ids whose coordinates fall within a
// degree-space bounding box of the given radius around center. Callers
// re-rank the result by true Haversine distance.
func (si *StopIndex) CandidatesWithinBox(center geo.Point, degRadiusLat, degRadiusLon float64) []string {
	if si == nil || si.tree == nil {
		return nil
	}
	min := [2]float64{center.Lon - degRadiusLon, center.Lat - degRadiusLat}
	max := [2]float64{center.Lon + degRadiusLon, center.Lat + degRadiusLat}

	var ids []string
	si.tree.Search(min, max, func(_, _ [2]float64, data string) bool {
		ids = append(ids, data)
		return true
	})
	return ids
}

// All returns every indexed stop id — used to widen a search when a box
// query returns too few candidates (e.g. very sparse campus edges).
func (si *StopIndex) All() []string {
	if si == nil {
		return nil
	}
	ids := make([]string, 0, len(si.byID))
	for id := range si.byID {
		ids = append(ids, id)
	}
	return ids
}
