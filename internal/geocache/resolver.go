// Package geocache implements the location & nearest-stop service (C4):
// resolving destination identifiers to coordinates, finding the K
// nearest stops to a point (optionally refined via an external
// walking-distance matrix), and caching both, bounded by LRU eviction
// rather than an unbounded map (spec.md §9).
package geocache

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/static"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

const (
	prefilterCount = 10
	cacheCapacity  = 100

	// Seed bounding-box radius for the R-tree prefilter query; widened
	// automatically when too few candidates fall inside it.
	initialBoxDegrees = 0.02
)

// NearestMode selects whether NearestStops refines its great-circle
// ordering using the external walking router.
type NearestMode int

const (
	GreatCircleOnly NearestMode = iota
	Refined
)

// StopDistance pairs a stop id with its distance (meters) from a query
// point, in whichever ordering NearestStops last produced.
type StopDistance struct {
	StopID string
	Meters float64
}

// Resolver answers location-resolution and nearest-stop queries against
// a *static.Data, backed by two bounded LRU caches.
type Resolver struct {
	data   *static.Data
	router walkrouter.Router

	nearestCache *lru.Cache[string, []StopDistance]
	matrixCache  *lru.Cache[string, []float64]
}

func New(data *static.Data, router walkrouter.Router) *Resolver {
	nearest, _ := lru.New[string, []StopDistance](cacheCapacity)
	matrix, _ := lru.New[string, []float64](cacheCapacity)
	return &Resolver{data: data, router: router, nearestCache: nearest, matrixCache: matrix}
}

// ResolveLocation implements the cascade from spec.md §4.2: exact
// location id -> exact stop id -> case-insensitive location name ->
// case-insensitive stop name -> substring match among stops.
func (r *Resolver) ResolveLocation(idOrName string) (*static.Location, error) {
	if loc, ok := r.data.LocationsByID[idOrName]; ok {
		return loc, nil
	}
	if stop, ok := r.data.StopsByID[idOrName]; ok {
		return r.data.LocationsByID[stop.ID], nil
	}

	lower := strings.ToLower(idOrName)
	if loc, ok := r.data.LocationsByName[lower]; ok {
		return loc, nil
	}
	for i := range r.data.Stops {
		if strings.ToLower(r.data.Stops[i].Name) == lower {
			return r.data.LocationsByID[r.data.Stops[i].ID], nil
		}
	}
	for i := range r.data.Stops {
		if strings.Contains(strings.ToLower(r.data.Stops[i].Name), lower) {
			return r.data.LocationsByID[r.data.Stops[i].ID], nil
		}
	}
	return nil, fmt.Errorf("no location, stop, or substring match for %q", idOrName)
}

// NearestStops returns the k nearest stops to point. Results are
// memoized by (lat, lon) rounded to 4 decimal places (spec.md §4.2).
func (r *Resolver) NearestStops(ctx context.Context, point geo.Point, k int, mode NearestMode) []StopDistance {
	key := cacheKey(point, mode)
	if cached, ok := r.nearestCache.Get(key); ok {
		return topK(cached, k)
	}

	candidates := r.prefilter(point)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Meters < candidates[j].Meters })
	if len(candidates) > prefilterCount {
		candidates = candidates[:prefilterCount]
	}

	if mode == Refined && r.router != nil {
		if refined, ok := r.refine(ctx, point, candidates); ok {
			candidates = refined
		}
		// On failure or timeout, keep great-circle order (§4.2) — no
		// error is ever surfaced from here (§7 propagation policy).
	}

	r.nearestCache.Add(key, candidates)
	return topK(candidates, k)
}

func (r *Resolver) prefilter(point geo.Point) []StopDistance {
	radius := initialBoxDegrees
	var ids []string
	for attempt := 0; attempt < 4; attempt++ {
		ids = r.data.StopIndex.CandidatesWithinBox(point, radius, radius)
		if len(ids) >= prefilterCount || len(ids) == len(r.data.Stops) {
			break
		}
		radius *= 3
	}
	if len(ids) == 0 {
		ids = r.data.StopIndex.All()
	}

	out := make([]StopDistance, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		stop, ok := r.data.StopsByID[id]
		if !ok {
			continue
		}
		out = append(out, StopDistance{StopID: id, Meters: geo.Dist(point, stop.Point())})
	}
	return out
}

// refine re-sorts candidates using the external walking-distance matrix,
// bounded by the ~5s timeout from spec.md §5. A cache miss on the
// matrix entry issues a fresh upstream call; races are tolerated per
// spec.md §5 (redundant calls, never inconsistency).
func (r *Resolver) refine(ctx context.Context, point geo.Point, candidates []StopDistance) ([]StopDistance, bool) {
	matrixKey := cacheKey(point, Refined) + ":matrix"
	distances, ok := r.matrixCache.Get(matrixKey)
	if !ok {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		to := make([]geo.Point, len(candidates))
		for i, c := range candidates {
			stop := r.data.StopsByID[c.StopID]
			to[i] = stop.Point()
		}
		result, got := r.router.Matrix(ctx, point, to)
		if !got {
			return nil, false
		}
		distances = result
		r.matrixCache.Add(matrixKey, distances)
	}
	if len(distances) != len(candidates) {
		return nil, false
	}

	refined := make([]StopDistance, len(candidates))
	for i, c := range candidates {
		refined[i] = StopDistance{StopID: c.StopID, Meters: distances[i]}
	}
	sort.Slice(refined, func(i, j int) bool { return refined[i].Meters < refined[j].Meters })
	return refined, true
}

// StopsInBounds answers a viewport query, backed by the same R-tree
// used for nearest-stop prefiltering.
func (r *Resolver) StopsInBounds(minLat, minLon, maxLat, maxLon float64) []static.Stop {
	center := geo.Point{Lat: (minLat + maxLat) / 2, Lon: (minLon + maxLon) / 2}
	latRadius := (maxLat - minLat) / 2
	lonRadius := (maxLon - minLon) / 2
	ids := r.data.StopIndex.CandidatesWithinBox(center, latRadius, lonRadius)

	out := make([]static.Stop, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.data.StopsByID[id]; ok {
			out = append(out, *s)
		}
	}
	return out
}

func topK(sds []StopDistance, k int) []StopDistance {
	if k >= len(sds) {
		return sds
	}
	return sds[:k]
}

func cacheKey(p geo.Point, mode NearestMode) string {
	lat := math.Round(p.Lat*1e4) / 1e4
	lon := math.Round(p.Lon*1e4) / 1e4
	return fmt.Sprintf("%.4f,%.4f,%d", lat, lon, mode)
}
