package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusshuttle/planner/internal/geo"
	"github.com/campusshuttle/planner/internal/geocache"
	"github.com/campusshuttle/planner/internal/itinerary"
	"github.com/campusshuttle/planner/internal/pathfind"
	"github.com/campusshuttle/planner/internal/perr"
)

var weekdayNames = map[string]bool{
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true,
}

// handlePlan implements spec.md §6's plan(origin, destination, queryTime,
// options) -> Itinerary, reduced to GET query parameters the way the
// teacher's GetRoute parses from, to, time and day.
func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	originPoint, originStopID, perrErr := h.resolveOrigin(q.Get("origin"))
	if perrErr != nil {
		writePlanError(w, perrErr)
		return
	}

	destPoint, perrErr := h.resolveDestination(q.Get("destination"))
	if perrErr != nil {
		writePlanError(w, perrErr)
		return
	}

	queryTime := parseClock(q.Get("time"), 8*60)
	queryDay := strings.ToLower(q.Get("day"))
	if !weekdayNames[queryDay] {
		queryDay = "monday"
	}
	anytime, _ := strconv.ParseBool(q.Get("anytime"))

	req := pathfind.Request{
		OriginPoint: originPoint,
		DestPoint:   destPoint,
		QueryTime:   queryTime,
		QueryDay:    queryDay,
		IgnoreWait:  anytime,
	}

	journey, err := pathfind.Search(r.Context(), h.data, h.oracle, h.disc, h.pfCfg, req)
	buildReq := itinerary.BuildRequest{OriginPoint: originPoint, DestPoint: destPoint, QueryTime: queryTime, QueryDay: queryDay, Anytime: anytime}

	if err != nil {
		if errors.Is(err, pathfind.ErrNoCandidates) || errors.Is(err, pathfind.ErrNoPath) {
			alt, routeKnown := h.nextFeasibleBus(r.Context(), originStopID, destPoint, queryDay, queryTime)
			if alt == nil && routeKnown {
				writePlanError(w, perr.New(perr.NoService, "a route connects these stops but has no departure in the next 7 days"))
				return
			}
			it, buildErr := itinerary.WalkOnlyFallback(r.Context(), h.itCfg, buildReq, h.router, alt)
			if buildErr != nil {
				writePlanError(w, perr.Wrap(perr.NoPath, "could not build a fallback walk-only response", buildErr))
				return
			}
			writeJSON(w, http.StatusOK, it)
			return
		}
		writePlanError(w, perr.Wrap(perr.NoPath, "pathfinding failed", err))
		return
	}

	it, err := itinerary.Build(r.Context(), journey, h.itCfg, buildReq, h.router, h.data.Geometries)
	if err != nil {
		writePlanError(w, perr.Wrap(perr.NoPath, "itinerary construction failed", err))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// resolveOrigin accepts either "lat,lon" or a stop id, per spec.md §6's
// origin ∈ {StopId, Point}. An empty origin is OriginMissing (§7).
func (h *Handler) resolveOrigin(raw string) (geo.Point, string, *perr.Error) {
	if raw == "" {
		return geo.Point{}, "", perr.New(perr.OriginMissing, "neither GPS nor stop id was provided")
	}
	if pt, ok := parsePoint(raw); ok {
		return pt, "", nil
	}
	stop, ok := h.data.StopsByID[raw]
	if !ok {
		return geo.Point{}, "", perr.New(perr.OriginNotFound, "unknown origin stop id: "+raw)
	}
	return stop.Point(), stop.ID, nil
}

// resolveDestination accepts "lat,lon" or a location/stop identifier,
// cascading through geocache.Resolver.ResolveLocation (spec.md §4.2).
func (h *Handler) resolveDestination(raw string) (geo.Point, *perr.Error) {
	if raw == "" {
		return geo.Point{}, perr.New(perr.DestinationNotFound, "no destination was provided")
	}
	if pt, ok := parsePoint(raw); ok {
		return pt, nil
	}
	loc, err := h.resolver.ResolveLocation(raw)
	if err != nil || loc == nil {
		return geo.Point{}, perr.Wrap(perr.DestinationNotFound, "could not resolve destination: "+raw, err)
	}
	return loc.Point(), nil
}

// nextFeasibleBus implements the NoPath degraded-fallback annotation
// from spec.md §7: the next concrete departure toward the destination,
// searched up to 7 days forward by schedule.Oracle.NextDepartureAnyDay.
// It tries a direct route from the origin stop to the stop nearest the
// destination first, then a transfer through a configured hub
// (discovery.TransferCandidates, §4.3) when no direct route yields a
// departure. A GPS origin (no origin stop id) gets no hint.
//
// The second return value reports whether any route candidate was
// known to connect origin and destination at all. When it is true but
// no departure was found, every known route is out of service for the
// next 7 days — spec.md §7's NoService, a data anomaly distinct from
// simply having no itinerary within the search horizon.
func (h *Handler) nextFeasibleBus(ctx context.Context, originStopID string, destPoint geo.Point, queryDay string, queryTime int) (*itinerary.NextDeparture, bool) {
	if originStopID == "" {
		return nil, false
	}
	destNear := h.resolver.NearestStops(ctx, destPoint, 1, geocache.GreatCircleOnly)
	if len(destNear) == 0 {
		return nil, false
	}
	destStopID := destNear[0].StopID

	direct := h.disc.DirectRoutes(originStopID, destStopID)
	for _, c := range direct {
		if dep, ok := h.oracle.NextDepartureAnyDay(c.Service, c.Trip, c.OriginIndex, queryDay, queryTime); ok {
			return &itinerary.NextDeparture{RouteName: c.RouteName, Headsign: c.Headsign, DepartureTime: dep.AbsoluteTime % 1440, Day: dep.Day}, true
		}
	}

	transfers := h.disc.TransferCandidates(originStopID, destPoint, h.pfCfg.MaxWalkDestM)
	for _, tc := range transfers {
		if dep, ok := h.oracle.NextDepartureAnyDay(tc.Leg1.Service, tc.Leg1.Trip, tc.Leg1.OriginIndex, queryDay, queryTime); ok {
			return &itinerary.NextDeparture{RouteName: tc.Leg1.RouteName, Headsign: tc.Leg1.Headsign, DepartureTime: dep.AbsoluteTime % 1440, Day: dep.Day}, true
		}
	}

	return nil, len(direct) > 0 || len(transfers) > 0
}

func writePlanError(w http.ResponseWriter, e *perr.Error) {
	status := http.StatusInternalServerError
	switch e.Kind {
	case perr.OriginMissing:
		status = http.StatusBadRequest
	case perr.OriginNotFound, perr.DestinationNotFound:
		status = http.StatusNotFound
	case perr.NoService:
		status = http.StatusNotFound
	case perr.NoPath:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"kind": string(e.Kind), "message": e.Message},
	})
}

// parsePoint parses "lat,lon" into a geo.Point.
func parsePoint(raw string) (geo.Point, bool) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return geo.Point{}, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lon: lon}, true
}

// parseClock parses "HH:MM" into minutes since midnight, falling back
// to fallback on any parse error.
func parseClock(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return fallback
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return fallback
	}
	return h*60 + m
}
