package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campusshuttle/planner/internal/static"
)

// lineSummary is what handleLines returns for each route.
type lineSummary struct {
	Name      string   `json:"name"`
	IsLoop    bool     `json:"isLoop"`
	Headsigns []string `json:"headsigns"`
}

func (h *Handler) handleLines(w http.ResponseWriter, r *http.Request) {
	out := make([]lineSummary, 0, len(h.data.Routes))
	for _, route := range h.data.Routes {
		seen := map[string]bool{}
		var headsigns []string
		for _, svc := range route.Services {
			for _, t := range svc.Trips {
				if !seen[t.Headsign] {
					seen[t.Headsign] = true
					headsigns = append(headsigns, t.Headsign)
				}
			}
		}
		out = append(out, lineSummary{Name: route.Name, IsLoop: route.IsLoop, Headsigns: headsigns})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLineDetails returns a route plus the ordered stop list of its
// first trip per headsign, since static.Route carries no single
// canonical stop sequence of its own.
func (h *Handler) handleLineDetails(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	route, ok := h.data.RoutesByName[name]
	if !ok {
		http.Error(w, "line not found", http.StatusNotFound)
		return
	}

	type headsignStops struct {
		Headsign string        `json:"headsign"`
		Stops    []static.Stop `json:"stops"`
	}
	seen := map[string]bool{}
	var patterns []headsignStops
	for _, svc := range route.Services {
		for _, t := range svc.Trips {
			if seen[t.Headsign] {
				continue
			}
			seen[t.Headsign] = true
			stops := make([]static.Stop, 0, len(t.StopsSequence))
			for _, id := range t.StopsSequence {
				if s, ok := h.data.StopsByID[id]; ok {
					stops = append(stops, *s)
				}
			}
			patterns = append(patterns, headsignStops{Headsign: t.Headsign, Stops: stops})
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"line":     route,
		"patterns": patterns,
	})
}

// handleStops implements a viewport stop query, backed by the R-tree
// rather than a PostGIS bounding-box query.
func (h *Handler) handleStops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	minLat, e1 := strconv.ParseFloat(q.Get("min_lat"), 64)
	minLon, e2 := strconv.ParseFloat(q.Get("min_lon"), 64)
	maxLat, e3 := strconv.ParseFloat(q.Get("max_lat"), 64)
	maxLon, e4 := strconv.ParseFloat(q.Get("max_lon"), 64)
	if e1 != nil || e2 != nil || e3 != nil || e4 != nil {
		http.Error(w, "missing or invalid viewport bounds", http.StatusBadRequest)
		return
	}

	stops := h.resolver.StopsInBounds(minLat, minLon, maxLat, maxLon)
	writeJSON(w, http.StatusOK, stops)
}

func (h *Handler) handleStopDetails(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stop, ok := h.data.StopsByID[id]
	if !ok {
		http.Error(w, "stop not found", http.StatusNotFound)
		return
	}

	var lines []string
	for _, ref := range h.data.RoutesByStop[id] {
		lines = append(lines, ref.RouteName)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stop":  stop,
		"lines": lines,
	})
}
