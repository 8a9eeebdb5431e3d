// Package httpapi is the thin HTTP surface binding the planning core to
// chi — request parsing, error-to-status mapping, and JSON encoding,
// nothing more. The core itself has no dependency on this package; it
// exists only so the engine has a runnable entrypoint.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusshuttle/planner/internal/discovery"
	"github.com/campusshuttle/planner/internal/geocache"
	"github.com/campusshuttle/planner/internal/itinerary"
	"github.com/campusshuttle/planner/internal/pathfind"
	"github.com/campusshuttle/planner/internal/schedule"
	"github.com/campusshuttle/planner/internal/static"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

// Handler holds the wiring every endpoint needs: the immutable static
// data store plus the per-query collaborators built on top of it.
type Handler struct {
	data     *static.Data
	oracle   *schedule.Oracle
	disc     *discovery.Discoverer
	resolver *geocache.Resolver
	router   walkrouter.Router

	pfCfg pathfind.Config
	itCfg itinerary.Config

	log *slog.Logger
}

func NewHandler(data *static.Data, oracle *schedule.Oracle, disc *discovery.Discoverer, resolver *geocache.Resolver, router walkrouter.Router, pfCfg pathfind.Config, itCfg itinerary.Config, log *slog.Logger) *Handler {
	return &Handler{data: data, oracle: oracle, disc: disc, resolver: resolver, router: router, pfCfg: pfCfg, itCfg: itCfg, log: log}
}

// Routes mounts every endpoint onto r: the planning endpoint, plus
// line/stop browsing endpoints for clients that want to list routes and
// stops independent of planning a trip.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/v1/plan", h.handlePlan)
	r.Get("/v1/lines", h.handleLines)
	r.Get("/v1/lines/{name}", h.handleLineDetails)
	r.Get("/v1/stops", h.handleStops)
	r.Get("/v1/stops/{id}", h.handleStopDetails)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
