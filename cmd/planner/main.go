// Command planner runs the campus shuttle trip-planning HTTP surface:
// chi router, middleware stack, and collaborator wiring.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"

	"github.com/campusshuttle/planner/internal/config"
	"github.com/campusshuttle/planner/internal/discovery"
	"github.com/campusshuttle/planner/internal/geocache"
	"github.com/campusshuttle/planner/internal/httpapi"
	"github.com/campusshuttle/planner/internal/itinerary"
	"github.com/campusshuttle/planner/internal/logging"
	"github.com/campusshuttle/planner/internal/pathfind"
	"github.com/campusshuttle/planner/internal/schedule"
	"github.com/campusshuttle/planner/internal/static"
	"github.com/campusshuttle/planner/internal/walkrouter"
)

func main() {
	cfg := config.Load()
	log := logging.New(os.Getenv("PLANNER_ENV") == "production", slog.LevelInfo)

	data, err := loadData(cfg, log)
	if err != nil {
		log.Error("failed to load static data", "error", err)
		os.Exit(1)
	}
	log.Info("loaded static data", "stops", len(data.Stops), "routes", len(data.Routes), "locations", len(data.Locations))

	oracle := schedule.New(data)
	disc := discovery.New(data, cfg.TransferHubs)

	var router walkrouter.Router = walkrouter.None{}
	if cfg.GoogleMapsAPIKey != "" {
		gm, err := walkrouter.NewGoogleMaps(cfg.GoogleMapsAPIKey, 10)
		if err != nil {
			log.Warn("failed to construct Google Maps walking router, falling back to great-circle estimates", "error", err)
		} else {
			router = gm
		}
	}
	resolver := geocache.New(data, router)

	handler := httpapi.NewHandler(data, oracle, disc, resolver, router, pathfind.FromAppConfig(cfg), itinerary.FromAppConfig(cfg), log)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"campus_shuttle_planner"}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	handler.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info("planner listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func loadData(cfg *config.Config, log *slog.Logger) (*static.Data, error) {
	if cfg.DataSource == "postgres" {
		poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("parsing postgres url: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := pool.Ping(context.Background()); err != nil {
			return nil, fmt.Errorf("pinging postgres: %w", err)
		}
		return static.LoadPostgres(context.Background(), pool, log)
	}
	return static.LoadJSON(cfg.SchedulePath, cfg.LocationsPath, cfg.DurationsPath, cfg.GeometriesPath)
}
