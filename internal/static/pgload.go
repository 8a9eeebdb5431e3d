package static

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	geojson "github.com/paulmach/go.geojson"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadPostgres builds a Data value from a PostGIS-backed schema (same
// ST_X/ST_Y coordinate extraction idiom as the JSON loader's
// lon/lat fields) generalized to this spec's
// stops/locations/routes/services/trips/route_segment_durations/
// route_geometries tables. Ingestion of those tables from the upstream
// schedule feed is out of scope (§1) — this loader only reads them.
func LoadPostgres(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*Data, error) {
	start := time.Now()
	d := &Data{
		RouteDurations: make(map[string][]int),
		Geometries:     make(map[string]*geojson.Geometry),
	}

	if err := loadStops(ctx, pool, d); err != nil {
		return nil, fmt.Errorf("static: loading stops: %w", err)
	}
	if err := loadLocations(ctx, pool, d); err != nil {
		return nil, fmt.Errorf("static: loading locations: %w", err)
	}
	if err := loadRoutes(ctx, pool, d); err != nil {
		return nil, fmt.Errorf("static: loading routes: %w", err)
	}
	if err := loadDurations(ctx, pool, d); err != nil {
		return nil, fmt.Errorf("static: loading route durations: %w", err)
	}
	if err := loadGeometries(ctx, pool, d); err != nil {
		return nil, fmt.Errorf("static: loading route geometries: %w", err)
	}

	buildIndices(d)
	logger.Info("static data loaded from postgres",
		"stops", len(d.Stops), "locations", len(d.Locations), "routes", len(d.Routes),
		"elapsed", time.Since(start))
	return d, nil
}

func loadStops(ctx context.Context, pool *pgxpool.Pool, d *Data) error {
	rows, err := pool.Query(ctx, `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry), elevation
		FROM stops
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s Stop
		if err := rows.Scan(&s.ID, &s.Name, &s.Lat, &s.Lon, &s.Elevation); err != nil {
			return err
		}
		d.Stops = append(d.Stops, s)
	}
	return rows.Err()
}

func loadLocations(ctx context.Context, pool *pgxpool.Pool, d *Data) error {
	rows, err := pool.Query(ctx, `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry),
		       elevation, COALESCE(nearest_stop_id, ''), category
		FROM locations
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Lat, &l.Lon, &l.Elevation, &l.NearestStop, &l.Category); err != nil {
			return err
		}
		d.Locations = append(d.Locations, l)
	}
	return rows.Err()
}

func loadRoutes(ctx context.Context, pool *pgxpool.Pool, d *Data) error {
	routeRows, err := pool.Query(ctx, `SELECT name, is_loop FROM routes ORDER BY name`)
	if err != nil {
		return err
	}
	type routeRow struct {
		name   string
		isLoop bool
	}
	var names []routeRow
	for routeRows.Next() {
		var r routeRow
		if err := routeRows.Scan(&r.name, &r.isLoop); err != nil {
			routeRows.Close()
			return err
		}
		names = append(names, r)
	}
	routeRows.Close()
	if err := routeRows.Err(); err != nil {
		return err
	}

	for _, rr := range names {
		route := Route{Name: rr.name, IsLoop: rr.isLoop}

		svcRows, err := pool.Query(ctx, `
			SELECT service_id, days FROM route_services WHERE route_name = $1
		`, rr.name)
		if err != nil {
			return err
		}
		for svcRows.Next() {
			var svcID string
			var days []string
			if err := svcRows.Scan(&svcID, &days); err != nil {
				svcRows.Close()
				return err
			}
			svc := &Service{ServiceID: svcID, ServiceDays: daysSet(days)}

			tripRows, err := pool.Query(ctx, `
				SELECT headsign, stops_sequence, times
				FROM route_trips
				WHERE route_name = $1 AND service_id = $2
				ORDER BY headsign
			`, rr.name, svcID)
			if err != nil {
				svcRows.Close()
				return err
			}
			for tripRows.Next() {
				var headsign string
				var stopsSeq, times []string
				if err := tripRows.Scan(&headsign, &stopsSeq, &times); err != nil {
					tripRows.Close()
					svcRows.Close()
					return err
				}
				svc.Trips = append(svc.Trips, &Trip{
					RouteName:     rr.name,
					Headsign:      headsign,
					StopsSequence: stopsSeq,
					Times:         times,
				})
			}
			tripRows.Close()
			if err := tripRows.Err(); err != nil {
				svcRows.Close()
				return err
			}

			route.Services = append(route.Services, svc)
		}
		svcRows.Close()
		if err := svcRows.Err(); err != nil {
			return err
		}

		d.Routes = append(d.Routes, route)
	}
	return nil
}

func loadDurations(ctx context.Context, pool *pgxpool.Pool, d *Data) error {
	rows, err := pool.Query(ctx, `
		SELECT route_name, headsign, from_stop_id, to_stop_id, total_secs, segment_index
		FROM route_segment_durations
		ORDER BY route_name, headsign, segment_index
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var routeName, headsign, from, to string
		var totalSecs, idx int
		if err := rows.Scan(&routeName, &headsign, &from, &to, &totalSecs, &idx); err != nil {
			return err
		}
		key := DurationsKey(routeName, headsign)
		segs := d.RouteDurations[key]
		for len(segs) <= idx {
			segs = append(segs, 0)
		}
		segs[idx] = totalSecs
		d.RouteDurations[key] = segs
	}
	return rows.Err()
}

func loadGeometries(ctx context.Context, pool *pgxpool.Pool, d *Data) error {
	rows, err := pool.Query(ctx, `
		SELECT route_name, headsign, ST_AsGeoJSON(geometry)
		FROM route_geometries
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var routeName, headsign, geomJSON string
		if err := rows.Scan(&routeName, &headsign, &geomJSON); err != nil {
			return err
		}
		geom, err := geojson.UnmarshalGeometry([]byte(geomJSON))
		if err != nil {
			return fmt.Errorf("parsing geometry for %s/%s: %w", routeName, headsign, err)
		}
		d.Geometries[GeometryKey(routeName, headsign)] = geom
	}
	return rows.Err()
}
