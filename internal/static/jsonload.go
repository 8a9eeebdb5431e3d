package static

import (
	"encoding/json"
	"fmt"
	"os"

	geojson "github.com/paulmach/go.geojson"
)

// --- wire shapes, spec.md §6 ---

type scheduleDoc struct {
	Stops  []stopDoc  `json:"stops"`
	Routes []routeDoc `json:"routes"`
}

type stopDoc struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Elevation *float64 `json:"elevation,omitempty"`
}

type routeDoc struct {
	Name     string      `json:"name"`
	IsLoop   bool        `json:"isLoop,omitempty"`
	Services []serviceDoc `json:"services"`
}

type serviceDoc struct {
	ServiceID string    `json:"service_id"`
	Days      []string  `json:"days"`
	Trips     []tripDoc `json:"trips"`
}

type tripDoc struct {
	Headsign      string   `json:"headsign"`
	StopsSequence []string `json:"stops_sequence"`
	Times         []string `json:"times"`
}

type locationsDoc struct {
	Locations []locationDoc `json:"locations"`
}

type locationDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lon"`
	Elevation   *float64 `json:"elevation,omitempty"`
	NearestStop string   `json:"nearestStop,omitempty"`
	Category    string   `json:"category"`
}

type durationsDoc struct {
	Segments []segmentDoc `json:"segments"`
}

type segmentDoc struct {
	FromStopID string `json:"fromStopId"`
	ToStopID   string `json:"toStopId"`
	TotalSecs  int    `json:"totalSecs"`
}

// LoadJSON parses the schedule/locations/durations/geometries datasets
// described in spec.md §6 and returns a fully-indexed Data value. Any of
// durationsPath/geometriesPath may be empty — both datasets are optional
// enrichment, not required for a trip to be plannable (spec.md §9's
// dwell-fallback open question governs missing duration coverage).
func LoadJSON(schedulePath, locationsPath, durationsPath, geometriesPath string) (*Data, error) {
	var sched scheduleDoc
	if err := readJSON(schedulePath, &sched); err != nil {
		return nil, fmt.Errorf("static: loading schedule dataset: %w", err)
	}

	var locs locationsDoc
	if locationsPath != "" {
		if err := readJSON(locationsPath, &locs); err != nil {
			return nil, fmt.Errorf("static: loading locations dataset: %w", err)
		}
	}

	d := &Data{
		RouteDurations: make(map[string][]int),
		Geometries:     make(map[string]*geojson.Geometry),
	}

	d.Stops = make([]Stop, 0, len(sched.Stops))
	for _, s := range sched.Stops {
		d.Stops = append(d.Stops, Stop{
			ID: s.ID, Name: s.Name, Lat: s.Lat, Lon: s.Lon, Elevation: s.Elevation,
		})
	}

	d.Locations = make([]Location, 0, len(locs.Locations))
	for _, l := range locs.Locations {
		d.Locations = append(d.Locations, Location{
			ID: l.ID, Name: l.Name, Lat: l.Lat, Lon: l.Lon,
			Elevation: l.Elevation, NearestStop: l.NearestStop, Category: l.Category,
		})
	}

	d.Routes = make([]Route, 0, len(sched.Routes))
	for _, r := range sched.Routes {
		route := Route{Name: r.Name, IsLoop: r.IsLoop}
		for _, sv := range r.Services {
			svc := &Service{ServiceID: sv.ServiceID, ServiceDays: daysSet(sv.Days)}
			for _, tr := range sv.Trips {
				svc.Trips = append(svc.Trips, &Trip{
					RouteName:     r.Name,
					Headsign:      tr.Headsign,
					StopsSequence: tr.StopsSequence,
					Times:         tr.Times,
				})
			}
			route.Services = append(route.Services, svc)
		}
		d.Routes = append(d.Routes, route)
	}

	if durationsPath != "" {
		raw := make(map[string]durationsDoc)
		if err := readJSON(durationsPath, &raw); err != nil {
			return nil, fmt.Errorf("static: loading route durations: %w", err)
		}
		for key, doc := range raw {
			segs := make([]int, len(doc.Segments))
			for i, s := range doc.Segments {
				segs[i] = s.TotalSecs
			}
			d.RouteDurations[key] = segs
		}
	}

	if geometriesPath != "" {
		raw := make(map[string]json.RawMessage)
		if err := readJSON(geometriesPath, &raw); err != nil {
			return nil, fmt.Errorf("static: loading route geometries: %w", err)
		}
		for key, msg := range raw {
			geomDoc, err := geojson.UnmarshalGeometry(msg)
			if err != nil {
				return nil, fmt.Errorf("static: decoding geometry %q: %w", key, err)
			}
			d.Geometries[key] = geomDoc
		}
	}

	buildIndices(d)
	return d, nil
}

func daysSet(days []string) map[string]bool {
	set := make(map[string]bool, len(days))
	for _, day := range days {
		set[normalizeDay(day)] = true
	}
	return set
}

func normalizeDay(day string) string {
	out := make([]byte, 0, len(day))
	for i := 0; i < len(day); i++ {
		c := day[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	return dec.Decode(v)
}
