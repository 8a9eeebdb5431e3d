package walkrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/twpayne/go-polyline"
	"golang.org/x/time/rate"
	gmaps "googlemaps.github.io/maps"

	"github.com/campusshuttle/planner/internal/geo"
)

// GoogleMaps is the concrete walkingRouter implementation grounded on
// the pack's reference Google Maps Directions client
// (googlemaps-google-maps-services-go/directions.go): a thin wrapper
// around googlemaps.github.io/maps's Directions/DistanceMatrix calls,
// restricted to TravelModeWalking, bounded by the context timeouts
// spec.md §5 requires and a client-side rate limiter so a burst of
// nearest-stop refinements never floods the upstream API.
type GoogleMaps struct {
	client  *gmaps.Client
	limiter *rate.Limiter
}

// NewGoogleMaps constructs a GoogleMaps router. It returns an error,
// and no router, when apiKey is empty or the maps client cannot be
// constructed.
func NewGoogleMaps(apiKey string, requestsPerSecond float64) (*GoogleMaps, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("walkrouter: no Google Maps API key configured")
	}
	c, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("walkrouter: constructing maps client: %w", err)
	}
	return &GoogleMaps{
		client:  c,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}, nil
}

func (g *GoogleMaps) Directions(ctx context.Context, from, to geo.Point) (*Directions, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	req := &gmaps.DirectionsRequest{
		Origin:      latLngString(from),
		Destination: latLngString(to),
		Mode:        gmaps.TravelModeWalking,
	}
	routes, _, err := g.client.Directions(ctx, req)
	if err != nil || len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, false
	}

	leg := routes[0].Legs[0]
	geometry := decodePolyline(routes[0].OverviewPolyline.Points)

	turns := make([]Turn, 0, len(leg.Steps))
	for _, step := range leg.Steps {
		turns = append(turns, Turn{
			Instruction: stripHTML(step.HTMLInstructions),
			DistanceM:   float64(step.Distance.Meters),
		})
	}

	return &Directions{
		DistanceM: float64(leg.Distance.Meters),
		Duration:  leg.Duration.Seconds(),
		Turns:     turns,
		Geometry:  geometry,
	}, true
}

func (g *GoogleMaps) Matrix(ctx context.Context, from geo.Point, to []geo.Point) ([]float64, bool) {
	if len(to) == 0 {
		return nil, true
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	dests := make([]string, len(to))
	for i, p := range to {
		dests[i] = latLngString(p)
	}

	req := &gmaps.DistanceMatrixRequest{
		Origins:      []string{latLngString(from)},
		Destinations: dests,
		Mode:         gmaps.TravelModeWalking,
	}
	resp, err := g.client.DistanceMatrix(ctx, req)
	if err != nil || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) != len(to) {
		return nil, false
	}

	out := make([]float64, len(to))
	for i, el := range resp.Rows[0].Elements {
		if el.Status != "OK" {
			return nil, false
		}
		out[i] = float64(el.Distance.Meters)
	}
	return out, true
}

func latLngString(p geo.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lon)
}

// decodePolyline decodes an encoded Google polyline into (lon, lat)
// pairs, matching the ordering the geojson dataset in spec.md §6 uses.
func decodePolyline(encoded string) [][2]float64 {
	if encoded == "" {
		return nil
	}
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil
	}
	out := make([][2]float64, len(coords))
	for i, c := range coords {
		// go-polyline decodes to [lat, lng].
		out[i] = [2]float64{c[1], c[0]}
	}
	return out
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
