package tracking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// Coordinates parses the decimal-string location of every event, keeping the
// order the server returned them in.
func Coordinates(history []wire.History) ([]wire.LatLng, error) {
	out := make([]wire.LatLng, 0, len(history))
	for i, h := range history {
		lat, err := strconv.ParseFloat(strings.TrimSpace(h.LocationLatitude), 64)
		if err != nil {
			return nil, fmt.Errorf("history %d latitude %q: %w", i, h.LocationLatitude, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(h.LocationLongitude), 64)
		if err != nil {
			return nil, fmt.Errorf("history %d longitude %q: %w", i, h.LocationLongitude, err)
		}
		out = append(out, wire.LatLng{Lat: lat, Lng: lng})
	}
	return out, nil
}

// Endpoints returns the routing origin (first point) and destination (last
// point). ok is false for fewer than two points.
func Endpoints(coords []wire.LatLng) (origin, dest wire.LatLng, ok bool) {
	if len(coords) < 2 {
		return wire.LatLng{}, wire.LatLng{}, false
	}
	return coords[0], coords[len(coords)-1], true
}

// markers are the points that get a pin: the endpoints, or the single point
// of a one-event trail.
func markers(coords []wire.LatLng) []wire.LatLng {
	if origin, dest, ok := Endpoints(coords); ok {
		return []wire.LatLng{origin, dest}
	}
	return append([]wire.LatLng(nil), coords...)
}
