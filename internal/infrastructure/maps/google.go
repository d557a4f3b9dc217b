// Package maps adapts the Google Maps web services to the geocoding,
// directions and autocomplete capabilities the server and client consume.
package maps

import (
	"context"
	"errors"
	"fmt"

	gmaps "googlemaps.github.io/maps"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

// ErrMissingAPIKey is returned when no Maps credential is configured. The
// client renders it as a blocking inline error in place of the map.
var ErrMissingAPIKey = errors.New("maps: missing API key")

// ErrNoResults is returned when the provider answers but finds nothing.
var ErrNoResults = errors.New("maps: no results")

// ModeDriving is the only travel mode the tracking view requests.
const ModeDriving = string(gmaps.TravelModeDriving)

// Suggestion is one address autocomplete prediction.
type Suggestion struct {
	Description string
	PlaceID     string
}

// Google wraps a googlemaps client.
type Google struct {
	client *gmaps.Client
}

// Option customises the underlying client.
type Option = gmaps.ClientOption

// WithBaseURL points the client at another host (tests).
func WithBaseURL(url string) Option { return gmaps.WithBaseURL(url) }

// New builds the adapter. An empty key yields ErrMissingAPIKey.
func New(apiKey string, opts ...Option) (*Google, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c, err := gmaps.NewClient(append([]Option{gmaps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &Google{client: c}, nil
}

// Resolve geocodes a place id.
func (g *Google) Resolve(ctx context.Context, placeID string) (domain.GeoPoint, error) {
	if placeID == "" {
		return domain.GeoPoint{}, ErrNoResults
	}
	res, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{PlaceID: placeID})
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode %s: %w", placeID, err)
	}
	if len(res) == 0 {
		return domain.GeoPoint{}, ErrNoResults
	}
	loc := res[0].Geometry.Location
	return domain.GeoPoint{
		FormattedAddress: res[0].FormattedAddress,
		PlaceID:          placeID,
		Coordinates:      domain.Coordinates{Lat: loc.Lat, Lng: loc.Lng},
	}, nil
}

// Route requests one route between origin and dest and returns its decoded
// overview polyline.
func (g *Google) Route(ctx context.Context, origin, dest domain.Coordinates, mode string) ([]domain.Coordinates, error) {
	if mode == "" {
		mode = ModeDriving
	}
	routes, _, err := g.client.Directions(ctx, &gmaps.DirectionsRequest{
		Origin:      latLng(origin).String(),
		Destination: latLng(dest).String(),
		Mode:        gmaps.Mode(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("directions: %w", err)
	}
	if len(routes) == 0 {
		return nil, ErrNoResults
	}
	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return nil, fmt.Errorf("directions polyline: %w", err)
	}
	path := make([]domain.Coordinates, 0, len(points))
	for _, p := range points {
		path = append(path, domain.Coordinates{Lat: p.Lat, Lng: p.Lng})
	}
	return path, nil
}

// Autocomplete returns address predictions for free-text input.
func (g *Google) Autocomplete(ctx context.Context, input string) ([]Suggestion, error) {
	resp, err := g.client.PlaceAutocomplete(ctx, &gmaps.PlaceAutocompleteRequest{Input: input})
	if err != nil {
		return nil, fmt.Errorf("autocomplete: %w", err)
	}
	out := make([]Suggestion, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, Suggestion{Description: p.Description, PlaceID: p.PlaceID})
	}
	return out, nil
}

// Unavailable stands in when no key is configured: every call fails with
// ErrMissingAPIKey so callers must submit coordinates themselves.
type Unavailable struct{}

func (Unavailable) Resolve(context.Context, string) (domain.GeoPoint, error) {
	return domain.GeoPoint{}, ErrMissingAPIKey
}

func (Unavailable) Route(context.Context, domain.Coordinates, domain.Coordinates, string) ([]domain.Coordinates, error) {
	return nil, ErrMissingAPIKey
}

func (Unavailable) Autocomplete(context.Context, string) ([]Suggestion, error) {
	return nil, ErrMissingAPIKey
}

func latLng(c domain.Coordinates) *gmaps.LatLng {
	return &gmaps.LatLng{Lat: c.Lat, Lng: c.Lng}
}
