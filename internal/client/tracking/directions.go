package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/99minutos/shipment-tracker/internal/client/api"
	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// ErrMapUnavailable means no map credential is configured; the view shows a
// blocking inline error instead of the map.
var ErrMapUnavailable = errors.New("tracking: map provider unavailable")

// MapAvailability is implemented by providers that can tell, without routing,
// whether a map credential is configured.
type MapAvailability interface {
	MapAvailable() bool
}

// APIDirections routes through the server's directions endpoint. Once the
// server has answered 503 the provider reports the map as unavailable.
type APIDirections struct {
	Client *api.Client

	unavailable atomic.Bool
}

func (d *APIDirections) Directions(ctx context.Context, origin, dest wire.LatLng, mode string) ([]wire.LatLng, error) {
	path, err := d.Client.Directions(ctx, origin, dest, mode)
	if api.IsStatus(err, http.StatusServiceUnavailable) {
		d.unavailable.Store(true)
		return nil, fmt.Errorf("%w: %v", ErrMapUnavailable, err)
	}
	return path, err
}

func (d *APIDirections) MapAvailable() bool { return !d.unavailable.Load() }

// Router is the maps adapter capability used by SDKDirections.
type Router interface {
	Route(ctx context.Context, origin, dest domain.Coordinates, mode string) ([]domain.Coordinates, error)
}

// SDKDirections calls the maps provider directly with the client's own key.
type SDKDirections struct {
	Router Router
}

func (d SDKDirections) Directions(ctx context.Context, origin, dest wire.LatLng, mode string) ([]wire.LatLng, error) {
	path, err := d.Router.Route(ctx,
		domain.Coordinates{Lat: origin.Lat, Lng: origin.Lng},
		domain.Coordinates{Lat: dest.Lat, Lng: dest.Lng},
		mode)
	if errors.Is(err, maps.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w: %v", ErrMapUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	out := make([]wire.LatLng, 0, len(path))
	for _, p := range path {
		out = append(out, wire.LatLng{Lat: p.Lat, Lng: p.Lng})
	}
	return out, nil
}

// MapAvailable is false when no key was configured for the router.
func (d SDKDirections) MapAvailable() bool {
	if d.Router == nil {
		return false
	}
	_, missing := d.Router.(maps.Unavailable)
	return !missing
}
