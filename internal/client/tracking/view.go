// Package tracking rebuilds a shipment's journey from its history trail and
// keeps it current as push events arrive.
package tracking

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/client/realtime"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// ErrSuperseded is returned by a load whose response arrived after a newer
// load had been issued. Its result was discarded.
var ErrSuperseded = errors.New("tracking: superseded by a newer load")

var ErrNotOpen = errors.New("tracking: no shipment open")

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

type ShipmentFetcher interface {
	GetShipmentWithHistory(ctx context.Context, id string) (*wire.ShipmentWithHistory, error)
}

type HistoryWriter interface {
	AddHistory(ctx context.Context, shipmentID string, req wire.AddHistoryRequest) (*wire.History, error)
}

type DirectionsProvider interface {
	Directions(ctx context.Context, origin, dest wire.LatLng, mode string) ([]wire.LatLng, error)
}

// MapRenderer draws the view. Calls are serialised by the View.
type MapRenderer interface {
	RenderState(state State, err error)
	RenderHistory(shipment wire.Shipment, history []wire.History)
	RenderMarkers(points []wire.LatLng)
	RenderPath(path []wire.LatLng)
	FitBounds(points []wire.LatLng)
	RenderMapError(err error)
}

// HistorySource is the single-slot history listener of the realtime client.
type HistorySource interface {
	OnHistoryUpdate(fn realtime.HistoryListener)
}

// View is the tracking view of one shipment at a time.
type View struct {
	fetcher    ShipmentFetcher
	writer     HistoryWriter
	directions DirectionsProvider
	renderer   MapRenderer
	source     HistorySource
	log        zerolog.Logger

	mu       sync.Mutex
	id       string
	state    State
	seq      uint64
	fitted   bool
	mapError bool
	data     *wire.ShipmentWithHistory
	coords   []wire.LatLng
	path     []wire.LatLng
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

type Deps struct {
	Fetcher    ShipmentFetcher
	Writer     HistoryWriter
	Directions DirectionsProvider
	Renderer   MapRenderer
	Source     HistorySource
	Logger     zerolog.Logger
}

func NewView(d Deps) *View {
	return &View{
		fetcher:    d.Fetcher,
		writer:     d.Writer,
		directions: d.Directions,
		renderer:   d.Renderer,
		source:     d.Source,
		log:        d.Logger,
	}
}

// Open loads shipment id from scratch. When the load succeeds the view starts
// refetching on every history push; a failed first load leaves the view in
// StateError until Open is called again.
func (v *View) Open(ctx context.Context, id string) error {
	v.Close()

	v.mu.Lock()
	v.ctx, v.cancel = context.WithCancel(ctx)
	v.id = id
	v.fitted, v.mapError = false, false
	v.data, v.coords, v.path = nil, nil, nil
	v.mu.Unlock()

	if err := v.load(ctx); err != nil {
		return err
	}
	if v.source != nil {
		v.source.OnHistoryUpdate(v.onPush)
	}
	return nil
}

// Refresh refetches the open shipment.
func (v *View) Refresh(ctx context.Context) error {
	return v.load(ctx)
}

// SubmitHistory appends an event to the open shipment. On success it refetches
// once and returns the created event; on failure nothing else happens.
func (v *View) SubmitHistory(ctx context.Context, req wire.AddHistoryRequest) (*wire.History, error) {
	v.mu.Lock()
	id := v.id
	v.mu.Unlock()
	if id == "" {
		return nil, ErrNotOpen
	}

	h, err := v.writer.AddHistory(ctx, id, req)
	if err != nil {
		v.log.Error().Err(err).Str("shipment_id", id).Msg("history submission failed")
		return nil, err
	}
	if err := v.load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		v.log.Warn().Err(err).Str("shipment_id", id).Msg("refetch after submission failed")
	}
	return h, nil
}

// Close stops reacting to pushes and waits for in-flight refetches.
func (v *View) Close() {
	v.mu.Lock()
	cancel := v.cancel
	wasOpen := v.id != ""
	v.cancel = nil
	v.id = ""
	v.mu.Unlock()

	if wasOpen && v.source != nil {
		v.source.OnHistoryUpdate(nil)
	}
	if cancel != nil {
		cancel()
	}
	v.wg.Wait()
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Snapshot returns copies of the rendered coordinates and path.
func (v *View) Snapshot() (coords, path []wire.LatLng) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]wire.LatLng(nil), v.coords...), append([]wire.LatLng(nil), v.path...)
}

func (v *View) onPush(h wire.History) {
	v.mu.Lock()
	if v.id == "" || v.ctx == nil || v.ctx.Err() != nil {
		v.mu.Unlock()
		return
	}
	ctx := v.ctx
	v.wg.Add(1)
	v.mu.Unlock()

	v.log.Debug().Str("shipment_id", h.ShipmentID).Str("status", h.Status).Msg("history push, refetching")
	go func() {
		defer v.wg.Done()
		if err := v.load(ctx); err != nil && !errors.Is(err, ErrSuperseded) && ctx.Err() == nil {
			v.log.Warn().Err(err).Msg("push refetch failed")
		}
	}()
}

// load runs one fetch, tagged with a fresh sequence token. Only the holder of
// the latest token may render.
func (v *View) load(ctx context.Context) error {
	v.mu.Lock()
	if v.id == "" {
		v.mu.Unlock()
		return ErrNotOpen
	}
	v.seq++
	token, id := v.seq, v.id
	v.setStateLocked(StateLoading, nil)
	v.mu.Unlock()

	res, err := v.fetcher.GetShipmentWithHistory(ctx, id)
	var coords []wire.LatLng
	if err == nil {
		coords, err = Coordinates(res.History)
	}

	v.mu.Lock()
	if token != v.seq || id != v.id {
		v.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		if v.data == nil {
			v.setStateLocked(StateError, err)
		} else {
			v.setStateLocked(StateReady, nil)
		}
		v.mu.Unlock()
		v.log.Error().Err(err).Str("shipment_id", id).Msg("shipment fetch failed")
		return err
	}

	v.data, v.coords = res, coords
	v.renderer.RenderHistory(res.Shipment, res.History)
	v.renderer.RenderMarkers(markers(coords))
	if !v.fitted && len(coords) > 0 {
		v.renderer.FitBounds(coords)
		v.fitted = true
	}
	v.setStateLocked(StateReady, nil)
	mapDown := false
	if a, ok := v.directions.(MapAvailability); ok && !a.MapAvailable() {
		mapDown = true
		v.showMapErrorLocked(ErrMapUnavailable)
	}
	v.mu.Unlock()

	origin, dest, ok := Endpoints(coords)
	if !ok || v.directions == nil || mapDown {
		return nil
	}
	v.route(ctx, token, origin, dest)
	return nil
}

func (v *View) route(ctx context.Context, token uint64, origin, dest wire.LatLng) {
	path, err := v.directions.Directions(ctx, origin, dest, maps.ModeDriving)

	v.mu.Lock()
	defer v.mu.Unlock()
	if token != v.seq {
		return
	}
	if err != nil {
		v.log.Error().Err(err).Msg("directions request failed")
		if errors.Is(err, ErrMapUnavailable) {
			v.showMapErrorLocked(err)
		}
		return
	}
	v.path = path
	v.renderer.RenderPath(path)
}

// showMapErrorLocked renders the inline map error once per opened shipment.
func (v *View) showMapErrorLocked(err error) {
	if v.mapError {
		return
	}
	v.mapError = true
	v.renderer.RenderMapError(err)
}

func (v *View) setStateLocked(s State, err error) {
	v.state = s
	v.renderer.RenderState(s, err)
}
