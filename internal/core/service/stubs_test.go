package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubShipmentRepo struct {
	byID       map[string]*domain.Shipment
	createErr  error // if set, Create and List return this error
	lastFilter ports.ListFilter

	// movedTo, when set, is applied to the stored shipment right after a
	// FindByID so the caller holds a stale status.
	movedTo domain.ShipmentStatus
}

func newStubShipmentRepo() *stubShipmentRepo {
	return &stubShipmentRepo{byID: make(map[string]*domain.Shipment)}
}

func (r *stubShipmentRepo) Create(_ context.Context, s *domain.Shipment) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *s
	r.byID[s.ID] = &clone
	return nil
}

func (r *stubShipmentRepo) FindByID(_ context.Context, id string) (*domain.Shipment, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	clone := *s
	if r.movedTo != "" {
		s.Status, r.movedTo = r.movedTo, ""
	}
	return &clone, nil
}

func (r *stubShipmentRepo) List(_ context.Context, f ports.ListFilter) ([]*domain.Shipment, int64, error) {
	r.lastFilter = f
	if r.createErr != nil {
		return nil, 0, r.createErr
	}
	var matched []*domain.Shipment
	for _, s := range r.byID {
		if f.UserID != "" && s.UserID != f.UserID {
			continue
		}
		if f.Status != "" && string(s.Status) != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(s.TrackingNumber), strings.ToLower(f.Search)) {
			continue
		}
		clone := *s
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Shipment{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubShipmentRepo) UpdateStatus(_ context.Context, id string, from, to domain.ShipmentStatus, deliveredAt *time.Time) error {
	s, ok := r.byID[id]
	if !ok {
		return domain.ErrShipmentNotFound
	}
	if s.Status != from {
		return domain.ErrInvalidTransition
	}
	s.Status = to
	if deliveredAt != nil {
		s.DeliveredAt = deliveredAt
	}
	return nil
}

func (r *stubShipmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrShipmentNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubShipmentRepo) CreatedSince(_ context.Context, since time.Time) ([]*domain.Shipment, error) {
	var out []*domain.Shipment
	for _, s := range r.byID {
		if !s.CreatedAt.Before(since) {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubHistoryRepo struct {
	events    map[string][]*domain.HistoryEvent
	insertErr error
	conflicts int // number of inserts to reject with ErrHistoryConflict
	deleted   []string
}

func newStubHistoryRepo() *stubHistoryRepo {
	return &stubHistoryRepo{events: make(map[string][]*domain.HistoryEvent)}
}

func (r *stubHistoryRepo) Insert(_ context.Context, e *domain.HistoryEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	if r.conflicts > 0 {
		r.conflicts--
		return domain.ErrHistoryConflict
	}
	for _, prev := range r.events[e.ShipmentID] {
		if prev.Seq == e.Seq {
			return domain.ErrHistoryConflict
		}
	}
	clone := *e
	r.events[e.ShipmentID] = append(r.events[e.ShipmentID], &clone)
	return nil
}

func (r *stubHistoryRepo) ListByShipment(_ context.Context, id string) ([]*domain.HistoryEvent, error) {
	return append([]*domain.HistoryEvent(nil), r.events[id]...), nil
}

func (r *stubHistoryRepo) Last(_ context.Context, id string) (*domain.HistoryEvent, error) {
	evs := r.events[id]
	if len(evs) == 0 {
		return nil, nil
	}
	return evs[len(evs)-1], nil
}

func (r *stubHistoryRepo) Delete(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	for sid, evs := range r.events {
		for i, e := range evs {
			if e.ID == id {
				r.events[sid] = append(evs[:i:i], evs[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (r *stubHistoryRepo) DeleteByShipment(_ context.Context, id string) error {
	delete(r.events, id)
	return nil
}

type stubUserRepo struct {
	byEmail map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrUserExists
	}
	clone := *u
	r.byEmail[u.Email] = &clone
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubCarrierRepo struct {
	byID map[string]*domain.Carrier
}

func newStubCarrierRepo() *stubCarrierRepo {
	return &stubCarrierRepo{byID: make(map[string]*domain.Carrier)}
}

func (r *stubCarrierRepo) Create(_ context.Context, c *domain.Carrier) error {
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCarrierRepo) FindByID(_ context.Context, id string) (*domain.Carrier, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCarrierNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCarrierRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Carrier, error) {
	var out []*domain.Carrier
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubCarrierRepo) List(_ context.Context, _ ports.ListFilter) ([]*domain.Carrier, int64, error) {
	var out []*domain.Carrier
	for _, c := range r.byID {
		clone := *c
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubCarrierRepo) Update(_ context.Context, c *domain.Carrier) error {
	if _, ok := r.byID[c.ID]; !ok {
		return domain.ErrCarrierNotFound
	}
	clone := *c
	r.byID[c.ID] = &clone
	return nil
}

func (r *stubCarrierRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrCarrierNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubRouteRepo struct {
	byID map[string]*domain.Route
}

func newStubRouteRepo() *stubRouteRepo {
	return &stubRouteRepo{byID: make(map[string]*domain.Route)}
}

func (r *stubRouteRepo) Create(_ context.Context, rt *domain.Route) error {
	clone := *rt
	r.byID[rt.ID] = &clone
	return nil
}

func (r *stubRouteRepo) FindByID(_ context.Context, id string) (*domain.Route, error) {
	rt, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRouteNotFound
	}
	clone := *rt
	return &clone, nil
}

func (r *stubRouteRepo) List(_ context.Context, _ ports.ListFilter) ([]*domain.Route, int64, error) {
	var out []*domain.Route
	for _, rt := range r.byID {
		clone := *rt
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}

func (r *stubRouteRepo) Update(_ context.Context, rt *domain.Route) error {
	clone := *rt
	r.byID[rt.ID] = &clone
	return nil
}

func (r *stubRouteRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRouteNotFound
	}
	delete(r.byID, id)
	return nil
}

// ---------------------------------------------------------------------------
// Stub adapters
// ---------------------------------------------------------------------------

type stubGeocoder struct {
	points   map[string]domain.GeoPoint
	resolved []string
}

func (g *stubGeocoder) Resolve(_ context.Context, placeID string) (domain.GeoPoint, error) {
	g.resolved = append(g.resolved, placeID)
	p, ok := g.points[placeID]
	if !ok {
		return domain.GeoPoint{}, errors.New("ZERO_RESULTS")
	}
	return p, nil
}

type stubDedup struct {
	claimed  map[string]bool
	released []string
	err      error
}

func (d *stubDedup) Claim(_ context.Context, scope, key string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.claimed == nil {
		d.claimed = map[string]bool{}
	}
	k := scope + ":" + key
	if d.claimed[k] {
		return false, nil
	}
	d.claimed[k] = true
	return true, nil
}

func (d *stubDedup) Release(_ context.Context, scope, key string) error {
	k := scope + ":" + key
	d.released = append(d.released, k)
	delete(d.claimed, k)
	return nil
}

type stubPush struct {
	jobs []domain.PushJob
}

func (p *stubPush) Enqueue(job domain.PushJob) { p.jobs = append(p.jobs, job) }

type stubCache struct {
	stored      *domain.DashboardMetrics
	getErr      error
	invalidated int
	sets        int
}

func (c *stubCache) Get(_ context.Context) (*domain.DashboardMetrics, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.stored, c.stored != nil, nil
}

func (c *stubCache) Set(_ context.Context, m *domain.DashboardMetrics, _ time.Duration) error {
	c.stored = m
	c.sets++
	return nil
}

func (c *stubCache) Invalidate(_ context.Context) error {
	c.stored = nil
	c.invalidated++
	return nil
}

func ptr[T any](v T) *T { return &v }
