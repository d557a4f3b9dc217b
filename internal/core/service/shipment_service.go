package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

const defaultPageSize = 10

type ShipmentService struct {
	repo     ports.ShipmentRepository
	history  ports.HistoryRepository
	geocoder ports.Geocoder
	push     ports.PushQueue
	cache    ports.MetricsCache
	logger   zerolog.Logger
}

func NewShipmentService(
	repo ports.ShipmentRepository,
	history ports.HistoryRepository,
	geocoder ports.Geocoder,
	push ports.PushQueue,
	cache ports.MetricsCache,
	logger zerolog.Logger,
) *ShipmentService {
	return &ShipmentService{
		repo:     repo,
		history:  history,
		geocoder: geocoder,
		push:     push,
		cache:    cache,
		logger:   logger,
	}
}

// CreateShipment geocodes both endpoints, persists the shipment in PENDING and
// seeds its trail with a first event at the origin.
func (s *ShipmentService) CreateShipment(ctx context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
	origin, err := resolveGeo(ctx, s.geocoder, in.Origin)
	if err != nil {
		return nil, fmt.Errorf("create shipment: origin: %w", err)
	}
	destination, err := resolveGeo(ctx, s.geocoder, in.Destination)
	if err != nil {
		return nil, fmt.Errorf("create shipment: destination: %w", err)
	}

	now := time.Now().UTC()
	startAt := in.StartAt
	if startAt.IsZero() {
		startAt = now
	}
	shipment := &domain.Shipment{
		ID:             uuid.NewString(),
		TrackingNumber: generateTrackingNumber(),
		UserID:         in.Actor.UserID,
		Weight:         in.Weight,
		Dimensions: domain.Dimensions{
			Length: in.Length,
			Width:  in.Width,
			Height: in.Height,
		},
		ProductType: in.ProductType,
		Recipient: domain.Recipient{
			Name:  in.RecipientName,
			Phone: in.RecipientPhone,
		},
		Origin:            origin,
		Destination:       destination,
		StartAt:           startAt.UTC(),
		DeliveryAt:        in.DeliveryAt.UTC(),
		DeliveryWindow:    in.DeliveryWindow,
		AdditionalDetails: in.AdditionalDetails,
		Status:            domain.StatusPending,
		CarrierID:         in.CarrierID,
		RouteID:           in.RouteID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		s.logger.Error().Err(err).Msg("failed to create shipment")
		return nil, err
	}

	first := &domain.HistoryEvent{
		ID:               uuid.NewString(),
		ShipmentID:       shipment.ID,
		Seq:              domain.NextSeq(nil),
		Status:           domain.StatusPending,
		Notes:            "shipment created",
		Latitude:         domain.FormatDegrees(origin.Coordinates.Lat),
		Longitude:        domain.FormatDegrees(origin.Coordinates.Lng),
		PlaceID:          origin.PlaceID,
		FormattedAddress: origin.FormattedAddress,
		CreatedAt:        now,
	}
	if err := s.history.Insert(ctx, first); err != nil {
		s.logger.Warn().Err(err).Str("shipment_id", shipment.ID).Msg("failed to seed shipment history")
	}

	s.invalidateMetrics(ctx)
	s.push.Enqueue(domain.PushJob{
		ShipmentID: shipment.ID,
		OwnerID:    shipment.UserID,
		Notification: &domain.Notification{
			Kind:     domain.NotifyNewShipment,
			Message:  fmt.Sprintf("New shipment %s created", shipment.TrackingNumber),
			Shipment: shipment,
		},
	})

	s.logger.Info().Str("tracking_number", shipment.TrackingNumber).Str("user_id", shipment.UserID).Msg("shipment created")
	return shipment, nil
}

// GetShipment returns a shipment and its ordered trail. Non-admins only see
// their own shipments; others are reported as not found.
func (s *ShipmentService) GetShipment(ctx context.Context, actor ports.Actor, id string) (*ports.ShipmentWithHistory, error) {
	shipment, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	history, err := s.history.ListByShipment(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("get shipment: history: %w", err)
	}
	return &ports.ShipmentWithHistory{Shipment: shipment, History: history}, nil
}

// ListShipments returns one page; non-admins are scoped to their own shipments.
func (s *ShipmentService) ListShipments(ctx context.Context, actor ports.Actor, filter ports.ListFilter) (*ports.ListResult[*domain.Shipment], error) {
	filter.UserID = ""
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID
	}
	if filter.Status != "" {
		st, err := domain.ParseShipmentStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(st)
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return newListResult(items, total, filter), nil
}

// DeleteShipment removes the shipment and its trail.
func (s *ShipmentService) DeleteShipment(ctx context.Context, actor ports.Actor, id string) error {
	shipment, err := s.findVisible(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, shipment.ID); err != nil {
		return fmt.Errorf("delete shipment: %w", err)
	}
	if err := s.history.DeleteByShipment(ctx, shipment.ID); err != nil {
		s.logger.Warn().Err(err).Str("shipment_id", shipment.ID).Msg("failed to delete shipment history")
	}

	s.invalidateMetrics(ctx)
	s.push.Enqueue(domain.PushJob{
		ShipmentID: shipment.ID,
		OwnerID:    shipment.UserID,
		Notification: &domain.Notification{
			Kind:       domain.NotifyShipmentDeleted,
			Message:    fmt.Sprintf("Shipment %s deleted", shipment.TrackingNumber),
			ShipmentID: shipment.ID,
		},
	})
	s.logger.Info().Str("shipment_id", shipment.ID).Msg("shipment deleted")
	return nil
}

func (s *ShipmentService) findVisible(ctx context.Context, actor ports.Actor, id string) (*domain.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shipment.VisibleTo(actor.Role, actor.UserID) {
		return nil, domain.ErrShipmentNotFound
	}
	return shipment, nil
}

func (s *ShipmentService) invalidateMetrics(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate metrics cache")
	}
}

// resolveGeo trusts submitted coordinates and otherwise asks the geocoder.
func resolveGeo(ctx context.Context, geocoder ports.Geocoder, in ports.GeoInput) (domain.GeoPoint, error) {
	if in.Lat != nil && in.Lng != nil {
		return domain.GeoPoint{
			FormattedAddress: in.FormattedAddress,
			PlaceID:          in.PlaceID,
			Coordinates:      domain.Coordinates{Lat: *in.Lat, Lng: *in.Lng},
		}, nil
	}
	point, err := geocoder.Resolve(ctx, in.PlaceID)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("%w: %v", domain.ErrGeocodeFailed, err)
	}
	if in.FormattedAddress != "" {
		point.FormattedAddress = in.FormattedAddress
	}
	point.PlaceID = in.PlaceID
	return point, nil
}

// generateTrackingNumber returns a unique tracking number in the format 99M-XXXXXXXX.
func generateTrackingNumber() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("99M-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("99M-%08X", b)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > ports.MaxPageSize {
		limit = ports.MaxPageSize
	}
	return page, limit
}

func newListResult[T any](items []T, total int64, filter ports.ListFilter) *ports.ListResult[T] {
	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ports.ListResult[T]{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
		Pages: pages,
	}
}
