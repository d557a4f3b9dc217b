package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

const (
	dedupScopeHistory = "history"
	maxAppendAttempts = 3
)

type historyService struct {
	shipments ports.ShipmentRepository
	history   ports.HistoryRepository
	dedup     ports.DedupChecker
	push      ports.PushQueue
	cache     ports.MetricsCache
	log       zerolog.Logger
	now       func() time.Time
}

// NewHistoryService returns a HistoryService implementation.
func NewHistoryService(
	shipments ports.ShipmentRepository,
	history ports.HistoryRepository,
	dedup ports.DedupChecker,
	push ports.PushQueue,
	cache ports.MetricsCache,
	log zerolog.Logger,
) ports.HistoryService {
	return &historyService{
		shipments: shipments,
		history:   history,
		dedup:     dedup,
		push:      push,
		cache:     cache,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AddHistory validates, deduplicates and appends a single event, then moves
// the shipment to the event's status and schedules the realtime push.
func (s *historyService) AddHistory(ctx context.Context, in ports.AddHistoryInput) (*domain.HistoryEvent, error) {
	status, err := domain.ParseShipmentStatus(in.Status)
	if err != nil {
		return nil, fmt.Errorf("add history: %w", err)
	}
	if _, err := strconv.ParseFloat(in.Latitude, 64); err != nil {
		return nil, fmt.Errorf("add history: latitude %q: %w", in.Latitude, err)
	}
	if _, err := strconv.ParseFloat(in.Longitude, 64); err != nil {
		return nil, fmt.Errorf("add history: longitude %q: %w", in.Longitude, err)
	}

	// 1. Ownership.
	shipment, err := s.shipments.FindByID(ctx, in.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("add history: %w", err)
	}
	if !shipment.VisibleTo(in.Actor.Role, in.Actor.UserID) {
		return nil, fmt.Errorf("add history: %w", domain.ErrShipmentNotFound)
	}

	// 2. State machine, checked early so a rejected event never claims its key.
	if err := shipment.Status.CheckTransition(status); err != nil {
		return nil, fmt.Errorf("add history: %w", err)
	}

	// 3. Idempotency: a replayed submission is rejected, not re-appended.
	var claimed string
	if in.IdempotencyKey != "" {
		key := shipment.ID + ":" + in.IdempotencyKey
		fresh, err := s.dedup.Claim(ctx, dedupScopeHistory, key)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("shipment_id", shipment.ID).Msg("dedup check failed, processing anyway")
		case !fresh:
			return nil, domain.ErrDuplicateHistory
		default:
			claimed = key
		}
	}

	// 4. Append; a concurrent writer costs a re-read of the shipment.
	event, err := s.appendEvent(ctx, shipment, status, in)
	for attempt := 1; errors.Is(err, domain.ErrHistoryConflict) && attempt < maxAppendAttempts; attempt++ {
		var current *domain.Shipment
		if current, err = s.shipments.FindByID(ctx, shipment.ID); err == nil {
			shipment = current
			event, err = s.appendEvent(ctx, shipment, status, in)
		}
	}
	if err != nil {
		if claimed != "" {
			if rerr := s.dedup.Release(ctx, dedupScopeHistory, claimed); rerr != nil {
				s.log.Warn().Err(rerr).Str("shipment_id", shipment.ID).Msg("failed to release idempotency key")
			}
		}
		return nil, fmt.Errorf("add history: %w", err)
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate metrics cache")
	}

	// 5. Realtime: the owner's tracking view refetches; everyone subscribed gets a toast.
	s.push.Enqueue(domain.PushJob{
		ShipmentID: shipment.ID,
		OwnerID:    shipment.UserID,
		History:    event,
		Notification: &domain.Notification{
			Kind:       domain.NotifyStatusUpdated,
			Message:    fmt.Sprintf("Shipment %s is now %s", shipment.TrackingNumber, status),
			ShipmentID: shipment.ID,
			NewStatus:  status,
		},
	})

	s.log.Info().
		Str("shipment_id", shipment.ID).
		Str("status", string(status)).
		Int64("seq", event.Seq).
		Time("created_at", event.CreatedAt).
		Msg("history event appended")

	return event, nil
}

// appendEvent inserts the event at the next trail position, then moves the
// shipment from the status it was read with. When the shipment moved in the
// meantime the event is removed again and ErrHistoryConflict is returned.
func (s *historyService) appendEvent(ctx context.Context, shipment *domain.Shipment, status domain.ShipmentStatus, in ports.AddHistoryInput) (*domain.HistoryEvent, error) {
	if err := shipment.Status.CheckTransition(status); err != nil {
		return nil, err
	}

	last, err := s.history.Last(ctx, shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("last event: %w", err)
	}
	event := &domain.HistoryEvent{
		ID:               uuid.NewString(),
		ShipmentID:       shipment.ID,
		Seq:              domain.NextSeq(last),
		Status:           status,
		Notes:            in.Notes,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		PlaceID:          in.PlaceID,
		FormattedAddress: in.FormattedAddress,
		CreatedAt:        domain.NextEventTime(s.now(), last),
	}
	if err := s.history.Insert(ctx, event); err != nil {
		return nil, fmt.Errorf("insert: %w", err)
	}

	var deliveredAt *time.Time
	if status == domain.StatusDelivered {
		ts := event.CreatedAt
		deliveredAt = &ts
	}
	if err := s.shipments.UpdateStatus(ctx, shipment.ID, shipment.Status, status, deliveredAt); err != nil {
		if derr := s.history.Delete(ctx, event.ID); derr != nil {
			s.log.Error().Err(derr).Str("event_id", event.ID).Msg("failed to remove unprojected history event")
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: status moved from %s", domain.ErrHistoryConflict, shipment.Status)
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	return event, nil
}
