package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

type CarrierService struct {
	repo   ports.CarrierRepository
	logger zerolog.Logger
}

func NewCarrierService(repo ports.CarrierRepository, logger zerolog.Logger) *CarrierService {
	return &CarrierService{repo: repo, logger: logger}
}

func (s *CarrierService) Create(ctx context.Context, in ports.CarrierInput) (*domain.Carrier, error) {
	now := time.Now().UTC()
	c := &domain.Carrier{
		ID:          uuid.NewString(),
		IsAvailable: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	applyCarrier(c, in)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create carrier: %w", err)
	}
	s.logger.Info().Str("carrier_id", c.ID).Str("plate", c.VehiclePlateNumber).Msg("carrier created")
	return c, nil
}

func (s *CarrierService) List(ctx context.Context, filter ports.ListFilter) (*ports.ListResult[*domain.Carrier], error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	return newListResult(items, total, filter), nil
}

// Update applies a partial patch.
func (s *CarrierService) Update(ctx context.Context, id string, in ports.CarrierInput) (*domain.Carrier, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCarrier(c, in)
	c.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update carrier: %w", err)
	}
	return c, nil
}

func (s *CarrierService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("carrier_id", id).Msg("carrier deleted")
	return nil
}

func applyCarrier(c *domain.Carrier, in ports.CarrierInput) {
	if in.UserID != nil {
		c.UserID = *in.UserID
	}
	if in.VehicleType != nil {
		c.VehicleType = *in.VehicleType
	}
	if in.VehicleCapacity != nil {
		c.VehicleCapacity = *in.VehicleCapacity
	}
	if in.VehiclePlateNumber != nil {
		c.VehiclePlateNumber = *in.VehiclePlateNumber
	}
	if in.IsAvailable != nil {
		c.IsAvailable = *in.IsAvailable
	}
}
