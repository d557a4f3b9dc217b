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

type RouteService struct {
	repo     ports.RouteRepository
	geocoder ports.Geocoder
	logger   zerolog.Logger
}

func NewRouteService(repo ports.RouteRepository, geocoder ports.Geocoder, logger zerolog.Logger) *RouteService {
	return &RouteService{repo: repo, geocoder: geocoder, logger: logger}
}

func (s *RouteService) Create(ctx context.Context, in ports.RouteInput) (*domain.Route, error) {
	if in.Origin == nil || in.Destination == nil {
		return nil, fmt.Errorf("create route: %w", domain.ErrGeocodeFailed)
	}
	now := time.Now().UTC()
	r := &domain.Route{
		ID:        uuid.NewString(),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.apply(ctx, r, in); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	s.logger.Info().Str("route_id", r.ID).Str("name", r.Name).Msg("route created")
	return r, nil
}

func (s *RouteService) List(ctx context.Context, filter ports.ListFilter) (*ports.ListResult[*domain.Route], error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return newListResult(items, total, filter), nil
}

func (s *RouteService) Update(ctx context.Context, id string, in ports.RouteInput) (*domain.Route, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, r, in); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}
	r.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update route: %w", err)
	}
	return r, nil
}

func (s *RouteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("route_id", id).Msg("route deleted")
	return nil
}

func (s *RouteService) apply(ctx context.Context, r *domain.Route, in ports.RouteInput) error {
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Origin != nil {
		p, err := resolveGeo(ctx, s.geocoder, *in.Origin)
		if err != nil {
			return err
		}
		r.Origin = p
	}
	if in.Destination != nil {
		p, err := resolveGeo(ctx, s.geocoder, *in.Destination)
		if err != nil {
			return err
		}
		r.Destination = p
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	return nil
}
