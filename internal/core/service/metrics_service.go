package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

const (
	timelineDays    = 7
	performanceDays = 30
	topCarrierLimit = 5
	defaultCacheTTL = time.Minute
	dayLayout       = "2006-01-02"
)

type MetricsService struct {
	shipments ports.ShipmentRepository
	carriers  ports.CarrierRepository
	cache     ports.MetricsCache
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewMetricsService(
	shipments ports.ShipmentRepository,
	carriers ports.CarrierRepository,
	cache ports.MetricsCache,
	ttl time.Duration,
	logger zerolog.Logger,
) *MetricsService {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &MetricsService{
		shipments: shipments,
		carriers:  carriers,
		cache:     cache,
		ttl:       ttl,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Dashboard serves the cached aggregate or recomputes it. Cache failures
// degrade to a recomputation; they are never returned to the caller.
func (s *MetricsService) Dashboard(ctx context.Context) (*domain.DashboardMetrics, error) {
	if m, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("metrics cache read failed")
	} else if ok {
		return m, nil
	}

	now := s.now()
	shipments, err := s.shipments.CreatedSince(ctx, startOfDay(now).AddDate(0, 0, -performanceDays))
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	names, err := s.carrierNames(ctx, shipments)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	m := Aggregate(shipments, names, now)
	if err := s.cache.Set(ctx, m, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("metrics cache write failed")
	}
	return m, nil
}

func (s *MetricsService) carrierNames(ctx context.Context, shipments []*domain.Shipment) (map[string]string, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, sh := range shipments {
		if sh.CarrierID == "" {
			continue
		}
		if _, ok := seen[sh.CarrierID]; !ok {
			seen[sh.CarrierID] = struct{}{}
			ids = append(ids, sh.CarrierID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	carriers, err := s.carriers.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range carriers {
		names[c.ID] = fmt.Sprintf("%s %s", c.VehicleType, c.VehiclePlateNumber)
	}
	return names, nil
}

type carrierTally struct {
	total, completed, onTime int
	deliveryHours            float64
}

// Aggregate derives the dashboard from raw shipments. The timeline covers the
// last seven UTC days ending on now's day, oldest first, with zero-filled gaps.
func Aggregate(shipments []*domain.Shipment, carrierNames map[string]string, now time.Time) *domain.DashboardMetrics {
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(timelineDays - 1))

	timeline := make([]domain.TimelinePoint, timelineDays)
	for i := range timeline {
		timeline[i].Date = first.AddDate(0, 0, i).Format(dayLayout)
	}

	tallies := map[string]*carrierTally{}
	for _, sh := range shipments {
		if day := int(startOfDay(sh.CreatedAt).Sub(first).Hours() / 24); !sh.CreatedAt.Before(first) && day < timelineDays {
			switch sh.Status {
			case domain.StatusPending:
				timeline[day].Pending++
			case domain.StatusInTransit:
				timeline[day].InTransit++
			case domain.StatusDelivered:
				timeline[day].Completed++
			}
		}

		if sh.CarrierID == "" {
			continue
		}
		t := tallies[sh.CarrierID]
		if t == nil {
			t = &carrierTally{}
			tallies[sh.CarrierID] = t
		}
		t.total++
		if sh.Status == domain.StatusDelivered && sh.DeliveredAt != nil {
			t.completed++
			t.deliveryHours += sh.DeliveredAt.Sub(sh.StartAt).Hours()
			if !sh.DeliveredAt.After(sh.DeliveryAt) {
				t.onTime++
			}
		}
	}

	ids := make([]string, 0, len(tallies))
	for id := range tallies {
		ids = append(ids, id)
	}
	name := func(id string) string {
		if n, ok := carrierNames[id]; ok {
			return n
		}
		return id
	}

	sort.Slice(ids, func(i, j int) bool {
		a, b := tallies[ids[i]], tallies[ids[j]]
		if a.completed != b.completed {
			return a.completed > b.completed
		}
		return ids[i] < ids[j]
	})
	performance := make([]domain.CarrierPerformance, 0, len(ids))
	for _, id := range ids {
		t := tallies[id]
		var avg float64
		if t.completed > 0 {
			avg = t.deliveryHours / float64(t.completed)
		}
		performance = append(performance, domain.CarrierPerformance{
			CarrierID:          id,
			CarrierName:        name(id),
			AvgDeliveryHours:   avg,
			CompletedShipments: t.completed,
			OnTimeDeliveries:   t.onTime,
		})
	}

	sort.SliceStable(ids, func(i, j int) bool {
		a, b := tallies[ids[i]], tallies[ids[j]]
		if a.total != b.total {
			return a.total > b.total
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topCarrierLimit {
		ids = ids[:topCarrierLimit]
	}
	top := make([]domain.TopCarrier, 0, len(ids))
	for _, id := range ids {
		t := tallies[id]
		top = append(top, domain.TopCarrier{
			CarrierID:      id,
			CarrierName:    name(id),
			TotalShipments: t.total,
			SuccessRate:    float64(t.completed) / float64(t.total),
		})
	}

	return &domain.DashboardMetrics{
		CarrierPerformance: performance,
		Timeline:           timeline,
		TopCarriers:        top,
	}
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
