// Package dashboard loads the aggregated metrics shown on the dashboard.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type Source string

const (
	SourceAPI      Source = "api"
	SourceFallback Source = "fallback"
)

// ErrEmptyMetrics is returned when the API answers without a payload.
var ErrEmptyMetrics = errors.New("dashboard: empty metrics")

type MetricsFetcher interface {
	Metrics(ctx context.Context) (*wire.DashboardMetrics, error)
}

// Loader fetches the dashboard once per call. With fallback enabled a failed
// fetch is answered with the placeholder dataset so the dashboard is never
// empty.
type Loader struct {
	fetcher  MetricsFetcher
	fallback bool
	log      zerolog.Logger
	now      func() time.Time
}

func NewLoader(fetcher MetricsFetcher, fallback bool, log zerolog.Logger) *Loader {
	return &Loader{fetcher: fetcher, fallback: fallback, log: log, now: time.Now}
}

func (l *Loader) Load(ctx context.Context) (wire.DashboardMetrics, Source, error) {
	m, err := l.fetcher.Metrics(ctx)
	if err == nil && m == nil {
		err = ErrEmptyMetrics
	}
	if err == nil {
		return *m, SourceAPI, nil
	}
	if !l.fallback {
		return wire.DashboardMetrics{}, SourceAPI, err
	}
	l.log.Warn().Err(err).Msg("metrics unavailable, showing placeholder data")
	return Fallback(l.now()), SourceFallback, nil
}

// Fallback is the fixed development placeholder: three carriers, the seven
// days ending at now and three top carriers.
func Fallback(now time.Time) wire.DashboardMetrics {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	counts := [7][3]int{
		{12, 8, 15},
		{10, 11, 18},
		{14, 9, 16},
		{9, 13, 20},
		{11, 10, 17},
		{8, 12, 19},
		{13, 7, 21},
	}
	timeline := make([]wire.TimelineMetric, 0, len(counts))
	for i, c := range counts {
		d := day.AddDate(0, 0, i-len(counts)+1)
		timeline = append(timeline, wire.TimelineMetric{
			Date:      d.Format(time.DateOnly),
			Pending:   c[0],
			InTransit: c[1],
			Completed: c[2],
		})
	}

	return wire.DashboardMetrics{
		CarrierPerformance: []wire.CarrierPerformance{
			{CarrierID: "1", CarrierName: "Carrier A", AvgDeliveryTime: 24, CompletedShipments: 45, OnTimeDeliveries: 42},
			{CarrierID: "2", CarrierName: "Carrier B", AvgDeliveryTime: 36, CompletedShipments: 38, OnTimeDeliveries: 33},
			{CarrierID: "3", CarrierName: "Carrier C", AvgDeliveryTime: 30, CompletedShipments: 52, OnTimeDeliveries: 47},
		},
		TimelineMetrics: timeline,
		TopCarriers: []wire.TopCarrier{
			{CarrierID: "3", CarrierName: "Carrier C", TotalShipments: 60, SuccessRate: 90.4},
			{CarrierID: "1", CarrierName: "Carrier A", TotalShipments: 50, SuccessRate: 93.3},
			{CarrierID: "2", CarrierName: "Carrier B", TotalShipments: 45, SuccessRate: 86.8},
		},
	}
}
