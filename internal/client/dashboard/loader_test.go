package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type stubFetcher struct {
	m   *wire.DashboardMetrics
	err error
}

func (s stubFetcher) Metrics(context.Context) (*wire.DashboardMetrics, error) {
	return s.m, s.err
}

var now = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func TestLoad_UsesAPIData(t *testing.T) {
	want := &wire.DashboardMetrics{TopCarriers: []wire.TopCarrier{{CarrierID: "x"}}}
	l := NewLoader(stubFetcher{m: want}, true, zerolog.Nop())

	m, src, err := l.Load(context.Background())
	if err != nil || src != SourceAPI {
		t.Fatalf("expected api data, got src=%s err=%v", src, err)
	}
	if len(m.TopCarriers) != 1 || m.TopCarriers[0].CarrierID != "x" {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestLoad_FailureServesFallback(t *testing.T) {
	l := NewLoader(stubFetcher{err: errors.New("503")}, true, zerolog.Nop())
	l.now = func() time.Time { return now }

	m, src, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if src != SourceFallback {
		t.Fatalf("expected fallback source, got %s", src)
	}
	if len(m.CarrierPerformance) != 3 || len(m.TimelineMetrics) != 7 || len(m.TopCarriers) != 3 {
		t.Fatalf("unexpected fallback shape: %d/%d/%d",
			len(m.CarrierPerformance), len(m.TimelineMetrics), len(m.TopCarriers))
	}
}

func TestLoad_FallbackDisabledReturnsError(t *testing.T) {
	boom := errors.New("503")
	l := NewLoader(stubFetcher{err: boom}, false, zerolog.Nop())

	if _, _, err := l.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestLoad_EmptyPayloadIsAnError(t *testing.T) {
	l := NewLoader(stubFetcher{}, false, zerolog.Nop())

	m, _, err := l.Load(context.Background())
	if !errors.Is(err, ErrEmptyMetrics) {
		t.Fatalf("expected ErrEmptyMetrics, got %v", err)
	}
	if len(m.TopCarriers) != 0 {
		t.Errorf("expected zero metrics alongside the error, got %+v", m)
	}
}

func TestLoad_EmptyPayloadServesFallback(t *testing.T) {
	l := NewLoader(stubFetcher{}, true, zerolog.Nop())
	l.now = func() time.Time { return now }

	m, src, err := l.Load(context.Background())
	if err != nil || src != SourceFallback {
		t.Fatalf("expected fallback without error, got src=%s err=%v", src, err)
	}
	if len(m.TopCarriers) != 3 {
		t.Errorf("unexpected fallback shape: %+v", m.TopCarriers)
	}
}

func TestFallback_TimelineEndsToday(t *testing.T) {
	m := Fallback(now)
	if first := m.TimelineMetrics[0].Date; first != "2024-05-04" {
		t.Errorf("expected first day 2024-05-04, got %s", first)
	}
	if last := m.TimelineMetrics[6].Date; last != "2024-05-10" {
		t.Errorf("expected last day 2024-05-10, got %s", last)
	}
	for _, c := range m.CarrierPerformance {
		if c.OnTimeDeliveries > c.CompletedShipments {
			t.Errorf("carrier %s has more on-time than completed deliveries", c.CarrierID)
		}
	}
}
