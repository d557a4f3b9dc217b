package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
)

type stubPlaces struct {
	origin, dest domain.Coordinates
	mode         string
}

func (s *stubPlaces) Autocomplete(_ context.Context, input string) ([]maps.Suggestion, error) {
	return []maps.Suggestion{{Description: input + " Centro", PlaceID: "p1"}}, nil
}

func (s *stubPlaces) Route(_ context.Context, origin, dest domain.Coordinates, mode string) ([]domain.Coordinates, error) {
	s.origin, s.dest, s.mode = origin, dest, mode
	return []domain.Coordinates{origin, dest}, nil
}

func TestPlacesHandler_Autocomplete(t *testing.T) {
	e := newEcho()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?input=Puebla", nil), rec)

	if err := NewPlacesHandler(&stubPlaces{}).Autocomplete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"place_id":"p1"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?input=%20", nil), httptest.NewRecorder())
	if code := httpCode(t, NewPlacesHandler(&stubPlaces{}).Autocomplete(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestPlacesHandler_Directions(t *testing.T) {
	e := newEcho()
	places := &stubPlaces{}
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?origin=19.43,-99.13&destination=19.04,%20-98.2", nil), rec)

	if err := NewPlacesHandler(places).Directions(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if places.mode != maps.ModeDriving {
		t.Errorf("expected driving default, got %q", places.mode)
	}
	if places.origin.Lat != 19.43 || places.dest.Lng != -98.2 {
		t.Errorf("unexpected endpoints %+v %+v", places.origin, places.dest)
	}
	if !strings.Contains(rec.Body.String(), `"path":[{"lat":19.43,"lng":-99.13}`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/?origin=nowhere&destination=1,2", nil), httptest.NewRecorder())
	if code := httpCode(t, NewPlacesHandler(places).Directions(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestPlacesHandler_Unconfigured(t *testing.T) {
	e := newEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?input=x", nil), httptest.NewRecorder())

	if err := NewPlacesHandler(maps.Unavailable{}).Autocomplete(c); !errors.Is(err, maps.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
