package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/middleware"
	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

type stubShipmentService struct {
	created    ports.CreateShipmentInput
	listFilter ports.ListFilter
	listActor  ports.Actor
	detail     *ports.ShipmentWithHistory
	deleted    string
	err        error
}

func (s *stubShipmentService) CreateShipment(_ context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Shipment{ID: "shp-1", TrackingNumber: "99M-0000ABCD", UserID: in.Actor.UserID, ProductType: in.ProductType, Status: domain.StatusPending}, nil
}

func (s *stubShipmentService) GetShipment(_ context.Context, _ ports.Actor, id string) (*ports.ShipmentWithHistory, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func (s *stubShipmentService) ListShipments(_ context.Context, actor ports.Actor, f ports.ListFilter) (*ports.ListResult[*domain.Shipment], error) {
	s.listActor, s.listFilter = actor, f
	if s.err != nil {
		return nil, s.err
	}
	return &ports.ListResult[*domain.Shipment]{
		Items: []*domain.Shipment{{ID: "a", Status: domain.StatusPending}},
		Total: 1, Page: 1, Limit: 10, Pages: 1,
	}, nil
}

func (s *stubShipmentService) DeleteShipment(_ context.Context, _ ports.Actor, id string) error {
	s.deleted = id
	return s.err
}

type stubHistoryService struct {
	in  ports.AddHistoryInput
	err error
}

func (s *stubHistoryService) AddHistory(_ context.Context, in ports.AddHistoryInput) (*domain.HistoryEvent, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	st, _ := domain.ParseShipmentStatus(in.Status)
	return &domain.HistoryEvent{ID: "h1", ShipmentID: in.ShipmentID, Status: st, Latitude: in.Latitude, Longitude: in.Longitude}, nil
}

func authed(c echo.Context, userID, role string) echo.Context {
	c.Set(middleware.KeyUserID, userID)
	c.Set(middleware.KeyRole, role)
	return c
}

func TestShipmentHandler_RequiresIdentity(t *testing.T) {
	e := newEcho()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/shipments", nil), httptest.NewRecorder())

	if code := httpCode(t, NewShipmentHandler(&stubShipmentService{}).List(c)); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestShipmentHandler_List(t *testing.T) {
	e := newEcho()
	svc := &stubShipmentService{}
	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/api/shipments?page=2&limit=5&search=%2099M%20&status=IN_TRANSIT", nil), rec), "user-1", domain.RoleUser)

	if err := NewShipmentHandler(svc).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := ports.ListFilter{Status: "IN_TRANSIT", Search: "99M", Page: 2, Limit: 5}
	if svc.listFilter != want {
		t.Errorf("unexpected filter %+v", svc.listFilter)
	}
	if svc.listActor.UserID != "user-1" || svc.listActor.Role != domain.RoleUser {
		t.Errorf("unexpected actor %+v", svc.listActor)
	}

	var resp struct {
		Data struct {
			Items      []map[string]any `json:"items"`
			TotalPages int              `json:"total_pages"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data.Items) != 1 || resp.Data.TotalPages != 1 {
		t.Errorf("unexpected page %+v", resp.Data)
	}
}

func TestShipmentHandler_Get(t *testing.T) {
	e := newEcho()
	svc := &stubShipmentService{detail: &ports.ShipmentWithHistory{
		Shipment: &domain.Shipment{ID: "shp-1", Status: domain.StatusInTransit},
		History: []*domain.HistoryEvent{
			{ID: "h1", Status: domain.StatusPending, Latitude: "19.4", Longitude: "-99.1"},
			{ID: "h2", Status: domain.StatusInTransit, Latitude: "19.5", Longitude: "-99.2"},
		},
	}}
	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), "user-1", domain.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("shp-1")

	if err := NewShipmentHandler(svc).Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"location_latitude":"19.4"`) || strings.Index(body, `"h1"`) > strings.Index(body, `"h2"`) {
		t.Errorf("unexpected history payload %s", body)
	}

	svc.err = fmt.Errorf("get: %w", domain.ErrShipmentNotFound)
	c = authed(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()), "user-1", domain.RoleUser)
	if err := NewShipmentHandler(svc).Get(c); !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestShipmentHandler_Create(t *testing.T) {
	e := newEcho()
	svc := &stubShipmentService{}
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	body := fmt.Sprintf(`{
		"weight": 2.5, "length": 10, "width": 20, "height": 30,
		"product_type": "electronics",
		"recipient_name": "Bob", "recipient_phone": "5599999999",
		"origin_formatted_address": "CDMX", "origin_place_id": "p1", "origin_latitude": 19.43, "origin_longitude": -99.13,
		"destination_formatted_address": "Puebla", "destination_place_id": "p2",
		"start_date_time": %q, "delivery_date_time": %q
	}`, start.Format(time.RFC3339), start.Add(48*time.Hour).Format(time.RFC3339))
	rec := httptest.NewRecorder()
	c := authed(e.NewContext(jsonRequest(http.MethodPost, "/api/shipments", body), rec), "user-1", domain.RoleUser)

	if err := NewShipmentHandler(svc).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	in := svc.created
	if in.Actor.UserID != "user-1" || in.ProductType != "electronics" {
		t.Errorf("unexpected input %+v", in)
	}
	if in.Origin.Lat == nil || *in.Origin.Lat != 19.43 || in.Origin.PlaceID != "p1" {
		t.Errorf("unexpected origin %+v", in.Origin)
	}
	if in.Destination.Lat != nil || in.Destination.PlaceID != "p2" {
		t.Errorf("expected destination left for geocoding, got %+v", in.Destination)
	}
	if !in.StartAt.Equal(start) {
		t.Errorf("unexpected start %v", in.StartAt)
	}
}

func TestShipmentHandler_Create_DeliveryBeforeStart(t *testing.T) {
	e := newEcho()
	body := `{
		"weight": 1, "length": 1, "width": 1, "height": 1, "product_type": "x",
		"recipient_name": "Bob", "recipient_phone": "1",
		"origin_formatted_address": "A", "origin_place_id": "p1",
		"destination_formatted_address": "B", "destination_place_id": "p2",
		"start_date_time": "2024-05-02T00:00:00Z", "delivery_date_time": "2024-05-01T00:00:00Z"
	}`
	c := authed(e.NewContext(jsonRequest(http.MethodPost, "/api/shipments", body), httptest.NewRecorder()), "user-1", domain.RoleUser)

	err := NewShipmentHandler(&stubShipmentService{}).Create(c)
	if code := httpCode(t, err); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if !strings.Contains(err.Error(), "delivery_date_time must be after start_date_time") {
		t.Errorf("unexpected message %v", err)
	}
}

func TestShipmentHandler_Delete(t *testing.T) {
	e := newEcho()
	svc := &stubShipmentService{}
	rec := httptest.NewRecorder()
	c := authed(e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec), "user-1", domain.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("shp-9")

	if err := NewShipmentHandler(svc).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || svc.deleted != "shp-9" {
		t.Errorf("unexpected delete: code=%d id=%q", rec.Code, svc.deleted)
	}
}

const historyBody = `{"status":"IN_TRANSIT","notes":"left hub","location_latitude":"19.4326","location_longitude":"-99.1332","location_place_id":"p9","location_formatted_address":"CDMX"}`

func TestHistoryHandler_Add(t *testing.T) {
	e := newEcho()
	svc := &stubHistoryService{}
	req := jsonRequest(http.MethodPost, "/", historyBody)
	req.Header.Set("Idempotency-Key", "k-1")
	rec := httptest.NewRecorder()
	c := authed(e.NewContext(req, rec), "user-1", domain.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues("shp-1")

	if err := NewHistoryHandler(svc).Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	in := svc.in
	if in.ShipmentID != "shp-1" || in.IdempotencyKey != "k-1" || in.Latitude != "19.4326" || in.Actor.UserID != "user-1" {
		t.Errorf("unexpected input %+v", in)
	}
}

func TestHistoryHandler_Add_Rejections(t *testing.T) {
	e := newEcho()

	bad := strings.Replace(historyBody, `"IN_TRANSIT"`, `"LOST"`, 1)
	c := authed(e.NewContext(jsonRequest(http.MethodPost, "/", bad), httptest.NewRecorder()), "user-1", domain.RoleUser)
	if code := httpCode(t, NewHistoryHandler(&stubHistoryService{}).Add(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown status, got %d", code)
	}

	bad = strings.Replace(historyBody, `"19.4326"`, `"north"`, 1)
	c = authed(e.NewContext(jsonRequest(http.MethodPost, "/", bad), httptest.NewRecorder()), "user-1", domain.RoleUser)
	if code := httpCode(t, NewHistoryHandler(&stubHistoryService{}).Add(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad latitude, got %d", code)
	}

	svc := &stubHistoryService{err: fmt.Errorf("add history: %w", domain.ErrInvalidTransition)}
	c = authed(e.NewContext(jsonRequest(http.MethodPost, "/", historyBody), httptest.NewRecorder()), "user-1", domain.RoleUser)
	if err := NewHistoryHandler(svc).Add(c); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestHistoryErrorReason(t *testing.T) {
	cases := map[error]string{
		fmt.Errorf("x: %w", domain.ErrInvalidTransition): "invalid_transition",
		domain.ErrInvalidStatus:                          "invalid_status",
		domain.ErrDuplicateHistory:                       "duplicate",
		domain.ErrHistoryConflict:                        "conflict",
		domain.ErrShipmentNotFound:                       "not_found",
		errors.New("boom"):                               "internal",
	}
	for err, want := range cases {
		if got := historyErrorReason(err); got != want {
			t.Errorf("%v: expected %q, got %q", err, want, got)
		}
	}
}
