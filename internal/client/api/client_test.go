package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99minutos/shipment-tracker/pkg/wire"
)

func newServer(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", WithToken("tkn")), srv
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LoginStoresToken(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req wire.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "alice@example.com" {
			t.Errorf("unexpected body %+v", req)
		}
		writeJSON(w, http.StatusOK, wire.OK(wire.Session{Token: "fresh", User: wire.User{ID: "u1"}}))
	})

	s, err := c.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.User.ID != "u1" || c.Token() != "fresh" {
		t.Errorf("unexpected session %+v token %q", s, c.Token())
	}
}

func TestClient_GetShipmentWithHistory(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tkn" {
			t.Errorf("unexpected authorization %q", got)
		}
		if r.URL.Path != "/api/shipments/shp-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, wire.OK(wire.ShipmentWithHistory{
			Shipment: wire.Shipment{ID: "shp-1"},
			History:  []wire.History{{ID: "h1", LocationLatitude: "19.4"}, {ID: "h2"}},
		}))
	})

	d, err := c.GetShipmentWithHistory(context.Background(), "shp-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Shipment.ID != "shp-1" || len(d.History) != 2 || d.History[0].LocationLatitude != "19.4" {
		t.Errorf("unexpected payload %+v", d)
	}
}

func TestClient_ErrorEnvelope(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, wire.Envelope[any]{Error: "shipment not found"})
	})

	_, err := c.GetShipmentWithHistory(context.Background(), "missing")
	if !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 error, got %v", err)
	}
	if err.Error() != "api: 404 shipment not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestClient_ErrorWithoutEnvelope(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.DeleteShipment(context.Background(), "shp-1")
	if !IsStatus(err, http.StatusBadGateway) {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestClient_AddHistorySendsIdempotencyKey(t *testing.T) {
	keys := map[string]bool{}
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		keys[r.Header.Get("Idempotency-Key")] = true
		var req wire.AddHistoryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusCreated, wire.OK(wire.History{ID: "h9", Status: req.Status}))
	})

	for i := 0; i < 2; i++ {
		h, err := c.AddHistory(context.Background(), "shp-1", wire.AddHistoryRequest{Status: "IN_TRANSIT"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if h.Status != "IN_TRANSIT" {
			t.Errorf("unexpected history %+v", h)
		}
	}
	if len(keys) != 2 || keys[""] {
		t.Errorf("expected two distinct keys, got %v", keys)
	}
}

func TestClient_MetricsIsBare(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, wire.DashboardMetrics{TopCarriers: []wire.TopCarrier{{CarrierID: "c1", SuccessRate: 87.5}}})
	})

	m, err := c.Metrics(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.TopCarriers) != 1 || m.TopCarriers[0].SuccessRate != 87.5 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestClient_DirectionsAndListQuery(t *testing.T) {
	c, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/directions":
			q := r.URL.Query()
			if q.Get("origin") != "19.43,-99.13" || q.Get("destination") != "19.04,-98.2" || q.Get("mode") != "driving" {
				t.Errorf("unexpected query %v", q)
			}
			writeJSON(w, http.StatusOK, wire.OK(wire.Directions{Path: []wire.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}}))
		case "/api/shipments":
			if r.URL.RawQuery != "limit=5&page=2&status=PENDING" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			writeJSON(w, http.StatusOK, wire.OK(wire.Page[wire.Shipment]{Total: 0, Page: 2, Limit: 5}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	path, err := c.Directions(context.Background(), wire.LatLng{Lat: 19.43, Lng: -99.13}, wire.LatLng{Lat: 19.04, Lng: -98.2}, "driving")
	if err != nil || len(path) != 2 || path[1].Lat != 3 {
		t.Fatalf("unexpected directions %v %v", path, err)
	}

	p, err := c.ListShipments(context.Background(), wire.ListQuery{Page: 2, Limit: 5, Status: "PENDING"})
	if err != nil || p.Page != 2 {
		t.Fatalf("unexpected page %+v %v", p, err)
	}
}
