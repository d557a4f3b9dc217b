package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"wrapped not found", fmt.Errorf("get: %w", domain.ErrShipmentNotFound), http.StatusNotFound, "shipment not found"},
		{"carrier not found", domain.ErrCarrierNotFound, http.StatusNotFound, "carrier not found"},
		{"transition", fmt.Errorf("add history: %w", domain.ErrInvalidTransition), http.StatusUnprocessableEntity, "add history: invalid status transition"},
		{"duplicate history", domain.ErrDuplicateHistory, http.StatusConflict, "history event already recorded"},
		{"history conflict", fmt.Errorf("add history: %w", domain.ErrHistoryConflict), http.StatusConflict, "history changed concurrently, retry"},
		{"credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"mismatch", domain.ErrPasswordMismatch, http.StatusBadRequest, "passwords do not match"},
		{"maps", maps.ErrMissingAPIKey, http.StatusServiceUnavailable, "maps provider not configured"},
		{"unexpected", errors.New("mongo exploded"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Success || body.Error != tc.msg {
				t.Errorf("unexpected envelope %+v", body)
			}
		})
	}
}
