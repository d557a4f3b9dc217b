package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/metrics"
	"github.com/99minutos/shipment-tracker/internal/api/presenter"
	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// HistoryHandler appends events to a shipment trail.
type HistoryHandler struct {
	service ports.HistoryService
}

func NewHistoryHandler(service ports.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// Add handles POST /api/shipments/:id/history.
//
// @Summary      Append a status/location event
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string                  true   "Shipment id"
// @Param        Idempotency-Key  header    string                  false  "Rejects replays of the same submission"
// @Param        body             body      wire.AddHistoryRequest  true   "History event"
// @Success      201              {object}  wire.Envelope[wire.History]
// @Failure      404              {object}  wire.Envelope[any]
// @Failure      409              {object}  wire.Envelope[any]
// @Failure      422              {object}  wire.Envelope[any]
// @Router       /shipments/{id}/history [post]
func (h *HistoryHandler) Add(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req wire.AddHistoryRequest
	if err := bindValid(c, &req); err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues("invalid_payload").Inc()
		return err
	}

	event, err := h.service.AddHistory(c.Request().Context(), ports.AddHistoryInput{
		Actor:            actor,
		ShipmentID:       c.Param("id"),
		Status:           req.Status,
		Notes:            req.Notes,
		Latitude:         req.LocationLatitude,
		Longitude:        req.LocationLongitude,
		PlaceID:          req.LocationPlaceID,
		FormattedAddress: req.LocationFormattedAddress,
		IdempotencyKey:   c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		metrics.HistoryErrorsTotal.WithLabelValues(historyErrorReason(err)).Inc()
		return err
	}

	metrics.HistoryAppendedTotal.WithLabelValues(string(event.Status)).Inc()
	return c.JSON(http.StatusCreated, wire.OK(presenter.History(event)))
}

func historyErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, domain.ErrDuplicateHistory):
		return "duplicate"
	case errors.Is(err, domain.ErrHistoryConflict):
		return "conflict"
	case errors.Is(err, domain.ErrShipmentNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
