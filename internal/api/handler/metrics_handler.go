package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/presenter"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

// MetricsHandler serves the dashboard aggregates.
type MetricsHandler struct {
	service ports.MetricsService
}

func NewMetricsHandler(service ports.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// Dashboard handles GET /api/metrics. The payload is returned bare, without
// the success envelope, as the dashboard reads it directly.
//
// @Summary      Dashboard metrics for the last seven days
// @Tags         metrics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  wire.DashboardMetrics
// @Failure      500  {object}  wire.Envelope[any]
// @Router       /metrics [get]
func (h *MetricsHandler) Dashboard(c echo.Context) error {
	m, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, presenter.Metrics(m))
}
