package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/metrics"
	"github.com/99minutos/shipment-tracker/internal/api/presenter"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// ShipmentHandler handles HTTP requests for shipment operations.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// List handles GET /api/shipments.
//
// @Summary      List shipments
// @Description  Admins see every shipment, users only their own.
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        search  query     string  false  "Tracking number, recipient or address"
// @Param        status  query     string  false  "PENDING, IN_TRANSIT, DELIVERED or CANCELLED"
// @Success      200     {object}  wire.Envelope[wire.Page[wire.Shipment]]
// @Failure      401     {object}  wire.Envelope[any]
// @Failure      422     {object}  wire.Envelope[any]
// @Router       /shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	filter, err := listFilter(c)
	if err != nil {
		return err
	}

	res, err := h.service.ListShipments(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wire.OK(presenter.Page(res, presenter.Shipment)))
}

// Get handles GET /api/shipments/:id.
//
// @Summary      Get a shipment with its history
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment id"
// @Success      200  {object}  wire.Envelope[wire.ShipmentWithHistory]
// @Failure      404  {object}  wire.Envelope[any]
// @Router       /shipments/{id} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	detail, err := h.service.GetShipment(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wire.OK(presenter.ShipmentWithHistory(detail)))
}

// Create handles POST /api/shipments.
//
// @Summary      Create a new shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      wire.CreateShipmentRequest  true  "Shipment details"
// @Success      201   {object}  wire.Envelope[wire.Shipment]
// @Failure      400   {object}  wire.Envelope[any]
// @Failure      422   {object}  wire.Envelope[any]
// @Router       /shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req wire.CreateShipmentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}

	s, err := h.service.CreateShipment(c.Request().Context(), ports.CreateShipmentInput{
		Actor:             actor,
		Weight:            req.Weight,
		Length:            req.Length,
		Width:             req.Width,
		Height:            req.Height,
		ProductType:       req.ProductType,
		RecipientName:     req.RecipientName,
		RecipientPhone:    req.RecipientPhone,
		Origin:            geoInput(req.OriginFormattedAddress, req.OriginPlaceID, req.OriginLatitude, req.OriginLongitude),
		Destination:       geoInput(req.DestinationFormattedAddr, req.DestinationPlaceID, req.DestinationLatitude, req.DestinationLongitude),
		StartAt:           req.StartDateTime,
		DeliveryAt:        req.DeliveryDateTime,
		DeliveryWindow:    req.WindowDeliveryTime,
		AdditionalDetails: req.AdditionalDetails,
		CarrierID:         req.CarrierID,
		RouteID:           req.RouteID,
	})
	if err != nil {
		return err
	}

	metrics.ShipmentsCreatedTotal.WithLabelValues(s.ProductType).Inc()
	return c.JSON(http.StatusCreated, wire.OK(presenter.Shipment(s)))
}

// Delete handles DELETE /api/shipments/:id.
//
// @Summary      Delete a shipment and its history
// @Tags         shipments
// @Security     BearerAuth
// @Param        id   path  string  true  "Shipment id"
// @Success      204
// @Failure      404  {object}  wire.Envelope[any]
// @Router       /shipments/{id} [delete]
func (h *ShipmentHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteShipment(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
