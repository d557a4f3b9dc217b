package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/presenter"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// CarrierHandler serves the carrier catalogue. Writes are admin-only (see router).
type CarrierHandler struct {
	service ports.CarrierService
}

func NewCarrierHandler(service ports.CarrierService) *CarrierHandler {
	return &CarrierHandler{service: service}
}

// List handles GET /api/carriers.
//
// @Summary   List carriers
// @Tags      carriers
// @Produce   json
// @Security  BearerAuth
// @Param     page    query     int     false  "Page (1-based)"
// @Param     limit   query     int     false  "Page size"
// @Param     search  query     string  false  "Vehicle type or plate"
// @Success   200     {object}  wire.Envelope[wire.Page[wire.Carrier]]
// @Router    /carriers [get]
func (h *CarrierHandler) List(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wire.OK(presenter.Page(res, presenter.Carrier)))
}

// Create handles POST /api/carriers.
//
// @Summary   Create a carrier
// @Tags      carriers
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      wire.CarrierRequest  true  "Carrier"
// @Success   201   {object}  wire.Envelope[wire.Carrier]
// @Failure   403   {object}  wire.Envelope[any]
// @Failure   422   {object}  wire.Envelope[any]
// @Router    /carriers [post]
func (h *CarrierHandler) Create(c echo.Context) error {
	var req wire.CarrierRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if req.VehicleType == nil || req.VehiclePlateNumber == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "vehicle_type and vehicle_plate_number are required")
	}
	carrier, err := h.service.Create(c.Request().Context(), carrierInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, wire.OK(presenter.Carrier(carrier)))
}

// Update handles PATCH /api/carriers/:id.
//
// @Summary   Patch a carrier
// @Tags      carriers
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string               true  "Carrier id"
// @Param     body  body      wire.CarrierRequest  true  "Fields to change"
// @Success   200   {object}  wire.Envelope[wire.Carrier]
// @Failure   404   {object}  wire.Envelope[any]
// @Router    /carriers/{id} [patch]
func (h *CarrierHandler) Update(c echo.Context) error {
	var req wire.CarrierRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	carrier, err := h.service.Update(c.Request().Context(), c.Param("id"), carrierInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wire.OK(presenter.Carrier(carrier)))
}

// Delete handles DELETE /api/carriers/:id.
//
// @Summary   Delete a carrier
// @Tags      carriers
// @Security  BearerAuth
// @Param     id   path  string  true  "Carrier id"
// @Success   204
// @Failure   404  {object}  wire.Envelope[any]
// @Router    /carriers/{id} [delete]
func (h *CarrierHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func carrierInput(req wire.CarrierRequest) ports.CarrierInput {
	return ports.CarrierInput{
		UserID:             req.UserID,
		VehicleType:        req.VehicleType,
		VehicleCapacity:    req.VehicleCapacity,
		VehiclePlateNumber: req.VehiclePlateNumber,
		IsAvailable:        req.IsAvailable,
	}
}

// RouteHandler serves named routes. Writes are admin-only (see router).
type RouteHandler struct {
	service ports.RouteService
}

func NewRouteHandler(service ports.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// List handles GET /api/routes.
//
// @Summary   List routes
// @Tags      routes
// @Produce   json
// @Security  BearerAuth
// @Param     page    query     int     false  "Page (1-based)"
// @Param     limit   query     int     false  "Page size"
// @Param     search  query     string  false  "Route name"
// @Success   200     {object}  wire.Envelope[wire.Page[wire.Route]]
// @Router    /routes [get]
func (h *RouteHandler) List(c echo.Context) error {
	filter, err := listFilter(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wire.OK(presenter.Page(res, presenter.Route)))
}

// Create handles POST /api/routes.
//
// @Summary   Create a route
// @Tags      routes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      wire.RouteRequest  true  "Route"
// @Success   201   {object}  wire.Envelope[wire.Route]
// @Failure   422   {object}  wire.Envelope[any]
// @Router    /routes [post]
func (h *RouteHandler) Create(c echo.Context) error {
	var req wire.RouteRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	if req.Name == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "name is required")
	}
	route, err := h.service.Create(c.Request().Context(), routeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, wire.OK(presenter.Route(route)))
}

// Update handles PATCH /api/routes/:id.
//
// @Summary   Patch a route
// @Tags      routes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string             true  "Route id"
// @Param     body  body      wire.RouteRequest  true  "Fields to change"
// @Success   200   {object}  wire.Envelope[wire.Route]
// @Failure   404   {object}  wire.Envelope[any]
// @Router    /routes/{id} [patch]
func (h *RouteHandler) Update(c echo.Context) error {
	var req wire.RouteRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	route, err := h.service.Update(c.Request().Context(), c.Param("id"), routeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wire.OK(presenter.Route(route)))
}

// Delete handles DELETE /api/routes/:id.
//
// @Summary   Delete a route
// @Tags      routes
// @Security  BearerAuth
// @Param     id   path  string  true  "Route id"
// @Success   204
// @Failure   404  {object}  wire.Envelope[any]
// @Router    /routes/{id} [delete]
func (h *RouteHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func routeInput(req wire.RouteRequest) ports.RouteInput {
	in := ports.RouteInput{Name: req.Name, IsActive: req.IsActive}
	if req.OriginPlaceID != "" {
		g := geoInput(req.OriginFormattedAddress, req.OriginPlaceID, req.OriginLatitude, req.OriginLongitude)
		in.Origin = &g
	}
	if req.DestinationPlaceID != "" {
		g := geoInput(req.DestinationFormattedAddr, req.DestinationPlaceID, req.DestinationLatitude, req.DestinationLongitude)
		in.Destination = &g
	}
	return in
}
