package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// Places is the server-side mapping provider. The API key never leaves the server.
type Places interface {
	Autocomplete(ctx context.Context, input string) ([]maps.Suggestion, error)
	Route(ctx context.Context, origin, dest domain.Coordinates, mode string) ([]domain.Coordinates, error)
}

type PlacesHandler struct {
	places Places
}

func NewPlacesHandler(places Places) *PlacesHandler {
	return &PlacesHandler{places: places}
}

// Autocomplete handles GET /api/places/autocomplete.
//
// @Summary   Address suggestions for the address widget
// @Tags      places
// @Produce   json
// @Security  BearerAuth
// @Param     input  query     string  true  "Partial address"
// @Success   200    {object}  wire.Envelope[[]wire.PlaceSuggestion]
// @Failure   503    {object}  wire.Envelope[any]
// @Router    /places/autocomplete [get]
func (h *PlacesHandler) Autocomplete(c echo.Context) error {
	input := strings.TrimSpace(c.QueryParam("input"))
	if input == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "input is required")
	}
	found, err := h.places.Autocomplete(c.Request().Context(), input)
	if err != nil {
		return err
	}
	out := make([]wire.PlaceSuggestion, 0, len(found))
	for _, s := range found {
		out = append(out, wire.PlaceSuggestion{Description: s.Description, PlaceID: s.PlaceID})
	}
	return c.JSON(http.StatusOK, wire.OK(out))
}

// Directions handles GET /api/directions.
//
// @Summary   Driving path between two points
// @Tags      places
// @Produce   json
// @Security  BearerAuth
// @Param     origin       query     string  true   "lat,lng"
// @Param     destination  query     string  true   "lat,lng"
// @Param     mode         query     string  false  "driving (default)"
// @Success   200          {object}  wire.Envelope[wire.Directions]
// @Failure   400          {object}  wire.Envelope[any]
// @Router    /directions [get]
func (h *PlacesHandler) Directions(c echo.Context) error {
	origin, err := parseLatLng(c.QueryParam("origin"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "origin must be lat,lng")
	}
	dest, err := parseLatLng(c.QueryParam("destination"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "destination must be lat,lng")
	}
	mode := c.QueryParam("mode")
	if mode == "" {
		mode = maps.ModeDriving
	}

	path, err := h.places.Route(c.Request().Context(), origin, dest, mode)
	if err != nil {
		return err
	}
	out := wire.Directions{Mode: mode, Path: make([]wire.LatLng, 0, len(path))}
	for _, p := range path {
		out.Path = append(out.Path, wire.LatLng{Lat: p.Lat, Lng: p.Lng})
	}
	return c.JSON(http.StatusOK, wire.OK(out))
}

func parseLatLng(s string) (domain.Coordinates, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, strconv.ErrSyntax
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	ln, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	return domain.Coordinates{Lat: la, Lng: ln}, nil
}
