package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/shipment-tracker/internal/api/middleware"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

// ctxActor extracts the identity injected by the Auth middleware and fails
// fast before any service call when it is missing.
func ctxActor(c echo.Context) (ports.Actor, error) {
	userID, _ := c.Get(middleware.KeyUserID).(string)
	role, _ := c.Get(middleware.KeyRole).(string)
	if userID == "" || role == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{UserID: userID, Role: role}, nil
}

// bindValid binds the request into req and runs the registered validator.
// Malformed bodies are 400, rule violations 422.
func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

func listFilter(c echo.Context) (ports.ListFilter, error) {
	var q wire.ListQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return ports.ListFilter{}, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return ports.ListFilter{
		Status: strings.TrimSpace(q.Status),
		Search: strings.TrimSpace(q.Search),
		Page:   q.Page,
		Limit:  q.Limit,
	}, nil
}

func geoInput(address, placeID string, lat, lng *float64) ports.GeoInput {
	return ports.GeoInput{FormattedAddress: address, PlaceID: placeID, Lat: lat, Lng: lng}
}
