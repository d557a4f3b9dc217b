package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RBAC admits requests whose authenticated role is one of roles. It must run
// after Auth: a request without a role is treated as unauthenticated.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(string)
			switch {
			case role == "":
				return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
			case !slices.Contains(roles, role):
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
