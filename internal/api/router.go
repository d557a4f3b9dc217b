package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/99minutos/shipment-tracker/internal/api/handler"
	"github.com/99minutos/shipment-tracker/internal/api/middleware"
	"github.com/99minutos/shipment-tracker/internal/core/domain"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         zerolog.Logger

	Auth      ports.AuthService
	Shipments ports.ShipmentService
	History   ports.HistoryService
	Carriers  ports.CarrierService
	Routes    ports.RouteService
	Metrics   ports.MetricsService
	Places    handler.Places
	Hub       handler.SocketServer
	Checks    map[string]handler.Check
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins(d.AllowedOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization, "Idempotency-Key"},
	}))
	e.Use(echoprometheus.NewMiddleware("shipping"))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.Auth(d.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Realtime ---
	e.GET("/ws", handler.NewRealtimeHandler(d.Hub).Connect, auth)

	api := e.Group("/api")

	users := handler.NewAuthHandler(d.Auth)
	api.POST("/users/register", users.Register)
	api.POST("/users/login", users.Login)

	secured := api.Group("", auth)

	shipments := handler.NewShipmentHandler(d.Shipments)
	history := handler.NewHistoryHandler(d.History)
	secured.GET("/shipments", shipments.List)
	secured.POST("/shipments", shipments.Create)
	secured.GET("/shipments/:id", shipments.Get)
	secured.DELETE("/shipments/:id", shipments.Delete)
	secured.POST("/shipments/:id/history", history.Add)

	carriers := handler.NewCarrierHandler(d.Carriers)
	secured.GET("/carriers", carriers.List)
	secured.POST("/carriers", carriers.Create, adminOnly)
	secured.PATCH("/carriers/:id", carriers.Update, adminOnly)
	secured.DELETE("/carriers/:id", carriers.Delete, adminOnly)

	routes := handler.NewRouteHandler(d.Routes)
	secured.GET("/routes", routes.List)
	secured.POST("/routes", routes.Create, adminOnly)
	secured.PATCH("/routes/:id", routes.Update, adminOnly)
	secured.DELETE("/routes/:id", routes.Delete, adminOnly)

	secured.GET("/metrics", handler.NewMetricsHandler(d.Metrics).Dashboard)

	places := handler.NewPlacesHandler(d.Places)
	secured.GET("/places/autocomplete", places.Autocomplete)
	secured.GET("/directions", places.Directions)

	return e
}

func origins(allowed []string) []string {
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
