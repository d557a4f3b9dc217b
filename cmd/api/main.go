// @title                      Shipment Tracker API
// @version                    1.0
// @description                Shipments, history trails, carriers, routes and dashboard metrics with realtime push.
// @BasePath                   /api
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/sync/errgroup"

	_ "github.com/99minutos/shipment-tracker/docs"
	"github.com/99minutos/shipment-tracker/internal/api"
	"github.com/99minutos/shipment-tracker/internal/api/handler"
	"github.com/99minutos/shipment-tracker/internal/api/realtime"
	"github.com/99minutos/shipment-tracker/internal/core/ports"
	"github.com/99minutos/shipment-tracker/internal/core/service"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/db/mongo"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/db/redis"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/queue"
	"github.com/99minutos/shipment-tracker/internal/pkg/config"
	"github.com/99minutos/shipment-tracker/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, envconfig.OsLookuper())
	if err != nil {
		bootLog := logger.New(logger.Options{Output: os.Stderr})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "shipment-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{
		URL:      cfg.Redis.URL,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	users := mongo.NewUserRepository(db)
	shipments := mongo.NewShipmentRepository(db)
	history := mongo.NewHistoryRepository(db)
	carriers := mongo.NewCarrierRepository(db)
	routes := mongo.NewRouteRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users":     users.EnsureIndexes,
		"shipments": shipments.EnsureIndexes,
		"history":   history.EnsureIndexes,
		"carriers":  carriers.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return err
		}
		log.Debug().Str("collection", name).Msg("indexes ensured")
	}

	places := newPlaces(cfg.GoogleMapsAPIKey, log)

	bus := redis.NewPushBus(rdb, logger.Component("push-bus"))
	dispatcher := queue.NewDispatcher(cfg.PushWorkers, bus, logger.Component("push-queue"))
	cache := redis.NewMetricsCache(rdb)
	hub := realtime.NewHub(cfg.AllowedOrigins, logger.Component("hub"))

	e := api.NewRouter(api.Deps{
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
		Auth:           service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL),
		Shipments:      service.NewShipmentService(shipments, history, places, dispatcher, cache, logger.Component("shipments")),
		History:        service.NewHistoryService(shipments, history, redis.NewDedupChecker(rdb), dispatcher, cache, logger.Component("history")),
		Carriers:       service.NewCarrierService(carriers, logger.Component("carriers")),
		Routes:         service.NewRouteService(routes, places, logger.Component("routes")),
		Metrics:        service.NewMetricsService(shipments, carriers, cache, cfg.MetricsCacheTTL, logger.Component("metrics")),
		Places:         places,
		Hub:            hub,
		Checks: map[string]handler.Check{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	g, ctx := errgroup.WithContext(ctx)
	dispatcher.Start(ctx)

	g.Go(func() error {
		return bus.Run(ctx, hub.Deliver)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		hub.Close()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// placesProvider is the geocoding, directions and autocomplete backend.
type placesProvider interface {
	ports.Geocoder
	handler.Places
}

func newPlaces(apiKey string, log zerolog.Logger) placesProvider {
	g, err := maps.New(apiKey)
	if err != nil {
		log.Warn().Err(err).Msg("maps provider disabled, clients must submit coordinates")
		return maps.Unavailable{}
	}
	return g
}
