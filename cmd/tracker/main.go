// Command tracker is the terminal client: it keeps the realtime channel open,
// shows notifications, renders the dashboard and follows one shipment.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/99minutos/shipment-tracker/internal/client/api"
	"github.com/99minutos/shipment-tracker/internal/client/console"
	"github.com/99minutos/shipment-tracker/internal/client/dashboard"
	"github.com/99minutos/shipment-tracker/internal/client/notify"
	"github.com/99minutos/shipment-tracker/internal/client/realtime"
	"github.com/99minutos/shipment-tracker/internal/client/tracking"
	"github.com/99minutos/shipment-tracker/internal/infrastructure/maps"
	"github.com/99minutos/shipment-tracker/internal/pkg/config"
	"github.com/99minutos/shipment-tracker/pkg/logger"
	"github.com/99minutos/shipment-tracker/pkg/wire"
)

type options struct {
	email     string
	password  string
	dashboard bool
	shipment  string
	watch     bool

	status  string
	notes   string
	lat     string
	lng     string
	placeID string
	address string
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.email, "email", "", "log in with this email instead of TOKEN/USER_ID")
	flag.StringVar(&o.password, "password", "", "password for -email")
	flag.BoolVar(&o.dashboard, "dashboard", false, "print the metrics dashboard")
	flag.StringVar(&o.shipment, "shipment", "", "shipment id to track")
	flag.BoolVar(&o.watch, "watch", true, "stay connected and follow pushes until interrupted")
	flag.StringVar(&o.status, "status", "", "append a history event with this status to -shipment")
	flag.StringVar(&o.notes, "notes", "", "notes for the new history event")
	flag.StringVar(&o.lat, "lat", "", "latitude of the new history event")
	flag.StringVar(&o.lng, "lng", "", "longitude of the new history event")
	flag.StringVar(&o.placeID, "place-id", "", "place id of the new history event")
	flag.StringVar(&o.address, "address", "", "formatted address of the new history event")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadClient(ctx, envconfig.OsLookuper())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  true,
		Output:  os.Stderr,
		Service: "tracker",
	})

	if err := run(ctx, cfg, opts, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("tracker failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.ClientConfig, opts options, log zerolog.Logger) error {
	client := api.New(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout), api.WithToken(cfg.Token))

	userID := cfg.UserID
	if opts.email != "" {
		sess, err := client.Login(ctx, opts.email, opts.password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		userID = sess.User.ID
		log.Info().Str("user_id", userID).Str("role", sess.User.Role).Msg("logged in")
	}

	toaster := console.NewToaster(os.Stdout)

	channel := realtime.New(cfg.WSURL, toaster, logger.Component("realtime"))
	defer channel.Close()

	notifier := notify.New(channel, toaster, logger.Component("notify"))
	notifier.Attach()
	defer notifier.Detach()

	// A failed connection is reported as a toast; the rest keeps working.
	_ = channel.SetCredentials(ctx, client.Token(), userID)

	if opts.dashboard {
		loader := dashboard.NewLoader(client, cfg.DashboardFallback, logger.Component("dashboard"))
		m, src, err := loader.Load(ctx)
		if err != nil {
			toaster.Error("Could not load metrics")
			log.Error().Err(err).Msg("dashboard")
		} else {
			console.PrintDashboard(os.Stdout, m, src)
		}
	}

	if opts.shipment != "" {
		view := tracking.NewView(tracking.Deps{
			Fetcher:    client,
			Writer:     client,
			Directions: directionsFor(cfg, client, log),
			Renderer:   console.NewRenderer(os.Stdout),
			Source:     channel,
			Logger:     logger.Component("tracking"),
		})
		defer view.Close()

		if err := view.Open(ctx, opts.shipment); err != nil {
			return fmt.Errorf("open shipment %s: %w", opts.shipment, err)
		}

		if opts.status != "" {
			_, err := view.SubmitHistory(ctx, wire.AddHistoryRequest{
				Status:                   opts.status,
				Notes:                    opts.notes,
				LocationLatitude:         opts.lat,
				LocationLongitude:        opts.lng,
				LocationPlaceID:          opts.placeID,
				LocationFormattedAddress: opts.address,
			})
			if err != nil {
				toaster.Error("Could not add history event")
			} else {
				toaster.Success("History event added")
			}
		}
	}

	if !opts.watch {
		return nil
	}
	<-ctx.Done()
	return nil
}

func directionsFor(cfg *config.ClientConfig, client *api.Client, log zerolog.Logger) tracking.DirectionsProvider {
	if cfg.MapsAPIKey == "" {
		return &tracking.APIDirections{Client: client}
	}
	g, err := maps.New(cfg.MapsAPIKey)
	if err != nil {
		log.Warn().Err(err).Msg("maps client unavailable, routing through the API")
		return &tracking.APIDirections{Client: client}
	}
	return tracking.SDKDirections{Router: g}
}
