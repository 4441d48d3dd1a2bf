package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/wayfarer/internal/api"
	"github.com/MikeSquared-Agency/wayfarer/internal/booking"
	"github.com/MikeSquared-Agency/wayfarer/internal/config"
	"github.com/MikeSquared-Agency/wayfarer/internal/hermes"
	"github.com/MikeSquared-Agency/wayfarer/internal/ids"
	"github.com/MikeSquared-Agency/wayfarer/internal/planner"
	"github.com/MikeSquared-Agency/wayfarer/internal/session"
	"github.com/MikeSquared-Agency/wayfarer/internal/slack"
	"github.com/MikeSquared-Agency/wayfarer/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("wayfarer starting", "port", cfg.Port, "store", cfg.StoreDriver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := ids.Init(cfg.NodeID); err != nil {
		slog.Error("failed to initialise id generator", "node_id", cfg.NodeID, "error", err)
		os.Exit(1)
	}

	// Storage
	db, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		Namespace:   cfg.Namespace,
	})
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("store ready", "driver", cfg.StoreDriver)

	// Planning backend
	plan := planner.NewClient(cfg.PlannerURL, cfg.PlannerTimeout)
	slog.Info("planner client ready", "url", plan.BaseURL())

	// NATS/Hermes (optional, wayfarer works without it, just no events)
	var (
		sessionEvents session.Publisher
		bookingEvents booking.Publisher
		hermesClient  *hermes.Client
	)
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer hermesClient.Close()
		sessionEvents = hermesClient
		bookingEvents = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured, running without events")
	}

	sessions := session.NewManager(db, plan, sessionEvents, session.Options{MaxWords: cfg.MaxQueryWords}, cfg.RecentLimit, slog.Default())
	bookings := booking.NewService(
		booking.SimulatedProvider{Delay: cfg.PaymentDelay},
		booking.TextRenderer{},
		db,
		bookingEvents,
		slog.Default(),
	)

	// Slack poster (optional)
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		bookings.SetNotifier(slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default()))
		slog.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectBookingRequested, bookings.HandleBookingRequested); err != nil {
			slog.Error("failed to subscribe to booking requests", "error", err)
			os.Exit(1)
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, api.Deps{
		Sessions:    sessions,
		Profiles:    db,
		Bookings:    bookings,
		StoreDriver: cfg.StoreDriver,
		PlannerURL:  plan.BaseURL(),
		Events:      hermesClient != nil,
		Logger:      slog.Default(),
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("wayfarer ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	cancel()
	slog.Info("wayfarer stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
