package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/tomb.v2"

	"github.com/rubentrancoso/energy-trade/internal/api"
	"github.com/rubentrancoso/energy-trade/internal/app"
	"github.com/rubentrancoso/energy-trade/internal/engine"
	"github.com/rubentrancoso/energy-trade/internal/infra"
	"github.com/rubentrancoso/energy-trade/internal/service"
)

func main() {
	// Optional .env for local development; environment wins over YAML.
	_ = godotenv.Load()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config
	store := bootstrap.Storage

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Collaborator clients: pricing fails fast, audit falls back locally,
	// notifications are best effort.
	pricing := infra.NewPricingClient(cfg.Pricing.URL, time.Duration(cfg.Pricing.TimeoutSec)*time.Second)
	audit := infra.NewAuditClient(cfg.Audit.URL, time.Duration(cfg.Audit.TimeoutSec)*time.Second)
	notify := infra.NewNotificationClient(cfg.Notification.URL, time.Duration(cfg.Notification.TimeoutSec)*time.Second)

	publisher := service.NewReliablePublisher(audit, notify, store)
	matcher := engine.NewMatchingEngine(store, publisher)
	orders := service.NewOrderService(store, pricing, matcher, publisher)

	server := api.NewServer(orders)
	publisher.SetBroadcast(server.Hub().Broadcast)

	sweeper := service.NewSweeper(store, publisher, orders.Lock(), cfg.Cleanup.Enabled, cfg.CleanupInterval())
	retrier := service.NewAuditRetrier(store, audit, time.Duration(cfg.Audit.RetryIntervalSec)*time.Second)

	// Background loops and the HTTP server share one tomb: the first
	// fatal error (or the shutdown signal) brings everything down together.
	t, tctx := tomb.WithContext(ctx)
	t.Go(func() error { return sweeper.Run(tctx) })
	t.Go(func() error { return retrier.Run(tctx) })
	t.Go(func() error { return server.Start(tctx, cfg.Server.Addr) })

	slog.Info("order service fully operational",
		slog.String("addr", cfg.Server.Addr),
		slog.Bool("sweeper_enabled", cfg.Cleanup.Enabled),
	)

	if err := t.Wait(); err != nil {
		slog.Error("order service exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("shutting down gracefully...")
}
