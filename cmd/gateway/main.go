package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rubentrancoso/energy-trade/internal/gateway"
)

func main() {
	_ = godotenv.Load()

	addr := os.Getenv("ENERGYTRADE_GATEWAY_ADDR")
	if addr == "" {
		addr = ":8090"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := gateway.NewGateway()
	if err := gw.Start(ctx, addr); err != nil {
		slog.Error("gateway exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("gateway shut down gracefully")
}
