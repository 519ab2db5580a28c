package app

import (
	"log/slog"
	"os"

	"github.com/rubentrancoso/energy-trade/internal/infra"
	"github.com/rubentrancoso/energy-trade/internal/infra/storage"
)

// Bootstrap orchestrates the order service startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration, wires logging and opens storage.
func (b *Bootstrap) Initialize() error {
	slog.Info("bootstrapping order service...")

	configPath := os.Getenv("ENERGYTRADE_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("database initialized", slog.String("path", cfg.Storage.Path))

	return nil
}
