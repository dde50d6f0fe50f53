// Package cli provides common initialization shared by cmd/spendscan,
// cmd/spendscan-worker and cmd/spendctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendscan/internal/cache"
	"spendscan/internal/config"
	"spendscan/internal/core"
	"spendscan/internal/log"
	"spendscan/internal/ports"
	"spendscan/internal/storage"
	"spendscan/internal/storage/memory"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default. An unknown level falls back to info.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: component,
		Output:    os.Stdout,
	})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads .env and the environment, sets up logging and
// runs validate. Exits the process on validation failure.
func LoadAndValidateConfig(component string, validate func(*config.Config) error) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg, component)

	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenStore opens the configured backend. The sqlite repository applies
// migrations on open.
func OpenStore(logger *log.Logger, cfg *config.Config) (ports.Store, error) {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Using in-memory store", "backend", cfg.DataBackend)
		return memory.New(), nil
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository at %s: %w", cfg.SQLiteDBPath, err)
		}
		logger.Info("Using SQLite store", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

// NewParseCache sizes the receipt parse cache from the configuration.
func NewParseCache(cfg *config.Config) *cache.LRUCache[core.ExpenseDraft] {
	return cache.NewLRUCache[core.ExpenseDraft](cfg.ParseCacheSize, cfg.ParseCacheTTL)
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context cancelled on SIGINT or SIGTERM, and a channel closed
// once cleanup has run or the timeout expired.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
