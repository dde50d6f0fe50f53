package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"spendscan/internal/config"
	"spendscan/internal/core"
	"spendscan/internal/log"
	"spendscan/internal/storage"
	"spendscan/internal/storage/memory"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func TestOpenStoreMemory(t *testing.T) {
	store, err := OpenStore(quietLogger(), &config.Config{DataBackend: "memory"})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Errorf("OpenStore() = %T, want *memory.Store", store)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "spendscan.db")
	store, err := OpenStore(quietLogger(), &config.Config{DataBackend: "sqlite", SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	repo, ok := store.(*storage.SQLiteRepository)
	if !ok {
		t.Fatalf("OpenStore() = %T, want *storage.SQLiteRepository", store)
	}
	defer repo.Close()

	if err := repo.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	if _, err := OpenStore(quietLogger(), &config.Config{DataBackend: "csv"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewParseCache(t *testing.T) {
	c := NewParseCache(&config.Config{ParseCacheSize: 2, ParseCacheTTL: time.Minute})
	c.Set("a", core.ExpenseDraft{StoreName: "A"})
	c.Set("b", core.ExpenseDraft{StoreName: "B"})
	c.Set("c", core.ExpenseDraft{StoreName: "C"})

	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestSetupLoggerFallsBackToInfo(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "loud", LogFormat: "json"}, log.ComponentWorker)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled for unknown level")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled")
	}
	if logger.Component() != log.ComponentWorker {
		t.Errorf("Component() = %q", logger.Component())
	}
}
