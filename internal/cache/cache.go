package cache

import (
	"context"
	"log/slog"
	"time"
)

// Cache is the read/write surface shared by every cache implementation.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches holding expiring entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically drops expired entries from registered caches.
type Janitor struct {
	caches []Cleaner
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{caches: caches}
}

// Sweep cleans every cache once and returns the number of removed entries.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				slog.DebugContext(ctx, "Cache cleanup completed", "removed", n)
			}
		}
	}
}

var _ Cache[int] = (*LRUCache[int])(nil)
