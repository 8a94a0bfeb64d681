package sizecache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// BytesPerGB is the number of bytes in one GB.
const BytesPerGB = 1024 * 1024 * 1024

// Options configures a Cache.
type Options struct {
	// Include decides whether a file counts towards its folder's size.
	// nil counts every regular file.
	Include func(name string) bool

	// Exclude lists file names that never count, typically the sidecar
	// itself.
	Exclude []string

	// ReadOnly counts folders on a miss without saving the result, and
	// makes Invalidate and Forget leave the store alone.
	ReadOnly bool
}

// Stats are cumulative cache counters.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Recounts uint64
}

// Cache returns folder sizes, recounting only on a miss or on Invalidate.
// A Cache is safe for concurrent use if its Store is.
type Cache struct {
	store    Store
	include  func(string) bool
	exclude  map[string]bool
	readOnly bool
	logger   *slog.Logger

	hits     atomic.Uint64
	misses   atomic.Uint64
	recounts atomic.Uint64
}

// New creates a Cache on top of store.
func New(store Store, opts Options) *Cache {
	exclude := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		exclude[name] = true
	}
	return &Cache{
		store:    store,
		include:  opts.Include,
		exclude:  exclude,
		readOnly: opts.ReadOnly,
		logger:   slog.Default().With("component", "sizecache"),
	}
}

// GetOrCompute returns the cached size of folder, or counts it and caches
// the result if no valid value is stored. Read errors count as a miss.
func (c *Cache) GetOrCompute(folder string) float64 {
	gb, err := c.store.Load(folder)
	if err == nil {
		c.hits.Add(1)
		return gb
	}

	c.misses.Add(1)
	switch {
	case errors.Is(err, ErrNotCached):
	case errors.Is(err, ErrStale):
		c.logger.Debug("folder changed since its size was cached", "folder", folder)
	default:
		c.logger.Warn("ignoring unreadable cached size", "folder", folder, "error", err)
	}
	return c.recount(folder)
}

// Invalidate recounts folder, overwrites its cached size and returns the new
// value.
func (c *Cache) Invalidate(folder string) float64 {
	return c.recount(folder)
}

// Measure counts folder without touching the store, ignoring the files named
// in skip. It reports what Invalidate would return once those files are gone.
func (c *Cache) Measure(folder string, skip map[string]bool) float64 {
	bytes, err := c.count(folder, skip)
	if err != nil {
		c.logger.Debug("folder could not be fully measured", "folder", folder, "error", err)
	}
	return float64(bytes) / BytesPerGB
}

// Forget drops the cached size of folder, e.g. after the folder is removed.
func (c *Cache) Forget(folder string) {
	if c.readOnly {
		return
	}
	if err := c.store.Delete(folder); err != nil {
		c.logger.Warn("failed to drop cached size", "folder", folder, "error", err)
	}
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
		Recounts: c.recounts.Load(),
	}
}

func (c *Cache) recount(folder string) float64 {
	c.recounts.Add(1)

	bytes, err := c.count(folder, nil)
	gb := float64(bytes) / BytesPerGB
	if err != nil {
		// A vanished or unreadable folder is reported with what was counted
		// and never persisted.
		c.logger.Debug("folder could not be fully counted", "folder", folder, "error", err)
		return gb
	}
	if c.readOnly {
		return gb
	}

	if err := c.store.Save(folder, gb); err != nil {
		c.logger.Warn("failed to persist folder size", "folder", folder, "size_gb", gb, "error", err)
	}
	return gb
}

// count sums the sizes of the direct child files of folder that count
// towards its size.
func (c *Cache) count(folder string, skip map[string]bool) (int64, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return 0, fmt.Errorf("failed to list folder: %w", err)
	}

	var total int64
	var firstErr error
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || c.exclude[name] || skip[name] {
			continue
		}
		if c.include != nil && !c.include(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat.
			if firstErr == nil && !errors.Is(err, os.ErrNotExist) {
				firstErr = fmt.Errorf("failed to stat %s: %w", filepath.Join(folder, name), err)
			}
			continue
		}
		total += info.Size()
	}
	return total, firstErr
}
