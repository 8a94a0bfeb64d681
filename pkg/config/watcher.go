package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long a Watcher waits for changes to settle.
const DefaultWatchDebounce = 250 * time.Millisecond

// Watcher calls a reload function when the configuration file changes.
//
// The directory holding the file is watched rather than the file itself, so
// editors that save by renaming a temporary file are picked up too.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the configuration file at path. A
// debounce of 0 uses DefaultWatchDebounce.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		watcher:  watcher,
		debounce: NewDebouncer(debounce),
		logger:   slog.Default().With("component", "config.watcher"),
	}, nil
}

// Watch blocks until ctx is canceled, calling onReload after the file
// settles from a change. A failing onReload is logged and watching goes on.
func (w *Watcher) Watch(ctx context.Context, onReload func() error) error {
	defer w.debounce.Stop()
	defer w.watcher.Close()

	w.logger.Info("watching configuration file", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("configuration file event", "path", event.Name, "op", event.Op.String())

			w.debounce.Trigger(func() {
				if err := onReload(); err != nil {
					w.logger.Error("configuration reload failed, keeping previous configuration", "error", err)
					return
				}
				w.logger.Info("configuration reloaded", "path", w.path)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("configuration watcher error", "error", err)
		}
	}
}

// shouldProcessEvent reports whether event changes the watched file.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Debouncer collects rapid events and runs the last callback once a quiet
// period has passed.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
	}
}

// Trigger schedules callback after the debounce interval, replacing any
// callback still waiting.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		if d.stopped {
			cb = nil
		}
		d.mu.Unlock()

		if cb != nil {
			cb()
		}
	})
}

// Stop cancels any pending callback. Triggers after Stop are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
