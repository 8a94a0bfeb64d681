// Package lock provides the advisory lock that keeps two retention runs from
// working on the same archive at once.
package lock

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the lock.
var ErrLocked = errors.New("archive is locked by another run")

// Lock is a held run lock.
type Lock struct {
	flock  *flock.Flock
	logger *slog.Logger
}

// Acquire takes the exclusive lock on path without waiting. It returns
// ErrLocked if the lock is held elsewhere. The lock file is created if
// needed and left in place on release.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock %q: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}

	logger := slog.Default().With("component", "lock")
	logger.Debug("acquired run lock", "path", path)
	return &Lock{flock: fl, logger: logger}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.flock.Path()
}

// Release unlocks. Releasing twice is harmless.
func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %q: %w", l.flock.Path(), err)
	}
	l.logger.Debug("released run lock", "path", l.flock.Path())
	return nil
}

// WithLock runs fn while holding the lock on path.
func WithLock(path string, fn func() error) error {
	l, err := Acquire(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			l.logger.Warn("failed to release run lock", "path", l.Path(), "error", err)
		}
	}()
	return fn()
}
