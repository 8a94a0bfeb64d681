// Package remover deletes footage files and day folders.
//
// Removal never returns an error: a failure is logged and reported as false
// so a run can carry on with the next candidate. A path that is already gone
// is treated as a lost race with another process and also reported as false.
package remover

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Reason tags a removal in logs, summaries and metrics.
type Reason string

const (
	// ReasonNoTarget marks a historical file without target objects.
	ReasonNoTarget Reason = "PHASE2_NO_TARGET"

	// ReasonOverLimit marks a folder past the historical budget.
	ReasonOverLimit Reason = "PHASE3_OVER_LIMIT"

	// ReasonSweepTombstone marks a tombstone left by an interrupted removal.
	ReasonSweepTombstone Reason = "SWEEP_TOMBSTONE"
)

// TombstoneSuffix is appended to a day folder while it is being removed.
// "05.evicting" no longer looks like a day, so a half-removed folder is never
// mistaken for footage.
const TombstoneSuffix = ".evicting"

// Remover performs or simulates deletions.
type Remover struct {
	dryRun bool
	logger *slog.Logger

	// Filesystem operations, replaceable in tests.
	remove    func(string) error
	removeAll func(string) error
	rename    func(string, string) error
}

// New creates a Remover. With dryRun set nothing is deleted but every
// decision is logged and reported as successful.
func New(dryRun bool) *Remover {
	return &Remover{
		dryRun:    dryRun,
		logger:    slog.Default().With("component", "remover"),
		remove:    os.Remove,
		removeAll: os.RemoveAll,
		rename:    os.Rename,
	}
}

// DryRun reports whether deletions are simulated.
func (r *Remover) DryRun() bool {
	return r.dryRun
}

// RemoveFile deletes the file at path. It returns true if the file was
// deleted, or would have been in dry-run mode.
func (r *Remover) RemoveFile(path string, reason Reason) bool {
	if !r.exists(path) {
		return false
	}

	if !r.dryRun {
		if err := r.remove(path); err != nil {
			r.logger.Error("failed to remove file", "path", path, "reason", reason, "error", err)
			return false
		}
	}

	r.logger.Info("removed file", "path", path, "reason", reason, "dry_run", r.dryRun)
	return true
}

// RemoveFolder deletes the folder at path with everything in it. It returns
// true if the folder was deleted, or would have been in dry-run mode.
//
// The folder is first renamed to its tombstone, so it disappears from the
// archive at once even if deleting its contents fails halfway.
func (r *Remover) RemoveFolder(path string, reason Reason) bool {
	if !r.exists(path) {
		return false
	}

	if !r.dryRun {
		tombstone := TombstonePath(path)

		// Leftover from an earlier interrupted removal of the same day.
		if err := r.removeAll(tombstone); err != nil {
			r.logger.Error("failed to clear stale tombstone", "path", tombstone, "error", err)
			return false
		}
		if err := r.rename(path, tombstone); err != nil {
			r.logger.Error("failed to remove folder", "path", path, "reason", reason, "error", err)
			return false
		}
		if err := r.removeAll(tombstone); err != nil {
			r.logger.Error("failed to remove folder contents",
				"path", path,
				"tombstone", tombstone,
				"reason", reason,
				"error", err,
			)
			return false
		}
	}

	r.logger.Info("removed folder", "path", path, "reason", reason, "dry_run", r.dryRun)
	return true
}

// SweepTombstones removes the tombstone folders holding any of paths and
// returns the tombstones removed.
func (r *Remover) SweepTombstones(paths []string) []string {
	seen := make(map[string]bool)
	var swept []string

	for _, p := range paths {
		dir := filepath.Dir(p)
		if seen[dir] || !IsTombstone(dir) {
			continue
		}
		seen[dir] = true

		if !r.exists(dir) {
			continue
		}
		if !r.dryRun {
			if err := r.removeAll(dir); err != nil {
				r.logger.Error("failed to sweep tombstone", "path", dir, "error", err)
				continue
			}
		}
		r.logger.Info("removed folder", "path", dir, "reason", ReasonSweepTombstone, "dry_run", r.dryRun)
		swept = append(swept, dir)
	}

	return swept
}

func (r *Remover) exists(path string) bool {
	_, err := os.Lstat(path)
	if err == nil {
		return true
	}
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("path already gone", "path", path)
	} else {
		r.logger.Error("failed to stat path", "path", path, "error", err)
	}
	return false
}

// TombstonePath returns the name folder takes while it is being removed.
func TombstonePath(folder string) string {
	return filepath.Clean(folder) + TombstoneSuffix
}

// IsTombstone reports whether dir is a tombstone.
func IsTombstone(dir string) bool {
	return strings.HasSuffix(filepath.Base(dir), TombstoneSuffix)
}
