package health

import (
	"context"
	"fmt"
	"os"
	"time"
)

// DirectoryCheck fails unless path is a readable directory.
func DirectoryCheck(path string) CheckFunc {
	return func(ctx context.Context) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		return nil
	}
}

// RunTracker reports the outcome of the most recent run.
type RunTracker interface {
	// LastRun returns when the last run finished and its status. The zero
	// time means no run has finished yet.
	LastRun() (finished time.Time, status string)
}

// LastRunCheck fails if the last run failed, or if no run completed within
// maxAge. Before the first run the check passes.
func LastRunCheck(tracker RunTracker, maxAge time.Duration) CheckFunc {
	started := time.Now()
	return func(ctx context.Context) error {
		finished, status := tracker.LastRun()
		if finished.IsZero() {
			if maxAge > 0 && time.Since(started) > maxAge {
				return fmt.Errorf("no run finished in %s", maxAge)
			}
			return nil
		}
		if status == "failed" {
			return fmt.Errorf("last run at %s failed", finished.Format(time.RFC3339))
		}
		if maxAge > 0 && time.Since(finished) > maxAge {
			return fmt.Errorf("last run finished %s ago", time.Since(finished).Round(time.Second))
		}
		return nil
	}
}
