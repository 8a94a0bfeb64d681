package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"camkeep-hq/camkeep/pkg/archive"
	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/detection"
	"camkeep-hq/camkeep/pkg/history"
	"camkeep-hq/camkeep/pkg/lock"
	"camkeep-hq/camkeep/pkg/sizecache"
	"camkeep-hq/camkeep/pkg/telemetry/logging"
	"camkeep-hq/camkeep/pkg/telemetry/metrics"
	"camkeep-hq/camkeep/pkg/telemetry/tracing"

	"github.com/google/uuid"
)

// RunnerOptions holds the optional collaborators of a Runner. Any of them
// may be nil.
type RunnerOptions struct {
	Metrics  *metrics.Collector
	History  history.Store
	Tracer   *tracing.Tracer
	Progress ProgressFunc

	// Preview leaves the size sidecars alone: sizes are counted on a miss
	// but not saved. Combine with a dry-run budget to keep the archive
	// unchanged.
	Preview bool
}

// Runner performs complete runs: it lists the archive, holds the run lock,
// runs the Engine and records the outcome.
type Runner struct {
	source func() *config.Config
	opts   RunnerOptions
	logger *slog.Logger

	mu           sync.Mutex
	lastFinished time.Time
	lastStatus   string
}

// NewRunner creates a Runner. source is called at the start of every run so
// configuration reloads take effect on the next run.
func NewRunner(source func() *config.Config, opts RunnerOptions) *Runner {
	return &Runner{
		source: source,
		opts:   opts,
		logger: slog.Default().With("component", "runner"),
	}
}

// Run performs one run. It returns an error wrapping lock.ErrLocked if
// another run holds the archive, and an error if the archive cannot be
// listed. The summary is nil whenever the error is not.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	cfg := r.source()
	budget := BudgetFromConfig(&cfg.Retention)

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	started := time.Now()

	summary, err := r.run(ctx, cfg, budget)

	status := history.StatusCompleted
	switch {
	case errors.Is(err, lock.ErrLocked):
		status = history.StatusSkipped
		r.logger.WarnContext(ctx, "run skipped, archive is locked", "error", err)
	case err != nil:
		status = history.StatusFailed
		r.logger.ErrorContext(ctx, "run failed", "error", err)
	}

	finished := time.Now()
	if summary != nil {
		summary.RunID = runID
		finished = summary.FinishedAt
	}

	r.record(ctx, buildRecord(runID, started, finished, budget.DryRun, status, err, summary))
	r.observe(budget.DryRun, status, started, finished, summary)

	r.mu.Lock()
	r.lastFinished = finished
	r.lastStatus = status
	r.mu.Unlock()

	return summary, err
}

func (r *Runner) run(ctx context.Context, cfg *config.Config, budget Budget) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var summary *Summary
	err := lock.WithLock(cfg.Lock.Path, func() error {
		var err error
		summary, err = r.locked(ctx, cfg, budget)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// locked runs the engine. The caller holds the run lock.
func (r *Runner) locked(ctx context.Context, cfg *config.Config, budget Budget) (*Summary, error) {
	files, err := archive.ListVideoFiles(cfg.Archive.Root, cfg.Archive.VideoExtensions)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}

	cache := newSizeCache(&cfg.Archive, r.opts.Preview)
	engine := NewEngine(budget, cache, detection.NewReader(cfg.Archive.DetectionsFilename),
		WithTracer(r.opts.Tracer),
		WithProgress(r.opts.Progress),
	)

	summary, err := engine.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	stats := cache.Stats()
	r.logger.DebugContext(ctx, "size cache usage",
		"hits", stats.Hits,
		"misses", stats.Misses,
		"recounts", stats.Recounts,
	)
	if r.opts.Metrics != nil {
		r.opts.Metrics.RecordCacheStats(stats.Hits, stats.Misses, stats.Recounts)
	}
	return summary, nil
}

// LastRun returns when the most recent run finished and its status.
func (r *Runner) LastRun() (time.Time, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFinished, r.lastStatus
}

// NewSizeCache returns the sidecar-backed size cache for an archive. Only
// video files count towards a folder's size.
func NewSizeCache(cfg *config.ArchiveConfig) *sizecache.Cache {
	return newSizeCache(cfg, false)
}

func newSizeCache(cfg *config.ArchiveConfig, readOnly bool) *sizecache.Cache {
	extensions := archive.NormalizeExtensions(cfg.VideoExtensions)
	return sizecache.New(sizecache.NewSidecarStore(cfg.SizeCacheFilename), sizecache.Options{
		Include: func(name string) bool {
			return extensions[strings.ToLower(filepath.Ext(name))]
		},
		Exclude:  []string{cfg.SizeCacheFilename, cfg.DetectionsFilename},
		ReadOnly: readOnly,
	})
}

// OpenHistory opens the configured history store. It returns nil if history
// is disabled or the store cannot be opened; runs then go unrecorded.
func OpenHistory(cfg *config.HistoryConfig) history.Store {
	if !cfg.Enabled {
		return nil
	}
	store, err := history.Open(history.Config{
		Driver:      cfg.Driver,
		Path:        cfg.Path,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		slog.Default().With("component", "runner").Warn("run history unavailable, runs will not be recorded",
			"driver", cfg.Driver,
			"path", cfg.Path,
			"error", err,
		)
		return nil
	}
	return store
}

func (r *Runner) record(ctx context.Context, rec history.RunRecord) {
	if r.opts.History == nil {
		return
	}
	if err := r.opts.History.Record(ctx, rec); err != nil {
		r.logger.WarnContext(ctx, "failed to record run", "error", err)
	}
}

func (r *Runner) observe(dryRun bool, status string, started, finished time.Time, summary *Summary) {
	m := r.opts.Metrics
	if m == nil {
		return
	}

	m.RecordRun(Mode(dryRun), status, finished.Sub(started), finished)
	if summary == nil {
		return
	}

	m.RecordTier(TierRecent, summary.Recent.Folders, summary.Recent.SizeGB)
	m.RecordTier(TierHistorical, summary.Historical.Folders, summary.Historical.SizeGB)
	m.RecordTier(TierEvicted, summary.Evicted.Folders, summary.Evicted.SizeGB)
	for _, d := range summary.Decisions {
		switch {
		case d.Failed:
			m.RecordRemovalFailure(d.Kind)
		case !d.OK:
			// Already gone.
		case d.Kind == KindFile:
			m.RecordFileRemoved(d.Reason)
		case d.Kind == KindFolder:
			m.RecordFolderRemoved(d.Reason)
		}
	}
}

// Mode returns the metrics label for a run mode.
func Mode(dryRun bool) string {
	if dryRun {
		return "dry_run"
	}
	return "live"
}

func buildRecord(id string, started, finished time.Time, dryRun bool, status string, err error, s *Summary) history.RunRecord {
	rec := history.RunRecord{
		ID:         id,
		StartedAt:  started,
		FinishedAt: finished,
		DryRun:     dryRun,
		Status:     status,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if s == nil {
		return rec
	}

	rec.RecentFolders = s.Recent.Folders
	rec.RecentGB = s.Recent.SizeGB
	rec.HistoricalFolders = s.Historical.Folders
	rec.HistoricalGB = s.Historical.SizeGB
	rec.FilesRemoved = s.FilesRemoved
	rec.FoldersRemoved = s.FoldersRemoved
	rec.Failures = s.Failures
	for _, d := range s.Decisions {
		rec.Decisions = append(rec.Decisions, history.Decision{
			Path:   d.Path,
			Kind:   d.Kind,
			Reason: d.Reason,
			OK:     d.OK,
		})
	}
	return rec
}
