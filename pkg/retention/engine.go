package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"camkeep-hq/camkeep/pkg/archive"
	"camkeep-hq/camkeep/pkg/detection"
	"camkeep-hq/camkeep/pkg/remover"
	"camkeep-hq/camkeep/pkg/sizecache"
	"camkeep-hq/camkeep/pkg/telemetry/logging"
	"camkeep-hq/camkeep/pkg/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Phase names used in logs, spans and progress reports.
const (
	PhaseRecent     = "recent"
	PhaseContent    = "content"
	PhaseRefresh    = "refresh"
	PhaseHistorical = "historical"
	PhaseEviction   = "eviction"
)

// ProgressFunc is called as a phase works through its folders.
type ProgressFunc func(phase string, done, total int)

// spanStarter is satisfied by *tracing.Tracer and by any trace.Tracer.
type spanStarter interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Engine applies a Budget to a list of video files.
type Engine struct {
	budget   Budget
	cache    *sizecache.Cache
	reader   *detection.Reader
	remover  *remover.Remover
	tracer   spanStarter
	progress ProgressFunc
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithTracer records a span for the run and for each phase.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithProgress reports per-phase progress to fn.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// NewEngine creates an engine. Deletions are simulated when budget.DryRun is
// set.
func NewEngine(budget Budget, cache *sizecache.Cache, reader *detection.Reader, opts ...Option) *Engine {
	e := &Engine{
		budget:  budget,
		cache:   cache,
		reader:  reader,
		remover: remover.New(budget.DryRun),
		tracer:  noop.NewTracerProvider().Tracer("camkeep"),
		logger:  slog.Default().With("component", "retention"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runState is the per-run view of the archive, indexed like folders.
type runState struct {
	folders  []archive.DateFolder
	sizes    []float64
	measured []bool
	dirty    []bool

	// removed holds, per folder, the base names of files removed in the
	// content phase.
	removed []map[string]bool
}

// Run executes the five retention phases over the day folders of files. The
// context is only consulted before the run starts.
func (e *Engine) Run(ctx context.Context, files []string) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:             logging.GetRunID(ctx),
		StartedAt:         time.Now(),
		DryRun:            e.budget.DryRun,
		FreeSpaceBufferGB: e.budget.FreeSpaceBufferGB,
	}

	ctx, span := e.tracer.Start(ctx, tracing.SpanRun, trace.WithAttributes(
		tracing.AttrRunID.String(summary.RunID),
		tracing.AttrDryRun.Bool(e.budget.DryRun),
	))
	defer span.End()

	summary.SweptTombstones = e.remover.SweepTombstones(files)

	folders := archive.ScanFolders(files)
	state := &runState{
		folders:  folders,
		sizes:    make([]float64, len(folders)),
		measured: make([]bool, len(folders)),
		dirty:    make([]bool, len(folders)),
		removed:  make([]map[string]bool, len(folders)),
	}

	e.logger.InfoContext(ctx, "retention run started",
		"folders", len(folders),
		"files", len(files),
		"recent_budget_gb", e.budget.RecentBudgetGB,
		"historical_budget_gb", e.budget.HistoricalBudgetGB,
		"dry_run", e.budget.DryRun,
	)

	boundary := e.protectRecent(ctx, state, summary)
	e.filterContent(ctx, state, boundary, summary)
	e.refreshSizes(ctx, state, boundary)
	removal := e.capHistorical(ctx, state, boundary, summary)
	e.evict(ctx, state, removal, summary)
	summary.Folders = state.report(boundary, removal)

	summary.FinishedAt = time.Now()
	summary.ExpectedFreeGB = e.budget.DiskCapacityGB - summary.KeptGB()

	span.SetAttributes(
		tracing.AttrFolders.Int(len(folders)),
		tracing.AttrFilesRemoved.Int(summary.FilesRemoved),
		tracing.AttrFoldersRemoved.Int(summary.FoldersRemoved),
		tracing.AttrFailures.Int(summary.Failures),
		tracing.AttrRecentGB.Float64(summary.Recent.SizeGB),
		tracing.AttrHistoricalGB.Float64(summary.Historical.SizeGB),
	)
	tracing.SetStatus(span, nil)

	summary.Log(e.logger.With("run_id", summary.RunID))
	return summary, nil
}

// protectRecent returns the index of the first folder that is not protected.
func (e *Engine) protectRecent(ctx context.Context, state *runState, summary *Summary) int {
	ctx, end := e.phase(ctx, PhaseRecent)

	boundary := len(state.folders)
	var total float64
	for i := range state.folders {
		total += state.size(e.cache, i)
		e.report(PhaseRecent, i+1, len(state.folders))
		if total >= e.budget.RecentBudgetGB {
			boundary = i
			break
		}
	}

	for i := 0; i < boundary; i++ {
		summary.Recent.Folders++
		summary.Recent.SizeGB += state.sizes[i]
	}

	e.logger.DebugContext(ctx, "recent boundary found",
		"boundary", boundary,
		"folders", summary.Recent.Folders,
		"size_gb", summary.Recent.SizeGB,
	)
	end(tracing.AttrBoundary.Int(boundary))
	return boundary
}

// filterContent removes historical files without target objects.
func (e *Engine) filterContent(ctx context.Context, state *runState, boundary int, summary *Summary) {
	ctx, end := e.phase(ctx, PhaseContent)

	total := len(state.folders) - boundary
	for i := boundary; i < len(state.folders); i++ {
		for _, file := range state.folders[i].Files {
			if e.keep(file) {
				continue
			}

			ok := e.remover.RemoveFile(file, remover.ReasonNoTarget)
			summary.Decisions = append(summary.Decisions, Decision{
				Path:   file,
				Kind:   KindFile,
				Reason: string(remover.ReasonNoTarget),
				OK:     ok,
			})

			switch {
			case ok:
				summary.FilesRemoved++
				if state.removed[i] == nil {
					state.removed[i] = make(map[string]bool)
				}
				state.removed[i][filepath.Base(file)] = true
				state.dirty[i] = true
			case pathExists(file):
				summary.Decisions[len(summary.Decisions)-1].Failed = true
				summary.Failures++
			default:
				// Vanished under us; the cached size may still count it.
				state.dirty[i] = true
			}
		}
		e.report(PhaseContent, i-boundary+1, total)
	}

	e.logger.DebugContext(ctx, "content filtering finished", "files_removed", summary.FilesRemoved)
	end(tracing.AttrFilesRemoved.Int(summary.FilesRemoved))
}

// keep reports whether a historical file survives content filtering.
func (e *Engine) keep(file string) bool {
	if _, analyzed := e.reader.Lookup(file); !analyzed {
		return e.budget.KeepUnanalyzed
	}
	return e.reader.HasTargetObjects(file, e.budget.TargetObjects)
}

// refreshSizes recounts the dirty folders. A dry run measures them as if the
// removed files were gone and leaves the cache untouched.
func (e *Engine) refreshSizes(ctx context.Context, state *runState, boundary int) {
	ctx, end := e.phase(ctx, PhaseRefresh)

	refreshed := 0
	for i := boundary; i < len(state.folders); i++ {
		if !state.dirty[i] {
			continue
		}
		path := state.folders[i].Path
		if e.budget.DryRun {
			state.sizes[i] = e.cache.Measure(path, state.removed[i])
		} else {
			state.sizes[i] = e.cache.Invalidate(path)
		}
		state.measured[i] = true
		refreshed++
	}

	e.logger.DebugContext(ctx, "folder sizes refreshed", "folders", refreshed)
	end(tracing.AttrFolders.Int(refreshed))
}

// capHistorical returns the index of the first folder to evict.
func (e *Engine) capHistorical(ctx context.Context, state *runState, boundary int, summary *Summary) int {
	ctx, end := e.phase(ctx, PhaseHistorical)

	removal := len(state.folders)
	total := len(state.folders) - boundary
	var running float64
	for i := boundary; i < len(state.folders); i++ {
		running += state.size(e.cache, i)
		e.report(PhaseHistorical, i-boundary+1, total)
		if running >= e.budget.HistoricalBudgetGB {
			removal = i
			break
		}
		summary.Historical.Folders++
		summary.Historical.SizeGB += state.sizes[i]
	}

	e.logger.DebugContext(ctx, "historical boundary found",
		"boundary", removal,
		"folders", summary.Historical.Folders,
		"size_gb", summary.Historical.SizeGB,
	)
	end(tracing.AttrBoundary.Int(removal))
	return removal
}

// evict removes every folder from removal onwards.
func (e *Engine) evict(ctx context.Context, state *runState, removal int, summary *Summary) {
	ctx, end := e.phase(ctx, PhaseEviction)

	total := len(state.folders) - removal
	for i := removal; i < len(state.folders); i++ {
		path := state.folders[i].Path
		size := state.measure(e.cache, i)
		ok := e.remover.RemoveFolder(path, remover.ReasonOverLimit)
		summary.Decisions = append(summary.Decisions, Decision{
			Path:   path,
			Kind:   KindFolder,
			Reason: string(remover.ReasonOverLimit),
			OK:     ok,
		})

		switch {
		case ok:
			summary.FoldersRemoved++
			summary.Evicted.Folders++
			summary.Evicted.SizeGB += size
			if !e.budget.DryRun {
				e.cache.Forget(path)
			}
		case pathExists(path):
			summary.Decisions[len(summary.Decisions)-1].Failed = true
			summary.Failures++
		}
		e.report(PhaseEviction, i-removal+1, total)
	}

	e.logger.DebugContext(ctx, "eviction finished", "folders_removed", summary.FoldersRemoved)
	end(tracing.AttrFoldersRemoved.Int(summary.FoldersRemoved))
}

// size returns the size of folder i, asking the cache the first time.
func (s *runState) size(cache *sizecache.Cache, i int) float64 {
	if !s.measured[i] {
		s.sizes[i] = cache.GetOrCompute(s.folders[i].Path)
		s.measured[i] = true
	}
	return s.sizes[i]
}

// measure is size without caching: folders past the historical boundary are
// about to be removed.
func (s *runState) measure(cache *sizecache.Cache, i int) float64 {
	if !s.measured[i] {
		s.sizes[i] = cache.Measure(s.folders[i].Path, nil)
		s.measured[i] = true
	}
	return s.sizes[i]
}

func (s *runState) report(boundary, removal int) []FolderReport {
	reports := make([]FolderReport, len(s.folders))
	for i, folder := range s.folders {
		tier := TierHistorical
		switch {
		case i < boundary:
			tier = TierRecent
		case i >= removal:
			tier = TierEvicted
		}
		reports[i] = FolderReport{
			Path:   folder.Path,
			Date:   folder.Date.String(),
			Tier:   tier,
			SizeGB: s.sizes[i],
		}
	}
	return reports
}

// phase starts a phase span and returns a func ending it with attrs.
func (e *Engine) phase(ctx context.Context, name string) (context.Context, func(...attribute.KeyValue)) {
	ctx = logging.WithPhase(ctx, name)
	ctx, span := e.tracer.Start(ctx, tracing.SpanPhase, trace.WithAttributes(tracing.AttrPhase.String(name)))
	return ctx, func(attrs ...attribute.KeyValue) {
		span.SetAttributes(attrs...)
		span.End()
	}
}

func (e *Engine) report(phase string, done, total int) {
	if e.progress != nil {
		e.progress(phase, done, total)
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
