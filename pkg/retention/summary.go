package retention

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Decision kinds.
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// Decision records one removal attempted by a run.
type Decision struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`

	// OK is false if the removal failed or the path was already gone.
	OK bool `json:"ok"`

	// Failed is set when the removal failed and the path is still there.
	Failed bool `json:"failed,omitempty"`
}

// Tier names.
const (
	TierRecent     = "recent"
	TierHistorical = "historical"
	TierEvicted    = "evicted"
)

// FolderReport is the outcome of a run for one day folder.
type FolderReport struct {
	Path string `json:"path"`
	Date string `json:"date"`
	Tier string `json:"tier"`

	// SizeGB is the size the run worked with: after content filtering for
	// historical folders, before removal for evicted ones. Zero for folders
	// never measured.
	SizeGB float64 `json:"size_gb"`
}

// Tier is a folder count and total size.
type Tier struct {
	Folders int     `json:"folders"`
	SizeGB  float64 `json:"size_gb"`
}

// Summary is the outcome of a run.
type Summary struct {
	RunID      string    `json:"run_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`

	// Recent holds the protected folders.
	Recent Tier `json:"recent"`

	// Historical holds the folders kept under the historical budget, with
	// their sizes after content filtering.
	Historical Tier `json:"historical"`

	// Evicted holds the folders removed whole in the eviction phase.
	Evicted Tier `json:"evicted"`

	FilesRemoved   int `json:"files_removed"`
	FoldersRemoved int `json:"folders_removed"`

	// Failures counts removals that failed on a path that still exists.
	Failures int `json:"failures"`

	// SweptTombstones lists leftovers of interrupted removals cleared at the
	// start of the run.
	SweptTombstones []string `json:"swept_tombstones,omitempty"`

	Decisions []Decision `json:"decisions,omitempty"`

	// Folders lists every day folder of the run, newest first.
	Folders []FolderReport `json:"folders,omitempty"`

	// ExpectedFreeGB is the disk capacity minus the kept footage.
	ExpectedFreeGB float64 `json:"expected_free_gb"`

	// FreeSpaceBufferGB is the free space the operator expects to keep.
	FreeSpaceBufferGB float64 `json:"free_space_buffer_gb"`
}

// Duration returns how long the run took.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// KeptGB returns the size of all footage kept by the run.
func (s *Summary) KeptGB() float64 {
	return s.Recent.SizeGB + s.Historical.SizeGB
}

// BelowBuffer reports whether the expected free space falls short of the
// configured buffer.
func (s *Summary) BelowBuffer() bool {
	return s.ExpectedFreeGB < s.FreeSpaceBufferGB
}

// Log writes the summary as human-readable log lines.
func (s *Summary) Log(logger *slog.Logger) {
	logger.Info("recent footage protected",
		"folders", s.Recent.Folders,
		"size_gb", round(s.Recent.SizeGB),
	)
	logger.Info("historical footage kept",
		"folders", s.Historical.Folders,
		"size_gb", round(s.Historical.SizeGB),
		"files_removed", s.FilesRemoved,
	)
	logger.Info("historical footage evicted",
		"folders", s.Evicted.Folders,
		"size_gb", round(s.Evicted.SizeGB),
		"folders_removed", s.FoldersRemoved,
	)

	level := slog.LevelInfo
	if s.BelowBuffer() {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "expected free space",
		"free_gb", round(s.ExpectedFreeGB),
		"buffer_gb", s.FreeSpaceBufferGB,
	)

	logger.Info("retention run finished",
		"dry_run", s.DryRun,
		"failures", s.Failures,
		"duration", s.Duration(),
	)
}

func round(gb float64) float64 {
	return math.Round(gb*100) / 100
}
