package history

import (
	"context"
	"fmt"
	"time"
)

// Run statuses.
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Decision is one removal decision of a run.
type Decision struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
	OK     bool   `json:"ok"`
}

// RunRecord is the persisted summary of one run.
type RunRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`

	RecentFolders     int     `json:"recent_folders"`
	RecentGB          float64 `json:"recent_gb"`
	HistoricalFolders int     `json:"historical_folders"`
	HistoricalGB      float64 `json:"historical_gb"`
	FilesRemoved      int     `json:"files_removed"`
	FoldersRemoved    int     `json:"folders_removed"`
	Failures          int     `json:"failures"`

	Decisions []Decision `json:"decisions,omitempty"`
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists run records.
type Store interface {
	// Record stores a run. Recording the same ID twice replaces the record.
	Record(ctx context.Context, rec RunRecord) error

	// List returns the most recent runs, newest first. A limit of zero or
	// less returns every run.
	List(ctx context.Context, limit int) ([]RunRecord, error)

	// Close releases the store.
	Close() error
}

// Config selects and configures a Store.
type Config struct {
	// Driver is "sqlite", "sqlite3" or "memory".
	Driver string

	// Path is the database file. Ignored by the memory driver.
	Path string

	// BusyTimeout is how long to wait for database locks.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Open creates the Store selected by cfg.Driver.
func Open(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3", "":
		if cfg.Driver == "" {
			cfg.Driver = "sqlite"
		}
		return NewSQLStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported history driver %q", cfg.Driver)
	}
}
