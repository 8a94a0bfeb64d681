package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"
)

// SQLStore keeps run records in a SQLite database.
type SQLStore struct {
	db        *sql.DB
	driver    string
	closeOnce sync.Once

	recordStmt *sql.Stmt
	listStmt   *sql.Stmt
}

// NewSQLStore opens (and if needed creates) the database at cfg.Path using
// the "sqlite" or "sqlite3" driver.
func NewSQLStore(cfg Config) (*SQLStore, error) {
	if cfg.Path == "" {
		return nil, newStorageError(cfg.Driver, "open", fmt.Errorf("db path cannot be empty"))
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, newStorageError(cfg.Driver, "open", err)
		}
	}

	var dsn string
	switch cfg.Driver {
	case "sqlite":
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
			cfg.Path, cfg.BusyTimeout.Milliseconds())
	case "sqlite3":
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL",
			cfg.Path, cfg.BusyTimeout.Milliseconds())
	default:
		return nil, newStorageError(cfg.Driver, "open", fmt.Errorf("not a sqlite driver"))
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, newStorageError(cfg.Driver, "open", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLStore{db: db, driver: cfg.Driver}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, newStorageError(cfg.Driver, "init_schema", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, newStorageError(cfg.Driver, "prepare", err)
	}

	return s, nil
}

func (s *SQLStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		dry_run INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		recent_folders INTEGER NOT NULL,
		recent_gb REAL NOT NULL,
		historical_folders INTEGER NOT NULL,
		historical_gb REAL NOT NULL,
		files_removed INTEGER NOT NULL,
		folders_removed INTEGER NOT NULL,
		failures INTEGER NOT NULL,
		decisions TEXT NOT NULL DEFAULT '[]'
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLStore) prepareStatements() error {
	var err error

	s.recordStmt, err = s.db.Prepare(`
		INSERT INTO runs (
			id, started_at, finished_at, dry_run, status, error,
			recent_folders, recent_gb, historical_folders, historical_gb,
			files_removed, folders_removed, failures, decisions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			dry_run = excluded.dry_run,
			status = excluded.status,
			error = excluded.error,
			recent_folders = excluded.recent_folders,
			recent_gb = excluded.recent_gb,
			historical_folders = excluded.historical_folders,
			historical_gb = excluded.historical_gb,
			files_removed = excluded.files_removed,
			folders_removed = excluded.folders_removed,
			failures = excluded.failures,
			decisions = excluded.decisions
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare record statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`
		SELECT id, started_at, finished_at, dry_run, status, error,
			recent_folders, recent_gb, historical_folders, historical_gb,
			files_removed, folders_removed, failures, decisions
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	return nil
}

// Record implements Store.
func (s *SQLStore) Record(ctx context.Context, rec RunRecord) error {
	decisions := rec.Decisions
	if decisions == nil {
		decisions = []Decision{}
	}
	data, err := json.Marshal(decisions)
	if err != nil {
		return newStorageError(s.driver, "record", fmt.Errorf("failed to encode decisions: %w", err))
	}

	_, err = s.recordStmt.ExecContext(ctx,
		rec.ID,
		rec.StartedAt.UnixNano(),
		rec.FinishedAt.UnixNano(),
		rec.DryRun,
		rec.Status,
		rec.Error,
		rec.RecentFolders,
		rec.RecentGB,
		rec.HistoricalFolders,
		rec.HistoricalGB,
		rec.FilesRemoved,
		rec.FoldersRemoved,
		rec.Failures,
		string(data),
	)
	if err != nil {
		return newStorageError(s.driver, "record", err)
	}
	return nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}

	rows, err := s.listStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec                 RunRecord
			startedAt, finished int64
			decisions           string
		)
		err := rows.Scan(
			&rec.ID, &startedAt, &finished, &rec.DryRun, &rec.Status, &rec.Error,
			&rec.RecentFolders, &rec.RecentGB, &rec.HistoricalFolders, &rec.HistoricalGB,
			&rec.FilesRemoved, &rec.FoldersRemoved, &rec.Failures, &decisions,
		)
		if err != nil {
			return nil, newStorageError(s.driver, "list", err)
		}
		rec.StartedAt = time.Unix(0, startedAt).UTC()
		rec.FinishedAt = time.Unix(0, finished).UTC()
		if err := json.Unmarshal([]byte(decisions), &rec.Decisions); err != nil {
			return nil, newStorageError(s.driver, "list", fmt.Errorf("failed to decode decisions of run %s: %w", rec.ID, err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(s.driver, "list", err)
	}

	return records, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.recordStmt != nil {
			s.recordStmt.Close()
		}
		if s.listStmt != nil {
			s.listStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}
