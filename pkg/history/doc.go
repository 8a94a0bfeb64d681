// Package history persists one record per retention run.
//
// Records are kept in SQLite by default. Two drivers are available: "sqlite"
// (modernc.org/sqlite, pure Go) and "sqlite3" (github.com/mattn/go-sqlite3,
// requires cgo). The "memory" driver keeps records for the life of the
// process and is meant for tests and dry runs.
//
//	store, err := history.Open(history.Config{Driver: "sqlite", Path: "camkeep.db"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	runs, err := store.List(ctx, 10)
package history
