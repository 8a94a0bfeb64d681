// Package health serves liveness and readiness endpoints for "camkeep serve".
//
//   - /healthz: the process is up
//   - /readyz: every registered check passes (503 otherwise)
//   - /version: build information
//
// Readiness checks are plain functions:
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("archive_root", health.DirectoryCheck(cfg.Archive.Root))
//	checker.RegisterCheck("last_run", health.LastRunCheck(tracker, 26*time.Hour))
//	health.Mount(mux, checker, version, commit, buildTime)
package health
