// Package metrics provides Prometheus metrics for camkeep retention runs.
//
// # Metrics
//
// All names carry the configured namespace and subsystem, by default
// "camkeep_retention_":
//
//   - runs_total{mode,status}: finished runs; mode is "live" or "dry_run"
//   - run_duration_seconds: run duration histogram
//   - last_run_timestamp_seconds: end of the last completed run
//   - tier_folders{tier}, tier_size_gb{tier}: footage kept per tier
//     ("recent", "historical") after the last run
//   - files_removed_total{reason}, folders_removed_total{reason}
//   - removal_failures_total{kind}: failed deletions, kind "file" or "folder"
//   - size_cache_lookups_total{result}: folder size lookups, "hit" or "miss"
//   - size_cache_recounts_total: folders recounted from disk
//
// # Exposition
//
// "camkeep serve" mounts Handler on the metrics path. One-shot runs can write
// the registry to a node_exporter textfile with WriteTextfile.
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordRun("live", "completed", elapsed, time.Now())
//	_ = collector.WriteTextfile("/var/lib/node_exporter/camkeep.prom")
package metrics
