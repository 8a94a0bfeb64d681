package config

import "time"

// Config is the root configuration structure for camkeep.
// It contains all configuration sections for the footage archive, the
// retention budgets, run exclusivity, run history, the daemon server and
// telemetry.
type Config struct {
	// Archive describes where footage lives and how its sidecars are named.
	Archive ArchiveConfig `yaml:"archive"`

	// Retention contains the budgets and content predicate applied on each run.
	Retention RetentionConfig `yaml:"retention"`

	// Lock contains the advisory run lock configuration.
	Lock LockConfig `yaml:"lock"`

	// History contains configuration for the run history store.
	History HistoryConfig `yaml:"history"`

	// Server contains configuration for the daemon HTTP endpoint
	// (metrics and health checks). Only used by "camkeep serve".
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for observability including logging,
	// metrics, and distributed tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ArchiveConfig describes the footage archive layout.
type ArchiveConfig struct {
	// Root is the archive root folder. Day folders live below it as
	// <root>/.../YYYY/MM/DD.
	// Required.
	Root string `yaml:"root"`

	// VideoExtensions is the set of file extensions treated as footage.
	// Matching is case-insensitive.
	// Default: [".mp4", ".avi", ".mov", ".mkv"]
	VideoExtensions []string `yaml:"video_extensions"`

	// DetectionsFilename is the name of the per-folder JSON sidecar written by
	// the detection pipeline.
	// Default: "detected_objects.json"
	DetectionsFilename string `yaml:"detections_filename"`

	// SizeCacheFilename is the name of the per-folder size cache sidecar.
	// Default: "this_folder_size.txt"
	SizeCacheFilename string `yaml:"size_cache_filename"`
}

// RetentionConfig contains the retention budgets.
type RetentionConfig struct {
	// RecentBudgetGB protects the most recent footage unconditionally.
	// Default: 500
	RecentBudgetGB float64 `yaml:"recent_budget_gb"`

	// HistoricalBudgetGB caps older footage that contains target objects.
	// Default: 400
	HistoricalBudgetGB float64 `yaml:"historical_budget_gb"`

	// TargetObjects is the set of detection labels that justify keeping a
	// historical file.
	// Default: ["person"]
	TargetObjects []string `yaml:"target_objects"`

	// DryRun logs every decision without deleting anything.
	// Default: false
	DryRun bool `yaml:"dry_run"`

	// FreeSpaceBufferGB is the free space expected to remain on the disk.
	// Reporting only.
	// Default: 30
	FreeSpaceBufferGB float64 `yaml:"free_space_buffer_gb"`

	// DiskCapacityGB is the capacity of the archive disk. Reporting only.
	// Default: 930
	DiskCapacityGB float64 `yaml:"disk_capacity_gb"`

	// UnanalyzedPolicy decides what happens to historical files the detection
	// pipeline has not analyzed yet.
	// Options: "remove" (treat as no detection), "keep"
	// Default: "remove"
	UnanalyzedPolicy string `yaml:"unanalyzed_policy"`

	// Schedule is a standard 5-field cron expression used by "camkeep serve".
	// Empty disables scheduling.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// LockConfig contains the advisory lock configuration.
type LockConfig struct {
	// Path is the lock file. Default: <archive.root>/.camkeep.lock
	Path string `yaml:"path"`
}

// HistoryConfig contains configuration for the run history store.
type HistoryConfig struct {
	// Enabled controls whether run summaries are persisted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Driver selects the storage backend.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo), "memory"
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "data/camkeep.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for database locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ServerConfig contains the daemon HTTP endpoint configuration.
type ServerConfig struct {
	// ListenAddress is the address for the metrics and health endpoints.
	// Default: "127.0.0.1:9109"
	ListenAddress string `yaml:"listen_address"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP server.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "camkeep"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "retention"
	Subsystem string `yaml:"subsystem"`

	// TextfilePath, when set, makes one-shot runs write their metrics in the
	// node_exporter textfile format to this path.
	TextfilePath string `yaml:"textfile_path"`

	// RunDurationBuckets defines histogram buckets for run duration (seconds).
	// Default: [1, 5, 15, 60, 300, 900, 3600]
	RunDurationBuckets []float64 `yaml:"run_duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "always"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of runs to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint, e.g. "localhost:4317".
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds span export calls.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// ServiceName is the service name in traces.
	// Default: "camkeep"
	ServiceName string `yaml:"service_name"`
}
