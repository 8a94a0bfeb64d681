package config

import (
	"path/filepath"
	"time"
)

// Default values for configuration fields.
const (
	// Archive defaults
	DefaultDetectionsFilename = "detected_objects.json"
	DefaultSizeCacheFilename  = "this_folder_size.txt"
	DefaultLockFilename       = ".camkeep.lock"

	// Retention defaults
	DefaultRecentBudgetGB     = 500.0
	DefaultHistoricalBudgetGB = 400.0
	DefaultFreeSpaceBufferGB  = 30.0
	DefaultDiskCapacityGB     = 930.0
	DefaultUnanalyzedPolicy   = UnanalyzedRemove
	DefaultSchedule           = "0 3 * * *"

	// History defaults
	DefaultHistoryEnabled     = true
	DefaultHistoryDriver      = "sqlite"
	DefaultHistoryPath        = "data/camkeep.db"
	DefaultHistoryBusyTimeout = 5 * time.Second

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:9109"
	DefaultShutdownTimeout = 10 * time.Second

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "text"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "camkeep"
	DefaultMetricsSubsystem   = "retention"
	DefaultTracingSampler     = "always"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
	DefaultTracingServiceName = "camkeep"
)

// Unanalyzed policies.
const (
	// UnanalyzedRemove treats a file without detection results like a file
	// without target objects.
	UnanalyzedRemove = "remove"

	// UnanalyzedKeep keeps files the detection pipeline has not reached yet.
	UnanalyzedKeep = "keep"
)

// DefaultVideoExtensions returns the default footage extensions.
func DefaultVideoExtensions() []string {
	return []string{".mp4", ".avi", ".mov", ".mkv"}
}

// DefaultTargetObjects returns the default target labels.
func DefaultTargetObjects() []string {
	return []string{"person"}
}

// DefaultRunDurationBuckets returns the default run duration histogram buckets.
func DefaultRunDurationBuckets() []float64 {
	return []float64{1, 5, 15, 60, 300, 900, 3600}
}

// DefaultConfig returns a configuration with every field set to its default.
// The archive root is left empty and must be provided.
//
// LoadConfig decodes YAML on top of DefaultConfig, so values that are legal as
// zero (a zero budget, a disabled boolean) survive when set explicitly.
func DefaultConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			VideoExtensions:    DefaultVideoExtensions(),
			DetectionsFilename: DefaultDetectionsFilename,
			SizeCacheFilename:  DefaultSizeCacheFilename,
		},
		Retention: RetentionConfig{
			RecentBudgetGB:     DefaultRecentBudgetGB,
			HistoricalBudgetGB: DefaultHistoricalBudgetGB,
			TargetObjects:      DefaultTargetObjects(),
			FreeSpaceBufferGB:  DefaultFreeSpaceBufferGB,
			DiskCapacityGB:     DefaultDiskCapacityGB,
			UnanalyzedPolicy:   DefaultUnanalyzedPolicy,
			Schedule:           DefaultSchedule,
		},
		History: HistoryConfig{
			Enabled:     DefaultHistoryEnabled,
			Driver:      DefaultHistoryDriver,
			Path:        DefaultHistoryPath,
			BusyTimeout: DefaultHistoryBusyTimeout,
		},
		Server: ServerConfig{
			ListenAddress:   DefaultListenAddress,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{
				Level:  DefaultLoggingLevel,
				Format: DefaultLoggingFormat,
			},
			Metrics: MetricsConfig{
				Enabled:            DefaultMetricsEnabled,
				Path:               DefaultMetricsPath,
				Namespace:          DefaultMetricsNamespace,
				Subsystem:          DefaultMetricsSubsystem,
				RunDurationBuckets: DefaultRunDurationBuckets(),
			},
			Tracing: TracingConfig{
				Sampler:     DefaultTracingSampler,
				SampleRatio: DefaultTracingSampleRatio,
				Timeout:     DefaultTracingTimeout,
				ServiceName: DefaultTracingServiceName,
			},
		},
	}
}

// ApplyDefaults fills in empty string, slice and duration fields with their
// default values. Numeric budgets and booleans are left untouched because
// zero is a meaningful value for them; use DefaultConfig to seed those.
func ApplyDefaults(cfg *Config) {
	// Archive defaults
	if len(cfg.Archive.VideoExtensions) == 0 {
		cfg.Archive.VideoExtensions = DefaultVideoExtensions()
	}
	if cfg.Archive.DetectionsFilename == "" {
		cfg.Archive.DetectionsFilename = DefaultDetectionsFilename
	}
	if cfg.Archive.SizeCacheFilename == "" {
		cfg.Archive.SizeCacheFilename = DefaultSizeCacheFilename
	}

	// Retention defaults
	if cfg.Retention.TargetObjects == nil {
		cfg.Retention.TargetObjects = DefaultTargetObjects()
	}
	if cfg.Retention.UnanalyzedPolicy == "" {
		cfg.Retention.UnanalyzedPolicy = DefaultUnanalyzedPolicy
	}

	// Lock defaults
	if cfg.Lock.Path == "" && cfg.Archive.Root != "" {
		cfg.Lock.Path = filepath.Join(cfg.Archive.Root, DefaultLockFilename)
	}

	// History defaults
	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.BusyTimeout == 0 {
		cfg.History.BusyTimeout = DefaultHistoryBusyTimeout
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RunDurationBuckets) == 0 {
		cfg.Telemetry.Metrics.RunDurationBuckets = DefaultRunDurationBuckets()
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}
