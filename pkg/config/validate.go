package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "archive.root").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateArchive(&cfg.Archive)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateArchive(cfg *ArchiveConfig) []FieldError {
	var errs []FieldError

	if cfg.Root == "" {
		errs = append(errs, FieldError{
			Field:   "archive.root",
			Message: "archive root is required",
		})
	}

	if len(cfg.VideoExtensions) == 0 {
		errs = append(errs, FieldError{
			Field:   "archive.video_extensions",
			Message: "at least one video extension is required",
		})
	}
	for i, ext := range cfg.VideoExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("archive.video_extensions[%d]", i),
				Message: fmt.Sprintf("invalid extension %q: must start with '.'", ext),
			})
		}
	}

	errs = append(errs, validateFilename("archive.detections_filename", cfg.DetectionsFilename)...)
	errs = append(errs, validateFilename("archive.size_cache_filename", cfg.SizeCacheFilename)...)

	if cfg.DetectionsFilename != "" && cfg.DetectionsFilename == cfg.SizeCacheFilename {
		errs = append(errs, FieldError{
			Field:   "archive.size_cache_filename",
			Message: "size cache file must differ from the detections file",
		})
	}

	return errs
}

func validateFilename(field, name string) []FieldError {
	if name == "" {
		return []FieldError{{Field: field, Message: "file name is required"}}
	}
	if strings.ContainsAny(name, `/\`) {
		return []FieldError{{Field: field, Message: fmt.Sprintf("%q must be a bare file name", name)}}
	}
	return nil
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	budgets := []struct {
		field string
		value float64
	}{
		{"retention.recent_budget_gb", cfg.RecentBudgetGB},
		{"retention.historical_budget_gb", cfg.HistoricalBudgetGB},
		{"retention.free_space_buffer_gb", cfg.FreeSpaceBufferGB},
		{"retention.disk_capacity_gb", cfg.DiskCapacityGB},
	}
	for _, b := range budgets {
		if math.IsNaN(b.value) || math.IsInf(b.value, 0) || b.value < 0 {
			errs = append(errs, FieldError{
				Field:   b.field,
				Message: fmt.Sprintf("must be a finite, non-negative number, got %v", b.value),
			})
		}
	}

	if len(cfg.TargetObjects) == 0 {
		errs = append(errs, FieldError{
			Field:   "retention.target_objects",
			Message: "at least one target object label is required",
		})
	}
	for i, label := range cfg.TargetObjects {
		if strings.TrimSpace(label) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("retention.target_objects[%d]", i),
				Message: "label must not be empty",
			})
		}
	}

	switch cfg.UnanalyzedPolicy {
	case UnanalyzedRemove, UnanalyzedKeep:
	default:
		errs = append(errs, FieldError{
			Field:   "retention.unanalyzed_policy",
			Message: fmt.Sprintf("invalid policy %q: must be 'remove' or 'keep'", cfg.UnanalyzedPolicy),
		})
	}

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "retention.schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.Schedule, err),
			})
		}
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	if !cfg.Enabled {
		return nil
	}

	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true, "memory": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "history.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite', 'sqlite3', or 'memory'", cfg.Driver),
		})
	}
	if cfg.Driver != "memory" && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "database path is required",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "history.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress != "" && !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: expected host:port", cfg.ListenAddress),
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be non-negative",
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	// Validate metrics path
	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true}
	if cfg.Tracing.Enabled && !validSamplers[cfg.Tracing.Sampler] {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	return errs
}
