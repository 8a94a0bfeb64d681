package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// The file is decoded on top of DefaultConfig, remaining empty fields are
// filled by ApplyDefaults, and the result is validated.
// The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration data and applies defaults without
// validating the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CAMKEEP_SECTION_FIELD (e.g., CAMKEEP_ARCHIVE_ROOT).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// Validation runs once, after the overrides, so the archive root may come
// from CAMKEEP_ARCHIVE_ROOT alone.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	applyEnvOverrides(cfg)

	// The lock path default depends on the (possibly overridden) root.
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format CAMKEEP_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Archive overrides
	if val := os.Getenv("CAMKEEP_ARCHIVE_ROOT"); val != "" {
		// A lock path derived from the file's root follows the new root.
		if cfg.Lock.Path == filepath.Join(cfg.Archive.Root, DefaultLockFilename) {
			cfg.Lock.Path = ""
		}
		cfg.Archive.Root = val
	}
	if val := os.Getenv("CAMKEEP_ARCHIVE_VIDEO_EXTENSIONS"); val != "" {
		cfg.Archive.VideoExtensions = splitList(val)
	}

	// Retention overrides
	if val := os.Getenv("CAMKEEP_RETENTION_RECENT_BUDGET_GB"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Retention.RecentBudgetGB = f
		}
	}
	if val := os.Getenv("CAMKEEP_RETENTION_HISTORICAL_BUDGET_GB"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Retention.HistoricalBudgetGB = f
		}
	}
	if val := os.Getenv("CAMKEEP_RETENTION_TARGET_OBJECTS"); val != "" {
		cfg.Retention.TargetObjects = splitList(val)
	}
	if val := os.Getenv("CAMKEEP_RETENTION_DRY_RUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.DryRun = b
		}
	}
	if val := os.Getenv("CAMKEEP_RETENTION_UNANALYZED_POLICY"); val != "" {
		cfg.Retention.UnanalyzedPolicy = val
	}
	if val := os.Getenv("CAMKEEP_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}

	// Lock overrides
	if val := os.Getenv("CAMKEEP_LOCK_PATH"); val != "" {
		cfg.Lock.Path = val
	}

	// History overrides
	if val := os.Getenv("CAMKEEP_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("CAMKEEP_HISTORY_DRIVER"); val != "" {
		cfg.History.Driver = val
	}
	if val := os.Getenv("CAMKEEP_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}

	// Server overrides
	if val := os.Getenv("CAMKEEP_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("CAMKEEP_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Telemetry overrides
	if val := os.Getenv("CAMKEEP_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CAMKEEP_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CAMKEEP_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CAMKEEP_TELEMETRY_METRICS_TEXTFILE_PATH"); val != "" {
		cfg.Telemetry.Metrics.TextfilePath = val
	}
	if val := os.Getenv("CAMKEEP_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("CAMKEEP_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("CAMKEEP_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

// splitList splits a comma-separated environment value, dropping blanks.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
