package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to a temporary config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "camkeep.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
archive:
  root: "/srv/footage"
  video_extensions: [".mp4", ".MKV"]

retention:
  recent_budget_gb: 250.5
  historical_budget_gb: 0
  target_objects: ["person", "car"]
  dry_run: true
  unanalyzed_policy: "keep"
  schedule: "*/30 * * * *"

history:
  driver: "sqlite3"
  path: "/var/lib/camkeep/history.db"
  busy_timeout: "2s"

telemetry:
  logging:
    level: "debug"
    format: "json"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Archive.Root != "/srv/footage" {
		t.Errorf("expected root %q, got %q", "/srv/footage", cfg.Archive.Root)
	}
	if !reflect.DeepEqual(cfg.Archive.VideoExtensions, []string{".mp4", ".MKV"}) {
		t.Errorf("unexpected extensions: %v", cfg.Archive.VideoExtensions)
	}
	if cfg.Retention.RecentBudgetGB != 250.5 {
		t.Errorf("expected recent budget 250.5, got %v", cfg.Retention.RecentBudgetGB)
	}
	if cfg.Retention.HistoricalBudgetGB != 0 {
		t.Errorf("expected explicit zero historical budget, got %v", cfg.Retention.HistoricalBudgetGB)
	}
	if !cfg.Retention.DryRun {
		t.Error("expected dry run to be enabled")
	}
	if cfg.Retention.UnanalyzedPolicy != UnanalyzedKeep {
		t.Errorf("expected keep policy, got %q", cfg.Retention.UnanalyzedPolicy)
	}
	if cfg.History.BusyTimeout != 2*time.Second {
		t.Errorf("expected busy timeout 2s, got %v", cfg.History.BusyTimeout)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %q", cfg.Telemetry.Logging.Level)
	}

	// Untouched sections keep their defaults.
	if cfg.Retention.DiskCapacityGB != DefaultDiskCapacityGB {
		t.Errorf("expected default capacity, got %v", cfg.Retention.DiskCapacityGB)
	}
	if cfg.Lock.Path != filepath.Join("/srv/footage", DefaultLockFilename) {
		t.Errorf("unexpected lock path %q", cfg.Lock.Path)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "archive:\n  root: [unclosed\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
retention:
  recent_budget_gb: -5
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var validationErr ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError in chain, got %T", err)
	}
	if !hasField(validationErr.Errors, "archive.root") {
		t.Errorf("expected archive.root error, got %v", validationErr.Errors)
	}
	if !hasField(validationErr.Errors, "retention.recent_budget_gb") {
		t.Errorf("expected recent budget error, got %v", validationErr.Errors)
	}
}

func TestLoadConfigWithEnvOverrides_BasicOverrides(t *testing.T) {
	path := writeConfig(t, `
archive:
  root: "/srv/footage"
retention:
  recent_budget_gb: 100
`)

	t.Setenv("CAMKEEP_RETENTION_RECENT_BUDGET_GB", "42.5")
	t.Setenv("CAMKEEP_RETENTION_TARGET_OBJECTS", "person, dog ,")
	t.Setenv("CAMKEEP_ARCHIVE_VIDEO_EXTENSIONS", ".mp4,.mov")
	t.Setenv("CAMKEEP_TELEMETRY_LOGGING_LEVEL", "warn")
	t.Setenv("CAMKEEP_HISTORY_DRIVER", "memory")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Retention.RecentBudgetGB != 42.5 {
		t.Errorf("expected recent budget 42.5, got %v", cfg.Retention.RecentBudgetGB)
	}
	if !reflect.DeepEqual(cfg.Retention.TargetObjects, []string{"person", "dog"}) {
		t.Errorf("unexpected target objects: %v", cfg.Retention.TargetObjects)
	}
	if !reflect.DeepEqual(cfg.Archive.VideoExtensions, []string{".mp4", ".mov"}) {
		t.Errorf("unexpected extensions: %v", cfg.Archive.VideoExtensions)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Telemetry.Logging.Level)
	}
	if cfg.History.Driver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.History.Driver)
	}
}

func TestLoadConfigWithEnvOverrides_RootFromEnvironment(t *testing.T) {
	path := writeConfig(t, `
retention:
  recent_budget_gb: 10
`)

	root := t.TempDir()
	t.Setenv("CAMKEEP_ARCHIVE_ROOT", root)

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("expected root from environment to satisfy validation, got %v", err)
	}
	if cfg.Archive.Root != root {
		t.Errorf("expected root %q, got %q", root, cfg.Archive.Root)
	}
	if cfg.Lock.Path != filepath.Join(root, DefaultLockFilename) {
		t.Errorf("expected lock path under new root, got %q", cfg.Lock.Path)
	}
}

func TestLoadConfigWithEnvOverrides_LockFollowsRoot(t *testing.T) {
	path := writeConfig(t, `
archive:
  root: "/srv/old"
`)
	t.Setenv("CAMKEEP_ARCHIVE_ROOT", "/srv/new")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Lock.Path != filepath.Join("/srv/new", DefaultLockFilename) {
		t.Errorf("expected lock path to follow root override, got %q", cfg.Lock.Path)
	}
}

func TestLoadConfigWithEnvOverrides_BooleanAndDurationParsing(t *testing.T) {
	path := writeConfig(t, `
archive:
  root: "/srv/footage"
`)

	t.Setenv("CAMKEEP_RETENTION_DRY_RUN", "true")
	t.Setenv("CAMKEEP_HISTORY_ENABLED", "false")
	t.Setenv("CAMKEEP_SERVER_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Retention.DryRun {
		t.Error("expected dry run from environment")
	}
	if cfg.History.Enabled {
		t.Error("expected history disabled from environment")
	}
	if cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected shutdown timeout 3s, got %v", cfg.Server.ShutdownTimeout)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidEnvValues(t *testing.T) {
	path := writeConfig(t, `
archive:
  root: "/srv/footage"
retention:
  recent_budget_gb: 100
`)

	t.Setenv("CAMKEEP_RETENTION_RECENT_BUDGET_GB", "lots")
	t.Setenv("CAMKEEP_RETENTION_DRY_RUN", "maybe")
	t.Setenv("CAMKEEP_SERVER_SHUTDOWN_TIMEOUT", "soon")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Retention.RecentBudgetGB != 100 {
		t.Errorf("expected file value to survive invalid override, got %v", cfg.Retention.RecentBudgetGB)
	}
	if cfg.Retention.DryRun {
		t.Error("expected dry run to stay false")
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("expected default shutdown timeout, got %v", cfg.Server.ShutdownTimeout)
	}
}
