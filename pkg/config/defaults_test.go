package config

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Archive: ArchiveConfig{Root: "/srv/footage"}}
	ApplyDefaults(cfg)

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"video extensions", cfg.Archive.VideoExtensions, DefaultVideoExtensions()},
		{"detections filename", cfg.Archive.DetectionsFilename, DefaultDetectionsFilename},
		{"size cache filename", cfg.Archive.SizeCacheFilename, DefaultSizeCacheFilename},
		{"target objects", cfg.Retention.TargetObjects, []string{"person"}},
		{"unanalyzed policy", cfg.Retention.UnanalyzedPolicy, UnanalyzedRemove},
		{"lock path", cfg.Lock.Path, filepath.Join("/srv/footage", DefaultLockFilename)},
		{"history driver", cfg.History.Driver, "sqlite"},
		{"history path", cfg.History.Path, DefaultHistoryPath},
		{"history busy timeout", cfg.History.BusyTimeout, 5 * time.Second},
		{"listen address", cfg.Server.ListenAddress, DefaultListenAddress},
		{"shutdown timeout", cfg.Server.ShutdownTimeout, 10 * time.Second},
		{"logging level", cfg.Telemetry.Logging.Level, "info"},
		{"logging format", cfg.Telemetry.Logging.Format, "text"},
		{"metrics path", cfg.Telemetry.Metrics.Path, "/metrics"},
		{"metrics namespace", cfg.Telemetry.Metrics.Namespace, "camkeep"},
		{"metrics buckets", cfg.Telemetry.Metrics.RunDurationBuckets, DefaultRunDurationBuckets()},
		{"tracing sampler", cfg.Telemetry.Tracing.Sampler, "always"},
		{"tracing service", cfg.Telemetry.Tracing.ServiceName, "camkeep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.want) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	// Budgets are not touched by ApplyDefaults.
	if cfg.Retention.RecentBudgetGB != 0 {
		t.Errorf("expected recent budget to stay 0, got %v", cfg.Retention.RecentBudgetGB)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Archive: ArchiveConfig{
			Root:            "/srv/footage",
			VideoExtensions: []string{".mp4"},
		},
		Retention: RetentionConfig{
			TargetObjects:    []string{"car", "dog"},
			UnanalyzedPolicy: UnanalyzedKeep,
		},
		Lock: LockConfig{Path: "/run/camkeep.lock"},
	}
	ApplyDefaults(cfg)

	if !reflect.DeepEqual(cfg.Archive.VideoExtensions, []string{".mp4"}) {
		t.Errorf("video extensions overwritten: %v", cfg.Archive.VideoExtensions)
	}
	if !reflect.DeepEqual(cfg.Retention.TargetObjects, []string{"car", "dog"}) {
		t.Errorf("target objects overwritten: %v", cfg.Retention.TargetObjects)
	}
	if cfg.Retention.UnanalyzedPolicy != UnanalyzedKeep {
		t.Errorf("policy overwritten: %q", cfg.Retention.UnanalyzedPolicy)
	}
	if cfg.Lock.Path != "/run/camkeep.lock" {
		t.Errorf("lock path overwritten: %q", cfg.Lock.Path)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg1 := &Config{Archive: ArchiveConfig{Root: "/srv/footage"}}
	ApplyDefaults(cfg1)

	cfg2 := &Config{Archive: ArchiveConfig{Root: "/srv/footage"}}
	ApplyDefaults(cfg2)
	ApplyDefaults(cfg2)

	if !reflect.DeepEqual(cfg1, cfg2) {
		t.Error("ApplyDefaults is not idempotent")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Retention.RecentBudgetGB != 500 {
		t.Errorf("expected recent budget 500, got %v", cfg.Retention.RecentBudgetGB)
	}
	if cfg.Retention.HistoricalBudgetGB != 400 {
		t.Errorf("expected historical budget 400, got %v", cfg.Retention.HistoricalBudgetGB)
	}
	if cfg.Retention.FreeSpaceBufferGB != 30 || cfg.Retention.DiskCapacityGB != 930 {
		t.Errorf("unexpected disk figures: buffer=%v capacity=%v",
			cfg.Retention.FreeSpaceBufferGB, cfg.Retention.DiskCapacityGB)
	}
	if cfg.Retention.Schedule != "0 3 * * *" {
		t.Errorf("expected default schedule, got %q", cfg.Retention.Schedule)
	}
	if cfg.Archive.Root != "" {
		t.Errorf("expected empty root, got %q", cfg.Archive.Root)
	}

	// Each call returns fresh slices.
	cfg.Archive.VideoExtensions[0] = ".wmv"
	if DefaultConfig().Archive.VideoExtensions[0] != ".mp4" {
		t.Error("default extensions share backing storage between calls")
	}
}
