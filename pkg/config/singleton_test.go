package config

import (
	"os"
	"sync"
	"testing"
)

func resetGlobal() {
	globalConfig = nil
	configPath = ""
	initOnce = *new(sync.Once)
}

func TestInitialize(t *testing.T) {
	resetGlobal()

	path := writeConfig(t, `
archive:
  root: "/srv/footage"
`)

	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Archive.Root != "/srv/footage" {
		t.Errorf("expected root %q, got %q", "/srv/footage", cfg.Archive.Root)
	}
}

func TestInitialize_MultipleCallsIgnored(t *testing.T) {
	resetGlobal()

	path1 := writeConfig(t, "archive:\n  root: \"/srv/one\"\n")
	path2 := writeConfig(t, "archive:\n  root: \"/srv/two\"\n")

	if err := Initialize(path1); err != nil {
		t.Fatalf("first initialize failed: %v", err)
	}
	if err := Initialize(path2); err != nil {
		t.Fatalf("second initialize returned error: %v", err)
	}

	if got := GetConfig().Archive.Root; got != "/srv/one" {
		t.Errorf("expected first config to win, got root %q", got)
	}
}

func TestGetConfig_BeforeInitialize(t *testing.T) {
	resetGlobal()

	if cfg := GetConfig(); cfg != nil {
		t.Errorf("expected nil config before initialization, got %+v", cfg)
	}
}

func TestSetConfig(t *testing.T) {
	resetGlobal()

	cfg := validConfig()
	SetConfig(cfg)

	if GetConfig() != cfg {
		t.Error("GetConfig did not return the config passed to SetConfig")
	}
}

func TestReloadConfig(t *testing.T) {
	resetGlobal()

	path := writeConfig(t, `
archive:
  root: "/srv/footage"
retention:
  recent_budget_gb: 100
`)
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}

	updated := `
archive:
  root: "/srv/footage"
retention:
  recent_budget_gb: 200
`
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	// Empty path reloads the initialized file.
	if err := ReloadConfig(""); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if got := GetConfig().Retention.RecentBudgetGB; got != 200 {
		t.Errorf("expected reloaded budget 200, got %v", got)
	}
}

func TestReloadConfig_ValidationFailure(t *testing.T) {
	resetGlobal()

	path := writeConfig(t, "archive:\n  root: \"/srv/footage\"\n")
	if err := Initialize(path); err != nil {
		t.Fatalf("failed to initialize config: %v", err)
	}
	original := GetConfig()

	if err := os.WriteFile(path, []byte("retention:\n  recent_budget_gb: -1\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite config file: %v", err)
	}

	if err := ReloadConfig(path); err == nil {
		t.Fatal("expected reload to fail")
	}
	if GetConfig() != original {
		t.Error("expected original config to remain after failed reload")
	}
}

func TestReloadConfig_NoPath(t *testing.T) {
	resetGlobal()

	if err := ReloadConfig(""); err == nil {
		t.Error("expected error when no configuration file is known")
	}
}

func TestMustGetConfig(t *testing.T) {
	resetGlobal()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic before initialization")
		}
	}()
	MustGetConfig()
}

func TestMustGetConfig_AfterInitialize(t *testing.T) {
	resetGlobal()
	SetConfig(validConfig())

	if MustGetConfig() == nil {
		t.Error("expected config")
	}
}
