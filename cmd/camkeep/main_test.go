package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camkeep-hq/camkeep/pkg/cli"
	"camkeep-hq/camkeep/pkg/config"
	"camkeep-hq/camkeep/pkg/retention"
)

// writeClip writes a clip of size KiB and records its labels in the day's
// detection sidecar.
func writeClip(t *testing.T, root, day, name string, kib int, labels ...string) {
	t.Helper()
	dir := filepath.Join(root, filepath.FromSlash(day))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, kib*1024), 0644); err != nil {
		t.Fatal(err)
	}
	if labels == nil {
		labels = []string{}
	}
	data, _ := json.Marshal(map[string][]string{name: labels})
	if err := os.WriteFile(filepath.Join(dir, config.DefaultDetectionsFilename), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

// The process-wide configuration is initialized once, so scan and run share
// one archive and config file.
func TestScanThenRun(t *testing.T) {
	root := t.TempDir()
	writeClip(t, root, "2025/01/05", "a.mp4", 2, "person")
	writeClip(t, root, "2025/01/04", "b.mp4", 1, "car")
	writeClip(t, root, "2025/01/03", "c.mp4", 5, "person")

	// 1 KiB is 2^-20 GB: recent = 2 KiB, historical = 3 KiB.
	textfile := filepath.Join(t.TempDir(), "camkeep.prom")
	cfgPath := filepath.Join(t.TempDir(), "camkeep.yaml")
	content := `
archive:
  root: "` + root + `"
retention:
  recent_budget_gb: 1.9073486328125e-06
  historical_budget_gb: 2.86102294921875e-06
  target_objects: ["person"]
history:
  driver: "memory"
telemetry:
  metrics:
    textfile_path: "` + textfile + `"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("scan", func(t *testing.T) {
		out, err := execute(t, "scan", "-c", cfgPath, "-o", "json")
		if err != nil {
			t.Fatalf("scan error = %v", err)
		}

		var report cli.ScanReport
		if err := json.Unmarshal([]byte(out), &report); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if !report.Summary.DryRun || report.Summary.FilesRemoved != 1 || report.Summary.FoldersRemoved != 1 {
			t.Errorf("unexpected scan summary %+v", report.Summary)
		}
		if _, err := os.Stat(filepath.Join(root, "2025", "01", "04", "b.mp4")); err != nil {
			t.Error("scan must not delete anything")
		}
		for _, day := range []string{"05", "04", "03"} {
			sidecar := filepath.Join(root, "2025", "01", day, config.DefaultSizeCacheFilename)
			if _, err := os.Stat(sidecar); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("scan wrote %s", sidecar)
			}
		}
		if got := report.Analysis[filepath.Join(root, "2025", "01", "05")]; got.Analyzed != 1 || got.Pending != 0 {
			t.Errorf("analysis of 2025/01/05 = %+v, want 1 analyzed", got)
		}
	})

	t.Run("run", func(t *testing.T) {
		out, err := execute(t, "run", "-c", cfgPath, "-o", "json")
		if err != nil {
			t.Fatalf("run error = %v", err)
		}

		var summary retention.Summary
		if err := json.Unmarshal([]byte(out), &summary); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if summary.DryRun || summary.FilesRemoved != 1 || summary.FoldersRemoved != 1 {
			t.Errorf("unexpected summary %+v", summary)
		}
		if _, err := os.Stat(filepath.Join(root, "2025", "01", "03")); !errors.Is(err, os.ErrNotExist) {
			t.Error("2025/01/03 should be evicted")
		}

		data, err := os.ReadFile(textfile)
		if err != nil {
			t.Fatalf("metrics textfile not written: %v", err)
		}
		if !strings.Contains(string(data), "camkeep_retention_runs_total") {
			t.Errorf("textfile missing run counter:\n%s", data)
		}
	})

	t.Run("invalid output format", func(t *testing.T) {
		_, err := execute(t, "run", "-c", cfgPath, "-o", "xml")
		if cli.ExitCode(err) != cli.ExitConfig {
			t.Errorf("ExitCode = %d, want %d (%v)", cli.ExitCode(err), cli.ExitConfig, err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.yaml")
	if err := os.WriteFile(valid, []byte("archive:\n  root: /srv/footage\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "config", "validate", "-c", valid)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "Configuration valid") || !strings.Contains(out, "/srv/footage") {
		t.Errorf("unexpected output %q", out)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	content := "archive:\n  root: \"\"\nretention:\n  recent_budget_gb: -1\n"
	if err := os.WriteFile(invalid, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	out, err = execute(t, "config", "validate", "-c", invalid)
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("ExitCode = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
	}
	for _, want := range []string{"archive.root", "retention.recent_budget_gb"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestApplyRunFlags(t *testing.T) {
	defer func() {
		runCmd.Flags().Set("recent-gb", "0")
		runCmd.Flags().Set("dry-run", "false")
		runCmd.Flags().Lookup("recent-gb").Changed = false
		runCmd.Flags().Lookup("dry-run").Changed = false
	}()

	cfg := config.DefaultConfig()
	if err := runCmd.Flags().Set("recent-gb", "12.5"); err != nil {
		t.Fatal(err)
	}
	if err := runCmd.Flags().Set("dry-run", "true"); err != nil {
		t.Fatal(err)
	}

	out, err := applyRunFlags(runCmd, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if out.Retention.RecentBudgetGB != 12.5 || !out.Retention.DryRun {
		t.Errorf("overrides not applied: %+v", out.Retention)
	}
	if out.Retention.HistoricalBudgetGB != config.DefaultHistoricalBudgetGB {
		t.Errorf("unchanged budget modified: %v", out.Retention.HistoricalBudgetGB)
	}
	if cfg.Retention.DryRun || cfg.Retention.RecentBudgetGB != config.DefaultRecentBudgetGB {
		t.Error("applyRunFlags modified the loaded config")
	}

	if err := runCmd.Flags().Set("recent-gb", "-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := applyRunFlags(runCmd, cfg); err == nil {
		t.Error("expected error for a negative budget")
	}
}
