package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

type fakeTracker struct {
	finished time.Time
	status   string
}

func (f fakeTracker) LastRun() (time.Time, string) {
	return f.finished, f.status
}

func TestChecker_Readiness(t *testing.T) {
	checker := New(time.Second)

	status := checker.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("no checks: status = %q, want ready", status.Status)
	}

	checker.RegisterCheck("ok", func(context.Context) error { return nil })
	checker.RegisterCheck("broken", func(context.Context) error { return errors.New("disk gone") })

	status = checker.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded", status.Status)
	}
	if status.Checks["broken"].Message != "disk gone" {
		t.Errorf("unexpected broken check result: %+v", status.Checks["broken"])
	}
	if status.Checks["ok"].Status != "ok" {
		t.Errorf("unexpected ok check result: %+v", status.Checks["ok"])
	}

	if got := checker.ListChecks(); !reflect.DeepEqual(got, []string{"broken", "ok"}) {
		t.Errorf("ListChecks = %v", got)
	}
}

func TestChecker_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	if status.Checks["slow"].Status != "unhealthy" {
		t.Errorf("expected slow check to time out, got %+v", status.Checks["slow"])
	}
}

func TestDirectoryCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if err := DirectoryCheck(dir)(context.Background()); err != nil {
		t.Errorf("directory: %v", err)
	}
	if err := DirectoryCheck(file)(context.Background()); err == nil {
		t.Error("expected error for a file")
	}
	if err := DirectoryCheck(filepath.Join(dir, "missing"))(context.Background()); err == nil {
		t.Error("expected error for a missing path")
	}
}

func TestLastRunCheck(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		tracker fakeTracker
		wantErr bool
	}{
		{"no run yet", fakeTracker{}, false},
		{"recent success", fakeTracker{now.Add(-time.Hour), "completed"}, false},
		{"recent skip", fakeTracker{now.Add(-time.Hour), "skipped"}, false},
		{"failed", fakeTracker{now.Add(-time.Minute), "failed"}, true},
		{"stale", fakeTracker{now.Add(-48 * time.Hour), "completed"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LastRunCheck(tt.tracker, 26*time.Hour)(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	mux := http.NewServeMux()
	Mount(mux, checker, "1.0.0", "abc123", "2025-01-05")

	tests := []struct {
		path   string
		method string
		want   int
	}{
		{"/healthz", http.MethodGet, http.StatusOK},
		{"/readyz", http.MethodGet, http.StatusOK},
		{"/version", http.MethodGet, http.StatusOK},
		{"/healthz", http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
		}
	}

	checker.RegisterCheck("broken", func(context.Context) error { return errors.New("nope") })
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded readiness = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Version != "1.0.0" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("unexpected version info %+v", info)
	}
}
