package sizecache

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const kib = 1024

func writeSized(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func gbOf(bytes int) float64 {
	return float64(bytes) / BytesPerGB
}

func TestCache_GetOrComputeCountsAndPersists(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), 3*kib)
	writeSized(t, filepath.Join(folder, "b.mp4"), 1*kib)
	if err := os.Mkdir(filepath.Join(folder, "nested"), 0755); err != nil {
		t.Fatal(err)
	}
	writeSized(t, filepath.Join(folder, "nested", "c.mp4"), 8*kib)

	store := NewSidecarStore("size.txt")
	cache := New(store, Options{Exclude: []string{"size.txt"}})

	if got := cache.GetOrCompute(folder); got != gbOf(4*kib) {
		t.Fatalf("GetOrCompute = %v, want %v", got, gbOf(4*kib))
	}
	if gb, err := store.Load(folder); err != nil || gb != gbOf(4*kib) {
		t.Errorf("persisted = %v, %v", gb, err)
	}

	// The sidecar itself never counts.
	if got := cache.Invalidate(folder); got != gbOf(4*kib) {
		t.Errorf("Invalidate = %v, want %v", got, gbOf(4*kib))
	}

	stats := cache.Stats()
	if stats.Misses != 1 || stats.Hits != 0 || stats.Recounts != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCache_TrustsCachedValue(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), 2*kib)

	store := NewMemoryStore()
	_ = store.Save(folder, 42)
	cache := New(store, Options{})

	if got := cache.GetOrCompute(folder); got != 42 {
		t.Errorf("expected cached value 42, got %v", got)
	}
	if got := cache.Invalidate(folder); got != gbOf(2*kib) {
		t.Errorf("Invalidate = %v, want %v", got, gbOf(2*kib))
	}
	if got := cache.GetOrCompute(folder); got != gbOf(2*kib) {
		t.Errorf("GetOrCompute after invalidate = %v", got)
	}
	if stats := cache.Stats(); stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %+v", stats)
	}
}

func TestCache_CorruptCacheIsMiss(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), kib)
	if err := os.WriteFile(filepath.Join(folder, "size.txt"), []byte("-3"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := New(NewSidecarStore("size.txt"), Options{Exclude: []string{"size.txt"}})
	if got := cache.GetOrCompute(folder); got != gbOf(kib) {
		t.Errorf("GetOrCompute = %v, want %v", got, gbOf(kib))
	}

	data, _ := os.ReadFile(filepath.Join(folder, "size.txt"))
	if strings.HasPrefix(string(data), "-") {
		t.Errorf("corrupt sidecar was not overwritten: %q", data)
	}
}

func TestCache_Include(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), kib)
	writeSized(t, filepath.Join(folder, "detected_objects.json"), 5*kib)

	cache := New(NewMemoryStore(), Options{
		Include: func(name string) bool { return filepath.Ext(name) == ".mp4" },
	})
	if got := cache.GetOrCompute(folder); got != gbOf(kib) {
		t.Errorf("GetOrCompute = %v, want %v", got, gbOf(kib))
	}
}

func TestCache_Measure(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), 2*kib)
	writeSized(t, filepath.Join(folder, "b.mp4"), 3*kib)

	store := NewMemoryStore()
	cache := New(store, Options{})

	if got := cache.Measure(folder, map[string]bool{"b.mp4": true}); got != gbOf(2*kib) {
		t.Errorf("Measure = %v, want %v", got, gbOf(2*kib))
	}
	if store.Len() != 0 {
		t.Error("Measure must not persist")
	}
}

func TestCache_VanishedFolder(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "gone")
	store := NewMemoryStore()
	cache := New(store, Options{})

	if got := cache.GetOrCompute(folder); got != 0 {
		t.Errorf("expected 0 for vanished folder, got %v", got)
	}
	if store.Len() != 0 {
		t.Error("size of a vanished folder must not be persisted")
	}
}

func TestCache_Forget(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Save("/a", 1)
	cache := New(store, Options{})

	cache.Forget("/a")
	if store.Len() != 0 {
		t.Error("expected cached size to be dropped")
	}
}

// failingStore caches nothing and fails every write.
type failingStore struct {
	saves int
}

func (s *failingStore) Load(folder string) (float64, error) {
	return 0, ErrNotCached
}

func (s *failingStore) Save(folder string, gb float64) error {
	s.saves++
	return errors.New("read-only file system")
}

func (s *failingStore) Delete(folder string) error {
	return errors.New("read-only file system")
}

func TestCache_WriteFailureKeepsCountedSize(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelWarn})))
	defer slog.SetDefault(prev)

	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), 3*kib)

	store := &failingStore{}
	cache := New(store, Options{})

	if got := cache.GetOrCompute(folder); got != gbOf(3*kib) {
		t.Errorf("GetOrCompute = %v, want %v", got, gbOf(3*kib))
	}

	writeSized(t, filepath.Join(folder, "b.mp4"), kib)
	if got := cache.Invalidate(folder); got != gbOf(4*kib) {
		t.Errorf("Invalidate = %v, want %v", got, gbOf(4*kib))
	}

	if store.saves != 2 {
		t.Errorf("saves = %d, want 2", store.saves)
	}
	if !strings.Contains(logs.String(), "failed to persist folder size") {
		t.Errorf("expected a warning for the failed write, got:\n%s", logs.String())
	}
}

func TestCache_StaleSidecarIsRecounted(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), kib)

	store := NewSidecarStore("size.txt")
	cache := New(store, Options{Exclude: []string{"size.txt"}})
	if got := cache.GetOrCompute(folder); got != gbOf(kib) {
		t.Fatalf("GetOrCompute = %v, want %v", got, gbOf(kib))
	}

	// The sidecar was written by an earlier run; a clip arrived since.
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(folder, "size.txt"), past, past); err != nil {
		t.Fatal(err)
	}
	writeSized(t, filepath.Join(folder, "b.mp4"), 4*kib)

	if got := cache.GetOrCompute(folder); got != gbOf(5*kib) {
		t.Errorf("GetOrCompute after new clip = %v, want %v", got, gbOf(5*kib))
	}
	if gb, err := store.Load(folder); err != nil || gb != gbOf(5*kib) {
		t.Errorf("refreshed sidecar = %v, %v; want %v", gb, err, gbOf(5*kib))
	}
	if stats := cache.Stats(); stats.Misses != 2 || stats.Hits != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCache_ReadOnly(t *testing.T) {
	folder := t.TempDir()
	writeSized(t, filepath.Join(folder, "a.mp4"), 2*kib)

	store := NewMemoryStore()
	cache := New(store, Options{ReadOnly: true})

	if got := cache.GetOrCompute(folder); got != gbOf(2*kib) {
		t.Errorf("GetOrCompute = %v, want %v", got, gbOf(2*kib))
	}
	if got := cache.Invalidate(folder); got != gbOf(2*kib) {
		t.Errorf("Invalidate = %v, want %v", got, gbOf(2*kib))
	}
	if store.Len() != 0 {
		t.Error("read-only cache must not persist")
	}

	_ = store.Save("/kept", 1)
	cache.Forget("/kept")
	if store.Len() != 1 {
		t.Error("read-only cache must not forget")
	}
}
