package sizecache

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrNotCached is returned by Store.Load when a folder has no cached size.
var ErrNotCached = errors.New("size not cached")

// ErrStale is returned by Store.Load when the folder changed after its size
// was cached.
var ErrStale = errors.New("cached size is stale")

// Store persists one size value per folder.
type Store interface {
	// Load returns the cached size of folder in GB. It returns an error
	// wrapping ErrNotCached if nothing is cached, ErrStale if the folder
	// changed since, or another error if the cached value cannot be read or
	// is not a finite, non-negative number.
	Load(folder string) (float64, error)

	// Save records the size of folder in GB, replacing any previous value.
	Save(folder string, gb float64) error

	// Delete forgets the cached size of folder. Deleting a missing entry is
	// not an error.
	Delete(folder string) error
}

// minDecimals is the minimum number of decimals written to a sidecar.
const minDecimals = 9

// SidecarStore keeps each folder's size in a text file inside the folder.
type SidecarStore struct {
	// Filename is the sidecar file name, e.g. "this_folder_size.txt".
	Filename string
}

// NewSidecarStore creates a SidecarStore using filename.
func NewSidecarStore(filename string) *SidecarStore {
	return &SidecarStore{Filename: filename}
}

func (s *SidecarStore) path(folder string) string {
	return filepath.Join(folder, s.Filename)
}

// Load reads and parses the folder's sidecar.
//
// Adding, removing or renaming an entry bumps the folder's mtime, while
// rewriting the sidecar in place does not. A folder modified after its
// sidecar was last written therefore holds files the value does not
// account for, and the sidecar is reported as ErrStale. Appending to an
// existing clip is not detected.
func (s *SidecarStore) Load(folder string) (float64, error) {
	path := s.path(folder)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", folder, ErrNotCached)
		}
		return 0, fmt.Errorf("failed to stat size sidecar: %w", err)
	}
	dir, err := os.Stat(folder)
	if err != nil {
		return 0, fmt.Errorf("failed to stat folder: %w", err)
	}
	if dir.ModTime().After(info.ModTime()) {
		return 0, fmt.Errorf("%s: %w", folder, ErrStale)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%s: %w", folder, ErrNotCached)
		}
		return 0, fmt.Errorf("failed to read size sidecar: %w", err)
	}
	return ParseSize(string(data))
}

// Save writes the sidecar, overwriting any previous content.
func (s *SidecarStore) Save(folder string, gb float64) error {
	if err := os.WriteFile(s.path(folder), []byte(FormatSize(gb)), 0644); err != nil {
		return fmt.Errorf("failed to write size sidecar: %w", err)
	}
	return nil
}

// Delete removes the sidecar.
func (s *SidecarStore) Delete(folder string) error {
	if err := os.Remove(s.path(folder)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove size sidecar: %w", err)
	}
	return nil
}

// FormatSize renders a GB value as written to a sidecar: a base-10 decimal
// with at least nine decimals that parses back to exactly gb.
func FormatSize(gb float64) string {
	s := strconv.FormatFloat(gb, 'f', -1, 64)
	decimals := 0
	if i := strings.IndexByte(s, '.'); i >= 0 {
		decimals = len(s) - i - 1
	}
	if decimals < minDecimals {
		s = strconv.FormatFloat(gb, 'f', minDecimals, 64)
	}
	return s
}

// ParseSize parses a sidecar value. Surrounding whitespace is ignored.
func ParseSize(s string) (float64, error) {
	gb, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cached size %q: %w", strings.TrimSpace(s), err)
	}
	if math.IsNaN(gb) || math.IsInf(gb, 0) || gb < 0 {
		return 0, fmt.Errorf("invalid cached size %v", gb)
	}
	return gb, nil
}

// MemoryStore is an in-memory Store for tests and dry experiments.
type MemoryStore struct {
	mu    sync.RWMutex
	sizes map[string]float64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sizes: make(map[string]float64)}
}

// Load returns the stored size.
func (m *MemoryStore) Load(folder string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gb, ok := m.sizes[folder]
	if !ok {
		return 0, fmt.Errorf("%s: %w", folder, ErrNotCached)
	}
	return gb, nil
}

// Save stores the size.
func (m *MemoryStore) Save(folder string, gb float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes[folder] = gb
	return nil
}

// Delete forgets the size.
func (m *MemoryStore) Delete(folder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sizes, folder)
	return nil
}

// Len returns the number of cached folders.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sizes)
}
