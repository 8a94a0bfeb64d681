package detection

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Record is the content of one folder's detection sidecar: base name to
// detected labels.
type Record map[string][]string

// LoadRecord reads and decodes the sidecar named filename in folder.
func LoadRecord(folder, filename string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(folder, filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read detections: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode detections: %w", err)
	}
	if record == nil {
		// "null" decodes without error.
		return nil, errors.New("failed to decode detections: not an object")
	}
	return record, nil
}

// Reader looks up labels per file, reading each folder's sidecar at most once.
// A Reader is meant to live for one run; sidecars written after a folder was
// first read are not seen.
type Reader struct {
	filename string
	logger   *slog.Logger

	mu      sync.Mutex
	folders map[string]Record
}

// NewReader creates a Reader for sidecars named filename.
func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
		logger:   slog.Default().With("component", "detection"),
		folders:  make(map[string]Record),
	}
}

// record returns the folder's sidecar, or nil if it is missing or corrupt.
func (r *Reader) record(folder string) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.folders[folder]; ok {
		return rec
	}

	rec, err := LoadRecord(folder, r.filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Debug("no detections for folder", "folder", folder)
		} else {
			r.logger.Warn("ignoring unreadable detections", "folder", folder, "error", err)
		}
		rec = nil
	}
	r.folders[folder] = rec
	return rec
}

// Lookup returns the labels recorded for videoFile. analyzed is false if the
// file has no entry in its folder's sidecar.
func (r *Reader) Lookup(videoFile string) (labels []string, analyzed bool) {
	rec := r.record(filepath.Dir(videoFile))
	labels, analyzed = rec[filepath.Base(videoFile)]
	return labels, analyzed
}

// HasTargetObjects reports whether any of targetObjects was detected in
// videoFile. Files that were never analyzed have no target objects.
func (r *Reader) HasTargetObjects(videoFile string, targetObjects []string) bool {
	labels, _ := r.Lookup(videoFile)
	return Intersects(labels, targetObjects)
}

// Analyzed returns the paths that have a detection entry, in input order.
func (r *Reader) Analyzed(paths []string) []string {
	return r.filter(paths, true)
}

// Unanalyzed returns the paths still waiting for the detection pipeline, in
// input order.
func (r *Reader) Unanalyzed(paths []string) []string {
	return r.filter(paths, false)
}

func (r *Reader) filter(paths []string, analyzed bool) []string {
	var out []string
	for _, p := range paths {
		if _, ok := r.Lookup(p); ok == analyzed {
			out = append(out, p)
		}
	}
	return out
}

// Intersects reports whether labels and targets share an element.
func Intersects(labels, targets []string) bool {
	if len(labels) == 0 || len(targets) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}
	for _, l := range labels {
		if _, ok := set[l]; ok {
			return true
		}
	}
	return false
}
