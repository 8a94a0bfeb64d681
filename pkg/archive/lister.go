package archive

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ListVideoFiles walks root recursively and returns the paths of all regular
// files whose extension, compared case-insensitively, is in extensions.
// Paths are returned in lexical walk order.
//
// An unreadable root is an error. Unreadable folders below it are logged and
// skipped.
func ListVideoFiles(root string, extensions []string) ([]string, error) {
	logger := slog.Default().With("component", "archive")

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("archive root %q is not a directory", root)
	}

	allowed := NormalizeExtensions(extensions)

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk archive root: %w", err)
	}

	logger.Debug("listed video files", "root", root, "count", len(files))
	return files, nil
}

// NormalizeExtensions returns a lower-cased lookup set of extensions.
func NormalizeExtensions(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = true
	}
	return set
}
