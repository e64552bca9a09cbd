// Package project locates the workspace root and loads user settings.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RootMarkers identify a workspace root, in lookup order.
var RootMarkers = []string{".boxlang-lsp.json", "box.json", SettingsFileName}

// FindRoot walks up from startDir to the nearest directory holding one of
// RootMarkers.
func FindRoot(startDir string) (root string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		for _, marker := range RootMarkers {
			candidate := filepath.Join(dir, marker)
			if _, err := os.Stat(candidate); err == nil {
				return dir, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// RootOr returns the detected root above startDir, or startDir itself.
func RootOr(startDir string) string {
	if root, ok, err := FindRoot(startDir); err == nil && ok {
		return root
	}
	if abs, err := filepath.Abs(startDir); err == nil {
		return abs
	}
	return startDir
}
