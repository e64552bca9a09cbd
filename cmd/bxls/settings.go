package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"bxls/internal/project"
)

// loadSettings reads the --settings file, or bxls.toml in root when the
// flag is empty and the file exists. Without either it returns defaults.
func loadSettings(path, root string) (project.Settings, error) {
	if path == "" && root != "" {
		candidate := filepath.Join(root, project.SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		} else if !errors.Is(err, fs.ErrNotExist) {
			return project.DefaultSettings(), err
		}
	}
	if path == "" {
		return project.DefaultSettings(), nil
	}
	return project.LoadSettings(path)
}
