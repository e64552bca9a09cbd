package lsp

import (
	"os"
	"path/filepath"

	"bxls/internal/project"
)

// detectRoot prefers the client's workspace root and falls back to the
// nearest marked directory above the first opened file.
func detectRoot(workspaceRoot, firstFile string) string {
	if workspaceRoot != "" {
		return workspaceRoot
	}
	if dir := resolveStartDir(firstFile); dir != "" {
		if found, ok, err := project.FindRoot(dir); err == nil && ok {
			return found
		}
	}
	return ""
}

func resolveStartDir(path string) string {
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}
