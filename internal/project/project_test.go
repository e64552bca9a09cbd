package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "box.json"), []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "models", "user")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(nested, "User.bx")
	if err := os.WriteFile(file, []byte("class {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{nested, file} {
		got, ok, err := FindRoot(start)
		if err != nil || !ok {
			t.Fatalf("FindRoot(%s) = %q %v %v", start, got, ok, err)
		}
		if got != root {
			t.Fatalf("root = %q, want %q", got, root)
		}
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	data := "enableBackgroundParsing = true\nparseCacheSize = 0\nscanJobs = 3\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.EnableBackgroundParsing || !s.ProcessDiagnosticsInParallel {
		t.Fatalf("settings = %+v", s)
	}
	if s.ParseCacheSize != DefaultParseCacheSize {
		t.Fatalf("parseCacheSize = %d", s.ParseCacheSize)
	}
	if s.Jobs() != 3 {
		t.Fatalf("jobs = %d", s.Jobs())
	}
}

func TestLoadSettingsUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), SettingsFileName)
	if err := os.WriteFile(path, []byte("bogus = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSettingsMerge(t *testing.T) {
	s := DefaultSettings()
	merged, err := s.Merge([]byte(`{"processDiagnosticsInParallel": false, "enableExperimentalDiagnostics": true}`))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if merged.ProcessDiagnosticsInParallel || !merged.EnableExperimentalDiagnostics {
		t.Fatalf("merged = %+v", merged)
	}
	if merged.ParseCacheSize != DefaultParseCacheSize {
		t.Fatalf("parseCacheSize = %d", merged.ParseCacheSize)
	}
	if merged.Jobs() != 1 {
		t.Fatalf("jobs = %d", merged.Jobs())
	}
	if _, err := s.Merge([]byte(`{"scanJobs": "x"}`)); err == nil {
		t.Fatal("expected decode error")
	}
}
