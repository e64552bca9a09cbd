package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRelativePathOutsideBase(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	otherDir := filepath.Join(tmp, "other")

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		t.Fatalf("failed to create base dir: %v", err)
	}
	if err := os.MkdirAll(otherDir, 0o755); err != nil {
		t.Fatalf("failed to create other dir: %v", err)
	}

	if rel, ok := RelativePath(filepath.Join(otherDir, "file.cfc"), baseDir); ok {
		t.Fatalf("expected outside path to be rejected, got %q", rel)
	}
}

func TestRelativePathInsideBaseUsesSlashes(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "deep", "file.cfc")

	got, ok := RelativePath(target, base)
	if !ok {
		t.Fatalf("expected %q to be inside %q", target, base)
	}
	if got != "nested/deep/file.cfc" {
		t.Fatalf("expected relative path %q, got %q", "nested/deep/file.cfc", got)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		kind Kind
		cf   bool
	}{
		{"a/Foo.bx", KindClass, false},
		{"a/run.bxs", KindScript, false},
		{"a/page.bxm", KindTemplate, false},
		{"a/Foo.cfc", KindCFComponent, true},
		{"a/page.CFM", KindCFTemplate, true},
		{"a/page.cfml", KindCFTemplate, true},
		{"a/lib.cfs", KindCFScript, false},
		{"a/readme.md", KindUnknown, false},
	}
	for _, tt := range tests {
		got := KindOf(tt.path)
		if got != tt.kind {
			t.Errorf("KindOf(%q) = %v, want %v", tt.path, got, tt.kind)
		}
		if got.IsCF() != tt.cf {
			t.Errorf("KindOf(%q).IsCF() = %v, want %v", tt.path, got.IsCF(), tt.cf)
		}
	}
}
