package lint

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoaderTTLAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"exclude": ["a/**"]}`)
	c := &clock{now: time.Unix(1000, 0)}
	l := NewLoader(dir, nil)
	l.Now = c.Now

	if got := l.Get().Exclude; len(got) != 1 {
		t.Fatalf("exclude = %v", got)
	}

	writeConfig(t, dir, `{"exclude": ["a/**", "b/**"]}`)
	c.now = c.now.Add(time.Second)
	if got := l.Get().Exclude; len(got) != 1 {
		t.Fatalf("within TTL exclude = %v, want cached", got)
	}

	c.now = c.now.Add(DefaultTTL)
	if got := l.Get().Exclude; len(got) != 2 {
		t.Fatalf("after TTL exclude = %v", got)
	}

	writeConfig(t, dir, `{}`)
	l.Invalidate()
	if got := l.Get().Exclude; len(got) != 0 {
		t.Fatalf("after invalidate exclude = %v", got)
	}
}

func TestLoaderKeepsLastGood(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"include": ["src/**"]}`)
	l := NewLoader(dir, nil)
	if len(l.Get().Include) != 1 {
		t.Fatal("expected include from disk")
	}

	writeConfig(t, dir, `{"include": [`)
	cfg, err := l.Reload()
	if err == nil {
		t.Fatal("expected reload error for malformed config")
	}
	if len(cfg.Include) != 1 {
		t.Fatalf("include = %v, want previous config", cfg.Include)
	}
	l.Invalidate()
	if len(l.Get().Include) != 1 {
		t.Fatal("Get should keep the previous config")
	}
}

func TestLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	l := NewLoader(dir, nil)
	cfg := l.Get()
	if cfg == nil || len(cfg.Diagnostics) != 0 {
		t.Fatalf("cfg = %+v, want empty", cfg)
	}

	noRoot := NewLoader("", nil)
	if noRoot.Get() == nil || noRoot.Path() != "" {
		t.Fatal("rootless loader should serve the default config")
	}
	noRoot.SetRoot(dir)
	if noRoot.Path() != filepath.Join(dir, ConfigFileName) {
		t.Fatalf("path = %q", noRoot.Path())
	}
}
