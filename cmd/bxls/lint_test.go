package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"bxls/internal/diag"
	"bxls/internal/diagfmt"
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func sampleWorkspace(t *testing.T) string {
	return writeWorkspace(t, map[string]string{
		"Thing.cfc":  "component {\n\tfunction run() {\n\t\ttotal = 1;\n\t\treturn total;\n\t}\n}\n",
		"bad.bxs":    "x = ;\n",
		"ok.bxs":     "function f() {\n\treturn 1;\n}\n",
		"notes.txt":  "total = 1;\n",
		".git/x.bxs": "y = ;\n",
	})
}

func TestLintPretty(t *testing.T) {
	dir := sampleWorkspace(t)
	var out, errOut bytes.Buffer
	counts, err := runLint(context.Background(), &out, &errOut, dir, lintOptions{format: "pretty", ui: uiModeOff, timings: true}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("runLint: %v", err)
	}
	if counts.Errors == 0 || counts.Warnings != 1 || counts.Files != 2 {
		t.Fatalf("counts = %+v", counts)
	}
	got := out.String()
	for _, want := range []string{
		"Thing.cfc:3:3: warning unscopedVariable: Variable [total] is not scoped.",
		"bad.bxs:1:",
		"1 warning in 2 files",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "x.bxs") {
		t.Errorf("hidden directories should be skipped:\n%s", got)
	}
	if !strings.Contains(errOut.String(), "timings:") {
		t.Errorf("timings missing: %q", errOut.String())
	}
}

func TestLintJSONAndSeverityFilter(t *testing.T) {
	dir := sampleWorkspace(t)
	var out bytes.Buffer
	counts, err := runLint(context.Background(), &out, &bytes.Buffer{}, dir, lintOptions{format: "json", ui: uiModeOff, minSeverity: diag.SevError}, nil)
	if err != nil {
		t.Fatalf("runLint: %v", err)
	}
	if counts.Warnings != 0 || counts.Errors == 0 {
		t.Fatalf("counts = %+v", counts)
	}
	var payload diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if payload.Warnings != 0 || payload.Files != 1 {
		t.Fatalf("payload = %+v", payload)
	}
	for _, d := range payload.Diagnostics {
		if d.Severity != "error" || d.Location.File != "bad.bxs" {
			t.Errorf("unexpected diagnostic %+v", d)
		}
	}
}

func TestLintHonoursConfigExclude(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{
		".boxlang-lsp.json": `{"exclude": ["legacy/**"]}`,
		"legacy/old.bxs":    "x = ;\n",
		"app.bxs":           "function f() {\n\treturn 1;\n}\n",
	})
	var out bytes.Buffer
	counts, err := runLint(context.Background(), &out, &bytes.Buffer{}, dir, lintOptions{format: "pretty", ui: uiModeOff}, nil)
	if err != nil {
		t.Fatalf("runLint: %v", err)
	}
	if counts.Total() != 0 {
		t.Fatalf("counts = %+v\n%s", counts, out.String())
	}
	if !strings.Contains(out.String(), "no problems found") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestLintRejectsBadInput(t *testing.T) {
	dir := sampleWorkspace(t)
	if _, err := runLint(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, dir, lintOptions{format: "xml"}, nil); err == nil {
		t.Fatal("expected unsupported format error")
	}
	file := filepath.Join(dir, "ok.bxs")
	if _, err := runLint(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, file, lintOptions{format: "pretty"}, nil); err == nil {
		t.Fatal("expected not a directory error")
	}
}

func TestReadModes(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uiMode
	}{{"", uiModeAuto}, {"AUTO", uiModeAuto}, {"on", uiModeOn}, {" off ", uiModeOff}} {
		got, err := readUIMode(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("readUIMode(%q) = %q, %v", tc.in, got, err)
		}
	}
	if _, err := readColorMode("sometimes"); err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("err = %v", err)
	}
	if _, err := readSeverity("fatal"); err == nil {
		t.Fatal("expected severity error")
	}
	if !shouldUseTUI(uiModeOn, nil) || shouldUseTUI(uiModeOff, nil) {
		t.Fatal("explicit modes should not consult the terminal")
	}
}

func TestParseLogLevel(t *testing.T) {
	if _, err := parseLogLevel("trace"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := newLogger("debug", true, os.Stderr); err != nil {
		t.Fatalf("newLogger: %v", err)
	}
}

func TestLoadSettingsFromRoot(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{"bxls.toml": "parseCacheSize = 12\nscanJobs = 2\n"})
	s, err := loadSettings("", dir)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if s.ParseCacheSize != 12 || s.ScanJobs != 2 || !s.ProcessDiagnosticsInParallel {
		t.Fatalf("settings = %+v", s)
	}
	s, err = loadSettings("", t.TempDir())
	if err != nil || s.ParseCacheSize == 12 {
		t.Fatalf("defaults = %+v, %v", s, err)
	}
}

func TestVersionOutput(t *testing.T) {
	var out bytes.Buffer
	if err := renderVersionJSON(&out, true); err != nil {
		t.Fatalf("render: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "bxls" || payload.Version == "" || payload.GitCommit == "" {
		t.Fatalf("payload = %+v", payload)
	}
	out.Reset()
	if err := renderVersionPretty(&out, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out.String(), "bxls ") {
		t.Fatalf("pretty = %q", out.String())
	}
}

func TestLintPatch(t *testing.T) {
	dir := sampleWorkspace(t)
	var out bytes.Buffer
	if _, err := runLint(context.Background(), &out, &bytes.Buffer{}, dir, lintOptions{format: "patch", ui: uiModeOff}, nil); err != nil {
		t.Fatalf("runLint: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "--- a/Thing.cfc\n") || !strings.Contains(got, "+\t\tvar total = 1;\n") {
		t.Fatalf("patch output:\n%s", got)
	}
}
