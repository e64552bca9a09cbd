package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bxls/internal/diag"
	"bxls/internal/source"
)

func sampleReport() FileReport {
	content := "component {\n\tfunction run() {\n\t\ttotal = 1;\n\t}\n}\n"
	f := source.NewFile("/home/user/project/src/Thing.cfc", []byte(content))
	start := f.OffsetAt(2, 2)
	span := f.Span(start, start+uint32(len("total = 1")))
	d := diag.New(diag.SevWarning, diag.CodeUnscopedVariable, span, "Variable [total] is not scoped.").
		WithData(diag.Data{VariableName: "total", ID: "fix-1"})
	action := diag.QuickFix(d, "Add var keyword to total = 1", diag.TextEdit{Range: span, NewText: "var total = 1"})
	errSpan := f.Span(0, uint32(len("component")))
	return FileReport{
		File: f,
		Diagnostics: []diag.Diagnostic{
			diag.NewError(diag.CodeSyntax, errSpan, "boom"),
			d,
		},
		Actions: []diag.CodeAction{action},
	}
}

func TestPathModes(t *testing.T) {
	tests := []struct {
		name string
		mode PathMode
		base string
		want string
	}{
		{"absolute", PathModeAbsolute, "", "/home/user/project/src/Thing.cfc:"},
		{"relative", PathModeRelative, "/home/user/project", "src/Thing.cfc:"},
		{"basename", PathModeBasename, "", "Thing.cfc:"},
		{"auto inside", PathModeAuto, "/home/user/project", "src/Thing.cfc:"},
		{"auto outside", PathModeAuto, "/elsewhere", "/home/user/project/src/Thing.cfc:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Pretty(&buf, []FileReport{sampleReport()}, PrettyOpts{PathMode: tt.mode, BaseDir: tt.base})
			if err != nil {
				t.Fatalf("pretty: %v", err)
			}
			if !strings.HasPrefix(buf.String(), tt.want) {
				t.Fatalf("output starts with %q, want %q", firstLine(buf.String()), tt.want)
			}
		})
	}
}

func TestPrettySnippet(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyOpts{PathMode: PathModeBasename, Context: 1, ShowFixes: true, ShowPreview: true}
	if err := Pretty(&buf, []FileReport{sampleReport()}, opts); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Thing.cfc:1:1: error syntax: boom\n",
		"Thing.cfc:3:3: warning unscopedVariable: Variable [total] is not scoped.\n",
		"2 |     function run() {\n",
		"3 |         total = 1;\n",
		"  |         ^~~~~~~~~\n",
		"= fix: Add var keyword to total = 1\n",
		"- " + strings.Repeat(" ", 8) + "total = 1;",
		"+ " + strings.Repeat(" ", 8) + "var total = 1;",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color codes without Color")
	}
}

func TestPrettyMinSeverity(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, []FileReport{sampleReport()}, PrettyOpts{MinSeverity: diag.SevError}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if strings.Contains(buf.String(), "unscopedVariable") {
		t.Fatalf("warning printed:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, []FileReport{sampleReport()}, PrettyOpts{Color: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("expected color codes")
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	c := Count([]FileReport{sampleReport(), {}}, 0)
	if c.Errors != 1 || c.Warnings != 1 || c.Files != 1 || c.Total() != 2 {
		t.Fatalf("counts = %+v", c)
	}
	if err := Summary(&buf, c, false); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got := buf.String(); got != "1 error, 1 warning in 1 file\n" {
		t.Fatalf("summary = %q", got)
	}
	buf.Reset()
	if err := Summary(&buf, Counts{}, false); err != nil || buf.String() != "no problems found\n" {
		t.Fatalf("empty summary = %q, %v", buf.String(), err)
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	opts := JSONOpts{PathMode: PathModeRelative, BaseDir: "/home/user/project", IncludeFixes: true, IncludePreviews: true}
	if err := JSON(&buf, []FileReport{sampleReport()}, opts); err != nil {
		t.Fatalf("json: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 2 || out.Errors != 1 || out.Warnings != 1 || len(out.Diagnostics) != 2 {
		t.Fatalf("output = %+v", out)
	}
	w := out.Diagnostics[1]
	if w.Location.File != "src/Thing.cfc" || w.Location.StartLine != 3 || w.Location.StartCol != 3 {
		t.Fatalf("location = %+v", w.Location)
	}
	if len(w.Fixes) != 1 || len(w.Fixes[0].Edits) != 1 {
		t.Fatalf("fixes = %+v", w.Fixes)
	}
	e := w.Fixes[0].Edits[0]
	if e.OldText != "total = 1" || e.NewText != "var total = 1" || len(e.AfterLines) != 1 {
		t.Fatalf("edit = %+v", e)
	}
	if len(out.Diagnostics[0].Fixes) != 0 {
		t.Fatal("syntax error has no fix")
	}
}

func TestJSONMax(t *testing.T) {
	out := BuildDiagnosticsOutput([]FileReport{sampleReport()}, JSONOpts{Max: 1})
	if len(out.Diagnostics) != 1 || out.Count != 2 {
		t.Fatalf("output = %+v", out)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func TestPatchOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Patch(&buf, []FileReport{sampleReport()}, PatchOpts{BaseDir: "/home/user/project"}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"--- a/src/Thing.cfc\n",
		"+++ b/src/Thing.cfc\n",
		"@@ -3,1 +3,1 @@\n",
		"-\t\ttotal = 1;\n",
		"+\t\tvar total = 1;\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestPatchEmptyWithoutFixes(t *testing.T) {
	var buf bytes.Buffer
	if err := Patch(&buf, []FileReport{sampleReport()}, PatchOpts{MinSeverity: diag.SevError}); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got:\n%s", buf.String())
	}
}
