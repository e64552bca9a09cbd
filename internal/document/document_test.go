package document

import (
	"os"
	"path/filepath"
	"testing"

	"bxls/internal/diag"
	"bxls/internal/lint"
	"bxls/internal/source"
)

func newBuilder() *Builder {
	b := NewBuilder(lint.NewRegistry(nil, lint.Builtin()...), nil)
	b.NewID = func() string { return "fixed" }
	return b
}

func TestBuildSyntaxErrors(t *testing.T) {
	doc := newBuilder().Build("file:///w/bad.bxs", []byte("x = ;\n"), true)
	if doc.Root != nil {
		t.Fatal("expected no root")
	}
	if len(doc.Issues) == 0 || len(doc.Diagnostics) != len(doc.Issues) {
		t.Fatalf("issues = %d, diagnostics = %d", len(doc.Issues), len(doc.Diagnostics))
	}
	d := doc.Diagnostics[0]
	if d.Severity != diag.SevError || d.Code != diag.CodeSyntax || d.Source != diag.Source {
		t.Fatalf("diagnostic = %+v", d)
	}
	if doc.Outline != nil || doc.Functions != nil {
		t.Fatal("derived data should be empty without a root")
	}
}

func TestBuildComponent(t *testing.T) {
	src := `component {
	property name="cache";

	function run( a ) {
		total = 1;
		return helper();
	}

	void function helper() {
		return 1;
	}
}
`
	doc := newBuilder().Build("file:///w/Thing.cfc", []byte(src), true)
	if doc.Root == nil {
		t.Fatalf("issues = %+v", doc.Issues)
	}
	if doc.Kind != source.KindCFComponent {
		t.Fatalf("kind = %v", doc.Kind)
	}
	codes := map[string]int{}
	for _, d := range doc.Diagnostics {
		codes[d.Code]++
	}
	want := map[string]int{
		diag.CodeUnscopedVariable: 1,
		diag.CodeUnusedVariable:   2, // a, total
		diag.CodeReturnType:       1,
	}
	for code, n := range want {
		if codes[code] != n {
			t.Errorf("%s = %d, want %d (all: %+v)", code, codes[code], n, doc.Diagnostics)
		}
	}
	for i := 1; i < len(doc.Diagnostics); i++ {
		if doc.Diagnostics[i].Range.Start.Offset < doc.Diagnostics[i-1].Range.Start.Offset {
			t.Fatal("diagnostics not sorted")
		}
	}
	if len(doc.Properties) != 1 || len(doc.Functions) != 2 {
		t.Fatalf("properties = %d functions = %d", len(doc.Properties), len(doc.Functions))
	}
	if len(doc.Outline) != 1 || len(doc.Outline[0].Children) != 3 {
		t.Fatalf("outline = %+v", doc.Outline)
	}

	got := doc.ActionsFor(map[string]struct{}{"fixed": {}})
	if len(got) != 1 || got[0].Title != "Add var keyword to total = 1" {
		t.Fatalf("actions = %+v", got)
	}
	if got := doc.ActionsFor(nil); got != nil {
		t.Fatalf("actions without ids = %+v", got)
	}
}

func TestDefinitionAndReferences(t *testing.T) {
	src := "function greet() {}\ngreet();\nx = greet();\n"
	doc := newBuilder().Build("file:///w/s.bxs", []byte(src), true)
	if doc.Root == nil {
		t.Fatalf("issues = %+v", doc.Issues)
	}
	defs := doc.Definition(2, 1)
	if len(defs) != 1 || defs[0].Start.Line != 1 || defs[0].Start.Column != 9 {
		t.Fatalf("definition = %+v", defs)
	}
	refs := doc.References(1, 10, false)
	if len(refs) != 2 || refs[0].Start.Line != 2 || refs[1].Start.Line != 3 {
		t.Fatalf("references = %+v", refs)
	}
	if refs := doc.References(1, 10, true); len(refs) != 3 {
		t.Fatalf("references with decl = %d", len(refs))
	}
	if got := doc.Definition(3, 0); got != nil {
		t.Fatalf("definition on variable = %+v", got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.bxs")
	if err := os.WriteFile(path, []byte("function f() { return 1; }\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	doc, err := newBuilder().Load(source.PathToURI(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Open || doc.ModTime.IsZero() || doc.Root == nil {
		t.Fatalf("doc = %+v", doc)
	}
	if _, err := newBuilder().Load(source.PathToURI(path + ".missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
