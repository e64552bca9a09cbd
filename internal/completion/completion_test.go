package completion

import (
	"os"
	"path/filepath"
	"testing"

	"bxls/internal/document"
	"bxls/internal/source"
	"bxls/internal/symbols"
)

func build(t *testing.T, path, src string) *document.Document {
	t.Helper()
	return document.NewBuilder(nil, nil).Build(source.PathToURI(path), []byte(src), true)
}

func labels(items []Item) map[string]Item {
	out := make(map[string]Item, len(items))
	for _, it := range items {
		out[it.Label] = it
	}
	return out
}

func TestTemplateGetsComponents(t *testing.T) {
	doc := build(t, "/w/page.bxm", "<p>hi</p>\n")
	items := Complete(DefaultBook(), NewFacts(doc, 0, 0, "", nil))
	got := labels(items)
	it, ok := got["bx:http"]
	if !ok {
		t.Fatalf("missing bx:http in %d items", len(items))
	}
	if it.Kind != KindSnippet || it.SortText != "a" || it.Format != FormatSnippet {
		t.Fatalf("item = %+v", it)
	}
	if _, ok := got["arrayLen"]; ok {
		t.Fatal("templates should not offer built-in functions")
	}
}

func TestScriptGetsBIFs(t *testing.T) {
	doc := build(t, "/w/run.bxs", "x = 1;\n")
	got := labels(Complete(DefaultBook(), NewFacts(doc, 1, 0, "", nil)))
	it, ok := got["arrayAppend"]
	if !ok {
		t.Fatal("missing arrayAppend")
	}
	if it.Kind != KindFunction || it.Detail != "arrayAppend(array, value, [merge])" {
		t.Fatalf("item = %+v", it)
	}
	if _, ok := got["bx:http"]; ok {
		t.Fatal("scripts should not offer components")
	}
}

func TestClassGetsProperties(t *testing.T) {
	doc := build(t, "/w/User.bx", "class {\n\tproperty string name;\n\tfunction f() {\n\t\t\n\t}\n}\n")
	got := labels(Complete(DefaultBook(), NewFacts(doc, 3, 2, "", nil)))
	it, ok := got["name"]
	if !ok || it.Kind != KindProperty || it.Detail != "string" {
		t.Fatalf("property item = %+v (ok=%v)", it, ok)
	}
}

func TestImportCompletion(t *testing.T) {
	syms := symbols.NewCache("", nil)
	syms.Add("file:///w/models/UserService.bx", []symbols.ClassSymbol{{Name: "UserService"}})
	syms.Add("file:///w/models/Order.bx", []symbols.ClassSymbol{{Name: "Order"}})
	doc := build(t, "/w/run.bxs", "import models.user\n")
	items := Complete(DefaultBook(), NewFacts(doc, 0, 18, "", syms))
	if len(items) != 1 || items[0].Label != "UserService" || items[0].Kind != KindModule {
		t.Fatalf("items = %+v", items)
	}

	doc = build(t, "/w/run.bxs", "import j\n")
	got := labels(Complete(DefaultBook(), NewFacts(doc, 0, 8, "", syms)))
	if _, ok := got["java:"]; !ok {
		t.Fatalf("missing java: hint in %+v", got)
	}
	if _, ok := got["arrayLen"]; ok {
		t.Fatal("import context should end the rule chain")
	}
}

func TestNewCompletion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"models/User.bx", "models/Order.cfc", "models/notes.txt", "Main.bx"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("class {}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	doc := build(t, filepath.Join(dir, "Main.bx"), "class {\n\tfunction f() {\n\t\tx = new \n\t}\n}\n")
	got := labels(Complete(DefaultBook(), NewFacts(doc, 2, 10, "", nil)))
	if it, ok := got["models"]; !ok || it.Kind != KindFolder {
		t.Fatalf("folder item = %+v", got)
	}
	if it, ok := got["Main"]; !ok || it.Kind != KindConstructor || it.InsertText != "Main()" {
		t.Fatalf("class item = %+v", got)
	}

	doc = build(t, filepath.Join(dir, "Main.bx"), "class {\n\tfunction f() {\n\t\tx = new models.\n\t}\n}\n")
	got = labels(Complete(DefaultBook(), NewFacts(doc, 2, 17, "", nil)))
	if len(got) != 2 {
		t.Fatalf("items = %+v", got)
	}
	if _, ok := got["User"]; !ok {
		t.Fatal("missing User")
	}
	if _, ok := got["Order"]; !ok {
		t.Fatal("missing Order")
	}
}

func TestLastWord(t *testing.T) {
	cases := map[string]string{
		"import models.Us": "models.Us",
		"x = new ":         "",
		"new java:Foo":     "java:Foo",
	}
	for in, want := range cases {
		if got := lastWord(in); got != want {
			t.Errorf("lastWord(%q) = %q, want %q", in, got, want)
		}
	}
}
