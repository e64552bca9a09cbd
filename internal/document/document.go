// Package document turns source text into an immutable analyzed document:
// parse tree, syntax issues, diagnostics, code actions and indexes.
package document

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"bxls/internal/analysis"
	"bxls/internal/ast"
	"bxls/internal/diag"
	"bxls/internal/lint"
	"bxls/internal/parser"
	"bxls/internal/source"
)

// Document is one analyzed version of a file. It is never mutated after
// Build returns; edits produce a new Document.
type Document struct {
	URI  string
	Path string
	Kind source.Kind
	// Open is set for editor buffers. Closed documents are backed by disk.
	Open    bool
	ModTime time.Time

	File   *source.File
	Root   *ast.File
	Issues []parser.Issue

	Diagnostics []diag.Diagnostic
	Actions     []diag.CodeAction
	Outline     []OutlineEntry
	Functions   []*ast.FuncDecl
	Properties  []*ast.Property
}

// Source returns the document text.
func (d *Document) Source() string {
	if d == nil || d.File == nil {
		return ""
	}
	return string(d.File.Content)
}

// HasErrors reports whether any diagnostic is an error.
func (d *Document) HasErrors() bool {
	return diag.HasErrors(d.Diagnostics)
}

// Builder builds documents. The zero value parses and runs only the
// return type check.
type Builder struct {
	Registry  *lint.Registry
	Analyzers []*analysis.Analyzer
	MaxErrors int
	Log       *zap.Logger
	// NewID overrides the diagnostic data id generator.
	NewID func() string
}

// NewBuilder returns a builder running the built-in analyzers against
// registry.
func NewBuilder(registry *lint.Registry, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		Registry:  registry,
		Analyzers: analysis.Analyzers(),
		Log:       log,
	}
}

// Build parses content and computes everything derived from it.
func (b *Builder) Build(uri string, content []byte, open bool) *Document {
	path := source.URIToPath(uri)
	if path == "" {
		path = uri
	}
	res := parser.Parse(path, content, parser.Options{MaxErrors: b.MaxErrors})
	doc := &Document{
		URI:    uri,
		Path:   path,
		Kind:   source.KindOf(path),
		Open:   open,
		File:   res.File,
		Root:   res.Root,
		Issues: res.Issues,
	}
	b.analyze(doc)
	return doc
}

// Load reads the document from disk.
func (b *Builder) Load(uri string) (*Document, error) {
	path := source.URIToPath(uri)
	if path == "" {
		return nil, fmt.Errorf("not a file uri: %s", uri)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the workspace
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := b.Build(uri, content, false)
	doc.ModTime = info.ModTime()
	return doc, nil
}

func (b *Builder) logger() *zap.Logger {
	if b.Log == nil {
		return zap.NewNop()
	}
	return b.Log
}

func (b *Builder) analyze(doc *Document) {
	bag := diag.NewBag()
	for _, is := range doc.Issues {
		bag.Add(diag.NewError(diag.CodeSyntax, is.Span, is.Message))
	}
	if doc.Root != nil {
		pass := analysis.NewPass(doc.File, doc.Root, doc.Kind, b.Registry, bag)
		if b.NewID != nil {
			pass.NewID = b.NewID
		}
		log := b.logger()
		analysis.Run(pass, []*analysis.Analyzer{analysis.AnalyzerReturnType}, log)
		analysis.Run(pass, b.Analyzers, log)

		doc.Outline = buildOutline(doc.Root)
		doc.Functions = ast.Functions(doc.Root)
		if doc.Kind.IsComponent() && doc.Root.Class != nil {
			doc.Properties = doc.Root.Class.Properties
		}
	}
	bag.Dedup()
	bag.Sort()
	doc.Diagnostics = bag.Items()
	doc.Actions = bag.Actions()
}

// ActionsFor returns the code actions whose diagnostic carries one of ids.
func (d *Document) ActionsFor(ids map[string]struct{}) []diag.CodeAction {
	if len(ids) == 0 {
		return nil
	}
	var out []diag.CodeAction
	for _, a := range d.Actions {
		if _, ok := ids[a.Diagnostic.ID()]; ok {
			out = append(out, a)
		}
	}
	return out
}
