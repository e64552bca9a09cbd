package document

import (
	"bxls/internal/ast"
	"bxls/internal/source"
)

// SymbolKind uses the LSP numbering.
type SymbolKind int

const (
	SymbolClass     SymbolKind = 5
	SymbolMethod    SymbolKind = 6
	SymbolProperty  SymbolKind = 7
	SymbolInterface SymbolKind = 11
	SymbolFunction  SymbolKind = 12
)

// OutlineEntry is one node of the document outline.
type OutlineEntry struct {
	Name      string
	Detail    string
	Kind      SymbolKind
	Span      source.Span
	Selection source.Span
	Children  []OutlineEntry
}

func buildOutline(root *ast.File) []OutlineEntry {
	var out []OutlineEntry
	if c := root.Class; c != nil {
		entry := OutlineEntry{
			Name:      c.Name,
			Detail:    c.Keyword,
			Kind:      SymbolClass,
			Span:      c.Span(),
			Selection: c.Span(),
		}
		if c.Keyword == "interface" {
			entry.Kind = SymbolInterface
		}
		for _, p := range c.Properties {
			entry.Children = append(entry.Children, OutlineEntry{
				Name:      p.Name,
				Detail:    p.Type,
				Kind:      SymbolProperty,
				Span:      p.Span(),
				Selection: p.Span(),
			})
		}
		entry.Children = append(entry.Children, functionEntries(c.Body, SymbolMethod)...)
		out = append(out, entry)
	}
	out = append(out, functionEntries(root.Body, SymbolFunction)...)
	return out
}

// functionEntries lists the function declarations among stmts, with nested
// named functions as children. Closures are skipped.
func functionEntries(stmts []ast.Stmt, kind SymbolKind) []OutlineEntry {
	var out []OutlineEntry
	for _, s := range stmts {
		ast.Inspect(s, func(n ast.Node) bool {
			fn, ok := n.(*ast.FuncDecl)
			if !ok {
				_, closure := n.(*ast.Closure)
				return !closure
			}
			entry := OutlineEntry{
				Name:      fn.Name,
				Detail:    fn.ReturnType,
				Kind:      kind,
				Span:      fn.Span(),
				Selection: fn.NameSpan,
			}
			if fn.Body != nil {
				entry.Children = functionEntries(fn.Body.Stmts, SymbolFunction)
			}
			out = append(out, entry)
			return false
		})
	}
	return out
}
