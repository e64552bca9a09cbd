// Package completion computes completion items with an ordered rule book
// over the document and cursor context.
package completion

import (
	"sort"
	"strings"

	"bxls/internal/document"
	"bxls/internal/rules"
	"bxls/internal/symbols"
)

// ItemKind uses the LSP numbering.
type ItemKind int

const (
	KindFunction    ItemKind = 3
	KindConstructor ItemKind = 4
	KindModule      ItemKind = 9
	KindProperty    ItemKind = 10
	KindSnippet     ItemKind = 15
	KindFolder      ItemKind = 19
)

// InsertTextFormat uses the LSP numbering.
type InsertTextFormat int

const (
	FormatPlain   InsertTextFormat = 1
	FormatSnippet InsertTextFormat = 2
)

type Item struct {
	Label         string
	Kind          ItemKind
	Detail        string
	Documentation string
	InsertText    string
	Format        InsertTextFormat
	SortText      string
}

// List accumulates items while the rule book runs.
type List struct {
	Items []Item
}

func (l *List) add(items ...Item) {
	l.Items = append(l.Items, items...)
}

// Facts describe one completion request. Rules must not mutate them.
type Facts struct {
	Doc *document.Document
	// Line and Column are zero-based; Column counts UTF-16 units.
	Line   uint32
	Column uint32
	// LinePrefix is the text of the cursor line before the cursor.
	LinePrefix string
	Trigger    string
	Symbols    *symbols.Cache
}

// NewFacts derives the line prefix from the document text.
func NewFacts(doc *document.Document, line, column uint32, trigger string, syms *symbols.Cache) Facts {
	f := Facts{Doc: doc, Line: line, Column: column, Trigger: trigger, Symbols: syms}
	if doc != nil && doc.File != nil {
		start := doc.File.OffsetAt(line, 0)
		end := doc.File.OffsetAt(line, column)
		if end >= start {
			f.LinePrefix = string(doc.File.Content[start:end])
		}
	}
	return f
}

// Book is the ordered rule set used for every request.
type Book = rules.Collection[Facts, *List]

// DefaultBook returns the built-in rules. Context rules for import and new
// come first and end the chain when they match.
func DefaultBook() *Book {
	return new(Book).
		Add(importRule()).
		Add(newRule()).
		Add(componentRule()).
		Add(bifRule()).
		Add(propertyRule())
}

// Complete runs book over facts.
func Complete(book *Book, facts Facts) []Item {
	list := book.Execute(facts, &List{})
	sort.SliceStable(list.Items, func(i, j int) bool {
		a, b := list.Items[i], list.Items[j]
		if a.SortText != b.SortText {
			return a.SortText < b.SortText
		}
		return strings.ToLower(a.Label) < strings.ToLower(b.Label)
	})
	return list.Items
}
