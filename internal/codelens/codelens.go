// Package codelens computes code lenses with a rule book over the document.
package codelens

import (
	"bxls/internal/document"
	"bxls/internal/rules"
	"bxls/internal/source"
)

// RunCommand is executed by the client to run a class file.
const RunCommand = "boxlang.runFile"

type Command struct {
	Title     string
	Command   string
	Arguments []any
}

// Lens anchors a command to a zero-length span at the start of a line.
type Lens struct {
	Range   source.Span
	Command Command
}

type Facts struct {
	Doc *document.Document
}

type Result struct {
	Lenses []Lens
}

type Book = rules.Collection[Facts, *Result]

func DefaultBook() *Book {
	return new(Book).Add(runClassRule())
}

// Lenses runs book over the document.
func Lenses(book *Book, doc *document.Document) []Lens {
	if doc == nil {
		return nil
	}
	return book.Execute(Facts{Doc: doc}, &Result{}).Lenses
}

// runClassRule offers Run on class files that declare main.
func runClassRule() rules.Func[Facts, *Result] {
	return rules.Func[Facts, *Result]{
		WhenFunc: func(f Facts) bool {
			return f.Doc.Kind == source.KindClass && f.Doc.FunctionNamed("main") != nil
		},
		ThenFunc: func(f Facts, r *Result) {
			fn := f.Doc.FunctionNamed("main")
			start := fn.Span().Start
			at := source.Position{Offset: f.Doc.File.OffsetAt(start.Line-1, 0), Line: start.Line}
			r.Lenses = append(r.Lenses, Lens{
				Range: source.Span{Start: at, End: at},
				Command: Command{
					Title:     "Run",
					Command:   RunCommand,
					Arguments: []any{f.Doc.URI},
				},
			})
		},
	}
}
