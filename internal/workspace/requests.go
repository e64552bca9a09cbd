package workspace

import (
	"bxls/internal/codelens"
	"bxls/internal/completion"
	"bxls/internal/diag"
	"bxls/internal/document"
	"bxls/internal/source"
)

// Location is a span in a document.
type Location struct {
	URI   string
	Range source.Span
}

// CodeActions returns the fixes tied, through their data id, to the
// diagnostics the client sent.
func (c *Coordinator) CodeActions(uri string, clientDiags []diag.Diagnostic) ([]diag.CodeAction, error) {
	ids := make(map[string]struct{}, len(clientDiags))
	for _, d := range clientDiags {
		if id := d.ID(); id != "" {
			ids[id] = struct{}{}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return doc.ActionsFor(ids), nil
}

// Completions runs the completion rule book at a zero-based position.
func (c *Coordinator) Completions(uri string, line, column uint32, trigger string) ([]completion.Item, error) {
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return completion.Complete(c.complete, completion.NewFacts(doc, line, column, trigger, c.symbols)), nil
}

func (c *Coordinator) CodeLenses(uri string) ([]codelens.Lens, error) {
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return codelens.Lenses(c.lenses, doc), nil
}

func (c *Coordinator) DocumentSymbols(uri string) ([]document.OutlineEntry, error) {
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return doc.Outline, nil
}

// Definition resolves a call at a zero-based position to declarations in
// the same document.
func (c *Coordinator) Definition(uri string, line, column uint32) ([]Location, error) {
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return locations(uri, doc.Definition(line+1, column)), nil
}

// References lists calls of the function declared at a zero-based position.
func (c *Coordinator) References(uri string, line, column uint32, includeDecl bool) ([]Location, error) {
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return locations(uri, doc.References(line+1, column, includeDecl)), nil
}

func locations(uri string, spans []source.Span) []Location {
	if len(spans) == 0 {
		return nil
	}
	out := make([]Location, 0, len(spans))
	for _, s := range spans {
		out = append(out, Location{URI: uri, Range: s})
	}
	return out
}
