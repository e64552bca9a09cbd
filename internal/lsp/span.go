package lsp

import (
	"fortio.org/safecast"

	"bxls/internal/codelens"
	"bxls/internal/completion"
	"bxls/internal/diag"
	"bxls/internal/document"
	"bxls/internal/source"
	"bxls/internal/workspace"
)

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

func safeInt(n uint32) int {
	v, err := safecast.Conv[int](n)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return v
}

// toPosition converts a 1-based source position to a 0-based LSP one.
func toPosition(p source.Position) position {
	line := 0
	if p.Line > 0 {
		line = safeInt(p.Line - 1)
	}
	return position{Line: line, Character: safeInt(p.Column)}
}

func toRange(s source.Span) lspRange {
	return lspRange{Start: toPosition(s.Start), End: toPosition(s.End)}
}

// fromRange converts a client range back to a span without offsets.
func fromRange(r lspRange) source.Span {
	return source.Span{
		Start: source.Position{Line: safeUint32(r.Start.Line) + 1, Column: safeUint32(r.Start.Character)},
		End:   source.Position{Line: safeUint32(r.End.Line) + 1, Column: safeUint32(r.End.Character)},
	}
}

func toDiagnostic(d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    toRange(d.Range),
		Severity: int(d.Severity),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
		Data:     d.Data,
	}
	for _, tag := range d.Tags {
		out.Tags = append(out.Tags, int(tag))
	}
	return out
}

func toDiagnostics(list []diag.Diagnostic) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(list))
	for _, d := range list {
		out = append(out, toDiagnostic(d))
	}
	return out
}

func fromDiagnostic(d lspDiagnostic) diag.Diagnostic {
	sev, err := safecast.Conv[uint8](d.Severity)
	if err != nil {
		sev = 0
	}
	out := diag.Diagnostic{
		Range:    fromRange(d.Range),
		Severity: diag.Severity(sev),
		Code:     d.Code,
		Source:   d.Source,
		Message:  d.Message,
		Data:     d.Data,
	}
	return out
}

func toCodeAction(uri string, a diag.CodeAction) codeAction {
	edits := make([]textEdit, 0, len(a.Edits))
	for _, e := range a.Edits {
		edits = append(edits, textEdit{Range: toRange(e.Range), NewText: e.NewText})
	}
	return codeAction{
		Title:       a.Title,
		Kind:        a.Kind,
		Diagnostics: []lspDiagnostic{toDiagnostic(a.Diagnostic)},
		IsPreferred: a.Preferred,
		Edit:        &workspaceEdit{Changes: map[string][]textEdit{uri: edits}},
	}
}

func toCompletionItem(it completion.Item) completionItem {
	return completionItem{
		Label:            it.Label,
		Kind:             int(it.Kind),
		Detail:           it.Detail,
		Documentation:    it.Documentation,
		InsertText:       it.InsertText,
		InsertTextFormat: int(it.Format),
		SortText:         it.SortText,
	}
}

func toCodeLens(l codelens.Lens) codeLens {
	return codeLens{
		Range: toRange(l.Range),
		Command: &command{
			Title:     l.Command.Title,
			Command:   l.Command.Command,
			Arguments: l.Command.Arguments,
		},
	}
}

func toDocumentSymbols(entries []document.OutlineEntry) []documentSymbol {
	out := make([]documentSymbol, 0, len(entries))
	for _, e := range entries {
		sym := documentSymbol{
			Name:           e.Name,
			Detail:         e.Detail,
			Kind:           int(e.Kind),
			Range:          toRange(e.Span),
			SelectionRange: toRange(e.Selection),
		}
		if len(e.Children) > 0 {
			sym.Children = toDocumentSymbols(e.Children)
		}
		out = append(out, sym)
	}
	return out
}

func toLocations(list []workspace.Location) []location {
	out := make([]location, 0, len(list))
	for _, l := range list {
		out = append(out, location{URI: l.URI, Range: toRange(l.Range)})
	}
	return out
}

func toDocumentReport(r workspace.PulledReport) documentDiagnosticReport {
	out := documentDiagnosticReport{Kind: string(r.Kind), ResultID: r.ResultID}
	if r.Kind == workspace.ReportFull {
		items := toDiagnostics(r.Items)
		out.Items = &items
	}
	return out
}
