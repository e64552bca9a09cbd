package lsp

import (
	"context"
	"encoding/json"

	"bxls/internal/diag"
)

func decode[T any](raw json.RawMessage) (T, error) {
	var params T
	if len(raw) == 0 {
		return params, nil
	}
	if err := json.Unmarshal(raw, &params); err != nil {
		return params, invalidParams(err)
	}
	return params, nil
}

func (s *Server) handleWorkspaceDiagnostic(ctx context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[workspaceDiagnosticParams](raw)
	if err != nil {
		return nil, err
	}
	previous := make(map[string]string, len(params.PreviousResultIDs))
	for _, p := range params.PreviousResultIDs {
		previous[p.URI] = p.Value
	}
	reports, err := s.ws.PullWorkspaceDiagnostics(ctx, previous)
	if err != nil {
		return nil, err
	}
	out := workspaceDiagnosticReport{Items: make([]workspaceDocumentDiagnosticReport, 0, len(reports))}
	for _, r := range reports {
		out.Items = append(out.Items, workspaceDocumentDiagnosticReport{
			documentDiagnosticReport: toDocumentReport(r),
			URI:                      r.URI,
		})
	}
	return out, nil
}

func (s *Server) handleDocumentDiagnostic(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[documentDiagnosticParams](raw)
	if err != nil {
		return nil, err
	}
	r, err := s.ws.PullDocumentDiagnostics(params.TextDocument.URI, params.PreviousResultID)
	if err != nil {
		return nil, err
	}
	return toDocumentReport(r), nil
}

func (s *Server) handleDocumentSymbol(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[documentSymbolParams](raw)
	if err != nil {
		return nil, err
	}
	entries, err := s.ws.DocumentSymbols(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	return toDocumentSymbols(entries), nil
}

func (s *Server) handleCompletion(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[completionParams](raw)
	if err != nil {
		return nil, err
	}
	trigger := ""
	if params.Context != nil {
		trigger = params.Context.TriggerCharacter
	}
	items, err := s.ws.Completions(params.TextDocument.URI,
		safeUint32(params.Position.Line), safeUint32(params.Position.Character), trigger)
	if err != nil {
		return nil, err
	}
	out := make([]completionItem, 0, len(items))
	for _, it := range items {
		out = append(out, toCompletionItem(it))
	}
	return out, nil
}

func (s *Server) handleCodeLens(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[codeLensParams](raw)
	if err != nil {
		return nil, err
	}
	lenses, err := s.ws.CodeLenses(params.TextDocument.URI)
	if err != nil {
		return nil, err
	}
	out := make([]codeLens, 0, len(lenses))
	for _, l := range lenses {
		out = append(out, toCodeLens(l))
	}
	return out, nil
}

// handleCodeAction answers with the fixes of the diagnostics the client
// sent back, matched by their data id.
func (s *Server) handleCodeAction(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[codeActionParams](raw)
	if err != nil {
		return nil, err
	}
	uri := params.TextDocument.URI
	clientDiags := make([]diag.Diagnostic, 0, len(params.Context.Diagnostics))
	for _, d := range params.Context.Diagnostics {
		clientDiags = append(clientDiags, fromDiagnostic(d))
	}
	actions, err := s.ws.CodeActions(uri, clientDiags)
	if err != nil {
		return nil, err
	}
	out := make([]codeAction, 0, len(actions))
	for _, a := range actions {
		out = append(out, toCodeAction(uri, a))
	}
	return out, nil
}

func (s *Server) handleDefinition(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[textDocumentPositionParams](raw)
	if err != nil {
		return nil, err
	}
	locs, err := s.ws.Definition(params.TextDocument.URI,
		safeUint32(params.Position.Line), safeUint32(params.Position.Character))
	if err != nil {
		return nil, err
	}
	return toLocations(locs), nil
}

func (s *Server) handleReferences(_ context.Context, raw json.RawMessage) (any, error) {
	params, err := decode[referenceParams](raw)
	if err != nil {
		return nil, err
	}
	locs, err := s.ws.References(params.TextDocument.URI,
		safeUint32(params.Position.Line), safeUint32(params.Position.Character),
		params.Context.IncludeDeclaration)
	if err != nil {
		return nil, err
	}
	return toLocations(locs), nil
}
