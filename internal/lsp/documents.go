package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"go.uber.org/zap"

	"bxls/internal/lint"
	"bxls/internal/source"
)

func (s *Server) handleDidOpen(ctx context.Context, raw json.RawMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("decode didOpen: %w", err)
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.ensureRoot(ctx, uri)
	s.mu.Lock()
	s.texts[uri] = params.TextDocument.Text
	s.mu.Unlock()
	s.ws.TrackOpen(uri, params.TextDocument.Text)
	s.ws.PublishDiagnostics(uri)
	return nil
}

func (s *Server) handleDidChange(_ context.Context, raw json.RawMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("decode didChange: %w", err)
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	text := applyChanges(s.texts[uri], params.ContentChanges)
	s.texts[uri] = text
	s.mu.Unlock()
	s.ws.TrackChange(uri, text)
	s.ws.PublishDiagnostics(uri)
	return nil
}

func (s *Server) handleDidSave(_ context.Context, raw json.RawMessage) error {
	var params didSaveTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("decode didSave: %w", err)
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	text := ""
	if params.Text != nil {
		text = *params.Text
	}
	doc, err := s.ws.TrackSave(uri, text)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.texts[uri] = string(doc.File.Content)
	s.mu.Unlock()
	s.ws.PublishDiagnostics(uri)
	return nil
}

func (s *Server) handleDidClose(_ context.Context, raw json.RawMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("decode didClose: %w", err)
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.texts, uri)
	s.mu.Unlock()
	s.ws.TrackClose(uri)
	return nil
}

// handleDidChangeWatchedFiles reloads the lint config when it changes and
// refreshes the reports of changed source files that are not open.
func (s *Server) handleDidChangeWatchedFiles(ctx context.Context, raw json.RawMessage) error {
	var params didChangeWatchedFilesParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("decode didChangeWatchedFiles: %w", err)
	}
	configChanged := false
	for _, change := range params.Changes {
		if path.Base(change.URI) == lint.ConfigFileName {
			configChanged = true
			continue
		}
		if !isSourceURI(change.URI) || s.isOpen(change.URI) {
			continue
		}
		switch change.Type {
		case fileDeleted:
			s.ws.Symbols().Remove(change.URI)
		case fileCreated, fileChanged:
			if _, err := s.ws.Resolve(change.URI); err != nil {
				s.log.Debug("changed file not analyzed", zap.String("uri", change.URI), zap.Error(err))
			}
		}
	}
	if configChanged {
		s.goBackground(func() { s.ws.ConfigChanged(ctx) })
	}
	return nil
}

func (s *Server) isOpen(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.texts[uri]
	return ok
}

func isSourceURI(uri string) bool {
	p := source.URIToPath(uri)
	return p != "" && source.KindOf(p) != source.KindUnknown
}
