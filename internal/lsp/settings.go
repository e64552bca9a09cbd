package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"bxls/internal/project"
)

// settingsSection returns the "boxlang" member of a settings object, or the
// object itself when there is no such member.
func settingsSection(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return raw
	}
	if section, ok := wrapper["boxlang"]; ok {
		return section
	}
	return raw
}

func (s *Server) handleDidChangeConfiguration(ctx context.Context, raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("decode didChangeConfiguration: %w", err)
	}
	s.applySettingsAndScan(ctx, params.Settings)
	return nil
}

// handleChangeSettings takes the settings object directly as params.
func (s *Server) handleChangeSettings(ctx context.Context, raw json.RawMessage) error {
	s.applySettingsAndScan(ctx, raw)
	return nil
}

func (s *Server) applySettingsAndScan(ctx context.Context, raw json.RawMessage) {
	before, after := s.applySettings(raw)
	s.mu.Lock()
	ready := s.initialized && s.rootSet
	s.mu.Unlock()
	if ready && after.EnableBackgroundParsing && !before.EnableBackgroundParsing {
		s.scanInBackground(ctx)
	}
}

// applySettings merges raw over the current settings and hands the result
// to the coordinator. Malformed settings are logged and ignored.
func (s *Server) applySettings(raw json.RawMessage) (before, after project.Settings) {
	s.mu.Lock()
	before = s.settings
	s.mu.Unlock()
	section := settingsSection(raw)
	if len(section) == 0 {
		return before, before
	}
	merged, err := before.Merge(section)
	if err != nil {
		s.log.Warn("ignoring client settings", zap.Error(err))
		return before, before
	}
	s.mu.Lock()
	s.settings = merged
	s.mu.Unlock()
	s.ws.UpdateSettings(merged)
	s.log.Debug("settings updated",
		zap.Bool("backgroundParsing", merged.EnableBackgroundParsing),
		zap.Bool("experimentalDiagnostics", merged.EnableExperimentalDiagnostics))
	return before, merged
}
