// Package lint holds the per-workspace lint configuration, its loader and
// watcher, and the registry of diagnostic rules.
package lint

import (
	"encoding/json"
	"fmt"
	"strings"

	"bxls/internal/diag"
)

// ConfigFileName is looked up in the workspace root.
const ConfigFileName = ".boxlang-lsp.json"

// RuleSettings is the user configuration for one rule.
type RuleSettings struct {
	Enabled  bool           `json:"enabled"`
	Severity string         `json:"severity,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// UnmarshalJSON defaults Enabled to true when the key is absent.
func (r *RuleSettings) UnmarshalJSON(data []byte) error {
	type plain RuleSettings
	v := plain{Enabled: true}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = RuleSettings(v)
	return nil
}

// SeverityOr resolves the configured severity, falling back to def.
func (r RuleSettings) SeverityOr(def diag.Severity) diag.Severity {
	return diag.ParseSeverity(r.Severity, def)
}

// Config is the parsed lint config. A loaded Config is never mutated;
// reloads replace it.
type Config struct {
	Diagnostics map[string]RuleSettings `json:"diagnostics,omitempty"`
	Include     []string                `json:"include,omitempty"`
	Exclude     []string                `json:"exclude,omitempty"`
}

// Parse decodes a lint config document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse lint config: %w", err)
	}
	return cfg, nil
}

// ForRule returns the settings for id, if configured.
func (c *Config) ForRule(id string) (RuleSettings, bool) {
	if c == nil || c.Diagnostics == nil {
		return RuleSettings{}, false
	}
	rs, ok := c.Diagnostics[id]
	return rs, ok
}

// ShouldAnalyze reports whether a workspace relative path passes the
// include and exclude globs. Exclude wins over include.
func (c *Config) ShouldAnalyze(rel string) bool {
	if c == nil {
		return true
	}
	rel = strings.ReplaceAll(rel, "\\", "/")
	if len(c.Include) > 0 && !matchAny(c.Include, rel) {
		return false
	}
	return !matchAny(c.Exclude, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if MatchGlob(p, rel) {
			return true
		}
	}
	return false
}
