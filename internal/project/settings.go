package project

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// SettingsFileName is the optional settings file in the workspace root.
const SettingsFileName = "bxls.toml"

// DefaultParseCacheSize bounds the parse cache of filesystem documents.
const DefaultParseCacheSize = 256

// Settings are the user tunables of the server.
type Settings struct {
	EnableBackgroundParsing       bool `toml:"enableBackgroundParsing" json:"enableBackgroundParsing"`
	ProcessDiagnosticsInParallel  bool `toml:"processDiagnosticsInParallel" json:"processDiagnosticsInParallel"`
	EnableExperimentalDiagnostics bool `toml:"enableExperimentalDiagnostics" json:"enableExperimentalDiagnostics"`
	ParseCacheSize                int  `toml:"parseCacheSize" json:"parseCacheSize"`
	// ScanJobs limits scan workers. Zero means GOMAXPROCS.
	ScanJobs int `toml:"scanJobs" json:"scanJobs"`
}

func DefaultSettings() Settings {
	return Settings{
		ProcessDiagnosticsInParallel: true,
		ParseCacheSize:               DefaultParseCacheSize,
	}
}

// LoadSettings reads a TOML settings file over the defaults. Unknown keys
// are an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	meta, err := toml.DecodeFile(path, &s)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return DefaultSettings(), fmt.Errorf("%s: unknown settings: %s", path, strings.Join(keys, ", "))
	}
	return s.normalized(), nil
}

// Merge overlays the keys present in a JSON object on s.
func (s Settings) Merge(raw json.RawMessage) (Settings, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return s, nil
	}
	out := s
	if err := json.Unmarshal(raw, &out); err != nil {
		return s, fmt.Errorf("decode settings: %w", err)
	}
	return out.normalized(), nil
}

// Jobs returns the effective scan worker count.
func (s Settings) Jobs() int {
	if !s.ProcessDiagnosticsInParallel {
		return 1
	}
	if s.ScanJobs > 0 {
		return s.ScanJobs
	}
	return runtime.GOMAXPROCS(0)
}

func (s Settings) normalized() Settings {
	if s.ParseCacheSize <= 0 {
		s.ParseCacheSize = DefaultParseCacheSize
	}
	if s.ScanJobs < 0 {
		s.ScanJobs = 0
	}
	return s
}
