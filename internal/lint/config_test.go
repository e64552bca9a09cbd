package lint

import (
	"testing"

	"bxls/internal/diag"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"*.cfc", "Foo.cfc", true},
		{"*.cfc", "models/Foo.cfc", false},
		{"**/*.cfc", "models/Foo.cfc", true},
		{"**", "a/b/c.bx", true},
		{"tests/**", "tests/specs/A.cfc", true},
		{"tests/**", "src/tests.cfc", false},
		{"a?.bx", "ab.bx", true},
		{"a?.bx", "abc.bx", false},
		{"file.(x).bx", "file.(x).bx", true},
		{"file.bx", "fileXbx", false},
	}
	for _, tt := range tests {
		if got := MatchGlob(tt.pattern, tt.path); got != tt.want {
			t.Errorf("MatchGlob(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestShouldAnalyze(t *testing.T) {
	cfg := &Config{
		Include: []string{"src/**"},
		Exclude: []string{"src/vendor/**"},
	}
	tests := []struct {
		path string
		want bool
	}{
		{"src/Foo.cfc", true},
		{`src\models\Bar.bx`, true},
		{"src/vendor/Lib.cfc", false},
		{"other/Foo.cfc", false},
	}
	for _, tt := range tests {
		if got := cfg.ShouldAnalyze(tt.path); got != tt.want {
			t.Errorf("ShouldAnalyze(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}

	var empty *Config
	if !empty.ShouldAnalyze("anything.bx") {
		t.Fatal("nil config should analyze everything")
	}
	exclOnly := &Config{Exclude: []string{"**/*.cfm"}}
	if exclOnly.ShouldAnalyze("views/index.cfm") {
		t.Fatal("exclude should win without include list")
	}
}

func TestParseConfig(t *testing.T) {
	data := []byte(`{
		"diagnostics": {
			"unscopedVariable": {"severity": "error"},
			"unusedVariable": {"enabled": false, "params": {"ignore": ["_"]}}
		},
		"exclude": ["build/**"]
	}`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rs, ok := cfg.ForRule("unscopedVariable")
	if !ok || !rs.Enabled {
		t.Fatalf("unscopedVariable = %+v, want enabled by default", rs)
	}
	if rs.SeverityOr(diag.SevWarning) != diag.SevError {
		t.Fatalf("severity = %v", rs.SeverityOr(diag.SevWarning))
	}
	rs, _ = cfg.ForRule("unusedVariable")
	if rs.Enabled {
		t.Fatal("unusedVariable should be disabled")
	}
	if _, ok := rs.Params["ignore"]; !ok {
		t.Fatalf("params = %v", rs.Params)
	}
	if _, err := Parse([]byte("{nope")); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
