package diagfmt

import "bxls/internal/diag"

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto uses a path relative to BaseDir when the file is inside
	// it, and the absolute path otherwise.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color bool
	// Context is the number of source lines shown above the reported line.
	Context  int8
	PathMode PathMode
	BaseDir  string
	// Width truncates displayed source lines, 0 means unlimited.
	Width       uint8
	MinSeverity diag.Severity
	ShowFixes   bool
	ShowPreview bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	// Max truncates the output, 0 means unlimited.
	Max             int
	MinSeverity     diag.Severity
	IncludeFixes    bool
	IncludePreviews bool
}
