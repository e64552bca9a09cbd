package diagfmt

import (
	"path/filepath"

	"bxls/internal/diag"
	"bxls/internal/source"
)

// FileReport is the diagnostics of one file together with its content.
type FileReport struct {
	File        *source.File
	Diagnostics []diag.Diagnostic
	Actions     []diag.CodeAction
}

// fixesFor returns the actions tied to d through its data id.
func (r FileReport) fixesFor(d diag.Diagnostic) []diag.CodeAction {
	id := d.ID()
	if id == "" {
		return nil
	}
	var out []diag.CodeAction
	for _, a := range r.Actions {
		if a.Diagnostic.ID() == id {
			out = append(out, a)
		}
	}
	return out
}

// Counts tallies diagnostics by severity.
type Counts struct {
	Errors   int
	Warnings int
	Infos    int
	Hints    int
	Files    int
}

func (c Counts) Total() int { return c.Errors + c.Warnings + c.Infos + c.Hints }

// Count tallies the diagnostics at or above minSev. Zero counts all.
func Count(reports []FileReport, minSev diag.Severity) Counts {
	var c Counts
	for _, r := range reports {
		seen := false
		for _, d := range r.Diagnostics {
			if !visible(d, minSev) {
				continue
			}
			seen = true
			switch d.Severity {
			case diag.SevError:
				c.Errors++
			case diag.SevWarning:
				c.Warnings++
			case diag.SevInformation:
				c.Infos++
			default:
				c.Hints++
			}
		}
		if seen {
			c.Files++
		}
	}
	return c
}

func visible(d diag.Diagnostic, minSev diag.Severity) bool {
	return minSev == 0 || d.Severity.AtLeast(minSev)
}

func formatPath(path string, mode PathMode, base string) string {
	switch mode {
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		if rel, err := filepath.Rel(base, path); err == nil && base != "" {
			return filepath.ToSlash(rel)
		}
		return path
	default:
		if rel, ok := source.RelativePath(path, base); ok {
			return rel
		}
		return path
	}
}
