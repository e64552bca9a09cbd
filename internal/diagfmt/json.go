package diagfmt

import (
	"encoding/json"
	"io"

	"bxls/internal/diag"
	"bxls/internal/source"
)

// LocationJSON is a span in a file. Lines are 1-based, columns 1-based
// UTF-16 units.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
}

type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	Title       string        `json:"title"`
	Kind        string        `json:"kind"`
	IsPreferred bool          `json:"is_preferred,omitempty"`
	Edits       []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Source   string       `json:"source,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Tags     []string     `json:"tags,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	Files       int              `json:"files"`
}

func makeLocation(path string, span source.Span) LocationJSON {
	return LocationJSON{
		File:      path,
		StartLine: span.Start.Line,
		StartCol:  span.Start.Column + 1,
		EndLine:   span.End.Line,
		EndCol:    span.End.Column + 1,
		StartByte: span.Start.Offset,
		EndByte:   span.End.Offset,
	}
}

func tagNames(tags []diag.Tag) []string {
	var out []string
	for _, t := range tags {
		switch t {
		case diag.TagUnnecessary:
			out = append(out, "unnecessary")
		case diag.TagDeprecated:
			out = append(out, "deprecated")
		}
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON structure without encoding it.
func BuildDiagnosticsOutput(reports []FileReport, opts JSONOpts) DiagnosticsOutput {
	counts := Count(reports, opts.MinSeverity)
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, counts.Total()),
		Count:       counts.Total(),
		Errors:      counts.Errors,
		Warnings:    counts.Warnings,
		Files:       counts.Files,
	}
	for _, r := range reports {
		path := ""
		if r.File != nil {
			path = formatPath(r.File.Path, opts.PathMode, opts.BaseDir)
		}
		for _, d := range r.Diagnostics {
			if !visible(d, opts.MinSeverity) {
				continue
			}
			if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
				return out
			}
			dj := DiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code,
				Source:   d.Source,
				Message:  d.Message,
				Location: makeLocation(path, d.Range),
				Tags:     tagNames(d.Tags),
			}
			if opts.IncludeFixes {
				dj.Fixes = buildFixes(r, d, path, opts.IncludePreviews)
			}
			out.Diagnostics = append(out.Diagnostics, dj)
		}
	}
	return out
}

func buildFixes(r FileReport, d diag.Diagnostic, path string, previews bool) []FixJSON {
	actions := r.fixesFor(d)
	if len(actions) == 0 {
		return nil
	}
	out := make([]FixJSON, 0, len(actions))
	for _, a := range actions {
		fix := FixJSON{Title: a.Title, Kind: a.Kind, IsPreferred: a.Preferred}
		for _, e := range a.Edits {
			ej := FixEditJSON{Location: makeLocation(path, e.Range), NewText: e.NewText}
			if r.File != nil {
				ej.OldText = r.File.Text(e.Range)
				if previews {
					if prev, err := buildFixEditPreview(r.File, e); err == nil {
						ej.BeforeLines = prev.before
						ej.AfterLines = prev.after
					}
				}
			}
			fix.Edits = append(fix.Edits, ej)
		}
		out = append(out, fix)
	}
	return out
}

// JSON writes the diagnostics as an indented JSON document.
func JSON(w io.Writer, reports []FileReport, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(reports, opts))
}
