package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bxls/internal/diag"
	"bxls/internal/source"
)

const tabWidth = 4

type palette struct {
	path    *color.Color
	gutter  *color.Color
	caret   *color.Color
	removed *color.Color
	added   *color.Color
	fix     *color.Color
	sev     map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:    color.New(color.Bold),
		gutter:  color.New(color.FgBlue, color.Bold),
		caret:   color.New(color.FgRed, color.Bold),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
		fix:     color.New(color.FgCyan),
		sev: map[diag.Severity]*color.Color{
			diag.SevError:       color.New(color.FgRed, color.Bold),
			diag.SevWarning:     color.New(color.FgYellow, color.Bold),
			diag.SevInformation: color.New(color.FgBlue, color.Bold),
			diag.SevHint:        color.New(color.FgCyan),
		},
	}
	all := []*color.Color{p.path, p.gutter, p.caret, p.removed, p.added, p.fix}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.path
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// Pretty writes diagnostics in a human readable form:
//
//	<path>:<line>:<col>: <severity> <code>: <message>
//
// followed by the source line with the span underlined. Reports are printed
// in the given order; callers sort them.
func Pretty(w io.Writer, reports []FileReport, opts PrettyOpts) error {
	out := &errWriter{w: w}
	p := newPalette(opts.Color)
	for _, r := range reports {
		for _, d := range r.Diagnostics {
			if !visible(d, opts.MinSeverity) {
				continue
			}
			prettyOne(out, p, r, d, opts)
		}
	}
	return out.err
}

func prettyOne(out *errWriter, p palette, r FileReport, d diag.Diagnostic, opts PrettyOpts) {
	path := ""
	if r.File != nil {
		path = formatPath(r.File.Path, opts.PathMode, opts.BaseDir)
	}
	start := d.Range.Start
	out.printf("%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, start.Line, start.Column+1),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		d.Code,
		d.Message)

	if r.File != nil && start.Line > 0 {
		printSnippet(out, p, r.File, d.Range, opts)
	}
	if opts.ShowFixes {
		for _, a := range r.fixesFor(d) {
			out.printf("  %s %s\n", p.fix.Sprint("= fix:"), a.Title)
			if !opts.ShowPreview {
				continue
			}
			for _, e := range a.Edits {
				prev, err := buildFixEditPreview(r.File, e)
				if err != nil {
					continue
				}
				for _, l := range prev.before {
					out.printf("    %s\n", p.removed.Sprint("- "+expandTabs(l)))
				}
				for _, l := range prev.after {
					out.printf("    %s\n", p.added.Sprint("+ "+expandTabs(l)))
				}
			}
		}
	}
}

func printSnippet(out *errWriter, p palette, f *source.File, span source.Span, opts PrettyOpts) {
	line := span.Start.Line
	first := line
	if opts.Context > 0 {
		ctx := uint32(opts.Context)
		if first > ctx {
			first -= ctx
		} else {
			first = 1
		}
	}
	gutterWidth := len(strconv.FormatUint(uint64(line), 10))
	blank := strings.Repeat(" ", gutterWidth)

	for n := first; n <= line; n++ {
		text := expandTabs(f.Line(n))
		if opts.Width > 0 {
			text = runewidth.Truncate(text, int(opts.Width), "...")
		}
		out.printf("%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, n), text)
	}

	raw := f.Line(line)
	lineStart := f.OffsetAt(line-1, 0)
	startCol := clampCol(int(span.Start.Offset)-int(lineStart), len(raw))
	endCol := len(raw)
	if span.End.Line == line {
		endCol = clampCol(int(span.End.Offset)-int(lineStart), len(raw))
	}
	pad := runewidth.StringWidth(expandTabs(raw[:startCol]))
	width := max(runewidth.StringWidth(expandTabs(raw[startCol:endCol])), 1)
	if opts.Width > 0 && pad >= int(opts.Width) {
		return
	}
	marker := "^" + strings.Repeat("~", width-1)
	out.printf("%s %s%s\n", p.gutter.Sprint(blank+" |"), strings.Repeat(" ", pad), p.caret.Sprint(marker))
}

func clampCol(col, n int) int {
	return min(max(col, 0), n)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// Summary writes a one line tally such as "2 errors, 1 warning in 1 file".
func Summary(w io.Writer, c Counts, colored bool) error {
	p := newPalette(colored)
	var parts []string
	add := func(n int, singular string, sev diag.Severity) {
		if n == 0 {
			return
		}
		label := singular
		if n != 1 {
			label += "s"
		}
		parts = append(parts, p.severity(sev).Sprintf("%d %s", n, label))
	}
	add(c.Errors, "error", diag.SevError)
	add(c.Warnings, "warning", diag.SevWarning)
	add(c.Infos, "info", diag.SevInformation)
	add(c.Hints, "hint", diag.SevHint)
	if len(parts) == 0 {
		_, err := fmt.Fprintln(w, "no problems found")
		return err
	}
	files := "files"
	if c.Files == 1 {
		files = "file"
	}
	_, err := fmt.Fprintf(w, "%s in %d %s\n", strings.Join(parts, ", "), c.Files, files)
	return err
}
