package diagfmt

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"bxls/internal/diag"
)

// PatchOpts configures unified diff output of quick fixes.
type PatchOpts struct {
	BaseDir     string
	MinSeverity diag.Severity
}

// Patch writes the preferred quick fix of every visible diagnostic as a
// unified diff that applies with `patch -p1` from BaseDir. Edits that touch
// lines already changed by an earlier edit in the same file are skipped.
func Patch(w io.Writer, reports []FileReport, opts PatchOpts) error {
	var files []*diff.FileDiff
	for _, r := range reports {
		if fd := fileDiff(r, opts); fd != nil {
			files = append(files, fd)
		}
	}
	if len(files) == 0 {
		return nil
	}
	out, err := diff.PrintMultiFileDiff(files)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func fileDiff(r FileReport, opts PatchOpts) *diff.FileDiff {
	if r.File == nil {
		return nil
	}
	var edits []diag.TextEdit
	for _, d := range r.Diagnostics {
		if !visible(d, opts.MinSeverity) {
			continue
		}
		if a, ok := preferredFix(r.fixesFor(d)); ok {
			edits = append(edits, a.Edits...)
		}
	}
	if len(edits) == 0 {
		return nil
	}
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].Range.Start.Offset < edits[j].Range.Start.Offset
	})

	var hunks []*diff.Hunk
	var delta int32
	lastLine := uint32(0)
	for _, e := range edits {
		if e.Range.Start.Line <= lastLine {
			continue
		}
		prev, err := buildFixEditPreview(r.File, e)
		if err != nil {
			continue
		}
		start := int32(e.Range.Start.Line) // #nosec G115 -- line numbers fit in int32
		before, after := int32(len(prev.before)), int32(len(prev.after))
		var body strings.Builder
		for _, l := range prev.before {
			body.WriteString("-" + l + "\n")
		}
		for _, l := range prev.after {
			body.WriteString("+" + l + "\n")
		}
		hunks = append(hunks, &diff.Hunk{
			OrigStartLine: start,
			OrigLines:     before,
			NewStartLine:  start + delta,
			NewLines:      after,
			Body:          []byte(body.String()),
		})
		delta += after - before
		lastLine = max(e.Range.End.Line, e.Range.Start.Line)
	}
	if len(hunks) == 0 {
		return nil
	}
	name := filepath.ToSlash(formatPath(r.File.Path, PathModeAuto, opts.BaseDir))
	name = strings.TrimPrefix(name, "/")
	return &diff.FileDiff{
		OrigName: "a/" + name,
		NewName:  "b/" + name,
		Hunks:    hunks,
	}
}

func preferredFix(actions []diag.CodeAction) (diag.CodeAction, bool) {
	for _, a := range actions {
		if a.Preferred {
			return a, true
		}
	}
	if len(actions) > 0 {
		return actions[0], true
	}
	return diag.CodeAction{}, false
}
