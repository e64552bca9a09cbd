package diagfmt

import (
	"fmt"
	"strings"

	"bxls/internal/diag"
	"bxls/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the whole lines touched by edit before and
// after applying it.
func buildFixEditPreview(f *source.File, edit diag.TextEdit) (fixEditPreview, error) {
	if f == nil {
		return fixEditPreview{}, fmt.Errorf("no file content")
	}
	startLine := edit.Range.Start.Line
	endLine := max(edit.Range.End.Line, startLine)

	blockStart := lineStartOffset(f, startLine)
	blockEnd := min(max(lineEndOffsetInclusive(f, endLine), blockStart), f.Len())
	original := f.Content[blockStart:blockEnd]

	relStart := int(edit.Range.Start.Offset) - int(blockStart)
	relEnd := int(edit.Range.End.Offset) - int(blockStart)
	if relStart < 0 || relStart > len(original) {
		return fixEditPreview{}, fmt.Errorf("edit start %d out of range for preview block", relStart)
	}
	if relEnd < relStart || relEnd > len(original) {
		return fixEditPreview{}, fmt.Errorf("edit end %d out of range for preview block", relEnd)
	}

	after := make([]byte, 0, len(original)+len(edit.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, original[relEnd:]...)

	return fixEditPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

// splitPreviewLines drops the final newline so it does not produce an empty
// trailing line.
func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimRight(string(content), "\n")
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	return f.OffsetAt(line-1, 0)
}

func lineEndOffsetInclusive(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := int(line) - 1
	if idx < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	return f.Len()
}
