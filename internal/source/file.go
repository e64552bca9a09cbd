package source

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
)

// File holds the content of one source file together with its line index.
type File struct {
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	HadBOM  bool
}

// NewFile wraps in-memory content. A leading BOM is stripped.
func NewFile(path string, content []byte) *File {
	content, hadBOM := removeBOM(content)
	return &File{
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		HadBOM:  hadBOM,
	}
}

// Load reads a file from disk.
func Load(path string) (*File, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewFile(path, content), nil
}

// Len returns the content length as a uint32.
func (f *File) Len() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return n
}

// LineCount returns the number of lines in the file.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

// lineStart returns the byte offset where 1-based line starts.
func (f *File) lineStart(line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := int(line) - 2
	if idx >= len(f.LineIdx) {
		return f.Len()
	}
	return f.LineIdx[idx] + 1
}

// Position converts a byte offset into a Position.
func (f *File) Position(off uint32) Position {
	if off > f.Len() {
		off = f.Len()
	}
	// number of newlines strictly before off
	i := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	line, err := safecast.Conv[uint32](i + 1)
	if err != nil {
		panic(fmt.Errorf("line overflow: %w", err))
	}
	start := f.lineStart(line)
	return Position{
		Offset: off,
		Line:   line,
		Column: utf16Len(f.Content[start:off]),
	}
}

// Span builds a span from two byte offsets.
func (f *File) Span(start, end uint32) Span {
	return Span{Start: f.Position(start), End: f.Position(end)}
}

// Line returns the text of the given 1-based line without the trailing newline.
func (f *File) Line(line uint32) string {
	if line == 0 || int(line) > f.LineCount() {
		return ""
	}
	start := f.lineStart(line)
	end := f.Len()
	if int(line)-1 < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	text := f.Content[start:end]
	if n := len(text); n > 0 && text[n-1] == '\r' {
		text = text[:n-1]
	}
	return string(text)
}

// Text returns the source text covered by span.
func (f *File) Text(span Span) string {
	start, end := span.Start.Offset, span.End.Offset
	if end > f.Len() {
		end = f.Len()
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// OffsetAt converts a 0-based line and UTF-16 column into a byte offset.
func (f *File) OffsetAt(line, column uint32) uint32 {
	start := f.lineStart(line + 1)
	end := f.Len()
	if int(line) < len(f.LineIdx) {
		end = f.LineIdx[line]
	}
	off := start
	var units uint32
	for off < end && units < column {
		r, size := utf8.DecodeRune(f.Content[off:end])
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
		off += uint32(size)
	}
	return off
}
