package source

import (
	"testing"
)

func TestFilePosition(t *testing.T) {
	f := NewFile("t.bxs", []byte("ab\ncd\n\nxyz"))

	tests := []struct {
		off  uint32
		line uint32
		col  uint32
	}{
		{0, 1, 0},
		{2, 1, 2},
		{3, 2, 0},
		{5, 2, 2},
		{6, 3, 0},
		{7, 4, 0},
		{10, 4, 3},
		{99, 4, 3},
	}
	for _, tt := range tests {
		got := f.Position(tt.off)
		if got.Line != tt.line || got.Column != tt.col {
			t.Errorf("Position(%d) = %d:%d, want %d:%d", tt.off, got.Line, got.Column, tt.line, tt.col)
		}
	}
}

func TestFilePositionCountsUTF16(t *testing.T) {
	f := NewFile("t.bxs", []byte("x = \"😀\"; y"))
	// the emoji is 4 bytes and 2 UTF-16 units
	off := uint32(len("x = \"😀\"; "))
	got := f.Position(off)
	if got.Column != 10 {
		t.Fatalf("expected column 10, got %d", got.Column)
	}
	if back := f.OffsetAt(0, 10); back != off {
		t.Fatalf("OffsetAt(0, 10) = %d, want %d", back, off)
	}
}

func TestFileLineAndText(t *testing.T) {
	f := NewFile("t.bxs", []byte("\xEF\xBB\xBFfirst\r\nsecond\nthird"))
	if !f.HadBOM {
		t.Fatal("expected BOM to be recorded")
	}
	if got := f.Line(1); got != "first" {
		t.Fatalf("Line(1) = %q", got)
	}
	if got := f.Line(3); got != "third" {
		t.Fatalf("Line(3) = %q", got)
	}
	if got := f.Line(4); got != "" {
		t.Fatalf("Line(4) = %q", got)
	}
	span := f.Span(7, 13)
	if got := f.Text(span); got != "second" {
		t.Fatalf("Text = %q", got)
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{
		Start: Position{Line: 2, Column: 4},
		End:   Position{Line: 3, Column: 1},
	}
	if !s.Contains(2, 4) || !s.Contains(2, 80) || !s.Contains(3, 1) {
		t.Fatal("expected positions inside span")
	}
	if s.Contains(2, 3) || s.Contains(3, 2) || s.Contains(1, 9) {
		t.Fatal("expected positions outside span")
	}
}
