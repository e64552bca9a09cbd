package source

import (
	"fmt"
)

// Position is a location in a source file.
// Line is 1-based, Column is 0-based and counted in UTF-16 code units so it
// maps onto editor positions without conversion. Offset is a byte offset.
type Position struct {
	Offset uint32
	Line   uint32
	Column uint32
}

// Before reports whether p comes strictly before other.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is a half-open range of source text.
type Span struct {
	Start Position
	End   Position
}

func (s Span) Empty() bool {
	return s.Start.Offset == s.End.Offset
}

func (s Span) Len() uint32 {
	return s.End.Offset - s.Start.Offset
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start.Offset < s.Start.Offset {
		s.Start = other.Start
	}
	if other.End.Offset > s.End.Offset {
		s.End = other.End
	}
	return s
}

// Contains reports whether the line/column pair falls inside s.
// The end position is inclusive so a cursor placed right after a token still
// hits it.
func (s Span) Contains(line, column uint32) bool {
	at := Position{Line: line, Column: column}
	if at.Before(s.Start) {
		return false
	}
	return !s.End.Before(at)
}
