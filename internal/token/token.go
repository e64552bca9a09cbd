package token

import (
	"strings"

	"bxls/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// Is reports whether the token is an identifier spelled word, ignoring case.
func (t Token) Is(word string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Text, word)
}

// IsKeyword reports whether the token is a reserved statement keyword.
func (t Token) IsKeyword() bool {
	if t.Kind != Ident {
		return false
	}
	_, ok := keywords[strings.ToLower(t.Text)]
	return ok
}

// IsWordOperator reports whether the token is a textual operator such as
// "eq" or "and".
func (t Token) IsWordOperator() bool {
	if t.Kind != Ident {
		return false
	}
	_, ok := wordOperators[strings.ToLower(t.Text)]
	return ok
}
