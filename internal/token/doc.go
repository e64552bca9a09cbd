// Package token defines lexical token kinds for BoxLang and CFML script.
// Invariants:
//   - Token.Text is a slice of the original source (no copies).
//   - Keywords are contextual and case-insensitive: the lexer emits them as
//     Ident and the parser asks Is(tok, "function").
//   - Comments and whitespace never appear in the token stream.
package token
