package lexer

import (
	"bxls/internal/source"
	"bxls/internal/token"
)

// Error describes a lexical problem.
type Error struct {
	Message string
	Span    source.Span
}

// Lexer turns script source into tokens. Comments and whitespace are skipped.
type Lexer struct {
	file   *source.File
	cursor Cursor
	errs   []Error
}

func New(file *source.File) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
	}
}

// NewRange lexes only the bytes in [start, end) of file.
func NewRange(file *source.File, start, end uint32) *Lexer {
	lx := New(file)
	lx.cursor.Off = start
	lx.cursor.Limit = min(end, file.Len())
	return lx
}

// Errors returns the lexical errors collected so far.
func (lx *Lexer) Errors() []Error {
	return lx.errs
}

// All lexes the whole input. The last token is always EOF.
func (lx *Lexer) All() []token.Token {
	out := make([]token.Token, 0, lx.file.Len()/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out
		}
	}
}

// Next returns the next significant token. After EOF it always returns EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()
	if lx.cursor.EOF() {
		return lx.make(token.EOF, lx.cursor.Off)
	}

	start := lx.cursor.Off
	ch := lx.cursor.Peek()
	switch {
	case isIdentStart(ch):
		return lx.scanIdent(start)
	case isDigit(ch):
		return lx.scanNumber(start)
	case ch == '.' && isDigit(lx.cursor.PeekAt(1)):
		return lx.scanNumber(start)
	case ch == '"' || ch == '\'':
		return lx.scanString(start, ch)
	default:
		return lx.scanOperator(start)
	}
}

func (lx *Lexer) make(kind token.Kind, start uint32) token.Token {
	end := lx.cursor.Off
	return token.Token{
		Kind: kind,
		Span: lx.file.Span(start, end),
		Text: string(lx.file.Content[start:end]),
	}
}

func (lx *Lexer) errorf(start uint32, msg string) {
	lx.errs = append(lx.errs, Error{Message: msg, Span: lx.file.Span(start, lx.cursor.Off)})
}

func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f':
			lx.cursor.Bump()
		case ch == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
		case ch == '/' && lx.cursor.PeekAt(1) == '*':
			start := lx.cursor.Off
			lx.cursor.Off += 2
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.HasPrefix("*/") {
					lx.cursor.Off += 2
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.errorf(start, "unterminated block comment")
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdent(start uint32) token.Token {
	for isIdentContinue(lx.cursor.Peek()) && !lx.cursor.EOF() {
		lx.cursor.Bump()
	}
	return lx.make(token.Ident, start)
}

func (lx *Lexer) scanNumber(start uint32) token.Token {
	for isDigit(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if lx.cursor.Peek() == '.' && isDigit(lx.cursor.PeekAt(1)) {
		lx.cursor.Bump()
		for isDigit(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	if c := lx.cursor.Peek(); c == 'e' || c == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(lx.cursor.PeekAt(2))) {
			lx.cursor.Off += 2
			for isDigit(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
		}
	}
	return lx.make(token.Number, start)
}

// scanString reads a quoted string. A doubled quote is an escaped quote.
func (lx *Lexer) scanString(start uint32, quote byte) token.Token {
	lx.cursor.Bump()
	for !lx.cursor.EOF() {
		ch := lx.cursor.Bump()
		if ch != quote {
			continue
		}
		if lx.cursor.Peek() == quote {
			lx.cursor.Bump()
			continue
		}
		return lx.make(token.String, start)
	}
	lx.errorf(start, "unterminated string literal")
	return lx.make(token.String, start)
}

func (lx *Lexer) scanOperator(start uint32) token.Token {
	c := &lx.cursor
	ch := c.Bump()
	kind := token.Invalid
	switch ch {
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '[':
		kind = token.LBracket
	case ']':
		kind = token.RBracket
	case ',':
		kind = token.Comma
	case ';':
		kind = token.Semicolon
	case ':':
		kind = token.Colon
	case '.':
		kind = token.Dot
	case '@':
		kind = token.At
	case '^':
		kind = token.Caret
	case '\\':
		kind = token.Backslash
	case '=':
		switch {
		case c.HasPrefix("=="):
			c.Off += 2
			kind = token.EqEqEq
		case c.Eat('='):
			kind = token.EqEq
		case c.Eat('>'):
			kind = token.FatArrow
		default:
			kind = token.Assign
		}
	case '+':
		switch {
		case c.Eat('+'):
			kind = token.PlusPlus
		case c.Eat('='):
			kind = token.PlusAssign
		default:
			kind = token.Plus
		}
	case '-':
		switch {
		case c.Eat('-'):
			kind = token.MinusMinus
		case c.Eat('='):
			kind = token.MinusAssign
		case c.Eat('>'):
			kind = token.ThinArrow
		default:
			kind = token.Minus
		}
	case '*':
		kind = pick(c, '=', token.StarAssign, token.Star)
	case '/':
		kind = pick(c, '=', token.SlashAssign, token.Slash)
	case '%':
		kind = pick(c, '=', token.PercentAssign, token.Percent)
	case '&':
		switch {
		case c.Eat('&'):
			kind = token.AndAnd
		case c.Eat('='):
			kind = token.AmpAssign
		default:
			kind = token.Amp
		}
	case '|':
		if c.Eat('|') {
			kind = token.OrOr
		}
	case '!':
		switch {
		case c.HasPrefix("=="):
			c.Off += 2
			kind = token.BangEqEq
		case c.Eat('='):
			kind = token.BangEq
		default:
			kind = token.Bang
		}
	case '<':
		switch {
		case c.Eat('='):
			kind = token.LtEq
		case c.Eat('>'):
			kind = token.BangEq
		default:
			kind = token.Lt
		}
	case '>':
		kind = pick(c, '=', token.GtEq, token.Gt)
	case '?':
		switch {
		case c.Eat('.'):
			kind = token.QuestionDot
		case c.Eat(':'):
			kind = token.Elvis
		default:
			kind = token.Question
		}
	}
	if kind == token.Invalid {
		lx.errorf(start, "unexpected character "+quoteByte(ch))
	}
	return lx.make(kind, start)
}

func pick(c *Cursor, next byte, yes, no token.Kind) token.Kind {
	if c.Eat(next) {
		return yes
	}
	return no
}
