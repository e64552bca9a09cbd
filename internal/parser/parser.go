// Package parser builds ast.File trees from BoxLang and CFML script source.
//
// The parser is a hand-written recursive descent parser over a fully lexed
// token slice. Template files are parsed by masking everything outside script
// islands so that spans still point into the original text.
package parser

import (
	"fmt"
	"os"
	"strings"

	"bxls/internal/ast"
	"bxls/internal/lexer"
	"bxls/internal/source"
	"bxls/internal/token"
)

const defaultMaxErrors = 50

// Issue is a syntax problem found while parsing.
type Issue struct {
	Message string
	Span    source.Span
}

// Options configures a parse.
type Options struct {
	// Kind overrides the kind derived from the path.
	Kind      source.Kind
	MaxErrors int
}

// Result is the outcome of a parse. Root is nil when the source has syntax
// errors; Issues is always populated in that case.
type Result struct {
	Root   *ast.File
	File   *source.File
	Issues []Issue
}

// OK reports whether the parse produced a tree.
func (r Result) OK() bool { return r.Root != nil }

// Parser holds the state for parsing one file.
type Parser struct {
	file      *source.File
	lexFile   *source.File
	kind      source.Kind
	toks      []token.Token
	pos       int
	issues    []Issue
	maxErrors int
}

// ParseFile reads path from disk and parses it.
func ParseFile(path string, opts Options) (Result, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path is provided by the caller
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(path, content, opts), nil
}

// Parse parses content as the file at path.
func Parse(path string, content []byte, opts Options) Result {
	file := source.NewFile(path, content)
	kind := opts.Kind
	if kind == source.KindUnknown {
		kind = source.KindOf(path)
	}

	lexFile := file
	if kind.HasMarkup() || looksLikeMarkup(file.Content) {
		lexFile = &source.File{
			Path:    file.Path,
			Content: maskMarkup(file.Content),
			LineIdx: file.LineIdx,
		}
	}

	lx := lexer.New(lexFile)
	p := &Parser{
		file:      file,
		lexFile:   lexFile,
		kind:      kind,
		maxErrors: opts.MaxErrors,
	}
	p.toks = p.remap(lx.All())
	if p.maxErrors <= 0 {
		p.maxErrors = defaultMaxErrors
	}
	for _, e := range lx.Errors() {
		span := file.Span(e.Span.Start.Offset, e.Span.End.Offset)
		p.issues = append(p.issues, Issue{Message: e.Message, Span: span})
	}

	root := p.parseFile()
	res := Result{File: file, Issues: p.issues}
	if len(p.issues) == 0 {
		res.Root = root
	}
	return res
}

// looksLikeMarkup detects tag based components such as <cfcomponent>.
func looksLikeMarkup(content []byte) bool {
	trimmed := strings.TrimLeft(string(content[:min(len(content), 256)]), " \t\r\n")
	return strings.HasPrefix(trimmed, "<")
}

// remap recomputes token positions against the original text when the lexer
// ran over masked markup, where multi-byte characters were blanked.
func (p *Parser) remap(toks []token.Token) []token.Token {
	if p.lexFile == p.file {
		return toks
	}
	for i := range toks {
		toks[i].Span = p.file.Span(toks[i].Span.Start.Offset, toks[i].Span.End.Offset)
	}
	return toks
}

func (p *Parser) tooManyErrors() bool {
	return len(p.issues) >= p.maxErrors
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) atWord(word string) bool {
	return p.peek().Is(word)
}

func (p *Parser) eof() bool {
	return p.at(token.EOF)
}

func (p *Parser) next() token.Token {
	tok := p.toks[p.pos]
	if tok.Kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) prev() token.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) eat(kind token.Kind) bool {
	if p.at(kind) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) eatWord(word string) bool {
	if p.atWord(word) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(kind token.Kind) token.Token {
	if p.at(kind) {
		return p.next()
	}
	p.errorf(p.peek().Span, "expected %s, found %s", kind, describe(p.peek()))
	return token.Token{Kind: token.Invalid, Span: p.peek().Span}
}

func (p *Parser) expectIdent() token.Token {
	if p.at(token.Ident) {
		return p.next()
	}
	p.errorf(p.peek().Span, "expected identifier, found %s", describe(p.peek()))
	return token.Token{Kind: token.Invalid, Span: p.peek().Span}
}

// endStatement consumes a terminating semicolon. A missing semicolon is
// accepted before '}', at EOF, or when the next token starts a new line.
func (p *Parser) endStatement() {
	if p.eat(token.Semicolon) {
		return
	}
	next := p.peek()
	if next.Kind == token.RBrace || next.Kind == token.EOF {
		return
	}
	if next.Span.Start.Line > p.prev().Span.End.Line {
		return
	}
	p.errorf(next.Span, "expected ';', found %s", describe(next))
	p.sync()
}

// sync skips to the next statement boundary.
func (p *Parser) sync() {
	for !p.eof() {
		switch p.peek().Kind {
		case token.Semicolon:
			p.next()
			return
		case token.RBrace:
			return
		}
		p.next()
	}
}

func (p *Parser) errorf(span source.Span, format string, args ...any) {
	if p.tooManyErrors() {
		return
	}
	p.issues = append(p.issues, Issue{Message: fmt.Sprintf(format, args...), Span: span})
}

// spanFrom covers from the start of tok through the last consumed token.
func (p *Parser) spanFrom(start source.Span) source.Span {
	end := p.prev().Span
	if end.End.Offset < start.Start.Offset {
		return start
	}
	return source.Span{Start: start.Start, End: end.End}
}

func describe(tok token.Token) string {
	switch tok.Kind {
	case token.EOF:
		return "end of file"
	case token.Ident, token.Number, token.String:
		return fmt.Sprintf("%q", tok.Text)
	default:
		return fmt.Sprintf("'%s'", tok.Kind)
	}
}

type spanSetter interface {
	SetSpan(source.Span)
}

func with[T spanSetter](n T, span source.Span) T {
	n.SetSpan(span)
	return n
}
