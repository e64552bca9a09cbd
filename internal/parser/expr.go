package parser

import (
	"strings"

	"bxls/internal/ast"
	"bxls/internal/lexer"
	"bxls/internal/source"
	"bxls/internal/token"
)

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseTernary()
	if !p.peek().Kind.IsAssign() {
		return left
	}
	op := p.next()
	right := p.parseAssignment()
	return with(&ast.Assignment{Left: left, Op: op.Kind.String(), Right: right}, spanOf(left, right))
}

func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseOr()
	switch {
	case p.at(token.Question):
		p.next()
		then := p.parseTernary()
		p.expect(token.Colon)
		els := p.parseTernary()
		return with(&ast.Ternary{Cond: cond, Then: then, Else: els}, spanOf(cond, els))
	case p.at(token.Elvis):
		p.next()
		y := p.parseTernary()
		return with(&ast.Binary{Op: "?:", X: cond, Y: y}, spanOf(cond, y))
	}
	return cond
}

func (p *Parser) parseOr() ast.Expr {
	x := p.parseAnd()
	for p.at(token.OrOr) || p.atWord("or") || p.atWord("xor") {
		op := normalizeOp(p.next())
		y := p.parseAnd()
		x = with(&ast.Binary{Op: op, X: x, Y: y}, spanOf(x, y))
	}
	return x
}

func (p *Parser) parseAnd() ast.Expr {
	x := p.parseComparison()
	for p.at(token.AndAnd) || p.atWord("and") {
		p.next()
		y := p.parseComparison()
		x = with(&ast.Binary{Op: "&&", X: x, Y: y}, spanOf(x, y))
	}
	return x
}

// comparisonWords maps textual comparison operators to their symbolic form.
var comparisonWords = map[string]string{
	"eq":       "==",
	"is":       "==",
	"neq":      "!=",
	"gt":       ">",
	"gte":      ">=",
	"ge":       ">=",
	"lt":       "<",
	"lte":      "<=",
	"le":       "<=",
	"contains": "contains",
}

func (p *Parser) comparisonOp() (string, bool) {
	tok := p.peek()
	switch tok.Kind {
	case token.EqEq, token.EqEqEq, token.BangEq, token.BangEqEq, token.Lt, token.LtEq, token.Gt, token.GtEq:
		p.next()
		return tok.Kind.String(), true
	case token.Ident:
		lower := strings.ToLower(tok.Text)
		if lower == "does" && p.peekN(1).Is("not") && p.peekN(2).Is("contain") {
			p.next()
			p.next()
			p.next()
			return "does not contain", true
		}
		op, ok := comparisonWords[lower]
		if !ok {
			return "", false
		}
		p.next()
		if lower == "is" && p.eatWord("not") {
			return "!=", true
		}
		return op, true
	}
	return "", false
}

func (p *Parser) parseComparison() ast.Expr {
	x := p.parseConcat()
	for {
		op, ok := p.comparisonOp()
		if !ok {
			return x
		}
		y := p.parseConcat()
		x = with(&ast.Comparison{Op: op, X: x, Y: y}, spanOf(x, y))
	}
}

func (p *Parser) parseConcat() ast.Expr {
	x := p.parseAdditive()
	for p.at(token.Amp) {
		p.next()
		y := p.parseAdditive()
		x = with(&ast.Binary{Op: "&", X: x, Y: y}, spanOf(x, y))
	}
	return x
}

func (p *Parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.at(token.Plus) || p.at(token.Minus) {
		op := p.next()
		y := p.parseMultiplicative()
		x = with(&ast.Binary{Op: op.Kind.String(), X: x, Y: y}, spanOf(x, y))
	}
	return x
}

func (p *Parser) parseMultiplicative() ast.Expr {
	x := p.parsePower()
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) || p.at(token.Backslash) || p.atWord("mod") {
		op := normalizeOp(p.next())
		y := p.parsePower()
		x = with(&ast.Binary{Op: op, X: x, Y: y}, spanOf(x, y))
	}
	return x
}

func (p *Parser) parsePower() ast.Expr {
	x := p.parseUnary()
	if p.at(token.Caret) {
		p.next()
		y := p.parsePower()
		return with(&ast.Binary{Op: "^", X: x, Y: y}, spanOf(x, y))
	}
	return x
}

func normalizeOp(tok token.Token) string {
	if tok.Kind != token.Ident {
		return tok.Kind.String()
	}
	switch strings.ToLower(tok.Text) {
	case "or":
		return "||"
	case "and":
		return "&&"
	case "mod":
		return "%"
	case "not":
		return "!"
	}
	return strings.ToLower(tok.Text)
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.peek()
	switch {
	case tok.Kind == token.Bang || tok.Kind == token.Minus || tok.Kind == token.Plus ||
		tok.Kind == token.PlusPlus || tok.Kind == token.MinusMinus || tok.Is("not"):
		p.next()
		x := p.parseUnary()
		return with(&ast.Unary{Op: normalizeOp(tok), X: x}, p.spanFrom(tok.Span))
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(x ast.Expr) ast.Expr {
	for {
		tok := p.peek()
		switch {
		case tok.Kind == token.LParen:
			args := p.parseCallArgs()
			x = with(&ast.Call{Fun: x, Args: args}, source.Span{Start: x.Span().Start, End: p.prev().Span.End})
		case tok.Kind == token.Dot || tok.Kind == token.QuestionDot:
			p.next()
			name := p.parseMemberName()
			x = with(&ast.DotAccess{X: x, Name: name, Safe: tok.Kind == token.QuestionDot}, spanOf(x, name))
		case tok.Kind == token.Colon && p.peekN(1).Kind == token.Colon && p.peekN(2).Kind == token.Ident:
			p.next()
			p.next()
			name := p.parseMemberName()
			x = with(&ast.DotAccess{X: x, Name: name}, spanOf(x, name))
		case tok.Kind == token.LBracket:
			p.next()
			index := p.parseExpr()
			p.expect(token.RBracket)
			x = with(&ast.IndexAccess{X: x, Index: index}, source.Span{Start: x.Span().Start, End: p.prev().Span.End})
		case (tok.Kind == token.PlusPlus || tok.Kind == token.MinusMinus) && tok.Span.Start.Line == p.prev().Span.End.Line:
			p.next()
			x = with(&ast.Unary{Op: tok.Kind.String(), X: x, Postfix: true}, source.Span{Start: x.Span().Start, End: tok.Span.End})
		default:
			return x
		}
	}
}

func (p *Parser) parseMemberName() *ast.Identifier {
	tok := p.peek()
	if tok.Kind == token.Ident || tok.Kind == token.Number {
		p.next()
		return with(&ast.Identifier{Name: tok.Text}, tok.Span)
	}
	p.errorf(tok.Span, "expected member name, found %s", describe(tok))
	return with(&ast.Identifier{}, tok.Span)
}

// parseCallArgs reads `(a, name=b, name: c)`.
func (p *Parser) parseCallArgs() []*ast.CallArg {
	p.expect(token.LParen)
	var args []*ast.CallArg
	for !p.at(token.RParen) && !p.eof() && !p.tooManyErrors() {
		start := p.peek().Span
		arg := &ast.CallArg{}
		if (p.at(token.Ident) || p.at(token.String)) && (p.peekN(1).Kind == token.Assign || p.peekN(1).Kind == token.Colon) &&
			p.peekN(2).Kind != token.Colon {
			arg.Name = unquote(p.next().Text)
			p.next()
		}
		arg.Value = p.parseTernary()
		args = append(args, with(arg, p.spanFrom(start)))
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	return args
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.Number:
		p.next()
		decimal := strings.ContainsAny(tok.Text, ".eE")
		return with(&ast.NumberLit{Text: tok.Text, Decimal: decimal}, tok.Span)
	case token.String:
		p.next()
		return p.stringLit(tok)
	case token.LBracket:
		return p.parseArrayOrOrdered()
	case token.LBrace:
		return p.parseStruct()
	case token.LParen:
		if p.atArrowParams() {
			return p.parseLambda()
		}
		p.next()
		x := p.parseExpr()
		p.expect(token.RParen)
		return with(&ast.Paren{X: x}, p.spanFrom(tok.Span))
	case token.Ident:
		return p.parseIdentPrimary()
	}
	p.errorf(tok.Span, "expected expression, found %s", describe(tok))
	if tok.Kind != token.RBrace && tok.Kind != token.Semicolon && tok.Kind != token.RParen {
		p.next()
	}
	return with(&ast.Bad{}, tok.Span)
}

func (p *Parser) parseIdentPrimary() ast.Expr {
	tok := p.peek()
	next := p.peekN(1)
	switch {
	case tok.Is("true") || tok.Is("false"):
		p.next()
		return with(&ast.BoolLit{Value: tok.Is("true")}, tok.Span)
	case tok.Is("null"):
		p.next()
		return with(&ast.NullLit{}, tok.Span)
	case tok.Is("new") && next.Kind == token.Ident:
		return p.parseNew()
	case tok.Is("function") && next.Kind == token.LParen:
		start := p.next().Span
		args := p.parseArguments()
		p.parseAttributes(token.LBrace)
		body := p.parseBlock()
		return with(&ast.Closure{Args: args, Body: body}, p.spanFrom(start))
	case next.Kind == token.FatArrow || next.Kind == token.ThinArrow:
		p.next()
		arg := with(&ast.Argument{Name: tok.Text}, tok.Span)
		p.next()
		return p.finishLambda(tok.Span, []*ast.Argument{arg})
	}
	p.next()
	return with(&ast.Identifier{Name: tok.Text}, tok.Span)
}

// atArrowParams reports whether the parenthesised group at the cursor is
// followed by => or ->.
func (p *Parser) atArrowParams() bool {
	depth := 0
	for i := 0; ; i++ {
		tok := p.peekN(i)
		switch tok.Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				n := p.peekN(i + 1).Kind
				return n == token.FatArrow || n == token.ThinArrow
			}
		case token.EOF, token.Semicolon, token.LBrace, token.RBrace:
			return false
		}
	}
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.peek().Span
	args := p.parseArguments()
	p.next() // => or ->
	return p.finishLambda(start, args)
}

func (p *Parser) finishLambda(start source.Span, args []*ast.Argument) ast.Expr {
	if p.at(token.LBrace) && !p.atStructLiteral() {
		body := p.parseBlock()
		return with(&ast.Closure{Args: args, Body: body, Arrow: true}, p.spanFrom(start))
	}
	x := p.parseAssignment()
	ret := with(&ast.Return{Value: x}, x.Span())
	body := with(&ast.Block{Stmts: []ast.Stmt{ret}}, x.Span())
	return with(&ast.Closure{Args: args, Body: body, Arrow: true}, p.spanFrom(start))
}

// atStructLiteral distinguishes `{ key: value }` from a statement block.
func (p *Parser) atStructLiteral() bool {
	n1, n2 := p.peekN(1), p.peekN(2)
	if n1.Kind == token.RBrace {
		return false
	}
	return (n1.Kind == token.Ident || n1.Kind == token.String) && n2.Kind == token.Colon
}

func (p *Parser) parseNew() ast.Expr {
	start := p.next().Span
	node := &ast.New{}
	if p.at(token.Ident) && p.peekN(1).Kind == token.Colon {
		node.Prefix = strings.ToLower(p.next().Text)
		p.next()
	}
	if p.at(token.String) {
		node.Class = unquote(p.next().Text)
	} else {
		var b strings.Builder
		b.WriteString(p.expectIdent().Text)
		for p.at(token.Dot) && p.peekN(1).Kind == token.Ident {
			p.next()
			b.WriteByte('.')
			b.WriteString(p.next().Text)
		}
		node.Class = b.String()
	}
	if p.at(token.LParen) {
		node.Args = p.parseCallArgs()
	}
	return with(node, p.spanFrom(start))
}

func (p *Parser) parseArrayOrOrdered() ast.Expr {
	start := p.next().Span
	if p.at(token.Colon) && p.peekN(1).Kind == token.RBracket {
		p.next()
		p.next()
		return with(&ast.StructLit{Ordered: true}, p.spanFrom(start))
	}
	var elems []ast.Expr
	var entries []*ast.StructEntry
	for !p.at(token.RBracket) && !p.eof() && !p.tooManyErrors() {
		x := p.parseTernary()
		if p.at(token.Colon) || p.at(token.Assign) {
			p.next()
			value := p.parseTernary()
			entries = append(entries, with(&ast.StructEntry{Key: x, Value: value}, spanOf(x, value)))
		} else {
			elems = append(elems, x)
		}
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBracket)
	if len(entries) > 0 {
		if len(elems) > 0 {
			p.errorf(start, "mixed array and struct entries")
		}
		return with(&ast.StructLit{Entries: entries, Ordered: true}, p.spanFrom(start))
	}
	return with(&ast.ArrayLit{Elems: elems}, p.spanFrom(start))
}

func (p *Parser) parseStruct() ast.Expr {
	start := p.next().Span
	lit := &ast.StructLit{}
	for !p.at(token.RBrace) && !p.eof() && !p.tooManyErrors() {
		key := p.parseTernary()
		if !p.eat(token.Colon) && !p.eat(token.Assign) {
			p.errorf(p.peek().Span, "expected ':' or '=', found %s", describe(p.peek()))
			break
		}
		value := p.parseTernary()
		lit.Entries = append(lit.Entries, with(&ast.StructEntry{Key: key, Value: value}, spanOf(key, value)))
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RBrace)
	return with(lit, p.spanFrom(start))
}

// unquote strips the surrounding quotes and collapses doubled quotes.
func unquote(text string) string {
	if len(text) < 2 {
		return text
	}
	quote := text[0]
	if quote != '"' && quote != '\'' {
		return text
	}
	inner := text[1:]
	if inner[len(inner)-1] == quote {
		inner = inner[:len(inner)-1]
	}
	q := string(quote)
	return strings.ReplaceAll(inner, q+q, q)
}

// stringLit builds a string literal and parses its #interpolated# parts.
// Segments that fail to parse are kept as plain text.
func (p *Parser) stringLit(tok token.Token) ast.Expr {
	lit := &ast.StringLit{Value: unquote(tok.Text)}
	raw := tok.Text
	base := tok.Span.Start.Offset
	for i := 1; i < len(raw)-1; i++ {
		if raw[i] != '#' {
			continue
		}
		if raw[i+1] == '#' {
			i++
			continue
		}
		end := strings.IndexByte(raw[i+1:], '#')
		if end <= 0 {
			break
		}
		from := base + uint32(i+1) // #nosec G115 -- i is bounded by the token length
		to := from + uint32(end)   // #nosec G115 -- end is bounded by the token length
		if x := p.parseSegment(from, to); x != nil {
			lit.Parts = append(lit.Parts, x)
		}
		i += end + 1
	}
	return with(lit, tok.Span)
}

func (p *Parser) parseSegment(from, to uint32) ast.Expr {
	lx := lexer.NewRange(p.lexFile, from, to)
	toks := p.remap(lx.All())
	if len(lx.Errors()) > 0 || len(toks) < 2 {
		return nil
	}
	sub := &Parser{file: p.file, lexFile: p.lexFile, kind: p.kind, toks: toks, maxErrors: 1}
	x := sub.parseExpr()
	if len(sub.issues) > 0 || !sub.eof() {
		return nil
	}
	return x
}
