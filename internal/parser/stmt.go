package parser

import (
	"strings"

	"bxls/internal/ast"
	"bxls/internal/token"
)

// componentStatements take attributes followed by a body block.
var componentStatements = map[string]struct{}{
	"lock":        {},
	"transaction": {},
	"thread":      {},
	"savecontent": {},
	"http":        {},
	"query":       {},
	"timer":       {},
	"output":      {},
}

func (p *Parser) parseStmt() ast.Stmt {
	tok := p.peek()
	switch {
	case tok.Kind == token.Semicolon:
		p.next()
		return nil
	case tok.Kind == token.LBrace:
		return p.parseBlock()
	case tok.Kind == token.At:
		annotations := p.parseAnnotations()
		if p.atFuncDecl() {
			fn := p.parseFuncDecl()
			fn.Annotations = append(annotations, fn.Annotations...)
			return fn
		}
		return p.parseStmt()
	case p.atFuncDecl():
		return p.parseFuncDecl()
	case p.atModifier():
		return p.parseDeclaration()
	case tok.Is("static") && p.peekN(1).Kind == token.LBrace:
		p.next()
		return p.parseBlock()
	case tok.Is("return"):
		return p.parseReturn()
	case tok.Is("if") && p.peekN(1).Kind == token.LParen:
		return p.parseIf()
	case tok.Is("while") && p.peekN(1).Kind == token.LParen:
		return p.parseWhile()
	case tok.Is("do") && p.peekN(1).Kind == token.LBrace:
		return p.parseDoWhile()
	case tok.Is("for") && p.peekN(1).Kind == token.LParen:
		return p.parseFor()
	case (tok.Is("break") || tok.Is("continue")) && !isOperandFollower(p.peekN(1)):
		p.next()
		p.endStatement()
		return with(&ast.Branch{Keyword: strings.ToLower(tok.Text)}, p.spanFrom(tok.Span))
	case tok.Is("throw") && !isOperandFollower(p.peekN(1)):
		return p.parseThrow()
	case tok.Is("try") && p.peekN(1).Kind == token.LBrace:
		return p.parseTry()
	case tok.Is("switch") && p.peekN(1).Kind == token.LParen:
		return p.parseSwitch()
	case tok.Is("import") && p.peekN(1).Kind == token.Ident:
		return p.parseImport()
	case tok.Is("param") && p.peekN(1).Kind == token.Ident && p.peekN(2).Kind != token.LParen:
		p.next()
		p.parseAttributes(token.Semicolon)
		p.endStatement()
		return nil
	case p.atComponentStatement():
		p.next()
		p.parseAttributes(token.LBrace)
		return p.parseBlock()
	}
	return p.parseExprStmt()
}

// isOperandFollower reports whether tok after a keyword-like word means the
// word is being used as a variable name.
func isOperandFollower(tok token.Token) bool {
	switch tok.Kind {
	case token.Assign, token.Dot, token.LBracket, token.PlusAssign, token.MinusAssign,
		token.StarAssign, token.SlashAssign, token.AmpAssign, token.PercentAssign:
		return true
	}
	return false
}

func (p *Parser) atComponentStatement() bool {
	tok := p.peek()
	if tok.Kind != token.Ident {
		return false
	}
	if _, ok := componentStatements[strings.ToLower(tok.Text)]; !ok {
		return false
	}
	next := p.peekN(1)
	if next.Kind == token.LBrace {
		return true
	}
	return next.Kind == token.Ident && (p.peekN(2).Kind == token.Assign || p.peekN(2).Kind == token.LBrace)
}

// atModifier reports whether a var, final or static prefix starts a
// declaration.
func (p *Parser) atModifier() bool {
	tok := p.peek()
	if !(tok.Is("var") || tok.Is("final") || tok.Is("static")) {
		return false
	}
	return p.peekN(1).Kind == token.Ident
}

func (p *Parser) parseDeclaration() ast.Stmt {
	start := p.peek().Span
	var mods []ast.Modifier
	for p.atModifier() {
		switch strings.ToLower(p.next().Text) {
		case "var":
			mods = append(mods, ast.ModVar)
		case "final":
			mods = append(mods, ast.ModFinal)
		case "static":
			mods = append(mods, ast.ModStatic)
		}
	}
	x := p.parseExpr()
	assign, ok := x.(*ast.Assignment)
	if !ok {
		assign = &ast.Assignment{Left: x}
	}
	assign.Modifiers = mods
	span := p.spanFrom(start)
	assign.SetSpan(span)
	p.endStatement()
	return with(&ast.ExprStmt{X: assign}, span)
}

func (p *Parser) parseExprStmt() ast.Stmt {
	x := p.parseExpr()
	span := x.Span()
	p.endStatement()
	return with(&ast.ExprStmt{X: x}, span)
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.next().Span
	ret := &ast.Return{}
	next := p.peek()
	bare := next.Kind == token.Semicolon || next.Kind == token.RBrace || next.Kind == token.EOF ||
		next.Span.Start.Line > start.End.Line
	if !bare {
		ret.Value = p.parseExpr()
	}
	p.endStatement()
	return with(ret, p.spanFrom(start))
}

func (p *Parser) parseParenExpr() ast.Expr {
	p.expect(token.LParen)
	x := p.parseExpr()
	p.expect(token.RParen)
	return x
}

func (p *Parser) parseBody() ast.Stmt {
	if stmt := p.parseStmt(); stmt != nil {
		return stmt
	}
	return with(&ast.Block{}, p.prev().Span)
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.next().Span
	node := &ast.If{Cond: p.parseParenExpr()}
	node.Then = p.parseBody()
	if p.eatWord("else") {
		node.Else = p.parseBody()
	}
	return with(node, p.spanFrom(start))
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.next().Span
	node := &ast.While{Cond: p.parseParenExpr()}
	node.Body = p.parseBody()
	return with(node, p.spanFrom(start))
}

func (p *Parser) parseDoWhile() ast.Stmt {
	start := p.next().Span
	node := &ast.While{Do: true}
	node.Body = p.parseBlock()
	if !p.eatWord("while") {
		p.errorf(p.peek().Span, "expected 'while', found %s", describe(p.peek()))
		return with(node, p.spanFrom(start))
	}
	node.Cond = p.parseParenExpr()
	p.endStatement()
	return with(node, p.spanFrom(start))
}

func (p *Parser) atForIn() bool {
	i := 1
	if p.peekN(i).Is("var") {
		i++
	}
	return p.peekN(i).Kind == token.Ident && p.peekN(i+1).Is("in")
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.next().Span
	if p.atForIn() {
		p.next() // (
		varStart := p.peek().Span
		declared := p.eatWord("var")
		name := p.expectIdent()
		var v ast.Expr = with(&ast.Identifier{Name: name.Text}, name.Span)
		if declared {
			v = with(&ast.Assignment{Left: v, Modifiers: []ast.Modifier{ast.ModVar}}, p.spanFrom(varStart))
		}
		p.next() // in
		node := &ast.ForIn{Var: v, Collection: p.parseExpr()}
		p.expect(token.RParen)
		node.Body = p.parseBody()
		return with(node, p.spanFrom(start))
	}

	p.expect(token.LParen)
	node := &ast.ForLoop{}
	if !p.at(token.Semicolon) {
		node.Init = p.parseForInit()
	}
	p.expect(token.Semicolon)
	if !p.at(token.Semicolon) {
		node.Cond = p.parseExpr()
	}
	p.expect(token.Semicolon)
	if !p.at(token.RParen) {
		node.Step = p.parseExpr()
	}
	p.expect(token.RParen)
	node.Body = p.parseBody()
	return with(node, p.spanFrom(start))
}

func (p *Parser) parseForInit() ast.Expr {
	if !p.atWord("var") {
		return p.parseExpr()
	}
	start := p.next().Span
	x := p.parseExpr()
	assign, ok := x.(*ast.Assignment)
	if !ok {
		assign = &ast.Assignment{Left: x}
	}
	assign.Modifiers = []ast.Modifier{ast.ModVar}
	return with(assign, p.spanFrom(start))
}

func (p *Parser) parseThrow() ast.Stmt {
	start := p.next().Span
	node := &ast.Throw{}
	switch {
	case p.at(token.LParen):
		fun := with(&ast.Identifier{Name: "throw"}, start)
		args := p.parseCallArgs()
		node.Value = with(&ast.Call{Fun: fun, Args: args}, p.spanFrom(start))
	case p.at(token.Semicolon) || p.at(token.RBrace) || p.eof():
	default:
		node.Value = p.parseExpr()
	}
	p.endStatement()
	return with(node, p.spanFrom(start))
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.next().Span
	node := &ast.Try{Body: p.parseBlock()}
	for p.atWord("catch") {
		catchStart := p.next().Span
		c := &ast.Catch{}
		p.expect(token.LParen)
		var parts []string
		for !p.at(token.RParen) && !p.eof() {
			tok := p.next()
			switch tok.Kind {
			case token.String:
				c.Type = unquote(tok.Text)
			case token.Ident:
				parts = append(parts, tok.Text)
				c.Name = with(&ast.Identifier{Name: tok.Text}, tok.Span)
			case token.Dot:
				if len(parts) > 0 {
					parts[len(parts)-1] += "."
				}
			}
		}
		p.expect(token.RParen)
		if len(parts) > 1 && c.Type == "" {
			c.Type = strings.Join(parts[:len(parts)-1], "")
		}
		c.Body = p.parseBlock()
		node.Catches = append(node.Catches, with(c, p.spanFrom(catchStart)))
	}
	if p.eatWord("finally") {
		node.Finally = p.parseBlock()
	}
	if len(node.Catches) == 0 && node.Finally == nil {
		p.errorf(start, "try without catch or finally")
	}
	return with(node, p.spanFrom(start))
}

func (p *Parser) parseSwitch() ast.Stmt {
	start := p.next().Span
	node := &ast.Switch{Tag: p.parseParenExpr()}
	p.expect(token.LBrace)
	for !p.at(token.RBrace) && !p.eof() && !p.tooManyErrors() {
		caseStart := p.peek().Span
		c := &ast.Case{}
		switch {
		case p.eatWord("case"):
			c.Values = append(c.Values, p.parseTernary())
			for p.eat(token.Comma) {
				c.Values = append(c.Values, p.parseTernary())
			}
		case p.eatWord("default"):
		default:
			p.errorf(p.peek().Span, "expected 'case' or 'default', found %s", describe(p.peek()))
			p.sync()
			continue
		}
		p.expect(token.Colon)
		for !p.atWord("case") && !p.atWord("default") && !p.at(token.RBrace) && !p.eof() && !p.tooManyErrors() {
			before := p.pos
			if stmt := p.parseStmt(); stmt != nil {
				c.Body = append(c.Body, stmt)
			}
			if p.pos == before {
				p.errorf(p.peek().Span, "unexpected %s", describe(p.peek()))
				p.next()
			}
		}
		node.Cases = append(node.Cases, with(c, p.spanFrom(caseStart)))
	}
	p.expect(token.RBrace)
	return with(node, p.spanFrom(start))
}
