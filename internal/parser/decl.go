package parser

import (
	"path/filepath"
	"strings"

	"bxls/internal/ast"
	"bxls/internal/source"
	"bxls/internal/token"
)

func (p *Parser) parseFile() *ast.File {
	file := &ast.File{Path: p.file.Path}
	for !p.eof() && !p.tooManyErrors() {
		start := p.pos
		switch {
		case p.atWord("import") && p.peekN(1).Kind == token.Ident:
			file.Imports = append(file.Imports, p.parseImport())
		case file.Class == nil && p.atClassStart():
			file.Class = p.parseClass()
		default:
			if stmt := p.parseStmt(); stmt != nil {
				file.Body = append(file.Body, stmt)
			}
		}
		if p.pos == start {
			p.errorf(p.peek().Span, "unexpected %s", describe(p.peek()))
			p.next()
		}
	}
	file.SetSpan(p.file.Span(0, p.file.Len()))
	return file
}

func (p *Parser) parseImport() *ast.Import {
	start := p.next().Span
	var b strings.Builder
	if p.at(token.Ident) && p.peekN(1).Kind == token.Colon {
		b.WriteString(p.next().Text)
		b.WriteString(p.next().Text)
	}
	b.WriteString(p.expectIdent().Text)
	for p.at(token.Dot) {
		p.next()
		b.WriteByte('.')
		if p.eat(token.Star) {
			b.WriteByte('*')
			break
		}
		b.WriteString(p.expectIdent().Text)
	}
	p.endStatement()
	return with(&ast.Import{Path: b.String()}, p.spanFrom(start))
}

// atClassStart looks past annotations and modifiers for class or component.
func (p *Parser) atClassStart() bool {
	i := 0
	for {
		tok := p.peekN(i)
		switch {
		case tok.Kind == token.At:
			// @name [value]
			i += 2
			if v := p.peekN(i); v.Kind == token.String || v.Kind == token.Number {
				i++
			}
		case tok.Is("abstract") || tok.Is("final"):
			i++
		case tok.Is("class") || tok.Is("component") || tok.Is("interface"):
			n := p.peekN(i + 1)
			return n.Kind == token.LBrace || (n.Kind == token.Ident && p.peekN(i+2).Kind != token.Dot)
		default:
			return false
		}
	}
}

func (p *Parser) parseAnnotations() []*ast.Annotation {
	var out []*ast.Annotation
	for p.at(token.At) {
		start := p.next().Span
		name := p.expectIdent()
		ann := &ast.Annotation{Name: name.Text}
		if p.at(token.String) || p.at(token.Number) || p.at(token.LBracket) || p.at(token.LBrace) {
			ann.Value = p.parsePrimary()
		}
		out = append(out, with(ann, p.spanFrom(start)))
	}
	return out
}

// parseAttributes reads `name=value` pairs and bare flags up to stop.
func (p *Parser) parseAttributes(stop token.Kind) []*ast.Annotation {
	var out []*ast.Annotation
	for p.at(token.Ident) && !p.at(stop) {
		name := p.next()
		ann := &ast.Annotation{Name: name.Text}
		if p.eat(token.Assign) || p.eat(token.Colon) {
			ann.Value = p.parseTernary()
		}
		out = append(out, with(ann, p.spanFrom(name.Span)))
	}
	return out
}

func (p *Parser) parseClass() *ast.ClassDecl {
	startTok := p.peek()
	annotations := p.parseAnnotations()
	for p.atWord("abstract") || p.atWord("final") {
		p.next()
	}
	keyword := p.next()
	class := &ast.ClassDecl{
		Keyword:     strings.ToLower(keyword.Text),
		Name:        classNameFromPath(p.file.Path),
		Annotations: annotations,
	}
	class.Annotations = append(class.Annotations, p.parseAttributes(token.LBrace)...)
	p.expect(token.LBrace)

	var pending []*ast.Annotation
	for !p.at(token.RBrace) && !p.eof() && !p.tooManyErrors() {
		start := p.pos
		if p.at(token.At) {
			pending = append(pending, p.parseAnnotations()...)
			continue
		}
		switch {
		case p.atWord("property") && p.peekN(1).Kind == token.Ident:
			prop := p.parseProperty()
			prop.Annotations = append(pending, prop.Annotations...)
			class.Properties = append(class.Properties, prop)
		case p.atFuncDecl():
			fn := p.parseFuncDecl()
			fn.Annotations = append(pending, fn.Annotations...)
			class.Body = append(class.Body, fn)
		default:
			if stmt := p.parseStmt(); stmt != nil {
				class.Body = append(class.Body, stmt)
			}
		}
		pending = nil
		if p.pos == start {
			p.errorf(p.peek().Span, "unexpected %s", describe(p.peek()))
			p.next()
		}
	}
	p.expect(token.RBrace)
	return with(class, p.spanFrom(startTok.Span))
}

func classNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parseProperty reads `property [type] name [attr=value...];` or
// `property name="x" type="y";`.
func (p *Parser) parseProperty() *ast.Property {
	start := p.next().Span
	prop := &ast.Property{}
	var words []string
	line := start.Start.Line
	for p.at(token.Ident) && (p.peek().Span.Start.Line == line || p.peekN(1).Kind == token.Assign) {
		name := p.next()
		line = name.Span.Start.Line
		if p.eat(token.Assign) {
			value := p.parseTernary()
			ann := with(&ast.Annotation{Name: name.Text, Value: value}, p.spanFrom(name.Span))
			prop.Annotations = append(prop.Annotations, ann)
			switch strings.ToLower(name.Text) {
			case "name":
				prop.Name = literalText(value)
			case "type":
				prop.Type = literalText(value)
			case "default":
				prop.Default = value
			}
			continue
		}
		words = append(words, name.Text)
	}
	if prop.Name == "" && len(words) > 0 {
		prop.Name = words[len(words)-1]
		if len(words) > 1 && prop.Type == "" {
			prop.Type = words[len(words)-2]
		}
	}
	if prop.Name == "" {
		p.errorf(start, "property is missing a name")
	}
	p.endStatement()
	return with(prop, p.spanFrom(start))
}

func literalText(e ast.Expr) string {
	switch v := e.(type) {
	case *ast.StringLit:
		return v.Value
	case *ast.Identifier:
		return v.Name
	case *ast.NumberLit:
		return v.Text
	}
	return ""
}

// atFuncDecl reports whether the upcoming tokens are
// [modifiers] [type] function name (.
func (p *Parser) atFuncDecl() bool {
	for i := 0; i < 8; i++ {
		tok := p.peekN(i)
		if tok.Is("function") {
			return p.peekN(i+1).Kind == token.Ident && p.peekN(i+2).Kind == token.LParen
		}
		switch tok.Kind {
		case token.Ident, token.Dot, token.LBracket, token.RBracket:
		default:
			return false
		}
		if i > 0 && tok.Kind == token.Ident && tok.IsKeyword() {
			return false
		}
	}
	return false
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.peek().Span
	fn := &ast.FuncDecl{}
	var typeParts []string
	for !p.atWord("function") && !p.eof() {
		tok := p.next()
		lower := strings.ToLower(tok.Text)
		if _, ok := token.AccessModifiers[lower]; ok && tok.Kind == token.Ident && fn.Access == "" && len(typeParts) == 0 {
			fn.Access = lower
			continue
		}
		switch {
		case tok.Kind == token.Ident && lower == "static" && len(typeParts) == 0:
			fn.Static = true
		case tok.Kind == token.Ident && (lower == "final" || lower == "abstract") && len(typeParts) == 0:
		default:
			typeParts = append(typeParts, tok.Text)
		}
	}
	fn.ReturnType = strings.Join(typeParts, "")
	p.next() // function
	name := p.expectIdent()
	fn.Name = name.Text
	fn.NameSpan = name.Span
	fn.Args = p.parseArguments()
	fn.Annotations = append(fn.Annotations, p.parseAttributes(token.LBrace)...)
	if p.eat(token.Semicolon) {
		// abstract or interface method
		return with(fn, p.spanFrom(start))
	}
	fn.Body = p.parseBlock()
	return with(fn, p.spanFrom(start))
}

func (p *Parser) parseArguments() []*ast.Argument {
	p.expect(token.LParen)
	var args []*ast.Argument
	for !p.at(token.RParen) && !p.eof() {
		start := p.peek().Span
		arg := &ast.Argument{}
		if p.atWord("required") && p.peekN(1).Kind == token.Ident {
			p.next()
			arg.Required = true
		}
		var words []string
		for p.at(token.Ident) {
			words = append(words, p.next().Text)
			for p.at(token.Dot) && p.peekN(1).Kind == token.Ident {
				p.next()
				words[len(words)-1] += "." + p.next().Text
			}
			if p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
				p.next()
				p.next()
				words[len(words)-1] += "[]"
			}
		}
		if len(words) == 0 {
			p.errorf(p.peek().Span, "expected argument name, found %s", describe(p.peek()))
			p.syncArgs()
			continue
		}
		arg.Name = words[len(words)-1]
		if len(words) > 1 {
			arg.Type = words[len(words)-2]
		}
		if p.eat(token.Assign) {
			arg.Default = p.parseTernary()
		}
		// trailing attributes such as hint="..."
		for p.at(token.Ident) && p.peekN(1).Kind == token.Assign {
			p.next()
			p.next()
			p.parseTernary()
		}
		args = append(args, with(arg, p.spanFrom(start)))
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	return args
}

func (p *Parser) syncArgs() {
	for !p.eof() && !p.at(token.RParen) {
		if p.eat(token.Comma) {
			return
		}
		p.next()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBrace).Span
	block := &ast.Block{}
	for !p.at(token.RBrace) && !p.eof() && !p.tooManyErrors() {
		before := p.pos
		if stmt := p.parseStmt(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
		if p.pos == before {
			p.errorf(p.peek().Span, "unexpected %s", describe(p.peek()))
			p.next()
		}
	}
	p.expect(token.RBrace)
	return with(block, p.spanFrom(start))
}

func spanOf(nodes ...ast.Node) source.Span {
	var out source.Span
	first := true
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if first {
			out = n.Span()
			first = false
			continue
		}
		out = out.Cover(n.Span())
	}
	return out
}
