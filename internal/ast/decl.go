package ast

import "bxls/internal/source"

// File is the root of a parsed source file.
type File struct {
	Base
	Path    string
	Imports []*Import
	// Class is set for component files. Script and template files only have
	// Body.
	Class *ClassDecl
	Body  []Stmt
}

// Import is an `import a.b.C;` declaration.
type Import struct {
	stmtNode
	Path string
}

// Annotation is `@name value` or an attribute `name="value"` on a
// declaration.
type Annotation struct {
	Base
	Name  string
	Value Expr
}

// ClassDecl is a `class` or `component` declaration.
type ClassDecl struct {
	Base
	Keyword     string
	Name        string
	Annotations []*Annotation
	Properties  []*Property
	Body        []Stmt
}

// Property is a class property declaration.
type Property struct {
	stmtNode
	Name        string
	Type        string
	Default     Expr
	Annotations []*Annotation
}

// FuncDecl is a named function declaration.
type FuncDecl struct {
	stmtNode
	Name        string
	Access      string
	Static      bool
	ReturnType  string
	Args        []*Argument
	Annotations []*Annotation
	Body        *Block
	// NameSpan covers the function name only.
	NameSpan source.Span
}

// Argument is a function parameter.
type Argument struct {
	Base
	Name     string
	Type     string
	Required bool
	Default  Expr
}

// Closure is an anonymous function or an arrow lambda.
type Closure struct {
	exprNode
	Args  []*Argument
	Body  *Block
	Arrow bool
}
