package ast

// Block is a braced statement list.
type Block struct {
	stmtNode
	Stmts []Stmt
}

// ExprStmt is an expression used as a statement, most often an Assignment or
// a Call.
type ExprStmt struct {
	stmtNode
	X Expr
}

// Return is a `return` statement. Value is nil for a bare return.
type Return struct {
	stmtNode
	Value Expr
}

type If struct {
	stmtNode
	Cond Expr
	Then Stmt
	Else Stmt
}

type While struct {
	stmtNode
	Cond Expr
	Body Stmt
	// Do is set for do/while loops.
	Do bool
}

// ForIn is `for (x in collection)`.
type ForIn struct {
	stmtNode
	Var        Expr
	Collection Expr
	Body       Stmt
}

// ForLoop is the three-clause `for (init; cond; step)`.
type ForLoop struct {
	stmtNode
	Init Expr
	Cond Expr
	Step Expr
	Body Stmt
}

// Branch is `break` or `continue`.
type Branch struct {
	stmtNode
	Keyword string
}

type Throw struct {
	stmtNode
	Value Expr
}

type Try struct {
	stmtNode
	Body    *Block
	Catches []*Catch
	Finally *Block
}

type Catch struct {
	Base
	Type string
	Name *Identifier
	Body *Block
}

type Switch struct {
	stmtNode
	Tag   Expr
	Cases []*Case
}

// Case is one switch arm. Values is empty for `default`.
type Case struct {
	Base
	Values []Expr
	Body   []Stmt
}
