// Package ast declares the syntax tree for BoxLang and CFML script.
//
// Nodes are a closed set of pointer types implementing Node. Expressions also
// implement Expr and statements implement Stmt. Traversal is done with type
// switches (see Children, Walk and Inspect) rather than per-node visitor
// methods.
package ast

import (
	"bxls/internal/source"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Span() source.Span
	node()
}

// Expr is a node that produces a value.
type Expr interface {
	Node
	expr()
}

// Stmt is a node that appears in a statement list.
type Stmt interface {
	Node
	stmt()
}

// Base carries the source range of a node.
type Base struct {
	Src source.Span
}

func (b *Base) Span() source.Span { return b.Src }
func (*Base) node()               {}

// SetSpan records the source range. Parsers call it once per node.
func (b *Base) SetSpan(span source.Span) { b.Src = span }

type exprNode struct{ Base }

func (*exprNode) expr() {}

type stmtNode struct{ Base }

func (*stmtNode) stmt() {}
