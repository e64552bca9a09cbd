package ast

import "strings"

// Children returns the direct children of n in source order. Nil children
// are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil && !isNil(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *File:
		for _, imp := range n.Imports {
			add(imp)
		}
		if n.Class != nil {
			add(n.Class)
		}
		for _, s := range n.Body {
			add(s)
		}
	case *ClassDecl:
		for _, a := range n.Annotations {
			add(a)
		}
		for _, p := range n.Properties {
			add(p)
		}
		for _, s := range n.Body {
			add(s)
		}
	case *Annotation:
		add(n.Value)
	case *Property:
		for _, a := range n.Annotations {
			add(a)
		}
		add(n.Default)
	case *FuncDecl:
		for _, a := range n.Annotations {
			add(a)
		}
		for _, a := range n.Args {
			add(a)
		}
		add(n.Body)
	case *Argument:
		add(n.Default)
	case *Closure:
		for _, a := range n.Args {
			add(a)
		}
		add(n.Body)
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *ExprStmt:
		add(n.X)
	case *Return:
		add(n.Value)
	case *If:
		add(n.Cond, n.Then, n.Else)
	case *While:
		add(n.Cond, n.Body)
	case *ForIn:
		add(n.Var, n.Collection, n.Body)
	case *ForLoop:
		add(n.Init, n.Cond, n.Step, n.Body)
	case *Throw:
		add(n.Value)
	case *Try:
		add(n.Body)
		for _, c := range n.Catches {
			add(c)
		}
		add(n.Finally)
	case *Catch:
		add(n.Name, n.Body)
	case *Switch:
		add(n.Tag)
		for _, c := range n.Cases {
			add(c)
		}
	case *Case:
		for _, v := range n.Values {
			add(v)
		}
		for _, s := range n.Body {
			add(s)
		}
	case *Assignment:
		add(n.Left, n.Right)
	case *StringLit:
		for _, e := range n.Parts {
			add(e)
		}
	case *ArrayLit:
		for _, e := range n.Elems {
			add(e)
		}
	case *StructLit:
		for _, e := range n.Entries {
			add(e)
		}
	case *StructEntry:
		add(n.Key, n.Value)
	case *DotAccess:
		add(n.X, n.Name)
	case *IndexAccess:
		add(n.X, n.Index)
	case *Call:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *CallArg:
		add(n.Value)
	case *New:
		for _, a := range n.Args {
			add(a)
		}
	case *Binary:
		add(n.X, n.Y)
	case *Comparison:
		add(n.X, n.Y)
	case *Unary:
		add(n.X)
	case *Ternary:
		add(n.Cond, n.Then, n.Else)
	case *Paren:
		add(n.X)
	}
	return out
}

// isNil catches typed nil pointers stored in interface fields.
func isNil(n Node) bool {
	switch v := n.(type) {
	case *Block:
		return v == nil
	case *Identifier:
		return v == nil
	case *ClassDecl:
		return v == nil
	}
	return false
}

// Visitor is called for every node by Walk. If Visit returns a non-nil
// visitor w, Walk visits each child with w and then calls w.Visit(nil).
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk traverses the tree depth-first in source order.
func Walk(v Visitor, n Node) {
	if n == nil {
		return
	}
	if v = v.Visit(n); v == nil {
		return
	}
	for _, c := range Children(n) {
		Walk(v, c)
	}
	v.Visit(nil)
}

type inspector func(Node) bool

func (f inspector) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect calls f for every node in depth-first order. When f returns false
// the children of that node are skipped. f is called with nil after the
// children of a node have been visited.
func Inspect(n Node, f func(Node) bool) {
	Walk(inspector(f), n)
}

// Functions returns every named function declaration under n in source
// order, including nested ones.
func Functions(n Node) []*FuncDecl {
	var out []*FuncDecl
	Inspect(n, func(n Node) bool {
		if fn, ok := n.(*FuncDecl); ok {
			out = append(out, fn)
		}
		return true
	})
	return out
}

// FindFunction returns the last function named name, ignoring case.
func FindFunction(n Node, name string) *FuncDecl {
	var found *FuncDecl
	for _, fn := range Functions(n) {
		if strings.EqualFold(fn.Name, name) {
			found = fn
		}
	}
	return found
}
