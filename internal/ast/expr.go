package ast

// Modifier qualifies an assignment.
type Modifier uint8

const (
	ModVar Modifier = iota + 1
	ModFinal
	ModStatic
)

func (m Modifier) String() string {
	switch m {
	case ModVar:
		return "var"
	case ModFinal:
		return "final"
	case ModStatic:
		return "static"
	default:
		return ""
	}
}

// Assignment is `left op right`. Right is nil for a bare `var x;`.
type Assignment struct {
	exprNode
	Left      Expr
	Op        string
	Right     Expr
	Modifiers []Modifier
}

// HasModifier reports whether the assignment carries m.
func (a *Assignment) HasModifier(m Modifier) bool {
	for _, mod := range a.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

type Identifier struct {
	exprNode
	Name string
}

// StringLit holds the unquoted value of a string literal. Parts holds the
// expressions of #interpolated# segments.
type StringLit struct {
	exprNode
	Value string
	Parts []Expr
}

type NumberLit struct {
	exprNode
	Text    string
	Decimal bool
}

type BoolLit struct {
	exprNode
	Value bool
}

type NullLit struct {
	exprNode
}

type ArrayLit struct {
	exprNode
	Elems []Expr
}

type StructLit struct {
	exprNode
	Entries []*StructEntry
	Ordered bool
}

type StructEntry struct {
	Base
	Key   Expr
	Value Expr
}

// DotAccess is `X.Name` or `X?.Name`.
type DotAccess struct {
	exprNode
	X    Expr
	Name *Identifier
	Safe bool
}

// IndexAccess is `X[Index]`.
type IndexAccess struct {
	exprNode
	X     Expr
	Index Expr
}

// Call is a function invocation when Fun is an Identifier, and a method
// invocation when Fun is a DotAccess.
type Call struct {
	exprNode
	Fun  Expr
	Args []*CallArg
}

// CallArg is a positional or named argument.
type CallArg struct {
	Base
	Name  string
	Value Expr
}

// New is `new path.To.Class(args)`. Prefix holds a resolver prefix such as
// "java".
type New struct {
	exprNode
	Prefix string
	Class  string
	Args   []*CallArg
}

// Binary covers arithmetic, concatenation, logical and elvis operators.
type Binary struct {
	exprNode
	Op string
	X  Expr
	Y  Expr
}

// Comparison covers equality, ordering and `contains` operators.
type Comparison struct {
	exprNode
	Op string
	X  Expr
	Y  Expr
}

type Unary struct {
	exprNode
	Op      string
	X       Expr
	Postfix bool
}

type Ternary struct {
	exprNode
	Cond Expr
	Then Expr
	Else Expr
}

type Paren struct {
	exprNode
	X Expr
}

// Bad marks an expression that failed to parse.
type Bad struct {
	exprNode
}
