package analysis

import (
	"bxls/internal/ast"
)

// ValueType is the statically known type of an expression.
type ValueType uint8

const (
	TypeAny ValueType = iota
	TypeString
	TypeNumeric
	TypeBoolean
	TypeArray
	TypeStruct
	TypeFunction
	TypeNull
)

func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumeric:
		return "numeric"
	case TypeBoolean:
		return "boolean"
	case TypeArray:
		return "array"
	case TypeStruct:
		return "struct"
	case TypeFunction:
		return "function"
	case TypeNull:
		return "null"
	}
	return "any"
}

// TypeOf resolves literal types. Anything else is TypeAny.
func TypeOf(x ast.Expr) ValueType {
	switch x := x.(type) {
	case nil:
		return TypeNull
	case *ast.StringLit:
		return TypeString
	case *ast.NumberLit:
		return TypeNumeric
	case *ast.BoolLit:
		return TypeBoolean
	case *ast.ArrayLit:
		return TypeArray
	case *ast.StructLit:
		return TypeStruct
	case *ast.Closure:
		return TypeFunction
	case *ast.NullLit:
		return TypeNull
	case *ast.Paren:
		return TypeOf(x.X)
	case *ast.Binary:
		if x.Op == "&" {
			return TypeString
		}
	}
	return TypeAny
}
