package analysis

import (
	"strings"

	"bxls/internal/ast"
	"bxls/internal/diag"
)

// AnalyzerReturnType checks return statements against the declared return
// type of the enclosing function. It is not gated by the lint config.
var AnalyzerReturnType = &Analyzer{
	Name: "return-type",
	Run:  runReturnType,
}

const (
	msgVoidReturn    = "A void function may not return a value"
	msgNumericString = "Consider changing the return type of this function or converting the returned value to a string."
	msgMustBeString  = "The function must return a string value"
)

func runReturnType(pass *Pass) {
	// declared return types of enclosing functions; closures push ""
	var frames []string
	var stack []ast.Node
	ast.Inspect(pass.Root, func(n ast.Node) bool {
		if n == nil {
			switch stack[len(stack)-1].(type) {
			case *ast.FuncDecl, *ast.Closure:
				frames = frames[:len(frames)-1]
			}
			stack = stack[:len(stack)-1]
			return false
		}
		stack = append(stack, n)
		switch n := n.(type) {
		case *ast.FuncDecl:
			frames = append(frames, strings.ToLower(n.ReturnType))
		case *ast.Closure:
			frames = append(frames, "")
		case *ast.Return:
			if len(frames) > 0 {
				checkReturn(pass, frames[len(frames)-1], n)
			}
		}
		return true
	})
}

func checkReturn(pass *Pass, declared string, ret *ast.Return) {
	switch declared {
	case "void":
		if ret.Value != nil {
			pass.Report(diag.NewError(diag.CodeReturnType, ret.Span(), msgVoidReturn))
		}
	case "string":
		switch TypeOf(ret.Value) {
		case TypeString, TypeAny:
		case TypeNumeric:
			pass.Report(diag.New(diag.SevWarning, diag.CodeReturnType, ret.Span(), msgNumericString))
		default:
			pass.Report(diag.NewError(diag.CodeReturnType, ret.Span(), msgMustBeString))
		}
	}
}
