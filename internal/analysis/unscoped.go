package analysis

import (
	"fmt"

	"bxls/internal/ast"
	"bxls/internal/diag"
	"bxls/internal/source"
)

// AnalyzerUnscopedVariable reports assignments inside functions that are not
// declared with var. It only applies to CF files, where such assignments
// land in the variables scope.
var AnalyzerUnscopedVariable = &Analyzer{
	Name:    "unscoped-variable",
	Rule:    diag.CodeUnscopedVariable,
	Applies: source.Kind.IsCF,
	Run:     runUnscoped,
}

type unscopedFinding struct {
	diag   diag.Diagnostic
	action diag.CodeAction
}

func runUnscoped(pass *Pass) {
	props := pass.Properties()
	scoped := make(map[*ast.FuncDecl]map[string]struct{})
	reported := make(map[*ast.FuncDecl]map[string]struct{})
	var findings []unscopedFinding

	setFor := func(m map[*ast.FuncDecl]map[string]struct{}, fn *ast.FuncDecl) map[string]struct{} {
		s, ok := m[fn]
		if !ok {
			s = make(map[string]struct{})
			m[fn] = s
		}
		return s
	}

	var stack []ast.Node
	ast.Inspect(pass.Root, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		fn := enclosingFunc(stack)
		stack = append(stack, n)

		switch n := n.(type) {
		case *ast.Argument:
			if fn != nil {
				setFor(scoped, fn)[pass.Key(n.Name)] = struct{}{}
			}
		case *ast.Assignment:
			if fn == nil {
				return true
			}
			id, ok := n.Left.(*ast.Identifier)
			if !ok {
				return true
			}
			key := pass.Key(id.Name)
			vars := setFor(scoped, fn)
			if n.HasModifier(ast.ModVar) {
				vars[key] = struct{}{}
				return true
			}
			if _, ok := vars[key]; ok {
				return true
			}
			done := setFor(reported, fn)
			if _, ok := done[key]; ok {
				return true
			}
			if _, ok := props[key]; ok {
				return true
			}
			done[key] = struct{}{}
			findings = append(findings, newUnscopedFinding(pass, n, id.Name))
		}
		return true
	})

	for _, f := range findings {
		pass.Report(f.diag)
		pass.Suggest(f.action)
	}
}

func newUnscopedFinding(pass *Pass, n *ast.Assignment, name string) unscopedFinding {
	d := diag.New(pass.Severity(diag.SevWarning), diag.CodeUnscopedVariable, n.Span(),
		fmt.Sprintf("Variable [%s] is not scoped.", name)).
		WithData(diag.Data{VariableName: name, ID: pass.NewID()})
	src := pass.Text(n.Span())
	action := diag.QuickFix(d, "Add var keyword to "+src, diag.TextEdit{Range: n.Span(), NewText: "var " + src})
	return unscopedFinding{diag: d, action: action}
}

// pseudoConstructorTarget returns the implicit property created by an
// assignment outside any function.
func pseudoConstructorTarget(left ast.Expr) (string, bool) {
	switch left := left.(type) {
	case *ast.Identifier:
		return left.Name, true
	case *ast.DotAccess:
		return left.Name.Name, left.Name.Name != ""
	case *ast.IndexAccess:
		if s, ok := left.Index.(*ast.StringLit); ok {
			return s.Value, true
		}
	}
	return "", false
}

func enclosingFunc(stack []ast.Node) *ast.FuncDecl {
	for i := len(stack) - 1; i >= 0; i-- {
		if fn, ok := stack[i].(*ast.FuncDecl); ok {
			return fn
		}
	}
	return nil
}
