package analysis

import (
	"fmt"

	"bxls/internal/ast"
	"bxls/internal/diag"
	"bxls/internal/source"
)

// AnalyzerUnusedVariable reports arguments and local assignments that are
// never read. Assigning to a name again counts as reading it.
var AnalyzerUnusedVariable = &Analyzer{
	Name: "unused-variable",
	Rule: diag.CodeUnusedVariable,
	Run:  runUnused,
}

type trackedVar struct {
	name string
	span source.Span
	arg  bool
	used bool
}

func runUnused(pass *Pass) {
	props := pass.Properties()
	for _, fn := range ast.Functions(pass.Root) {
		for _, v := range unusedInFunc(pass, fn) {
			if _, ok := props[pass.Key(v.name)]; ok {
				continue
			}
			d := diag.New(pass.Severity(diag.SevHint), diag.CodeUnusedVariable, v.span,
				fmt.Sprintf("Variable [%s] is declared but never used.", v.name)).
				WithTag(diag.TagUnnecessary).
				WithData(diag.Data{VariableName: v.name, ID: pass.NewID()})
			pass.Report(d)
		}
	}
}

// unusedInFunc returns the variables of fn that are never used. Nested
// function declarations are analyzed on their own.
func unusedInFunc(pass *Pass, fn *ast.FuncDecl) []*trackedVar {
	var order []*trackedVar
	vars := make(map[string]*trackedVar)
	declare := func(name string, span source.Span, arg bool) {
		key := pass.Key(name)
		if v, ok := vars[key]; ok {
			v.used = true
			return
		}
		v := &trackedVar{name: name, span: span, arg: arg}
		vars[key] = v
		order = append(order, v)
	}

	for _, a := range fn.Args {
		declare(a.Name, a.Span(), true)
	}

	walkFunc(fn, func(n, _ ast.Node) {
		switch n := n.(type) {
		case *ast.Argument:
			declare(n.Name, n.Span(), true)
		case *ast.Assignment:
			if id, ok := n.Left.(*ast.Identifier); ok {
				declare(id.Name, n.Span(), false)
			}
		}
	})

	argumentsUsed := false
	argumentsKey := pass.Key("arguments")
	walkFunc(fn, func(n, parent ast.Node) {
		id, ok := n.(*ast.Identifier)
		if !ok || !isUse(id, parent) {
			return
		}
		key := pass.Key(id.Name)
		if key == argumentsKey {
			argumentsUsed = true
		}
		if v, ok := vars[key]; ok {
			v.used = true
		}
	})

	var out []*trackedVar
	for _, v := range order {
		if v.used || (v.arg && argumentsUsed) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// walkFunc visits the body of fn in source order with each node's parent.
// Arguments of fn itself are not visited; nested declarations are skipped.
func walkFunc(fn *ast.FuncDecl, visit func(n, parent ast.Node)) {
	if fn.Body == nil {
		return
	}
	stack := []ast.Node{fn}
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		if _, ok := n.(*ast.FuncDecl); ok {
			return false
		}
		visit(n, stack[len(stack)-1])
		stack = append(stack, n)
		return true
	})
}

// isUse reports whether id in parent reads a variable rather than naming an
// assignment target, a member, a struct key or a catch binding.
func isUse(id *ast.Identifier, parent ast.Node) bool {
	switch p := parent.(type) {
	case *ast.Assignment:
		return p.Left != ast.Expr(id)
	case *ast.DotAccess:
		return p.Name != id
	case *ast.StructEntry:
		return p.Key != ast.Expr(id)
	case *ast.Catch:
		return false
	case *ast.ForIn:
		return p.Var != ast.Expr(id)
	}
	return true
}
