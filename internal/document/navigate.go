package document

import (
	"strings"

	"bxls/internal/ast"
	"bxls/internal/source"
)

// calleeName returns the invoked function name of a plain call.
func calleeName(call *ast.Call) (*ast.Identifier, bool) {
	id, ok := call.Fun.(*ast.Identifier)
	return id, ok
}

// Definition returns the name spans of functions declared in the document
// that match the call at line/column (1-based line, UTF-16 column).
func (d *Document) Definition(line, column uint32) []source.Span {
	if d.Root == nil {
		return nil
	}
	var name string
	ast.Inspect(d.Root, func(n ast.Node) bool {
		if n == nil || name != "" {
			return false
		}
		if !n.Span().Contains(line, column) {
			return true
		}
		if call, ok := n.(*ast.Call); ok {
			if id, ok := calleeName(call); ok && id.Span().Contains(line, column) {
				name = id.Name
				return false
			}
		}
		return true
	})
	if name == "" {
		return nil
	}
	var out []source.Span
	for _, fn := range d.Functions {
		if strings.EqualFold(fn.Name, name) {
			out = append(out, fn.NameSpan)
		}
	}
	return out
}

// References returns the spans of calls to the function whose name is at
// line/column. includeDecl adds the declaration itself.
func (d *Document) References(line, column uint32, includeDecl bool) []source.Span {
	if d.Root == nil {
		return nil
	}
	var target *ast.FuncDecl
	for _, fn := range d.Functions {
		if fn.NameSpan.Contains(line, column) {
			target = fn
			break
		}
	}
	if target == nil {
		return nil
	}
	var out []source.Span
	if includeDecl {
		out = append(out, target.NameSpan)
	}
	ast.Inspect(d.Root, func(n ast.Node) bool {
		if call, ok := n.(*ast.Call); ok {
			if id, ok := calleeName(call); ok && strings.EqualFold(id.Name, target.Name) {
				out = append(out, id.Span())
			}
		}
		return true
	})
	return out
}

// FunctionNamed returns the last function named name, ignoring case.
func (d *Document) FunctionNamed(name string) *ast.FuncDecl {
	var found *ast.FuncDecl
	for _, fn := range d.Functions {
		if strings.EqualFold(fn.Name, name) {
			found = fn
		}
	}
	return found
}
