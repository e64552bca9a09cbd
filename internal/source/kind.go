package source

import (
	"path/filepath"
	"strings"
)

// Kind classifies a source file by its extension.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindClass is a BoxLang class (.bx).
	KindClass
	// KindScript is a BoxLang script (.bxs).
	KindScript
	// KindTemplate is a BoxLang template (.bxm).
	KindTemplate
	// KindCFComponent is a CFML component (.cfc).
	KindCFComponent
	// KindCFScript is a CFML script (.cfs).
	KindCFScript
	// KindCFTemplate is a CFML template (.cfm, .cfml).
	KindCFTemplate
)

// KindOf returns the kind for a path or URI.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bx":
		return KindClass
	case ".bxs":
		return KindScript
	case ".bxm":
		return KindTemplate
	case ".cfc":
		return KindCFComponent
	case ".cfs":
		return KindCFScript
	case ".cfm", ".cfml":
		return KindCFTemplate
	default:
		return KindUnknown
	}
}

// IsClass reports whether the file is a BoxLang class.
func (k Kind) IsClass() bool { return k == KindClass }

// IsTemplate reports whether the file is a BoxLang template.
func (k Kind) IsTemplate() bool { return k == KindTemplate }

// IsCF reports whether the file uses CFML semantics, where unqualified
// assignments inside functions land in the variables scope.
func (k Kind) IsCF() bool {
	return k == KindCFComponent || k == KindCFTemplate
}

// IsComponent reports whether the file declares a class body.
func (k Kind) IsComponent() bool {
	return k == KindClass || k == KindCFComponent
}

// HasMarkup reports whether the file is tag based.
func (k Kind) HasMarkup() bool {
	return k == KindTemplate || k == KindCFTemplate
}

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindScript:
		return "script"
	case KindTemplate:
		return "template"
	case KindCFComponent:
		return "cfc"
	case KindCFScript:
		return "cfs"
	case KindCFTemplate:
		return "cfm"
	default:
		return "unknown"
	}
}
