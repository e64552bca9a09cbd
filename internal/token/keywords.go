package token

// keywords start statements and cannot be used as plain expression names at
// statement start.
var keywords = map[string]struct{}{
	"var":       {},
	"function":  {},
	"return":    {},
	"if":        {},
	"else":      {},
	"for":       {},
	"while":     {},
	"do":        {},
	"break":     {},
	"continue":  {},
	"import":    {},
	"class":     {},
	"component": {},
	"interface": {},
	"property":  {},
	"try":       {},
	"catch":     {},
	"finally":   {},
	"throw":     {},
	"switch":    {},
	"case":      {},
	"default":   {},
}

var wordOperators = map[string]struct{}{
	"and":      {},
	"or":       {},
	"not":      {},
	"xor":      {},
	"eq":       {},
	"neq":      {},
	"is":       {},
	"gt":       {},
	"gte":      {},
	"ge":       {},
	"lt":       {},
	"lte":      {},
	"le":       {},
	"contains": {},
	"mod":      {},
}

// AccessModifiers are the visibility keywords that may precede a function.
var AccessModifiers = map[string]struct{}{
	"public":  {},
	"private": {},
	"remote":  {},
	"package": {},
}
