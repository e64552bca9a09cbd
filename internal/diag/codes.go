package diag

// Source is reported on every diagnostic produced by the server.
const Source = "boxlang"

// Diagnostic codes. Rule codes double as lint config keys.
const (
	CodeSyntax           = "syntax"
	CodeUnscopedVariable = "unscopedVariable"
	CodeUnusedVariable   = "unusedVariable"
	CodeReturnType       = "returnType"
)
