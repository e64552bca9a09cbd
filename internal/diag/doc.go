// Package diag defines the diagnostic model shared by the parser adapter,
// the analyzers and the transport.
//
// A Diagnostic carries an LSP-style severity, a stable string code (also the
// lint config key for rule diagnostics), a message and a source range. Data
// links a diagnostic to the CodeActions produced alongside it: the client
// echoes Data back in code action requests and the server matches on ID.
//
// Package diag performs no formatting or IO. Rendering lives in
// internal/diagfmt and wire conversion in internal/lsp.
package diag
