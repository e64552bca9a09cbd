package diag

import (
	"bxls/internal/source"
)

// Tag marks a diagnostic for special rendering in editors.
type Tag uint8

const (
	TagUnnecessary Tag = 1
	TagDeprecated  Tag = 2
)

// Data travels with a diagnostic to the client and back in code action
// requests. ID ties a diagnostic to the code actions offered for it.
type Data struct {
	VariableName string `json:"variableName,omitempty"`
	ID           string `json:"id,omitempty"`
}

type Diagnostic struct {
	Range    source.Span
	Severity Severity
	Code     string
	Source   string
	Message  string
	Tags     []Tag
	Data     *Data
}

// TextEdit replaces Range in the diagnostic's document with NewText.
type TextEdit struct {
	Range   source.Span
	NewText string
}

// CodeAction is a fix offered for one diagnostic.
type CodeAction struct {
	Title      string
	Kind       string
	Diagnostic Diagnostic
	Edits      []TextEdit
	Preferred  bool
}

// KindQuickFix is the LSP code action kind for fixes.
const KindQuickFix = "quickfix"

func New(sev Severity, code string, span source.Span, msg string) Diagnostic {
	return Diagnostic{
		Range:    span,
		Severity: sev,
		Code:     code,
		Source:   Source,
		Message:  msg,
	}
}

func NewError(code string, span source.Span, msg string) Diagnostic {
	return New(SevError, code, span, msg)
}

func (d Diagnostic) WithTag(tag Tag) Diagnostic {
	d.Tags = append(d.Tags, tag)
	return d
}

func (d Diagnostic) WithData(data Data) Diagnostic {
	d.Data = &data
	return d
}

// ID returns the data id or "".
func (d Diagnostic) ID() string {
	if d.Data == nil {
		return ""
	}
	return d.Data.ID
}

// QuickFix builds a single-edit quick fix for d.
func QuickFix(d Diagnostic, title string, edits ...TextEdit) CodeAction {
	return CodeAction{
		Title:      title,
		Kind:       KindQuickFix,
		Diagnostic: d,
		Edits:      edits,
		Preferred:  true,
	}
}
