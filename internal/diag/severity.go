package diag

import "strings"

// Severity defines the importance of a diagnostic. Values follow the LSP
// numbering so they can be sent over the wire unchanged.
type Severity uint8

const (
	SevError Severity = iota + 1
	SevWarning
	SevInformation
	SevHint
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInformation:
		return "information"
	case SevHint:
		return "hint"
	}
	return "unknown"
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s != 0 && s <= other
}

// ParseSeverity maps a lint config severity name to a Severity. Empty input
// yields def; unknown names fall back to SevWarning.
func ParseSeverity(name string, def Severity) Severity {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return def
	case "error":
		return SevError
	case "information", "info":
		return SevInformation
	case "hint":
		return SevHint
	default:
		return SevWarning
	}
}
