package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	Ident
	Number
	String

	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Semicolon // ;
	Colon     // :
	Dot       // .
	At        // @

	Assign        // =
	PlusAssign    // +=
	MinusAssign   // -=
	StarAssign    // *=
	SlashAssign   // /=
	PercentAssign // %=
	AmpAssign     // &=

	Plus       // +
	Minus      // -
	Star       // *
	Slash      // /
	Percent    // %
	Caret      // ^
	Amp        // &
	Backslash  // \
	PlusPlus   // ++
	MinusMinus // --

	EqEq        // ==
	EqEqEq      // ===
	BangEq      // != or <>
	BangEqEq    // !==
	Lt          // <
	LtEq        // <=
	Gt          // >
	GtEq        // >=
	AndAnd      // &&
	OrOr        // ||
	Bang        // !
	Question    // ?
	QuestionDot // ?.
	Elvis       // ?:
	FatArrow    // =>
	ThinArrow   // ->
)

var kindNames = [...]string{
	Invalid:       "invalid",
	EOF:           "end of file",
	Ident:         "identifier",
	Number:        "number",
	String:        "string",
	LParen:        "(",
	RParen:        ")",
	LBrace:        "{",
	RBrace:        "}",
	LBracket:      "[",
	RBracket:      "]",
	Comma:         ",",
	Semicolon:     ";",
	Colon:         ":",
	Dot:           ".",
	At:            "@",
	Assign:        "=",
	PlusAssign:    "+=",
	MinusAssign:   "-=",
	StarAssign:    "*=",
	SlashAssign:   "/=",
	PercentAssign: "%=",
	AmpAssign:     "&=",
	Plus:          "+",
	Minus:         "-",
	Star:          "*",
	Slash:         "/",
	Percent:       "%",
	Caret:         "^",
	Amp:           "&",
	Backslash:     "\\",
	PlusPlus:      "++",
	MinusMinus:    "--",
	EqEq:          "==",
	EqEqEq:        "===",
	BangEq:        "!=",
	BangEqEq:      "!==",
	Lt:            "<",
	LtEq:          "<=",
	Gt:            ">",
	GtEq:          ">=",
	AndAnd:        "&&",
	OrOr:          "||",
	Bang:          "!",
	Question:      "?",
	QuestionDot:   "?.",
	Elvis:         "?:",
	FatArrow:      "=>",
	ThinArrow:     "->",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsAssign reports whether k is '=' or a compound assignment.
func (k Kind) IsAssign() bool {
	switch k {
	case Assign, PlusAssign, MinusAssign, StarAssign, SlashAssign, PercentAssign, AmpAssign:
		return true
	default:
		return false
	}
}
