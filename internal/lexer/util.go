package lexer

import "strconv"

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func quoteByte(b byte) string {
	if b < 0x20 || b >= 0x7f {
		return strconv.Quote(string(rune(b)))
	}
	return "'" + string(rune(b)) + "'"
}
