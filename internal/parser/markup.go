package parser

import (
	"bytes"
)

// scriptTags open blocks whose body is plain script.
var scriptTags = []struct{ open, close string }{
	{"<cfscript>", "</cfscript>"},
	{"<bx:script>", "</bx:script>"},
}

// statementTags hold a single script statement up to the closing '>'.
var statementTags = []struct {
	open    string
	keyword string
}{
	{"<cfset", ""},
	{"<bx:set", ""},
	{"<cfreturn", "return"},
	{"<bx:return", "return"},
}

// maskMarkup returns a copy of content of the same length where everything
// outside script islands is blanked. Line breaks are kept so that offsets,
// lines and columns of the surviving script are unchanged.
func maskMarkup(content []byte) []byte {
	out := make([]byte, len(content))
	for i, b := range content {
		if b == '\n' || b == '\r' {
			out[i] = b
		} else {
			out[i] = ' '
		}
	}
	lower := bytes.ToLower(content)

	i := 0
	for i < len(content) {
		next := bytes.IndexByte(lower[i:], '<')
		if next < 0 {
			break
		}
		i += next
		if bytes.HasPrefix(lower[i:], []byte("<!---")) {
			end := bytes.Index(lower[i:], []byte("--->"))
			if end < 0 {
				break
			}
			i += end + 4
			continue
		}
		if n, ok := copyScriptBlock(content, lower, out, i); ok {
			i = n
			continue
		}
		if n, ok := copyStatementTag(content, lower, out, i); ok {
			i = n
			continue
		}
		i++
	}
	return out
}

func copyScriptBlock(content, lower, out []byte, at int) (int, bool) {
	for _, tag := range scriptTags {
		if !bytes.HasPrefix(lower[at:], []byte(tag.open)) {
			continue
		}
		bodyStart := at + len(tag.open)
		end := bytes.Index(lower[bodyStart:], []byte(tag.close))
		bodyEnd := len(content)
		if end >= 0 {
			bodyEnd = bodyStart + end
		}
		copy(out[bodyStart:bodyEnd], content[bodyStart:bodyEnd])
		if end < 0 {
			return len(content), true
		}
		return bodyEnd + len(tag.close), true
	}
	return at, false
}

func copyStatementTag(content, lower, out []byte, at int) (int, bool) {
	for _, tag := range statementTags {
		if !bytes.HasPrefix(lower[at:], []byte(tag.open)) {
			continue
		}
		bodyStart := at + len(tag.open)
		if bodyStart < len(content) && !isSpace(content[bodyStart]) && content[bodyStart] != '>' {
			continue
		}
		closeAt := findTagEnd(content, bodyStart)
		if closeAt < 0 {
			return len(content), true
		}
		copy(out[bodyStart:closeAt], content[bodyStart:closeAt])
		if closeAt > bodyStart && content[closeAt-1] == '/' {
			out[closeAt-1] = ' '
		}
		out[closeAt] = ';'
		if tag.keyword != "" {
			copy(out[bodyStart-len(tag.keyword):bodyStart], tag.keyword)
		}
		return closeAt + 1, true
	}
	return at, false
}

// findTagEnd returns the offset of the '>' closing a tag, skipping quoted
// strings.
func findTagEnd(content []byte, from int) int {
	var quote byte
	for i := from; i < len(content); i++ {
		c := content[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i
		}
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
