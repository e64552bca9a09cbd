package lint

import (
	"regexp"
	"strings"
	"sync"
)

// globCache maps a glob pattern to its compiled *regexp.Regexp, or to nil
// when the pattern does not compile.
var globCache sync.Map

// MatchGlob reports whether rel matches pattern in full. `**` spans path
// segments, `*` stays within one segment and `?` matches one character.
func MatchGlob(pattern, rel string) bool {
	re := compileGlob(pattern)
	return re != nil && re.MatchString(rel)
}

func compileGlob(pattern string) *regexp.Regexp {
	if v, ok := globCache.Load(pattern); ok {
		re, _ := v.(*regexp.Regexp)
		return re
	}
	re, err := regexp.Compile(globToRegexp(pattern))
	if err != nil {
		re = nil
	}
	v, _ := globCache.LoadOrStore(pattern, re)
	re, _ = v.(*regexp.Regexp)
	return re
}

func globToRegexp(glob string) string {
	glob = strings.ReplaceAll(glob, "\\", "/")
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(glob); i++ {
		c := glob[i]
		switch c {
		case '*':
			if i+1 < len(glob) && glob[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteByte('.')
		case '.', '^', '$', '+', '{', '}', '[', ']', '|', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('$')
	return b.String()
}
