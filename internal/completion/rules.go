package completion

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"bxls/internal/rules"
)

type rule = rules.Func[Facts, *List]

var (
	importPattern = regexp.MustCompile(`(?i)^\s*import\s+(\w[\w\d$\-_.]*)*$`)
	newPattern    = regexp.MustCompile(`(?i)\W*new\W(\w[\w\d$\-_.]*)*$`)
)

func hasDoc(f Facts) bool {
	return f.Doc != nil
}

func componentRule() rule {
	return rule{
		WhenFunc: func(f Facts) bool { return hasDoc(f) && f.Doc.Kind.HasMarkup() },
		ThenFunc: func(_ Facts, l *List) {
			for _, c := range components {
				l.add(Item{
					Label:         "bx:" + c.name,
					Kind:          KindSnippet,
					Detail:        c.detail,
					Documentation: c.doc,
					InsertText:    c.snippet(),
					Format:        FormatSnippet,
					SortText:      "a",
				})
			}
		},
	}
}

func bifRule() rule {
	return rule{
		WhenFunc: func(f Facts) bool { return hasDoc(f) && !f.Doc.Kind.HasMarkup() },
		ThenFunc: func(_ Facts, l *List) {
			for _, b := range bifs {
				l.add(Item{
					Label:         b.name,
					Kind:          KindFunction,
					Detail:        b.signature(),
					Documentation: b.doc,
					InsertText:    b.name + "($0)",
					Format:        FormatSnippet,
					SortText:      "b",
				})
			}
		},
	}
}

func propertyRule() rule {
	return rule{
		WhenFunc: func(f Facts) bool {
			return hasDoc(f) && f.Doc.Kind.IsComponent() && len(f.Doc.Properties) > 0
		},
		ThenFunc: func(f Facts, l *List) {
			for _, p := range f.Doc.Properties {
				l.add(Item{
					Label:    p.Name,
					Kind:     KindProperty,
					Detail:   p.Type,
					SortText: "a",
				})
			}
		},
	}
}

func importRule() rule {
	return rule{
		WhenFunc: func(f Facts) bool { return importPattern.MatchString(f.LinePrefix) },
		ThenFunc: func(f Facts, l *List) {
			typed := lastWord(f.LinePrefix)
			if strings.HasPrefix("java:", strings.ToLower(typed)) {
				l.add(Item{Label: "java:", Kind: KindModule, Detail: "Java class import", SortText: "z"})
			}
			if f.Symbols == nil {
				return
			}
			needle := typed
			if i := strings.LastIndexByte(needle, '.'); i >= 0 {
				needle = needle[i+1:]
			}
			for _, sym := range f.Symbols.Find(needle) {
				l.add(Item{
					Label:    sym.Name,
					Kind:     KindModule,
					Detail:   sym.FileURI,
					SortText: "a",
				})
			}
		},
		Terminal: true,
	}
}

func newRule() rule {
	return rule{
		WhenFunc: func(f Facts) bool {
			return hasDoc(f) && f.Doc.Path != "" && newPattern.MatchString(f.LinePrefix)
		},
		ThenFunc: func(f Facts, l *List) {
			typed := lastWord(f.LinePrefix)
			if strings.Contains(typed, ":") {
				// resolver prefixes such as java: are not on disk
				return
			}
			parts := strings.Split(typed, ".")
			dir := filepath.Join(append([]string{filepath.Dir(f.Doc.Path)}, parts[:len(parts)-1]...)...)
			prefix := strings.ToLower(parts[len(parts)-1])
			entries, err := os.ReadDir(dir)
			if err != nil {
				return
			}
			for _, e := range entries {
				name := e.Name()
				if strings.HasPrefix(name, ".") || !strings.HasPrefix(strings.ToLower(name), prefix) {
					continue
				}
				if e.IsDir() {
					l.add(Item{Label: name, Kind: KindFolder, SortText: "b"})
					continue
				}
				ext := strings.ToLower(filepath.Ext(name))
				if ext != ".bx" && ext != ".cfc" {
					continue
				}
				class := strings.TrimSuffix(name, filepath.Ext(name))
				l.add(Item{
					Label:      class,
					Kind:       KindConstructor,
					Detail:     fmt.Sprintf("new %s()", class),
					InsertText: class + "()",
					Format:     FormatPlain,
					SortText:   "a",
				})
			}
		},
		Terminal: true,
	}
}

// lastWord returns the dotted identifier path ending the line prefix.
func lastWord(prefix string) string {
	i := len(prefix)
	for i > 0 {
		c := prefix[i-1]
		if c == '.' || c == '_' || c == '$' || c == '-' || c == ':' ||
			c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			i--
			continue
		}
		break
	}
	return prefix[i:]
}
