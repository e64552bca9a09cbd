package source

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIToPath converts a file:// URI to a local path. Plain paths pass
// through. Other schemes yield "".
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil || len(parsed.Scheme) < 2 {
		// plain path, possibly with a drive letter
		return absPath(filepath.FromSlash(uri))
	}
	if parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	// file:///c:/x on windows
	if len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return absPath(filepath.FromSlash(path))
}

// PathToURI converts a local path to a file:// URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	path = filepath.ToSlash(absPath(path))
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String()
}

// SameURI compares two document URIs after normalizing them to paths.
func SameURI(a, b string) bool {
	if a == b {
		return true
	}
	pa, pb := URIToPath(a), URIToPath(b)
	return pa != "" && pa == pb
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
