// Package symbols keeps the workspace index of declared classes and persists
// it as JSON in the workspace root.
package symbols

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"bxls/internal/ast"
	"bxls/internal/source"
)

// CacheFileName is written to the workspace root.
const CacheFileName = ".boxlang-symbols-cache.json"

// ErrNoRoot is returned when persisting without a workspace root.
var ErrNoRoot = errors.New("symbols: no workspace root")

// Point is a zero-based editor position.
type Point struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

type Range struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// RangeOf converts a source span to an editor range.
func RangeOf(span source.Span) Range {
	return Range{
		Start: Point{Line: lineIndex(span.Start.Line), Character: span.Start.Column},
		End:   Point{Line: lineIndex(span.End.Line), Character: span.End.Column},
	}
}

func lineIndex(line uint32) uint32 {
	if line == 0 {
		return 0
	}
	return line - 1
}

// ClassSymbol is a class declared in the workspace.
type ClassSymbol struct {
	Name         string    `json:"name"`
	Location     Range     `json:"location"`
	FileURI      string    `json:"fileUri"`
	LastModified time.Time `json:"lastModified"`
}

// Cache maps document URIs to the classes they declare. Safe for concurrent
// use.
type Cache struct {
	log *zap.Logger

	mu    sync.RWMutex
	root  string
	byURI map[string][]ClassSymbol
}

// NewCache returns an empty cache persisted under root.
func NewCache(root string, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{log: log, root: root, byURI: make(map[string][]ClassSymbol)}
}

// SetRoot changes the workspace root used by Load and Save.
func (c *Cache) SetRoot(root string) {
	c.mu.Lock()
	c.root = root
	c.mu.Unlock()
}

// Path returns the cache file location, or "" without a root.
func (c *Cache) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.root == "" {
		return ""
	}
	return filepath.Join(c.root, CacheFileName)
}

// Load replaces the in-memory index with the cache file. A missing file
// leaves the cache empty.
func (c *Cache) Load() error {
	path := c.Path()
	if path == "" {
		return ErrNoRoot
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is under the workspace root
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read symbol cache: %w", err)
	}
	byURI := make(map[string][]ClassSymbol)
	if err := json.Unmarshal(data, &byURI); err != nil {
		return fmt.Errorf("decode symbol cache %s: %w", path, err)
	}
	c.mu.Lock()
	c.byURI = byURI
	c.mu.Unlock()
	c.log.Debug("symbol cache loaded", zap.String("path", path), zap.Int("files", len(byURI)))
	return nil
}

// Save writes the index atomically.
func (c *Cache) Save() error {
	path := c.Path()
	if path == "" {
		return ErrNoRoot
	}
	c.mu.RLock()
	data, err := json.MarshalIndent(c.byURI, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode symbol cache: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".symbols-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if _, statErr := os.Stat(tmp); statErr == nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write symbol cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close symbol cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace symbol cache: %w", err)
	}
	return nil
}

// Add replaces the symbols recorded for uri.
func (c *Cache) Add(uri string, syms []ClassSymbol) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(syms) == 0 {
		delete(c.byURI, uri)
		return
	}
	c.byURI[uri] = append([]ClassSymbol(nil), syms...)
}

func (c *Cache) Remove(uri string) {
	c.mu.Lock()
	delete(c.byURI, uri)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.byURI = make(map[string][]ClassSymbol)
	c.mu.Unlock()
}

// All returns every symbol ordered by name then URI.
func (c *Cache) All() []ClassSymbol {
	c.mu.RLock()
	out := make([]ClassSymbol, 0, len(c.byURI))
	for _, syms := range c.byURI {
		out = append(out, syms...)
	}
	c.mu.RUnlock()
	sortSymbols(out)
	return out
}

// Find returns the symbols whose name contains text, ignoring case. An
// empty text matches everything.
func (c *Cache) Find(text string) []ClassSymbol {
	needle := strings.ToLower(text)
	var out []ClassSymbol
	for _, sym := range c.All() {
		if strings.Contains(strings.ToLower(sym.Name), needle) {
			out = append(out, sym)
		}
	}
	return out
}

func sortSymbols(list []ClassSymbol) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].FileURI < list[j].FileURI
	})
}

// Extract returns the class declared by root, if any.
func Extract(uri string, root *ast.File, modified time.Time) []ClassSymbol {
	if root == nil || root.Class == nil {
		return nil
	}
	return []ClassSymbol{{
		Name:         root.Class.Name,
		Location:     RangeOf(root.Class.Span()),
		FileURI:      uri,
		LastModified: modified.UTC(),
	}}
}
