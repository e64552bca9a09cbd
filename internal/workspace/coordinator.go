// Package workspace coordinates documents, diagnostics and scans for one
// workspace root.
package workspace

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"bxls/internal/codelens"
	"bxls/internal/completion"
	"bxls/internal/diag"
	"bxls/internal/document"
	"bxls/internal/lint"
	"bxls/internal/project"
	"bxls/internal/source"
	"bxls/internal/symbols"
)

// Publisher pushes diagnostics to the client.
type Publisher interface {
	Publish(uri string, diags []diag.Diagnostic)
}

// Options wires the collaborators of a Coordinator. Nil fields get
// defaults built from Root and Settings.
type Options struct {
	Root      string
	Settings  project.Settings
	Loader    *lint.Loader
	Registry  *lint.Registry
	Symbols   *symbols.Cache
	Builder   *document.Builder
	Publisher Publisher
	Progress  ProgressSink
	Log       *zap.Logger

	Completion *completion.Book
	CodeLens   *codelens.Book

	// LoadDocument reads a closed document from disk. Defaults to
	// Builder.Load.
	LoadDocument func(uri string) (*document.Document, error)
}

// Coordinator owns the open documents, the parse cache and the report
// store. Methods are safe for concurrent use.
type Coordinator struct {
	log       *zap.Logger
	loader    *lint.Loader
	registry  *lint.Registry
	symbols   *symbols.Cache
	builder   *document.Builder
	publisher Publisher
	progress  ProgressSink
	complete  *completion.Book
	lenses    *codelens.Book
	load      func(uri string) (*document.Document, error)
	pressure  func() bool

	cache    *parseCache
	reports  *reportStore
	scanning atomic.Bool
	// configGen changes whenever the lint config may have changed the
	// diagnostics of unchanged files.
	configGen atomic.Uint64

	mu       sync.RWMutex
	root     string
	settings project.Settings
	open     map[string]*document.Document
	publish  bool
}

// New builds a coordinator from opts.
func New(opts Options) *Coordinator {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	settings := opts.Settings
	if settings == (project.Settings{}) {
		settings = project.DefaultSettings()
	}
	c := &Coordinator{
		log:       log,
		loader:    opts.Loader,
		registry:  opts.Registry,
		symbols:   opts.Symbols,
		builder:   opts.Builder,
		publisher: opts.Publisher,
		progress:  opts.Progress,
		complete:  opts.Completion,
		lenses:    opts.CodeLens,
		load:      opts.LoadDocument,
		pressure:  memoryPressure,
		cache:     newParseCache(settings.ParseCacheSize),
		reports:   newReportStore(),
		root:      opts.Root,
		settings:  settings,
		open:      make(map[string]*document.Document),
		publish:   settings.EnableExperimentalDiagnostics,
	}
	if c.loader == nil {
		c.loader = lint.NewLoader(opts.Root, log)
	}
	if c.registry == nil {
		c.registry = lint.NewRegistry(c.loader, lint.Builtin()...)
	}
	if c.symbols == nil {
		c.symbols = symbols.NewCache(opts.Root, log)
	}
	if c.builder == nil {
		c.builder = document.NewBuilder(c.registry, log)
	}
	if c.complete == nil {
		c.complete = completion.DefaultBook()
	}
	if c.lenses == nil {
		c.lenses = codelens.DefaultBook()
	}
	if c.load == nil {
		c.load = c.builder.Load
	}
	return c
}

// Root returns the workspace root, "" when none.
func (c *Coordinator) Root() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

// SetRoot moves the workspace and drops cached parses.
func (c *Coordinator) SetRoot(root string) {
	c.mu.Lock()
	c.root = root
	c.mu.Unlock()
	c.loader.SetRoot(root)
	c.symbols.SetRoot(root)
	c.cache.purge()
	if root == "" {
		return
	}
	if err := c.symbols.Load(); err != nil {
		c.log.Warn("symbol cache not loaded", zap.String("root", root), zap.Error(err))
	}
}

func (c *Coordinator) Settings() project.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// UpdateSettings applies new settings. The publish switch follows
// EnableExperimentalDiagnostics.
func (c *Coordinator) UpdateSettings(s project.Settings) {
	c.mu.Lock()
	c.settings = s
	c.mu.Unlock()
	c.cache.resize(s.ParseCacheSize)
	c.SetPublishEnabled(s.EnableExperimentalDiagnostics)
}

// Loader returns the lint config loader.
func (c *Coordinator) Loader() *lint.Loader { return c.loader }

// Symbols returns the class symbol cache.
func (c *Coordinator) Symbols() *symbols.Cache { return c.symbols }

func (c *Coordinator) openDoc(uri string) *document.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.open[uri]
}

// OpenDocuments returns the URIs of open documents.
func (c *Coordinator) OpenDocuments() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.open))
	for uri := range c.open {
		out = append(out, uri)
	}
	return out
}

// TrackOpen records an opened editor buffer.
func (c *Coordinator) TrackOpen(uri, text string) *document.Document {
	return c.track(uri, []byte(text))
}

// TrackChange replaces the buffer with its full new text.
func (c *Coordinator) TrackChange(uri, text string) *document.Document {
	return c.track(uri, []byte(text))
}

// TrackSave records a save. Empty text reads the saved file from disk.
func (c *Coordinator) TrackSave(uri, text string) (*document.Document, error) {
	c.cache.remove(uri)
	if text != "" {
		return c.track(uri, []byte(text)), nil
	}
	path := source.URIToPath(uri)
	if path == "" {
		return nil, fmt.Errorf("not a file uri: %s", uri)
	}
	content, err := os.ReadFile(path) // #nosec G304 -- path comes from the client
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c.track(uri, content), nil
}

func (c *Coordinator) track(uri string, content []byte) *document.Document {
	doc := c.builder.Build(uri, content, true)
	r := c.reportFor(doc)
	c.mu.Lock()
	c.open[uri] = doc
	c.reports.store(r)
	c.mu.Unlock()
	c.indexSymbols(doc)
	return doc
}

// TrackClose forgets the editor buffer. Its report is kept.
func (c *Coordinator) TrackClose(uri string) {
	c.mu.Lock()
	delete(c.open, uri)
	c.mu.Unlock()
}

// reportFor builds the report of doc, with an empty list when the path is
// excluded.
func (c *Coordinator) reportFor(doc *document.Document) Report {
	r := Report{URI: doc.URI, ModTime: doc.ModTime, open: doc.Open, gen: c.configGen.Load()}
	if c.ShouldAnalyze(doc.Path) {
		r.Diagnostics = doc.Diagnostics
	}
	return r
}

// storeClosed records the report of a document read from disk. It does
// nothing while an editor buffer for the same URI is open, so a load racing
// with TrackOpen never overwrites the buffer's report. The check and the
// write happen under the lock track holds for its own write.
func (c *Coordinator) storeClosed(doc *document.Document) (Report, bool) {
	r := c.reportFor(doc)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, open := c.open[doc.URI]; open {
		return Report{}, false
	}
	return c.reports.refresh(r), true
}

func (c *Coordinator) indexSymbols(doc *document.Document) {
	if doc.Kind != source.KindClass && doc.Kind != source.KindCFComponent {
		return
	}
	c.symbols.Add(doc.URI, symbols.Extract(doc.URI, doc.Root, doc.ModTime))
}

// ShouldAnalyze applies the include and exclude globs to a path relative to
// the workspace root. Paths outside the root are analyzed.
func (c *Coordinator) ShouldAnalyze(path string) bool {
	root := c.Root()
	if root == "" || path == "" {
		return true
	}
	rel, ok := source.RelativePath(path, root)
	if !ok {
		return true
	}
	return c.loader.Get().ShouldAnalyze(rel)
}

// Resolve returns the open document for uri, or the filesystem version
// through the parse cache.
func (c *Coordinator) Resolve(uri string) (*document.Document, error) {
	if doc := c.openDoc(uri); doc != nil {
		return doc, nil
	}
	path := source.URIToPath(uri)
	if path == "" {
		return nil, fmt.Errorf("not a file uri: %s", uri)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if doc, ok := c.cache.get(uri, info.ModTime()); ok {
		return doc, nil
	}
	doc, err := c.load(uri)
	if err != nil {
		return nil, err
	}
	c.cache.put(uri, doc)
	if _, ok := c.storeClosed(doc); !ok {
		if open := c.openDoc(uri); open != nil {
			return open, nil
		}
	}
	c.indexSymbols(doc)
	return doc, nil
}

// Diagnostics returns the diagnostics of uri, empty when excluded.
func (c *Coordinator) Diagnostics(uri string) ([]diag.Diagnostic, error) {
	if !c.ShouldAnalyze(source.URIToPath(uri)) {
		return nil, nil
	}
	doc, err := c.Resolve(uri)
	if err != nil {
		return nil, err
	}
	return doc.Diagnostics, nil
}

// Report returns the cached report of uri.
func (c *Coordinator) Report(uri string) (Report, bool) {
	return c.reports.get(uri)
}

// PublishDiagnostics pushes the diagnostics of uri, or an empty list while
// publishing is disabled.
func (c *Coordinator) PublishDiagnostics(uri string) {
	if c.publisher == nil {
		return
	}
	if !c.PublishEnabled() {
		c.publisher.Publish(uri, []diag.Diagnostic{})
		return
	}
	diags, err := c.Diagnostics(uri)
	if err != nil {
		c.log.Warn("diagnostics unavailable", zap.String("uri", uri), zap.Error(err))
		diags = nil
	}
	if diags == nil {
		diags = []diag.Diagnostic{}
	}
	c.publisher.Publish(uri, diags)
}

func (c *Coordinator) PublishEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.publish
}

// SetPublishEnabled toggles publishing and republishes every known
// document when the value changes.
func (c *Coordinator) SetPublishEnabled(enabled bool) {
	c.mu.Lock()
	if c.publish == enabled {
		c.mu.Unlock()
		return
	}
	c.publish = enabled
	c.mu.Unlock()
	for _, uri := range c.knownURIs() {
		c.PublishDiagnostics(uri)
	}
}

// knownURIs lists open documents and documents with reports.
func (c *Coordinator) knownURIs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.reports.all() {
		seen[r.URI] = struct{}{}
		out = append(out, r.URI)
	}
	for _, uri := range c.OpenDocuments() {
		if _, ok := seen[uri]; !ok {
			out = append(out, uri)
		}
	}
	return out
}

// RecomputeOpenDocuments rebuilds every open document, for example after a
// lint config change, and republishes them.
func (c *Coordinator) RecomputeOpenDocuments() {
	c.mu.RLock()
	docs := make([]*document.Document, 0, len(c.open))
	for _, doc := range c.open {
		docs = append(docs, doc)
	}
	c.mu.RUnlock()
	for _, old := range docs {
		doc := c.builder.Build(old.URI, old.File.Content, true)
		r := c.reportFor(doc)
		c.mu.Lock()
		current := c.open[old.URI] == old
		if current {
			c.open[old.URI] = doc
			c.reports.store(r)
		}
		c.mu.Unlock()
		if current {
			c.PublishDiagnostics(doc.URI)
		}
	}
}

// ClearExcludedReports empties the reports of paths the lint config now
// excludes.
func (c *Coordinator) ClearExcludedReports() {
	for _, r := range c.reports.all() {
		if len(r.Diagnostics) == 0 || c.ShouldAnalyze(source.URIToPath(r.URI)) {
			continue
		}
		c.reports.set(r.URI, nil)
		c.PublishDiagnostics(r.URI)
	}
}

// ConfigChanged reloads the lint config and brings every report in line
// with it.
func (c *Coordinator) ConfigChanged(ctx context.Context) {
	c.loader.Invalidate()
	if _, err := c.loader.Reload(); err != nil {
		c.log.Warn("lint config reload failed", zap.Error(err))
	}
	c.configGen.Add(1)
	c.cache.purge()
	c.RecomputeOpenDocuments()
	c.ClearExcludedReports()
	if err := c.ScanWorkspace(ctx); err != nil {
		c.log.Warn("workspace scan stopped", zap.Error(err))
	}
}

// WatchConfig runs the lint config watcher until ctx is done.
func (c *Coordinator) WatchConfig(ctx context.Context) error {
	root := c.Root()
	if root == "" {
		return nil
	}
	return lint.Watch(ctx, root, lint.DefaultDebounce, c.log, func() {
		c.log.Info("lint config changed", zap.String("root", root))
		c.ConfigChanged(ctx)
	})
}
