// Package analysis runs flow-sensitive checks over a parsed file.
//
// Each check is an Analyzer value with a Run function over a Pass. The set of
// analyzers is a static list (see Analyzers); a panicking analyzer is
// recovered and only its own output is lost.
package analysis

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"bxls/internal/ast"
	"bxls/internal/diag"
	"bxls/internal/lint"
	"bxls/internal/rules"
	"bxls/internal/source"
)

// Analyzer is one check.
type Analyzer struct {
	Name string
	// Rule is the registry id gating the analyzer. Empty means always on.
	Rule string
	// Applies reports whether the analyzer runs for a file kind. Nil means
	// all kinds.
	Applies func(kind source.Kind) bool
	Run     func(pass *Pass)
}

// Pass is the input and output of one analyzer run over one file.
type Pass struct {
	File     *source.File
	Root     *ast.File
	Kind     source.Kind
	Registry *lint.Registry
	// NewID returns the data id attached to diagnostics with code actions.
	NewID func() string

	analyzer *Analyzer
	bag      *diag.Bag
	caser    cases.Caser
	props    map[string]struct{}
}

// NewPass prepares a pass over root. bag receives the results.
func NewPass(file *source.File, root *ast.File, kind source.Kind, registry *lint.Registry, bag *diag.Bag) *Pass {
	return &Pass{
		File:     file,
		Root:     root,
		Kind:     kind,
		Registry: registry,
		NewID:    contentIDs(file),
		bag:      bag,
		caser:    cases.Fold(),
	}
}

// contentIDs numbers the data ids of one file within a namespace derived
// from its path and content. Reanalyzing unchanged text yields the same ids.
func contentIDs(file *source.File) func() string {
	var seed []byte
	if file != nil {
		seed = append([]byte(file.Path+"\x00"), file.Content...)
	}
	ns := uuid.NewSHA1(uuid.NameSpaceURL, seed)
	n := 0
	return func() string {
		n++
		return uuid.NewSHA1(ns, []byte(strconv.Itoa(n))).String()
	}
}

// Key folds an identifier for case-insensitive comparison.
func (p *Pass) Key(name string) string {
	return p.caser.String(name)
}

// Report records a diagnostic.
func (p *Pass) Report(d diag.Diagnostic) {
	p.bag.Add(d)
}

// Suggest records a code action.
func (p *Pass) Suggest(a diag.CodeAction) {
	p.bag.Suggest(a)
}

// Severity resolves the effective severity of the running analyzer's rule.
func (p *Pass) Severity(def diag.Severity) diag.Severity {
	if p.analyzer == nil || p.analyzer.Rule == "" || p.Registry == nil {
		return def
	}
	return p.Registry.Severity(p.analyzer.Rule)
}

// Text returns the source text of span.
func (p *Pass) Text(span source.Span) string {
	return p.File.Text(span)
}

// Properties returns the folded names of class properties: declared ones
// and the implicit ones assigned outside any function.
func (p *Pass) Properties() map[string]struct{} {
	if p.props != nil {
		return p.props
	}
	p.props = make(map[string]struct{})
	if p.Root == nil {
		return p.props
	}
	var stack []ast.Node
	ast.Inspect(p.Root, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		outside := enclosingFunc(stack) == nil
		stack = append(stack, n)
		switch n := n.(type) {
		case *ast.Property:
			p.props[p.Key(n.Name)] = struct{}{}
		case *ast.Assignment:
			if name, ok := pseudoConstructorTarget(n.Left); ok && outside {
				p.props[p.Key(name)] = struct{}{}
			}
		}
		return true
	})
	return p.props
}

// Analyzers returns the gated analyzers in run order.
func Analyzers() []*Analyzer {
	return []*Analyzer{AnalyzerUnscopedVariable, AnalyzerUnusedVariable}
}

type gateFacts struct {
	pass     *Pass
	analyzer *Analyzer
}

type gateResult struct {
	skip bool
}

// gates decide whether an analyzer runs. The first failing gate wins.
var gates = new(rules.Collection[gateFacts, *gateResult]).
	Add(rules.Func[gateFacts, *gateResult]{
		WhenFunc: func(f gateFacts) bool {
			return f.analyzer.Applies != nil && !f.analyzer.Applies(f.pass.Kind)
		},
		ThenFunc: skipAnalyzer,
		Terminal: true,
	}).
	Add(rules.Func[gateFacts, *gateResult]{
		WhenFunc: func(f gateFacts) bool {
			return f.analyzer.Rule != "" && f.pass.Registry != nil && !f.pass.Registry.Enabled(f.analyzer.Rule, true)
		},
		ThenFunc: skipAnalyzer,
		Terminal: true,
	})

func skipAnalyzer(_ gateFacts, r *gateResult) { r.skip = true }

// Enabled reports whether a should run for the pass.
func (a *Analyzer) Enabled(p *Pass) bool {
	return !gates.Execute(gateFacts{pass: p, analyzer: a}, &gateResult{}).skip
}

// Run executes every enabled analyzer in order. Results of an analyzer are
// merged into the pass bag only when it finishes without panicking.
func Run(p *Pass, analyzers []*Analyzer, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, a := range analyzers {
		if !a.Enabled(p) {
			continue
		}
		if err := runOne(p, a); err != nil {
			log.Error("analyzer failed", zap.String("analyzer", a.Name), zap.String("path", p.File.Path), zap.Error(err))
		}
	}
}

func runOne(p *Pass, a *Analyzer) (err error) {
	sub := *p
	sub.analyzer = a
	sub.bag = diag.NewBag()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	a.Run(&sub)
	p.bag.Merge(sub.bag)
	return nil
}
