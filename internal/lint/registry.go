package lint

import (
	"sync"

	"bxls/internal/diag"
)

// Rule describes a configurable diagnostic rule.
type Rule struct {
	ID              string
	DefaultSeverity diag.Severity
	Description     string
}

// Builtin returns the rules shipped with the server.
func Builtin() []Rule {
	return []Rule{
		{
			ID:              diag.CodeUnscopedVariable,
			DefaultSeverity: diag.SevWarning,
			Description:     "assignment inside a function without a var or scope prefix",
		},
		{
			ID:              diag.CodeUnusedVariable,
			DefaultSeverity: diag.SevHint,
			Description:     "local variable or argument that is never read",
		},
	}
}

// ConfigSource supplies the current lint config.
type ConfigSource interface {
	Get() *Config
}

// Registry resolves rule enablement and severity against the current lint
// config.
type Registry struct {
	source ConfigSource

	mu    sync.RWMutex
	rules map[string]Rule
	order []string
}

// NewRegistry creates a registry with the given rules. A nil source behaves
// as an empty config.
func NewRegistry(source ConfigSource, rules ...Rule) *Registry {
	r := &Registry{source: source, rules: make(map[string]Rule)}
	for _, rule := range rules {
		r.Register(rule)
	}
	return r
}

// Register adds rule unless its id is already known.
func (r *Registry) Register(rule Rule) {
	if rule.ID == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; ok {
		return
	}
	r.rules[rule.ID] = rule
	r.order = append(r.order, rule.ID)
}

func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// All returns the rules in registration order.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rules[id])
	}
	return out
}

func (r *Registry) config() *Config {
	if r == nil || r.source == nil {
		return nil
	}
	return r.source.Get()
}

// Enabled reports whether id is enabled, using def when the config does not
// mention it.
func (r *Registry) Enabled(id string, def bool) bool {
	rs, ok := r.config().ForRule(id)
	if !ok {
		return def
	}
	return rs.Enabled
}

// Severity returns the configured severity of id or its default.
func (r *Registry) Severity(id string) diag.Severity {
	def := diag.SevWarning
	if r != nil {
		if rule, ok := r.Get(id); ok {
			def = rule.DefaultSeverity
		}
	}
	rs, ok := r.config().ForRule(id)
	if !ok {
		return def
	}
	return rs.SeverityOr(def)
}

// Params returns the configured parameters of id.
func (r *Registry) Params(id string) map[string]any {
	rs, _ := r.config().ForRule(id)
	return rs.Params
}
