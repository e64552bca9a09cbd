// Package rules provides an ordered predicate/effect rule chain shared by
// completion, code lens and lint gating.
package rules

// Rule pairs a predicate over facts F with an effect on result R. Rules must
// not mutate facts.
type Rule[F, R any] interface {
	When(facts F) bool
	Then(facts F, result R)
	// Stop ends the chain after this rule has run.
	Stop() bool
}

// Func adapts plain functions to Rule.
type Func[F, R any] struct {
	WhenFunc func(F) bool
	ThenFunc func(F, R)
	Terminal bool
}

func (f Func[F, R]) When(facts F) bool {
	if f.WhenFunc == nil {
		return true
	}
	return f.WhenFunc(facts)
}

func (f Func[F, R]) Then(facts F, result R) {
	if f.ThenFunc != nil {
		f.ThenFunc(facts, result)
	}
}

func (f Func[F, R]) Stop() bool { return f.Terminal }

// Collection is an ordered list of rules. It is built once and is safe for
// concurrent Execute calls afterwards.
type Collection[F, R any] struct {
	rules []Rule[F, R]
}

// Add appends r and returns c for chaining.
func (c *Collection[F, R]) Add(r Rule[F, R]) *Collection[F, R] {
	c.rules = append(c.rules, r)
	return c
}

// Len returns the number of registered rules.
func (c *Collection[F, R]) Len() int {
	return len(c.rules)
}

// Execute runs every matching rule in registration order against result and
// returns it. A matching rule whose Stop reports true ends the run.
func (c *Collection[F, R]) Execute(facts F, result R) R {
	for _, r := range c.rules {
		if !r.When(facts) {
			continue
		}
		r.Then(facts, result)
		if r.Stop() {
			break
		}
	}
	return result
}
