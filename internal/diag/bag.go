package diag

import (
	"sort"
)

// Bag collects diagnostics produced for one document.
type Bag struct {
	items   []Diagnostic
	actions []CodeAction
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(d Diagnostic) {
	b.items = append(b.items, d)
}

// Suggest records a code action.
func (b *Bag) Suggest(a CodeAction) {
	b.actions = append(b.actions, a)
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the collected diagnostics. The slice is shared with the bag.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Actions returns the collected code actions.
func (b *Bag) Actions() []CodeAction {
	return b.actions
}

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool {
	return HasErrors(b.items)
}

// Merge appends everything from other.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.actions = append(b.actions, other.actions...)
}

// Sort orders diagnostics by start, end, severity (most severe first) and
// code.
func (b *Bag) Sort() {
	Sort(b.items)
}

// Dedup drops diagnostics with the same code, range and message as an
// earlier one.
func (b *Bag) Dedup() {
	type key struct {
		code       string
		start, end uint32
		msg        string
	}
	seen := make(map[key]struct{}, len(b.items))
	out := b.items[:0]
	for _, d := range b.items {
		k := key{d.Code, d.Range.Start.Offset, d.Range.End.Offset, d.Message}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	b.items = out
}

// HasErrors reports whether list contains an error diagnostic.
func HasErrors(list []Diagnostic) bool {
	for i := range list {
		if list[i].Severity == SevError {
			return true
		}
	}
	return false
}

// Sort orders list in place, see Bag.Sort.
func Sort(list []Diagnostic) {
	sort.SliceStable(list, func(i, j int) bool {
		di, dj := list[i], list[j]
		if di.Range.Start.Offset != dj.Range.Start.Offset {
			return di.Range.Start.Offset < dj.Range.Start.Offset
		}
		if di.Range.End.Offset != dj.Range.End.Offset {
			return di.Range.End.Offset < dj.Range.End.Offset
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Code < dj.Code
	})
}
