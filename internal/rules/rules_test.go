package rules

import (
	"testing"
)

type facts struct {
	n int
}

type log struct {
	seen []string
}

func record(name string) func(facts, *log) {
	return func(_ facts, l *log) { l.seen = append(l.seen, name) }
}

func TestExecuteOrderAndSkip(t *testing.T) {
	var c Collection[facts, *log]
	c.Add(Func[facts, *log]{ThenFunc: record("a")}).
		Add(Func[facts, *log]{WhenFunc: func(f facts) bool { return f.n > 5 }, ThenFunc: record("b")}).
		Add(Func[facts, *log]{ThenFunc: record("c")})

	got := c.Execute(facts{n: 1}, &log{})
	if len(got.seen) != 2 || got.seen[0] != "a" || got.seen[1] != "c" {
		t.Fatalf("seen = %v, want [a c]", got.seen)
	}
	got = c.Execute(facts{n: 10}, &log{})
	if len(got.seen) != 3 {
		t.Fatalf("seen = %v, want 3 rules", got.seen)
	}
}

func TestExecuteStop(t *testing.T) {
	var c Collection[facts, *log]
	c.Add(Func[facts, *log]{ThenFunc: record("a")}).
		Add(Func[facts, *log]{WhenFunc: func(f facts) bool { return f.n == 0 }, ThenFunc: record("stop"), Terminal: true}).
		Add(Func[facts, *log]{ThenFunc: record("c")})

	got := c.Execute(facts{}, &log{})
	if len(got.seen) != 2 || got.seen[1] != "stop" {
		t.Fatalf("seen = %v, want [a stop]", got.seen)
	}
	// a terminal rule that does not match does not stop the chain
	got = c.Execute(facts{n: 1}, &log{})
	if len(got.seen) != 2 || got.seen[1] != "c" {
		t.Fatalf("seen = %v, want [a c]", got.seen)
	}
	if c.Len() != 3 {
		t.Fatalf("len = %d", c.Len())
	}
}
