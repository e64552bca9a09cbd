package observ

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	cur := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now := cur
		cur = cur.Add(step)
		return now
	}
}

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(10 * time.Millisecond)

	scan := tm.Begin("scan")
	tm.End(scan, "12 files")
	err := tm.Track("render", func() error { return errors.New("closed pipe") })
	if err == nil {
		t.Fatal("Track should return fn's error")
	}
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %d", len(r.Phases))
	}
	if r.Phases[0].DurationMS != 10 || r.Phases[0].Note != "12 files" {
		t.Fatalf("scan = %+v", r.Phases[0])
	}
	if r.Phases[1].Note != "failed" {
		t.Fatalf("render = %+v", r.Phases[1])
	}
	if r.TotalMS != 20 {
		t.Fatalf("total = %v", r.TotalMS)
	}

	s := tm.Summary()
	for _, want := range []string{"timings:", "scan", "10.0 ms", "(12 files)", "total"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || r.Phases != nil {
		t.Fatalf("report = %+v", r)
	}
}
