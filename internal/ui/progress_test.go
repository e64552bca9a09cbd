package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"bxls/internal/workspace"
)

func feed(m *progressModel, events ...workspace.Event) {
	for _, ev := range events {
		m.Update(eventMsg(ev))
	}
}

func TestProgressTracksDiscoveredFiles(t *testing.T) {
	m := NewProgressModel("scanning", nil).(*progressModel)
	feed(m,
		workspace.Event{File: "a.bx", Status: workspace.StatusQueued},
		workspace.Event{File: "b.bx", Status: workspace.StatusQueued},
		workspace.Event{File: "c.bx", Status: workspace.StatusQueued},
		workspace.Event{File: "a.bx", Status: workspace.StatusWorking},
		workspace.Event{File: "a.bx", Status: workspace.StatusDone},
		workspace.Event{File: "b.bx", Status: workspace.StatusError, Err: errors.New("boom")},
		workspace.Event{File: "b.bx", Status: workspace.StatusDone},
	)
	if m.queued != 3 || m.done != 1 || m.failed != 1 {
		t.Fatalf("queued=%d done=%d failed=%d", m.queued, m.done, m.failed)
	}
	view := m.View()
	if !strings.Contains(view, "scanning (2/3, 1 failed)") {
		t.Fatalf("view header missing:\n%s", view)
	}
	if !strings.Contains(view, "b.bx") {
		t.Fatalf("failed file should be listed:\n%s", view)
	}
}

func TestProgressFinishes(t *testing.T) {
	m := NewProgressModel("scanning", nil).(*progressModel)
	feed(m, workspace.Event{File: "a.bx", Status: workspace.StatusQueued}, workspace.Event{Status: workspace.StatusDone})
	if _, cmd := m.Update(doneMsg{}); cmd == nil {
		t.Fatal("expected quit command")
	}
	if !strings.Contains(m.View(), "done: scanning") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestProgressLimitsRows(t *testing.T) {
	m := NewProgressModel("scanning", nil).(*progressModel)
	for i := 0; i < 20; i++ {
		feed(m, workspace.Event{File: fmt.Sprintf("f%02d.bx", i), Status: workspace.StatusQueued})
	}
	feed(m, workspace.Event{File: "f00.bx", Status: workspace.StatusWorking})
	rows := m.visibleItems()
	if len(rows) != maxRows {
		t.Fatalf("rows = %d, want %d", len(rows), maxRows)
	}
	if rows[0].path != "f00.bx" {
		t.Fatalf("first row = %q, want the working file", rows[0].path)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 6); got != "abc" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("日本語テキスト", 9); runewidth.StringWidth(got) > 9 || got != "日本語..." {
		t.Fatalf("wide truncate = %q", got)
	}
}
