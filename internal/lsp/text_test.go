package lsp

import "testing"

func TestApplyChanges(t *testing.T) {
	at := func(l1, c1, l2, c2 int) *lspRange {
		return &lspRange{Start: position{Line: l1, Character: c1}, End: position{Line: l2, Character: c2}}
	}
	cases := []struct {
		name    string
		text    string
		changes []textDocumentContentChangeEvent
		want    string
	}{
		{"full", "old", []textDocumentContentChangeEvent{{Text: "new"}}, "new"},
		{"insert", "one\ntwo\n", []textDocumentContentChangeEvent{{Range: at(1, 0, 1, 0), Text: "// "}}, "one\n// two\n"},
		{"replace", "var x = 1;", []textDocumentContentChangeEvent{{Range: at(0, 4, 0, 5), Text: "total"}}, "var total = 1;"},
		{"surrogate", "a😀b", []textDocumentContentChangeEvent{{Range: at(0, 3, 0, 4), Text: "c"}}, "a😀c"},
		{"past end", "ab", []textDocumentContentChangeEvent{{Range: at(5, 0, 6, 0), Text: "!"}}, "ab!"},
		{"sequence", "abc", []textDocumentContentChangeEvent{
			{Range: at(0, 0, 0, 1), Text: ""},
			{Range: at(0, 2, 0, 2), Text: "d"},
		}, "bcd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := applyChanges(tc.text, tc.changes); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestOffsetForPositionClampsToLine(t *testing.T) {
	text := "ab\ncd"
	if got := offsetForPosition(text, position{Line: 0, Character: 10}); got != 2 {
		t.Fatalf("offset = %d, want 2", got)
	}
	if got := offsetForPosition(text, position{Line: 1, Character: 1}); got != 4 {
		t.Fatalf("offset = %d, want 4", got)
	}
}
