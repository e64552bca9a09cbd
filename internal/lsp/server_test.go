package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"bxls/internal/diag"
	"bxls/internal/source"
)

const unscopedComponent = "component {\n\tfunction run() {\n\t\ttotal = 1;\n\t\treturn total;\n\t}\n}\n"

type testClient struct {
	t      *testing.T
	w      *io.PipeWriter
	msgs   chan rpcMessage
	nextID int
	notes  []rpcMessage
	exited chan struct{}
	runErr error
}

func startServer(t *testing.T) *testClient {
	t.Helper()
	clientR, clientW := io.Pipe()
	serverR, serverW := io.Pipe()
	srv := NewServer(clientR, serverW, ServerOptions{Log: zaptest.NewLogger(t), Version: "test"})
	c := &testClient{
		t:      t,
		w:      clientW,
		msgs:   make(chan rpcMessage, 256),
		exited: make(chan struct{}),
	}
	go func() {
		c.runErr = srv.Run(context.Background())
		_ = serverW.Close()
		close(c.exited)
	}()
	go func() {
		r := bufio.NewReader(serverR)
		for {
			payload, err := readMessage(r)
			if err != nil {
				close(c.msgs)
				return
			}
			var msg rpcMessage
			if err := json.Unmarshal(payload, &msg); err == nil {
				c.msgs <- msg
			}
		}
	}()
	t.Cleanup(func() {
		_ = clientW.Close()
		select {
		case <-c.exited:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return c
}

func (c *testClient) write(msg map[string]any) {
	c.t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("encode: %v", err)
	}
	if err := writeMessage(c.w, payload); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

func (c *testClient) notify(method string, params any) {
	c.t.Helper()
	c.write(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

// call sends a request and waits for its response, keeping notifications
// that arrive in between.
func (c *testClient) call(method string, params any) rpcMessage {
	c.t.Helper()
	c.nextID++
	id := strconv.Itoa(c.nextID)
	c.write(map[string]any{"jsonrpc": "2.0", "id": c.nextID, "method": method, "params": params})
	for {
		msg := c.next()
		if msg.Method != "" {
			c.notes = append(c.notes, msg)
			continue
		}
		if string(msg.ID) == id {
			return msg
		}
	}
}

func (c *testClient) next() rpcMessage {
	c.t.Helper()
	select {
	case msg, ok := <-c.msgs:
		if !ok {
			c.t.Fatal("server closed the connection")
		}
		return msg
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for a message")
	}
	return rpcMessage{}
}

// publish returns the next publishDiagnostics notification for uri.
func (c *testClient) publish(uri string) publishDiagnosticsParams {
	c.t.Helper()
	for i, msg := range c.notes {
		if p, ok := decodePublish(msg, uri); ok {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			return p
		}
	}
	for {
		msg := c.next()
		if p, ok := decodePublish(msg, uri); ok {
			return p
		}
		if msg.Method != "" {
			c.notes = append(c.notes, msg)
		}
	}
}

func decodePublish(msg rpcMessage, uri string) (publishDiagnosticsParams, bool) {
	var p publishDiagnosticsParams
	if msg.Method != "textDocument/publishDiagnostics" {
		return p, false
	}
	if err := json.Unmarshal(msg.Params, &p); err != nil || p.URI != uri {
		return p, false
	}
	return p, true
}

func (c *testClient) wait() error {
	c.t.Helper()
	select {
	case <-c.exited:
		return c.runErr
	case <-time.After(5 * time.Second):
		c.t.Fatal("server did not exit")
	}
	return nil
}

func (c *testClient) initialize(root string, options any) {
	c.t.Helper()
	params := map[string]any{"rootUri": source.PathToURI(root)}
	if options != nil {
		params["initializationOptions"] = options
	}
	if resp := c.call("initialize", params); resp.Error != nil {
		c.t.Fatalf("initialize: %+v", resp.Error)
	}
}

func result[T any](t *testing.T, msg rpcMessage) T {
	t.Helper()
	var out T
	if msg.Error != nil {
		t.Fatalf("response error: %+v", msg.Error)
	}
	if err := json.Unmarshal(msg.Result, &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return out
}

func TestInitializeAndShutdown(t *testing.T) {
	c := startServer(t)
	resp := c.call("initialize", map[string]any{"rootUri": source.PathToURI(t.TempDir())})
	res := result[initializeResult](t, resp)
	caps := res.Capabilities
	if caps.TextDocumentSync.Change != 2 || !caps.TextDocumentSync.Save.IncludeText {
		t.Fatalf("sync = %+v", caps.TextDocumentSync)
	}
	if caps.DiagnosticProvider == nil || !caps.DiagnosticProvider.WorkspaceDiagnostics {
		t.Fatalf("diagnostic provider = %+v", caps.DiagnosticProvider)
	}
	if caps.CodeActionProvider == nil || caps.CodeLensProvider == nil || !caps.ReferencesProvider {
		t.Fatalf("capabilities = %+v", caps)
	}
	if res.ServerInfo == nil || res.ServerInfo.Version != "test" {
		t.Fatalf("server info = %+v", res.ServerInfo)
	}
	if resp := c.call("shutdown", nil); resp.Error != nil {
		t.Fatalf("shutdown: %+v", resp.Error)
	}
	c.notify("exit", nil)
	if err := c.wait(); !errors.Is(err, ErrExit) {
		t.Fatalf("run = %v, want ErrExit", err)
	}
}

func TestExitWithoutShutdown(t *testing.T) {
	c := startServer(t)
	c.notify("exit", nil)
	if err := c.wait(); !errors.Is(err, ErrExitWithoutShutdown) {
		t.Fatalf("run = %v", err)
	}
}

func TestRequestErrors(t *testing.T) {
	c := startServer(t)
	resp := c.call("textDocument/documentSymbol", map[string]any{"textDocument": map[string]any{"uri": "file:///x.bx"}})
	if resp.Error == nil || resp.Error.Code != codeServerNotReady {
		t.Fatalf("before initialize = %+v", resp.Error)
	}
	c.initialize(t.TempDir(), nil)
	resp = c.call("textDocument/hover", map[string]any{})
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("unknown method = %+v", resp.Error)
	}
	resp = c.call("textDocument/documentSymbol", []int{1})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("bad params = %+v", resp.Error)
	}
}

func TestPublishAndQuickFix(t *testing.T) {
	root := t.TempDir()
	uri := source.PathToURI(filepath.Join(root, "Thing.cfc"))
	c := startServer(t)
	c.initialize(root, map[string]any{"enableExperimentalDiagnostics": true})
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, LanguageID: "cfml", Version: 1, Text: unscopedComponent},
	})

	pub := c.publish(uri)
	var unscoped *lspDiagnostic
	for i := range pub.Diagnostics {
		if pub.Diagnostics[i].Code == diag.CodeUnscopedVariable {
			unscoped = &pub.Diagnostics[i]
		}
	}
	if unscoped == nil {
		t.Fatalf("published = %+v", pub.Diagnostics)
	}
	if unscoped.Range.Start.Line != 2 || unscoped.Range.Start.Character != 2 {
		t.Fatalf("range = %+v", unscoped.Range)
	}
	if unscoped.Data == nil || unscoped.Data.ID == "" || unscoped.Data.VariableName != "total" {
		t.Fatalf("data = %+v", unscoped.Data)
	}

	resp := c.call("textDocument/codeAction", codeActionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Range:        unscoped.Range,
		Context:      codeActionContext{Diagnostics: []lspDiagnostic{*unscoped}},
	})
	actions := result[[]codeAction](t, resp)
	if len(actions) != 1 {
		t.Fatalf("actions = %+v", actions)
	}
	a := actions[0]
	if a.Kind != diag.KindQuickFix || a.Edit == nil {
		t.Fatalf("action = %+v", a)
	}
	edits := a.Edit.Changes[uri]
	if len(edits) != 1 || edits[0].NewText != "var total = 1" || edits[0].Range != unscoped.Range {
		t.Fatalf("edits = %+v", edits)
	}
}

func TestPublishSwitch(t *testing.T) {
	root := t.TempDir()
	uri := source.PathToURI(filepath.Join(root, "Thing.cfc"))
	c := startServer(t)
	c.initialize(root, nil)
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: unscopedComponent},
	})
	if pub := c.publish(uri); len(pub.Diagnostics) != 0 {
		t.Fatalf("disabled publish = %+v", pub.Diagnostics)
	}
	c.notify("boxlang/changesettings", map[string]any{"enableExperimentalDiagnostics": true})
	if pub := c.publish(uri); len(pub.Diagnostics) == 0 {
		t.Fatal("expected diagnostics after enabling")
	}
	c.notify("workspace/didChangeConfiguration", map[string]any{
		"settings": map[string]any{"boxlang": map[string]any{"enableExperimentalDiagnostics": false}},
	})
	if pub := c.publish(uri); len(pub.Diagnostics) != 0 {
		t.Fatalf("after disabling = %+v", pub.Diagnostics)
	}
}

func TestPullDiagnostics(t *testing.T) {
	root := t.TempDir()
	uri := source.PathToURI(filepath.Join(root, "Thing.cfc"))
	c := startServer(t)
	c.initialize(root, nil)
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: unscopedComponent},
	})

	first := result[workspaceDiagnosticReport](t, c.call("workspace/diagnostic", workspaceDiagnosticParams{}))
	if len(first.Items) != 1 {
		t.Fatalf("items = %+v", first.Items)
	}
	item := first.Items[0]
	if item.URI != uri || item.Kind != "full" || item.Items == nil || len(*item.Items) == 0 {
		t.Fatalf("item = %+v", item)
	}

	second := result[workspaceDiagnosticReport](t, c.call("workspace/diagnostic", workspaceDiagnosticParams{
		PreviousResultIDs: []previousResultID{{URI: uri, Value: item.ResultID}},
	}))
	if got := second.Items[0]; got.Kind != "unchanged" || got.ResultID != item.ResultID || got.Items != nil {
		t.Fatalf("second = %+v", got)
	}

	doc := result[documentDiagnosticReport](t, c.call("textDocument/diagnostic", documentDiagnosticParams{
		TextDocument:     textDocumentIdentifier{URI: uri},
		PreviousResultID: item.ResultID,
	}))
	if doc.Kind != "unchanged" {
		t.Fatalf("document report = %+v", doc)
	}
}

func TestIncrementalChangeAndSymbols(t *testing.T) {
	root := t.TempDir()
	uri := source.PathToURI(filepath.Join(root, "Greeter.bx"))
	c := startServer(t)
	c.initialize(root, nil)
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: "class {\n}\n"},
	})
	c.notify("textDocument/didChange", didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: uri, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 1, Character: 0}, End: position{Line: 1, Character: 0}},
			Text:  "\tfunction main() {}\n",
		}},
	})
	syms := result[[]documentSymbol](t, c.call("textDocument/documentSymbol", documentSymbolParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	}))
	if len(syms) != 1 || syms[0].Name != "Greeter" || len(syms[0].Children) != 1 || syms[0].Children[0].Name != "main" {
		t.Fatalf("symbols = %+v", syms)
	}

	lenses := result[[]codeLens](t, c.call("textDocument/codeLens", codeLensParams{
		TextDocument: textDocumentIdentifier{URI: uri},
	}))
	if len(lenses) != 1 || lenses[0].Command == nil || lenses[0].Range.Start.Line != 1 {
		t.Fatalf("lenses = %+v", lenses)
	}
}

func TestCompletionAndNavigation(t *testing.T) {
	root := t.TempDir()
	uri := source.PathToURI(filepath.Join(root, "run.bxs"))
	text := "function greet() {}\ngreet();\n"
	c := startServer(t)
	c.initialize(root, nil)
	c.notify("textDocument/didOpen", didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: uri, Version: 1, Text: text},
	})

	items := result[[]completionItem](t, c.call("textDocument/completion", completionParams{
		textDocumentPositionParams: textDocumentPositionParams{
			TextDocument: textDocumentIdentifier{URI: uri},
			Position:     position{Line: 1, Character: 0},
		},
	}))
	found := false
	for _, it := range items {
		if it.Label == "len" {
			found = true
		}
	}
	if !found {
		t.Fatalf("completion items = %d, missing len", len(items))
	}

	defs := result[[]location](t, c.call("textDocument/definition", textDocumentPositionParams{
		TextDocument: textDocumentIdentifier{URI: uri},
		Position:     position{Line: 1, Character: 1},
	}))
	if len(defs) != 1 || defs[0].Range.Start.Line != 0 {
		t.Fatalf("definition = %+v", defs)
	}
	refs := result[[]location](t, c.call("textDocument/references", referenceParams{
		textDocumentPositionParams: textDocumentPositionParams{
			TextDocument: textDocumentIdentifier{URI: uri},
			Position:     position{Line: 0, Character: 10},
		},
	}))
	if len(refs) != 1 || refs[0].Range.Start.Line != 1 {
		t.Fatalf("references = %+v", refs)
	}
}

func TestCancelRequestCancelsInflight(t *testing.T) {
	srv := NewServer(nil, io.Discard, ServerOptions{})
	cancelled := false
	srv.inflight["7"] = func() { cancelled = true }
	srv.handleCancel(json.RawMessage(`{"id": 7}`))
	if !cancelled {
		t.Fatal("expected cancel")
	}
	srv.handleCancel(json.RawMessage(`{"id": "other"}`))
}

func TestSettingsSection(t *testing.T) {
	cases := map[string]string{
		`{"boxlang": {"a": 1}}`: `{"a": 1}`,
		`{"a": 1}`:              `{"a": 1}`,
		`[1]`:                   `[1]`,
	}
	for in, want := range cases {
		if got := string(settingsSection(json.RawMessage(in))); got != want {
			t.Errorf("settingsSection(%s) = %s, want %s", in, got, want)
		}
	}
}
