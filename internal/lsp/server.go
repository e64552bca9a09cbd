// Package lsp serves the workspace coordinator over stdio JSON-RPC.
package lsp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"bxls/internal/diag"
	"bxls/internal/project"
	"bxls/internal/source"
	"bxls/internal/workspace"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// DefaultMaxConcurrentRequests bounds requests served in parallel.
const DefaultMaxConcurrentRequests = 8

// ServerOptions configures LSP server behavior.
type ServerOptions struct {
	// Settings are the base settings, before client overrides.
	Settings              project.Settings
	Log                   *zap.Logger
	MaxConcurrentRequests int64
	Version               string
}

type requestHandler func(ctx context.Context, params json.RawMessage) (any, error)

type notificationHandler func(ctx context.Context, params json.RawMessage) error

// Server handles stdio JSON-RPC for the BoxLang language server. Document
// sync notifications run inline in the read loop; requests run on a
// bounded pool.
type Server struct {
	in      *bufio.Reader
	out     *bufio.Writer
	sendMu  sync.Mutex
	log     *zap.Logger
	ws      *workspace.Coordinator
	sem     *semaphore.Weighted
	version string
	wg      sync.WaitGroup

	requests      map[string]requestHandler
	notifications map[string]notificationHandler

	mu                sync.Mutex
	texts             map[string]string
	settings          project.Settings
	rootSet           bool
	initialized       bool
	initializeSeen    bool
	shutdownRequested bool
	inflight          map[string]context.CancelFunc
}

// NewServer constructs a new LSP server.
func NewServer(in io.Reader, out io.Writer, opts ServerOptions) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	limit := opts.MaxConcurrentRequests
	if limit <= 0 {
		limit = DefaultMaxConcurrentRequests
	}
	settings := opts.Settings
	if settings == (project.Settings{}) {
		settings = project.DefaultSettings()
	}
	s := &Server{
		in:       bufio.NewReader(in),
		out:      bufio.NewWriter(out),
		log:      log,
		sem:      semaphore.NewWeighted(limit),
		version:  opts.Version,
		texts:    make(map[string]string),
		settings: settings,
		inflight: make(map[string]context.CancelFunc),
	}
	s.ws = workspace.New(workspace.Options{
		Settings:  settings,
		Publisher: s,
		Log:       log.Named("workspace"),
	})
	s.requests = map[string]requestHandler{
		"workspace/diagnostic":        s.handleWorkspaceDiagnostic,
		"textDocument/diagnostic":     s.handleDocumentDiagnostic,
		"textDocument/documentSymbol": s.handleDocumentSymbol,
		"textDocument/completion":     s.handleCompletion,
		"textDocument/codeLens":       s.handleCodeLens,
		"textDocument/codeAction":     s.handleCodeAction,
		"textDocument/definition":     s.handleDefinition,
		"textDocument/references":     s.handleReferences,
	}
	s.notifications = map[string]notificationHandler{
		"textDocument/didOpen":             s.handleDidOpen,
		"textDocument/didChange":           s.handleDidChange,
		"textDocument/didSave":             s.handleDidSave,
		"textDocument/didClose":            s.handleDidClose,
		"workspace/didChangeConfiguration": s.handleDidChangeConfiguration,
		"workspace/didChangeWatchedFiles":  s.handleDidChangeWatchedFiles,
		"boxlang/changesettings":           s.handleChangeSettings,
	}
	return s
}

// Workspace returns the coordinator behind the server.
func (s *Server) Workspace() *workspace.Coordinator { return s.ws }

// Run serves LSP requests until exit or end of input. Background work and
// in-flight requests are stopped before it returns.
func (s *Server) Run(ctx context.Context) error {
	defer s.wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", zap.Error(err))
			if sendErr := s.sendError(json.RawMessage("null"), codeParseError, "parse error"); sendErr != nil {
				return sendErr
			}
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(ctx, &msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, msg *rpcMessage) error {
	isRequest := len(msg.ID) > 0
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		s.handleInitialized(ctx)
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "$/cancelRequest":
		s.handleCancel(msg.Params)
		return nil
	}

	if h, ok := s.notifications[msg.Method]; ok {
		notificationsTotal.WithLabelValues(msg.Method).Inc()
		if err := h(ctx, msg.Params); err != nil {
			s.log.Warn("notification failed", zap.String("method", msg.Method), zap.Error(err))
		}
		if isRequest {
			return s.sendResponse(msg.ID, nil)
		}
		return nil
	}
	h, ok := s.requests[msg.Method]
	if !ok {
		if isRequest {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
	if !isRequest {
		return nil
	}
	s.mu.Lock()
	ready := s.initializeSeen
	s.mu.Unlock()
	if !ready {
		return s.sendError(msg.ID, codeServerNotReady, "server not initialized")
	}
	return s.dispatch(ctx, msg, h)
}

// dispatch runs h on the request pool. The read loop blocks while the
// pool is full.
func (s *Server) dispatch(ctx context.Context, msg *rpcMessage, h requestHandler) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	reqCtx, cancel := context.WithCancel(ctx)
	key := requestKey(msg.ID)
	s.mu.Lock()
	s.inflight[key] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sem.Release(1)
		defer func() {
			cancel()
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
		}()
		s.respond(reqCtx, msg, h)
	}()
	return nil
}

func (s *Server) respond(ctx context.Context, msg *rpcMessage, h requestHandler) {
	started := time.Now()
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			outcome = "panic"
			s.log.Error("request handler panicked", zap.String("method", msg.Method), zap.Any("panic", r))
			s.reply(msg, s.sendError(msg.ID, codeInternalError, "internal error"))
		}
		requestsTotal.WithLabelValues(msg.Method, outcome).Inc()
		requestDuration.WithLabelValues(msg.Method).Observe(time.Since(started).Seconds())
	}()
	result, err := h(ctx, msg.Params)
	if ctx.Err() != nil {
		outcome = "cancelled"
		s.reply(msg, s.sendError(msg.ID, codeRequestCancelled, "request cancelled"))
		return
	}
	if err != nil {
		outcome = "error"
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			s.reply(msg, s.sendError(msg.ID, rpcErr.Code, rpcErr.Message))
			return
		}
		s.log.Warn("request failed", zap.String("method", msg.Method), zap.Error(err))
		s.reply(msg, s.sendError(msg.ID, codeInternalError, err.Error()))
		return
	}
	s.reply(msg, s.sendResponse(msg.ID, result))
}

func (s *Server) reply(msg *rpcMessage, err error) {
	if err != nil {
		s.log.Warn("failed to send response", zap.String("method", msg.Method), zap.Error(err))
	}
}

func requestKey(id json.RawMessage) string {
	return string(bytes.TrimSpace(id))
}

func (s *Server) handleCancel(raw json.RawMessage) {
	var params cancelParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return
	}
	s.mu.Lock()
	cancel := s.inflight[requestKey(params.ID)]
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	root := ""
	if params.RootURI != "" {
		root = source.URIToPath(params.RootURI)
	}
	if root == "" && params.RootPath != "" {
		root = params.RootPath
	}
	if root == "" && len(params.WorkspaceFolders) > 0 {
		root = source.URIToPath(params.WorkspaceFolders[0].URI)
	}
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	s.mu.Lock()
	s.initializeSeen = true
	s.mu.Unlock()
	s.applySettings(params.InitializationOptions)
	if root := detectRoot(root, ""); root != "" {
		s.setRoot(root)
	}

	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{
				OpenClose: true,
				Change:    2,
				Save: saveOptions{
					IncludeText: true,
				},
			},
			CompletionProvider: &completionOptions{
				TriggerCharacters: []string{".", ":", " "},
			},
			DefinitionProvider:     true,
			ReferencesProvider:     true,
			DocumentSymbolProvider: true,
			CodeLensProvider:       &codeLensOptions{},
			CodeActionProvider: &codeActionOptions{
				CodeActionKinds: []string{diag.KindQuickFix},
			},
			DiagnosticProvider: &diagnosticOptions{
				Identifier:            diag.Source,
				InterFileDependencies: false,
				WorkspaceDiagnostics:  true,
			},
		},
		ServerInfo: &serverInfo{Name: "bxls", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

// handleInitialized starts background work: the memory monitor, and the
// config watcher and workspace scan when a root is known.
func (s *Server) handleInitialized(ctx context.Context) {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true
	hasRoot := s.rootSet
	s.mu.Unlock()

	s.goBackground(func() { s.ws.MonitorMemory(ctx) })
	if hasRoot {
		s.startWorkspace(ctx)
	}
}

func (s *Server) startWorkspace(ctx context.Context) {
	s.goBackground(func() {
		if err := s.ws.WatchConfig(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("lint config watcher stopped", zap.Error(err))
		}
	})
	s.scanInBackground(ctx)
}

func (s *Server) scanInBackground(ctx context.Context) {
	s.goBackground(func() {
		if err := s.ws.ScanWorkspace(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("workspace scan failed", zap.Error(err))
		}
	})
}

func (s *Server) goBackground(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Server) setRoot(root string) {
	s.mu.Lock()
	s.rootSet = true
	s.mu.Unlock()
	s.ws.SetRoot(root)
	s.log.Info("workspace root", zap.String("root", root))
}

// ensureRoot detects a root from the first opened file when the client
// sent none.
func (s *Server) ensureRoot(ctx context.Context, uri string) {
	s.mu.Lock()
	done := s.rootSet
	initialized := s.initialized
	s.mu.Unlock()
	if done {
		return
	}
	root := detectRoot("", source.URIToPath(uri))
	if root == "" {
		return
	}
	s.setRoot(root)
	if initialized {
		s.startWorkspace(ctx)
	}
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	for _, cancel := range s.inflight {
		cancel()
	}
	s.mu.Unlock()
	return s.sendResponse(msg.ID, nil)
}

// Publish implements workspace.Publisher.
func (s *Server) Publish(uri string, diags []diag.Diagnostic) {
	if err := s.sendPublish(uri, toDiagnostics(diags)); err != nil {
		s.log.Warn("failed to publish diagnostics", zap.String("uri", uri), zap.Error(err))
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendPublish(uri string, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/publishDiagnostics",
		"params": publishDiagnosticsParams{
			URI:         uri,
			Diagnostics: list,
		},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

func invalidParams(err error) error {
	return &rpcError{Code: codeInvalidParams, Message: "invalid params: " + err.Error()}
}
