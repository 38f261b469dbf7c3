// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// =============================================================================
// SERVER STATE
// =============================================================================

// ServerState represents the lifecycle state of an analysis server.
type ServerState int

const (
	// ServerStateUninitialized is the initial state before Start is called.
	ServerStateUninitialized ServerState = iota

	// ServerStateStarting means the server process is starting.
	ServerStateStarting

	// ServerStateReady means the server is initialized and ready for requests.
	ServerStateReady

	// ServerStateStopping means the server is shutting down.
	ServerStateStopping

	// ServerStateStopped means the server has terminated.
	ServerStateStopped
)

// String returns a human-readable state name.
func (s ServerState) String() string {
	names := []string{"uninitialized", "starting", "ready", "stopping", "stopped"}
	if int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// =============================================================================
// SERVER
// =============================================================================

// Server represents a running analysis server process bound to one
// workspace root.
//
// Description:
//
//	Manages the lifecycle of the external analysis process: spawning
//	from the adapter's launch command, the LSP initialize handshake
//	(carrying the adapter's settings and capabilities), request
//	routing, and graceful shutdown. Server-initiated configuration
//	pulls are answered by the adapter.
//
// Thread Safety:
//
//	Safe for concurrent use after Start() returns successfully.
type Server struct {
	adapter  ServerAdapter
	rootPath string
	logPath  string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *os.File

	protocol     *Protocol
	capabilities ServerCapabilities
	serverInfo   *ServerInfo

	state   ServerState
	stateMu sync.RWMutex

	ctx      context.Context
	cancel   context.CancelFunc
	readDone chan struct{}

	docs   map[string]int // open document URI -> version
	docsMu sync.Mutex

	lastUsed   time.Time
	lastUsedMu sync.Mutex
}

// NewServer creates a new server instance (not started).
//
// Description:
//
//	Creates a server bound to the given adapter and workspace root.
//	The server is not started; call Start to spawn the process.
//
// Inputs:
//
//	adapter - Language adapter describing the server to run
//	rootPath - Absolute path to the workspace root
//
// Outputs:
//
//	*Server - The configured (but not started) server
func NewServer(adapter ServerAdapter, rootPath string) *Server {
	return &Server{
		adapter:  adapter,
		rootPath: rootPath,
		state:    ServerStateUninitialized,
		readDone: make(chan struct{}),
		docs:     make(map[string]int),
		lastUsed: time.Now(),
	}
}

// Start starts the analysis server process and initializes it.
//
// Description:
//
//	Creates the diagnostic log file, spawns the process from the
//	adapter's launch command, establishes JSON-RPC communication, and
//	performs the LSP initialize handshake. On success, the server is
//	ready to receive requests.
//
// Inputs:
//
//	ctx - Context for cancellation and startup timeout
//
// Outputs:
//
//	error - Non-nil if the server failed to start or initialize
//
// Errors:
//
//	ErrServerNotInstalled - No usable server binary
//	ErrServerAlreadyStarted - Start called on a non-uninitialized server
//	ErrInitializeFailed - LSP initialize handshake failed
//
// Thread Safety:
//
//	Safe for concurrent use, but only the first caller will start the server.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("ctx must not be nil")
	}

	s.stateMu.Lock()
	if s.state != ServerStateUninitialized {
		s.stateMu.Unlock()
		return ErrServerAlreadyStarted
	}
	s.state = ServerStateStarting
	s.stateMu.Unlock()

	// Diagnostic log file consumed by the server's own -logfile style flag
	logFile, err := os.CreateTemp("", s.adapter.ServerName()+"_stderr_*.log")
	if err != nil {
		s.setState(ServerStateStopped)
		return fmt.Errorf("create diagnostic log: %w", err)
	}
	s.logPath = logFile.Name()
	s.stderr = logFile

	argv := s.adapter.LaunchCommand(s.logPath)
	if len(argv) == 0 {
		s.cleanup()
		slog.Warn("Analysis server not installed",
			slog.String("server", s.adapter.ServerName()),
			slog.String("language", s.adapter.LanguageID()),
		)
		return fmt.Errorf("%w: %s", ErrServerNotInstalled, s.adapter.ServerName())
	}

	slog.Info("Starting analysis server",
		slog.String("server", s.adapter.ServerName()),
		slog.String("command", argv[0]),
		slog.String("root_path", s.rootPath),
		slog.String("log_path", s.logPath),
	)

	// Server context is independent of the caller's startup context
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.cmd = exec.CommandContext(s.ctx, argv[0], argv[1:]...)
	s.cmd.Dir = s.rootPath
	s.cmd.Stderr = s.stderr

	s.stdin, err = s.cmd.StdinPipe()
	if err != nil {
		s.cleanup()
		return fmt.Errorf("stdin pipe: %w", err)
	}

	s.stdout, err = s.cmd.StdoutPipe()
	if err != nil {
		s.cleanup()
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := s.cmd.Start(); err != nil {
		s.cleanup()
		recordServerSpawn(ctx, s.adapter.LanguageID(), false)
		return fmt.Errorf("start process: %w", err)
	}
	recordServerSpawn(ctx, s.adapter.LanguageID(), true)

	s.protocol = NewProtocol(s.stdout, s.stdin)
	s.protocol.SetReverseHandler(s.handleServerRequest)

	go func() {
		defer close(s.readDone)
		_ = s.protocol.ReadLoop(s.ctx)
	}()

	if err := s.initialize(ctx); err != nil {
		_ = s.Shutdown(ctx)
		return fmt.Errorf("%w: %v", ErrInitializeFailed, err)
	}

	s.setState(ServerStateReady)
	s.touchLastUsed()

	slog.Info("Analysis server ready",
		slog.String("server", s.adapter.ServerName()),
		slog.Bool("hover", s.capabilities.HasHoverProvider()),
	)

	return nil
}

// initialize performs the LSP initialize handshake.
//
// The adapter's settings ride along as initializationOptions and its
// extra capabilities are merged into the baseline client capabilities.
func (s *Server) initialize(ctx context.Context) error {
	caps := ClientCapabilities{
		TextDocument: TextDocumentClientCapabilities{
			Synchronization: &TextDocumentSyncClientCapabilities{
				DidSave: true,
			},
			Hover: &HoverClientCapabilities{
				ContentFormat: []string{"markdown", "plaintext"},
			},
		},
	}
	mergeCapabilities(&caps, s.adapter.ExtraCapabilities())

	params := InitializeParams{
		ProcessID:             os.Getpid(),
		RootURI:               PathToURI(s.rootPath),
		RootPath:              s.rootPath,
		Capabilities:          caps,
		InitializationOptions: s.adapter.InitializationOptions(),
		WorkspaceFolders: []WorkspaceFolder{
			{
				URI:  PathToURI(s.rootPath),
				Name: filepath.Base(s.rootPath),
			},
		},
	}

	resp, err := s.protocol.SendRequest(ctx, "initialize", params)
	if err != nil {
		return fmt.Errorf("initialize request: %w", err)
	}

	var result InitializeResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return fmt.Errorf("parse initialize result: %w", err)
	}

	s.capabilities = result.Capabilities
	s.serverInfo = result.ServerInfo

	if err := s.protocol.SendNotification("initialized", struct{}{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}

	return nil
}

// mergeCapabilities folds the adapter's extra capabilities into the
// engine baseline. Only additive fields are merged.
func mergeCapabilities(base *ClientCapabilities, extra ClientCapabilities) {
	if extra.Workspace.Configuration {
		base.Workspace.Configuration = true
	}
	if extra.TextDocument.Hover != nil {
		base.TextDocument.Hover = extra.TextDocument.Hover
	}
	if extra.TextDocument.Synchronization != nil {
		base.TextDocument.Synchronization = extra.TextDocument.Synchronization
	}
}

// handleServerRequest answers server-initiated requests.
//
// workspace/configuration is delegated to the adapter, which must
// return exactly one entry per requested item in request order --
// anything else would break the server's response correlation.
func (s *Server) handleServerRequest(method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "workspace/configuration":
		var cfg ConfigurationParams
		if err := json.Unmarshal(params, &cfg); err != nil {
			return nil, fmt.Errorf("parse configuration params: %w", err)
		}
		sections := s.adapter.ConfigurationResponse(cfg.Items)
		slog.Debug("Answered configuration pull",
			slog.String("server", s.adapter.ServerName()),
			slog.Int("items", len(cfg.Items)),
		)
		return sections, nil

	case "client/registerCapability", "client/unregisterCapability":
		// Acknowledge; dynamic registration is not tracked
		return struct{}{}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodNotSupported, method)
	}
}

// Shutdown gracefully shuts down the server.
//
// Description:
//
//	Sends shutdown and exit messages to the server, then waits for the
//	process to terminate. If the server doesn't respond, it is killed.
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//
// Outputs:
//
//	error - Non-nil if shutdown encountered errors (server is still stopped)
//
// Thread Safety:
//
//	Safe for concurrent use. Multiple calls are idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stateMu.Lock()
	if s.state == ServerStateStopped || s.state == ServerStateStopping {
		s.stateMu.Unlock()
		return nil
	}
	s.state = ServerStateStopping
	s.stateMu.Unlock()

	slog.Info("Shutting down analysis server",
		slog.String("server", s.adapter.ServerName()),
	)

	defer s.cleanup()

	// Try graceful shutdown
	if s.protocol != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		_, _ = s.protocol.SendRequest(shutdownCtx, "shutdown", nil)
		_ = s.protocol.SendNotification("exit", nil)
		s.protocol.Close()
	}

	// Close stdin to signal EOF to server
	if s.stdin != nil {
		_ = s.stdin.Close()
	}

	// Wait for process with timeout
	if s.cmd != nil && s.cmd.Process != nil {
		done := make(chan error, 1)
		go func() { done <- s.cmd.Wait() }()

		select {
		case <-time.After(5 * time.Second):
			_ = s.cmd.Process.Kill()
			<-done
		case <-done:
		}
	}

	// Wait for read loop to finish
	if s.cancel != nil {
		s.cancel()
	}

	select {
	case <-s.readDone:
	case <-time.After(time.Second):
	}

	return nil
}

// cleanup releases resources and sets state to stopped.
func (s *Server) cleanup() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.stdout != nil {
		_ = s.stdout.Close()
	}
	if s.stderr != nil {
		_ = s.stderr.Close()
	}
	s.setState(ServerStateStopped)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// State returns the current server state.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (s *Server) State() ServerState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Adapter returns the language adapter this server was built from.
func (s *Server) Adapter() ServerAdapter {
	return s.adapter
}

// RootPath returns the workspace root path.
func (s *Server) RootPath() string {
	return s.rootPath
}

// LogPath returns the diagnostic log file path, empty before Start.
func (s *Server) LogPath() string {
	return s.logPath
}

// Capabilities returns the server's capabilities.
//
// Description:
//
//	Returns the capabilities reported by the server during
//	initialization. Zero value if the server hasn't been initialized.
func (s *Server) Capabilities() ServerCapabilities {
	return s.capabilities
}

// LastUsed returns when the server was last used.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (s *Server) LastUsed() time.Time {
	s.lastUsedMu.Lock()
	defer s.lastUsedMu.Unlock()
	return s.lastUsed
}

// =============================================================================
// DOCUMENT LIFECYCLE
// =============================================================================

// OpenDocument tells the server about a document's current content.
//
// Description:
//
//	Sends textDocument/didOpen on first sight of a URI and bumps the
//	tracked version on subsequent opens so repeated queries against a
//	changed buffer see fresh analysis.
//
// Inputs:
//
//	filePath - Absolute path to the file
//	text - Full document content
//
// Outputs:
//
//	error - Non-nil if the server is not ready or the send failed
//
// Thread Safety:
//
//	Safe for concurrent use.
func (s *Server) OpenDocument(filePath, text string) error {
	if s.State() != ServerStateReady {
		return ErrServerNotRunning
	}
	uri := PathToURI(filePath)

	s.docsMu.Lock()
	version, open := s.docs[uri]
	version++
	s.docs[uri] = version
	s.docsMu.Unlock()

	if open {
		// Reopen as a fresh document: close then open keeps the engine
		// free of incremental-sync bookkeeping.
		_ = s.protocol.SendNotification("textDocument/didClose", DidCloseTextDocumentParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
		})
	}

	s.touchLastUsed()
	return s.protocol.SendNotification("textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{
			URI:        uri,
			LanguageID: s.adapter.LanguageID(),
			Version:    version,
			Text:       text,
		},
	})
}

// =============================================================================
// REQUEST METHODS
// =============================================================================

// Request sends an LSP request and waits for the response.
//
// Description:
//
//	Sends a request to the server and blocks until a response is
//	received or the context is cancelled. Updates the last-used
//	timestamp.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (s *Server) Request(ctx context.Context, method string, params interface{}) (*Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if s.State() != ServerStateReady {
		return nil, ErrServerNotRunning
	}
	s.touchLastUsed()
	return s.protocol.SendRequest(ctx, method, params)
}

// Hover performs a textDocument/hover query.
//
// Description:
//
//	Sends the hover request for the given file position and decodes
//	the result. The distinguished empty-hover condition (a null or
//	empty result) surfaces as ErrNoHoverInfo, not as a nil payload.
//	Engine-level cancellation and timeout errors pass through
//	unchanged.
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//	filePath - Absolute path to the file
//	pos - Cursor position (0-indexed line and character)
//
// Outputs:
//
//	*HoverResult - The decoded hover payload
//	error - ErrNoHoverInfo, a transport error, or a parse failure
//
// Thread Safety:
//
//	Safe for concurrent use.
func (s *Server) Hover(ctx context.Context, filePath string, pos Position) (*HoverResult, error) {
	ctx, span := startOperationSpan(ctx, "Hover", s.adapter.LanguageID(), filePath)
	defer span.End()
	start := time.Now()

	params := TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: PathToURI(filePath)},
		Position:     pos,
	}

	resp, err := s.Request(ctx, "textDocument/hover", params)
	if err != nil {
		setOperationSpanResult(span, false)
		recordOperationMetrics(ctx, "hover", s.adapter.LanguageID(), time.Since(start), false)
		return nil, err
	}

	if len(resp.Result) == 0 || string(resp.Result) == "null" {
		setOperationSpanResult(span, true)
		recordOperationMetrics(ctx, "hover", s.adapter.LanguageID(), time.Since(start), true)
		return nil, ErrNoHoverInfo
	}

	var result HoverResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		setOperationSpanResult(span, false)
		recordOperationMetrics(ctx, "hover", s.adapter.LanguageID(), time.Since(start), false)
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	setOperationSpanResult(span, true)
	recordOperationMetrics(ctx, "hover", s.adapter.LanguageID(), time.Since(start), true)
	return &result, nil
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

func (s *Server) setState(state ServerState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *Server) touchLastUsed() {
	s.lastUsedMu.Lock()
	s.lastUsed = time.Now()
	s.lastUsedMu.Unlock()
}

// =============================================================================
// URI HELPERS
// =============================================================================

// PathToURI converts an absolute file path to a file:// URI.
//
// Description:
//
//	Properly encodes the path for use in a file:// URI, handling
//	special characters like spaces and unicode.
func PathToURI(path string) string {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err == nil {
			path = abs
		}
	}

	u := &url.URL{
		Scheme: "file",
		Path:   path,
	}
	return u.String()
}

// URIToPath converts a file:// URI to an absolute file path.
func URIToPath(uri string) string {
	if u, err := url.Parse(uri); err == nil && u.Scheme == "file" {
		return u.Path
	}
	// Fallback for simple URIs
	return trimFilePrefix(uri)
}

func trimFilePrefix(uri string) string {
	const prefix = "file://"
	if len(uri) >= len(prefix) && uri[:len(prefix)] == prefix {
		return uri[len(prefix):]
	}
	return uri
}
