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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// JSONRPCVersion is the JSON-RPC version used by LSP.
const JSONRPCVersion = "2.0"

// =============================================================================
// JSON-RPC MESSAGE TYPES
// =============================================================================

// Request represents a client-to-server JSON-RPC request.
type Request struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID is the request identifier. Omit for notifications.
	ID int64 `json:"id,omitempty"`

	// Method is the method to invoke.
	Method string `json:"method"`

	// Params contains the method parameters.
	Params interface{} `json:"params,omitempty"`
}

// Response represents a JSON-RPC response.
type Response struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// ID is the request identifier this response corresponds to.
	ID int64 `json:"id"`

	// Result contains the method result (mutually exclusive with Error).
	Result json.RawMessage `json:"result,omitempty"`

	// Error contains error information (mutually exclusive with Result).
	Error *ResponseError `json:"error,omitempty"`
}

// ResponseError represents a JSON-RPC error.
type ResponseError struct {
	// Code is the error code.
	Code int `json:"code"`

	// Message is a short description of the error.
	Message string `json:"message"`

	// Data contains additional error information.
	Data interface{} `json:"data,omitempty"`
}

// Notification represents a JSON-RPC notification (no ID, no response).
type Notification struct {
	// JSONRPC is the protocol version, always "2.0".
	JSONRPC string `json:"jsonrpc"`

	// Method is the method to invoke.
	Method string `json:"method"`

	// Params contains the method parameters.
	Params interface{} `json:"params,omitempty"`
}

// envelope is the shape used to classify an incoming message before
// full decoding. A message with a method and an ID is a server-initiated
// request; a method without an ID is a notification; an ID without a
// method is a response to one of our requests.
type envelope struct {
	ID     json.RawMessage `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// reverseReply is the response shape for server-initiated requests.
// The ID is echoed verbatim since servers may use numeric or string IDs.
type reverseReply struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ReverseHandler answers a server-initiated request.
//
// The returned value is marshaled as the response result. Returning an
// error produces a JSON-RPC error response instead.
type ReverseHandler func(method string, params json.RawMessage) (interface{}, error)

// =============================================================================
// PROTOCOL HANDLER
// =============================================================================

// Protocol handles JSON-RPC communication over stdin/stdout.
//
// Description:
//
//	Implements the LSP base protocol using Content-Length headers.
//	Manages request/response correlation, supports notifications in
//	both directions, and dispatches server-initiated requests (such
//	as workspace/configuration) to a registered ReverseHandler.
//
// Thread Safety:
//
//	Safe for concurrent use. Multiple goroutines can send requests
//	and notifications simultaneously.
type Protocol struct {
	reader    *bufio.Reader
	writer    io.Writer
	writeMu   sync.Mutex
	nextID    int64
	pending   map[int64]chan Response
	pendingMu sync.Mutex
	closed    int32 // atomic: 1 if closed

	reverse   ReverseHandler
	reverseMu sync.RWMutex
}

// NewProtocol creates a new protocol handler.
//
// Description:
//
//	Creates a protocol handler that communicates over the provided
//	reader (server stdout) and writer (server stdin).
//
// Inputs:
//
//	r - Reader for server output (e.g., stdout pipe)
//	w - Writer for client input (e.g., stdin pipe)
//
// Outputs:
//
//	*Protocol - The protocol handler
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	var reader *bufio.Reader
	if r != nil {
		reader = bufio.NewReader(r)
	}
	return &Protocol{
		reader:  reader,
		writer:  w,
		pending: make(map[int64]chan Response),
	}
}

// SetReverseHandler registers the handler for server-initiated requests.
//
// Description:
//
//	The handler answers requests the server sends to the client, such
//	as workspace/configuration settings pulls. Without a handler, all
//	server-initiated requests receive a MethodNotFound error.
//
// Thread Safety:
//
//	Safe for concurrent use, but normally set once before ReadLoop starts.
func (p *Protocol) SetReverseHandler(h ReverseHandler) {
	p.reverseMu.Lock()
	p.reverse = h
	p.reverseMu.Unlock()
}

// SendRequest sends a request and waits for the response.
//
// Description:
//
//	Sends a JSON-RPC request to the server and blocks until a response
//	is received or the context is cancelled. Context cancellation and
//	timeout surface as ErrRequestTimeout wrapping the context error.
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//	method - The LSP method to invoke (e.g., "textDocument/hover")
//	params - Method parameters (will be JSON-marshaled)
//
// Outputs:
//
//	*Response - The server's response
//	error - Non-nil if sending failed, timeout, or server returned error
//
// Thread Safety:
//
//	Safe for concurrent use.
func (p *Protocol) SendRequest(ctx context.Context, method string, params interface{}) (*Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}
	if atomic.LoadInt32(&p.closed) == 1 {
		return nil, ErrServerNotRunning
	}

	id := atomic.AddInt64(&p.nextID, 1)

	req := Request{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}

	// Create response channel
	respCh := make(chan Response, 1)
	p.pendingMu.Lock()
	p.pending[id] = respCh
	p.pendingMu.Unlock()

	defer func() {
		p.pendingMu.Lock()
		delete(p.pending, id)
		p.pendingMu.Unlock()
	}()

	// Send the request
	if err := p.writeMessage(req); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	// Wait for response
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrRequestTimeout, ctx.Err())
	case resp := <-respCh:
		if resp.Error != nil {
			return nil, &RPCError{
				Code:    resp.Error.Code,
				Message: resp.Error.Message,
				Data:    resp.Error.Data,
			}
		}
		return &resp, nil
	}
}

// SendNotification sends a notification (no response expected).
//
// Description:
//
//	Sends a JSON-RPC notification to the server. Notifications do not
//	expect a response.
//
// Inputs:
//
//	method - The LSP method to invoke (e.g., "initialized")
//	params - Method parameters (will be JSON-marshaled)
//
// Outputs:
//
//	error - Non-nil if sending failed
//
// Thread Safety:
//
//	Safe for concurrent use.
func (p *Protocol) SendNotification(method string, params interface{}) error {
	if atomic.LoadInt32(&p.closed) == 1 {
		return ErrServerNotRunning
	}

	notif := Notification{
		JSONRPC: JSONRPCVersion,
		Method:  method,
		Params:  params,
	}
	return p.writeMessage(notif)
}

// writeMessage marshals and writes a message with Content-Length header.
func (p *Protocol) writeMessage(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := p.writer.Write([]byte(header)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := p.writer.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// ReadLoop reads messages from the server and dispatches them.
//
// Description:
//
//	Continuously reads messages from the server. Responses are matched
//	to pending requests, server-initiated requests are answered via the
//	registered ReverseHandler, and notifications are logged at debug
//	level and dropped. Call this in a goroutine after starting the
//	server.
//
// Inputs:
//
//	ctx - Context for cancellation
//
// Outputs:
//
//	error - Non-nil if reading fails or context is cancelled
//
// Thread Safety:
//
//	Must be called from a single goroutine. Safe to run while other
//	goroutines call SendRequest/SendNotification.
func (p *Protocol) ReadLoop(ctx context.Context) error {
	if p.reader == nil {
		return fmt.Errorf("no reader configured")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := p.readMessage()
		if err != nil {
			if err == io.EOF {
				return ErrServerCrashed
			}
			// Check if we're shutting down
			if atomic.LoadInt32(&p.closed) == 1 {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		p.handleMessage(msg)
	}
}

// readMessage reads a single message from the server.
func (p *Protocol) readMessage() (json.RawMessage, error) {
	var contentLength int

	// Read headers
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)

		// Empty line marks end of headers
		if line == "" {
			break
		}

		// Parse Content-Length header
		if strings.HasPrefix(line, "Content-Length:") {
			lenStr := strings.TrimSpace(strings.TrimPrefix(line, "Content-Length:"))
			var err error
			contentLength, err = strconv.Atoi(lenStr)
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length value %q: %w", lenStr, err)
			}
			if contentLength < 0 {
				return nil, fmt.Errorf("negative Content-Length: %d", contentLength)
			}
		}
		// Ignore other headers (Content-Type, etc.)
	}

	if contentLength == 0 {
		return nil, fmt.Errorf("missing or zero Content-Length header")
	}

	// Read body
	body := make([]byte, contentLength)
	if _, err := io.ReadFull(p.reader, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

// handleMessage classifies and dispatches a received message.
func (p *Protocol) handleMessage(msg json.RawMessage) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		slog.Warn("Dropping unparseable message from server", slog.String("error", err.Error()))
		return
	}

	switch {
	case env.Method != "" && len(env.ID) > 0:
		// Server-initiated request (e.g. workspace/configuration)
		p.handleReverseRequest(env)

	case env.Method != "":
		// Server notification (window/logMessage, $/progress, ...)
		slog.Debug("Server notification", slog.String("method", env.Method))

	case len(env.ID) > 0:
		// Response to one of our requests
		id, err := strconv.ParseInt(string(env.ID), 10, 64)
		if err != nil {
			slog.Warn("Response with non-numeric id", slog.String("id", string(env.ID)))
			return
		}
		p.handleResponse(Response{
			JSONRPC: JSONRPCVersion,
			ID:      id,
			Result:  env.Result,
			Error:   env.Error,
		})
	}
}

// handleResponse delivers a response to the waiting request, if any.
func (p *Protocol) handleResponse(resp Response) {
	p.pendingMu.Lock()
	ch, ok := p.pending[resp.ID]
	p.pendingMu.Unlock()

	if ok {
		// Non-blocking send in case channel is full
		select {
		case ch <- resp:
		default:
		}
	}
}

// handleReverseRequest answers a server-initiated request.
func (p *Protocol) handleReverseRequest(env envelope) {
	p.reverseMu.RLock()
	handler := p.reverse
	p.reverseMu.RUnlock()

	reply := reverseReply{
		JSONRPC: JSONRPCVersion,
		ID:      env.ID,
	}

	if handler == nil {
		reply.Error = &ResponseError{
			Code:    codeMethodNotFound,
			Message: fmt.Sprintf("no handler for %s", env.Method),
		}
	} else {
		result, err := handler(env.Method, env.Params)
		if err != nil {
			code := codeInternalError
			if errors.Is(err, ErrMethodNotSupported) {
				code = codeMethodNotFound
			}
			reply.Error = &ResponseError{
				Code:    code,
				Message: err.Error(),
			}
		} else {
			reply.Result = result
		}
	}

	if err := p.writeMessage(reply); err != nil {
		slog.Warn("Failed to answer server request",
			slog.String("method", env.Method),
			slog.String("error", err.Error()),
		)
	}
}

// Close marks the protocol as closed.
//
// Description:
//
//	Marks the protocol as closed to prevent further sends. Cancels all
//	pending requests with an error response. Does not close underlying
//	readers/writers.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (p *Protocol) Close() {
	atomic.StoreInt32(&p.closed, 1)

	// Cancel all pending requests by sending an error response
	p.pendingMu.Lock()
	for id, ch := range p.pending {
		// Send error response so waiting goroutines don't receive zero value
		select {
		case ch <- Response{
			JSONRPC: JSONRPCVersion,
			ID:      id,
			Error: &ResponseError{
				Code:    codeServerError,
				Message: "server connection closed",
			},
		}:
		default:
			// Channel full, waiter already has a response
		}
		// The channel is left open: a read-loop goroutine may still
		// hold a reference from handleResponse, and a send on a closed
		// channel would panic. Buffered channels are collected once the
		// waiter returns.
		delete(p.pending, id)
	}
	p.pendingMu.Unlock()
}
