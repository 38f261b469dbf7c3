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
	"errors"
	"fmt"
)

// Sentinel errors for engine operations.
var (
	// ErrServerNotRunning indicates the analysis server is not in a ready state.
	ErrServerNotRunning = errors.New("analysis server not running")

	// ErrServerNotInstalled indicates the analysis server binary was not found.
	ErrServerNotInstalled = errors.New("analysis server not installed")

	// ErrServerAlreadyStarted indicates Start was called on an already running server.
	ErrServerAlreadyStarted = errors.New("server already started")

	// ErrInitializeFailed indicates the LSP initialize handshake failed.
	ErrInitializeFailed = errors.New("initialize handshake failed")

	// ErrRequestTimeout indicates the request exceeded its timeout or was cancelled.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrServerCrashed indicates the server process terminated unexpectedly.
	ErrServerCrashed = errors.New("analysis server crashed")

	// ErrInvalidResponse indicates the server response could not be parsed.
	ErrInvalidResponse = errors.New("invalid server response")

	// ErrMethodNotSupported indicates a server-initiated request named a
	// method this client does not implement. The reverse dispatch maps it
	// to a JSON-RPC MethodNotFound reply rather than an internal error.
	ErrMethodNotSupported = errors.New("unsupported server request")

	// ErrNoHoverInfo indicates the server returned an empty hover result.
	//
	// This is the distinguished "no hover info" condition: the request
	// succeeded but the server has nothing to say about the position.
	ErrNoHoverInfo = errors.New("no hover info for position")
)

// RPCError represents an error returned by the analysis server via JSON-RPC.
//
// Error codes follow the JSON-RPC spec plus LSP-specific codes:
//   - -32700: Parse error
//   - -32600: Invalid request
//   - -32601: Method not found
//   - -32602: Invalid params
//   - -32603: Internal error
//   - -32099 to -32000: Server error (reserved)
//   - -32802: Server not initialized
//   - -32801: Unknown error code
//   - -32800: Request cancelled
type RPCError struct {
	// Code is the JSON-RPC error code.
	Code int

	// Message is the error message from the server.
	Message string

	// Data contains optional additional data about the error.
	Data interface{}
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if e.Data != nil {
		return fmt.Sprintf("rpc error %d: %s (data: %v)", e.Code, e.Message, e.Data)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// IsMethodNotFound returns true if the method is not supported by the server.
func (e *RPCError) IsMethodNotFound() bool {
	return e.Code == codeMethodNotFound
}

// IsRequestCancelled returns true if the request was cancelled.
func (e *RPCError) IsRequestCancelled() bool {
	return e.Code == -32800
}

// JSON-RPC error codes used by the engine itself.
const (
	codeMethodNotFound = -32601
	codeInternalError  = -32603
	codeServerError    = -32099
)
