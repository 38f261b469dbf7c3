// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assist

// =============================================================================
// REQUEST TYPES
// =============================================================================

// PositionRequest identifies a cursor position in a document.
//
// Line and Column are 1-based as editors present them; they are
// converted to the wire protocol's 0-based form internally.
type PositionRequest struct {
	// FilePath is the absolute path of the file.
	FilePath string `json:"file_path" binding:"required"`

	// Line is the 1-based line number.
	Line int `json:"line" binding:"required,min=1"`

	// Column is the 1-based column number.
	Column int `json:"column" binding:"required,min=1"`

	// Contents optionally carries the document text as the editor sees
	// it (unsaved buffers). Empty means read from disk.
	Contents string `json:"contents,omitempty"`

	// FileKind is the language tag; defaults to "go".
	FileKind string `json:"file_kind,omitempty"`
}

// WorkspaceRequest asks which project root a file belongs to.
type WorkspaceRequest struct {
	FilePath string `json:"file_path" binding:"required"`
	FileKind string `json:"file_kind,omitempty"`

	// Strict disables the fallback to the file's own directory.
	Strict bool `json:"strict,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// DocResponse carries hover documentation.
type DocResponse struct {
	Documentation string `json:"documentation"`
	RequestID     string `json:"request_id"`
}

// TypeResponse carries a single-line type display.
type TypeResponse struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id"`
}

// WorkspaceResponse carries a resolved project root.
type WorkspaceResponse struct {
	Root string `json:"root"`

	// ModulePath is the go.mod module path at Root, when parseable.
	ModulePath string `json:"module_path,omitempty"`

	RequestID string `json:"request_id"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ReadyResponse reports readiness and dependency state.
type ReadyResponse struct {
	Ready          bool     `json:"ready"`
	GoplsInstalled bool     `json:"gopls_installed"`
	GoplsPath      string   `json:"gopls_path,omitempty"`
	RunningServers []string `json:"running_servers"`
}
