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

import "encoding/json"

// =============================================================================
// POSITION & DOCUMENT TYPES
// =============================================================================

// Position represents a position in a text document.
// Line and character are 0-indexed per LSP specification.
type Position struct {
	// Line is the 0-indexed line number.
	Line int `json:"line"`

	// Character is the 0-indexed character offset within the line.
	Character int `json:"character"`
}

// Range represents a range in a text document.
type Range struct {
	// Start is the inclusive start position.
	Start Position `json:"start"`

	// End is the exclusive end position.
	End Position `json:"end"`
}

// TextDocumentIdentifier identifies a text document by URI.
type TextDocumentIdentifier struct {
	// URI is the document's URI (file:// scheme).
	URI string `json:"uri"`
}

// TextDocumentItem represents a text document with its content.
type TextDocumentItem struct {
	// URI is the document's URI.
	URI string `json:"uri"`

	// LanguageID is the language identifier (e.g., "go").
	LanguageID string `json:"languageId"`

	// Version is the version number of this document.
	Version int `json:"version"`

	// Text is the full document content.
	Text string `json:"text"`
}

// TextDocumentPositionParams is the common parameter shape for
// position-based requests such as textDocument/hover.
type TextDocumentPositionParams struct {
	// TextDocument identifies the document.
	TextDocument TextDocumentIdentifier `json:"textDocument"`

	// Position is the cursor position within the document.
	Position Position `json:"position"`
}

// DidOpenTextDocumentParams are the parameters for textDocument/didOpen.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// DidCloseTextDocumentParams are the parameters for textDocument/didClose.
type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// =============================================================================
// INITIALIZE HANDSHAKE TYPES
// =============================================================================

// InitializeParams are the parameters for the initialize request.
type InitializeParams struct {
	ProcessID             int                `json:"processId"`
	RootURI               string             `json:"rootUri,omitempty"`
	RootPath              string             `json:"rootPath,omitempty"`
	Capabilities          ClientCapabilities `json:"capabilities"`
	InitializationOptions interface{}        `json:"initializationOptions,omitempty"`
	WorkspaceFolders      []WorkspaceFolder  `json:"workspaceFolders,omitempty"`
}

// WorkspaceFolder identifies an open workspace root.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ClientCapabilities describes what this client supports.
//
// Workspace.Configuration is the capability the adapter layer cares
// about: it tells the server it may pull settings with
// workspace/configuration requests.
type ClientCapabilities struct {
	TextDocument TextDocumentClientCapabilities `json:"textDocument"`
	Workspace    WorkspaceClientCapabilities    `json:"workspace"`
}

// TextDocumentClientCapabilities describes text-document capabilities.
type TextDocumentClientCapabilities struct {
	Synchronization *TextDocumentSyncClientCapabilities `json:"synchronization,omitempty"`
	Hover           *HoverClientCapabilities            `json:"hover,omitempty"`
}

// TextDocumentSyncClientCapabilities describes sync capabilities.
type TextDocumentSyncClientCapabilities struct {
	DidSave bool `json:"didSave"`
}

// HoverClientCapabilities describes hover capabilities.
type HoverClientCapabilities struct {
	ContentFormat []string `json:"contentFormat,omitempty"`
}

// WorkspaceClientCapabilities describes workspace capabilities.
type WorkspaceClientCapabilities struct {
	// Configuration advertises support for server-initiated
	// workspace/configuration pull requests.
	Configuration bool `json:"configuration,omitempty"`
}

// InitializeResult is the server's response to initialize.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo identifies the server implementation.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapabilities is the subset of server capabilities the engine
// inspects. Everything else is carried opaquely.
type ServerCapabilities struct {
	HoverProvider    json.RawMessage `json:"hoverProvider,omitempty"`
	TextDocumentSync json.RawMessage `json:"textDocumentSync,omitempty"`
}

// HasHoverProvider returns true if the server advertises hover support.
// The capability may be a bare bool or an options object.
func (c ServerCapabilities) HasHoverProvider() bool {
	if len(c.HoverProvider) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(c.HoverProvider, &b); err == nil {
		return b
	}
	// An options object counts as supported
	return c.HoverProvider[0] == '{'
}

// =============================================================================
// HOVER TYPES
// =============================================================================

// HoverResult is the server's response to textDocument/hover.
type HoverResult struct {
	// Contents holds the hover payload.
	Contents HoverContents `json:"contents"`

	// Range is the range this hover applies to (optional).
	Range *Range `json:"range,omitempty"`
}

// HoverContents is a MarkupContent value.
//
// With gopls in structured hover mode, Value carries a JSON document
// with signature and documentation fields; the adapter layer decodes it.
type HoverContents struct {
	// Kind is the content format ("plaintext" or "markdown").
	Kind string `json:"kind"`

	// Value is the hover text.
	Value string `json:"value"`
}

// =============================================================================
// SERVER-INITIATED REQUEST TYPES
// =============================================================================

// ConfigurationParams are the parameters of a server-initiated
// workspace/configuration request.
type ConfigurationParams struct {
	Items []ConfigurationItem `json:"items"`
}

// ConfigurationItem asks for settings for one scope/section. Servers
// such as gopls send one item per open project root.
type ConfigurationItem struct {
	// ScopeURI is the workspace the settings apply to (optional).
	ScopeURI string `json:"scopeUri,omitempty"`

	// Section is the settings section name (optional).
	Section string `json:"section,omitempty"`
}
