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

// ServerAdapter is the per-language capability set the engine composes
// with. Each language family provides one implementation describing how
// to find, launch, and negotiate with its analysis server. The engine
// owns transport, framing, correlation, and process lifecycle; the
// adapter owns everything language-specific.
//
// Implementations must be safe for concurrent use: the engine calls
// ConfigurationResponse from its read loop while other goroutines may
// be replacing settings.
type ServerAdapter interface {
	// ServerName returns the analysis server's identity (e.g. "gopls").
	ServerName() string

	// LanguageID returns the LSP language identifier (e.g. "go").
	LanguageID() string

	// SupportedFileKinds returns the language tags this adapter serves.
	SupportedFileKinds() []string

	// ProjectRootMarkers returns filenames whose presence marks a
	// project root, in priority order.
	ProjectRootMarkers() []string

	// Eligible reports whether a usable server binary exists. A false
	// result means this language should not be offered at all; it is
	// not an error.
	Eligible() bool

	// LaunchCommand assembles the full argv for spawning the server,
	// directing its diagnostics to logPath. The engine passes the
	// result verbatim to the process spawn. Returns nil when no usable
	// binary is available.
	LaunchCommand(logPath string) []string

	// ResolveWorkspace maps a file path to its project root. In strict
	// mode an unresolvable file yields ("", false); otherwise the
	// file's parent directory is returned as a best-effort fallback.
	ResolveWorkspace(filePath string, strict bool) (string, bool)

	// InitializationOptions returns the settings payload sent in the
	// initialize handshake.
	InitializationOptions() interface{}

	// ExtraCapabilities returns capabilities to merge into the
	// engine's baseline client capabilities.
	ExtraCapabilities() ClientCapabilities

	// ConfigurationResponse answers a server-initiated
	// workspace/configuration pull: one entry per requested item, in
	// request order.
	ConfigurationResponse(items []ConfigurationItem) []interface{}
}
