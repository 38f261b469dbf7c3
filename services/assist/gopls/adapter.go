// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gopls

import (
	"context"
	"sync/atomic"

	"github.com/AleutianAI/AleutianAssist/pkg/logging"
	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the gopls adapter at construction time.
type Options struct {
	// BinaryPath is the user-supplied gopls binary path override.
	BinaryPath string

	// FallbackPath overrides the bundled fallback location. Empty means
	// DefaultFallbackPath().
	FallbackPath string

	// Args are extra gopls command-line arguments, passed through in order.
	Args []string

	// ExcludedWorkspacePaths overrides the exclusion set entirely. Nil
	// means derive from `go env GOMODCACHE`.
	ExcludedWorkspacePaths []string
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter binds the analysis engine to gopls.
//
// Description:
//
//	Implements engine.ServerAdapter: locates the gopls binary once at
//	construction, resolves per-file workspaces with module cache
//	exclusion, assembles the launch command line, and negotiates
//	settings with the server, including answering server-initiated
//	configuration pulls.
//
// Thread Safety:
//
//	Safe for concurrent use. Settings are replaced atomically, never
//	mutated in place.
type Adapter struct {
	serverPath string
	installed  bool
	extraArgs  []string
	resolver   *Resolver

	settings atomic.Pointer[Settings]
}

// Adapter must satisfy the engine contract.
var _ engine.ServerAdapter = (*Adapter)(nil)

// New constructs the gopls adapter.
//
// Description:
//
//	Runs the executable locator once and builds the workspace resolver.
//	Exclusions come from opts.ExcludedWorkspacePaths when set, else
//	from a best-effort GOMODCACHE query. An adapter for a missing
//	binary is still returned, it just reports Eligible() == false.
//
// Inputs:
//
//	ctx - Context bounding the GOMODCACHE query
//	opts - Construction options
//
// Outputs:
//
//	*Adapter - The configured adapter
func New(ctx context.Context, opts Options) *Adapter {
	fallback := opts.FallbackPath
	if fallback == "" {
		fallback = DefaultFallbackPath()
	}
	serverPath, installed := LocateServer(opts.BinaryPath, fallback)

	var exclusions ExclusionSet
	if opts.ExcludedWorkspacePaths != nil {
		exclusions = ExclusionSet(opts.ExcludedWorkspacePaths)
	} else {
		exclusions = DefaultExclusions(ctx)
	}

	a := &Adapter{
		serverPath: serverPath,
		installed:  installed,
		extraArgs:  append([]string{}, opts.Args...),
		resolver: &Resolver{
			Markers:    []string{"go.mod"},
			Exclusions: exclusions,
		},
	}
	a.settings.Store(DefaultSettings())
	return a
}

// ServerName returns the analysis server's identity.
func (a *Adapter) ServerName() string { return "gopls" }

// LanguageID returns the LSP language identifier.
func (a *Adapter) LanguageID() string { return "go" }

// SupportedFileKinds returns the file kinds this adapter handles.
func (a *Adapter) SupportedFileKinds() []string { return []string{"go"} }

// ProjectRootMarkers returns the filenames marking a project root.
//
// Without LSP workspace folders, gopls relies on the rootUri to detect
// a project, so the module manifest is the sole marker.
func (a *Adapter) ProjectRootMarkers() []string { return []string{"go.mod"} }

// Eligible reports whether a usable gopls binary was located.
func (a *Adapter) Eligible() bool { return a.installed }

// ServerPath returns the resolved gopls binary path, or "" when not
// installed.
func (a *Adapter) ServerPath() string { return a.serverPath }

// LaunchCommand assembles the gopls argument vector.
//
// Description:
//
//	Delegates to BuildLaunchCommand with the resolved binary, the
//	user's extra arguments, and the engine-provided diagnostic log
//	path. Protocol tracing follows the process log level: enabled only
//	at debug or finer. Returns nil when no binary was located.
func (a *Adapter) LaunchCommand(logPath string) []string {
	if !a.installed {
		return nil
	}
	return BuildLaunchCommand(a.serverPath, a.extraArgs, logPath, logging.DebugEnabled())
}

// ResolveWorkspace resolves the project root for a file.
func (a *Adapter) ResolveWorkspace(filePath string, strict bool) (string, bool) {
	return a.resolver.ResolveWorkspace(filePath, strict)
}

// InitializationOptions returns the settings sent with the initialize
// handshake.
func (a *Adapter) InitializationOptions() interface{} {
	return a.settings.Load()
}

// ExtraCapabilities declares support for server-initiated configuration
// pull.
func (a *Adapter) ExtraCapabilities() engine.ClientCapabilities {
	return engine.ClientCapabilities{
		Workspace: engine.WorkspaceClientCapabilities{Configuration: true},
	}
}

// ConfigurationResponse answers a workspace/configuration pull.
//
// Description:
//
//	gopls requests settings once per open project, but the adapter
//	keeps a single global settings object, so every requested item
//	receives the same instance. Count and order match the request
//	exactly; anything else breaks response correlation.
func (a *Adapter) ConfigurationResponse(items []engine.ConfigurationItem) []interface{} {
	settings := a.settings.Load()
	sections := make([]interface{}, 0, len(items))
	for range items {
		sections = append(sections, settings)
	}
	return sections
}

// Settings returns the current settings object.
func (a *Adapter) Settings() *Settings {
	return a.settings.Load()
}

// ReplaceSettings atomically swaps in a new settings object.
//
// Description:
//
//	Runtime configuration updates go through here rather than mutating
//	fields, so a concurrent configuration pull never observes a torn
//	update. No-op on nil.
func (a *Adapter) ReplaceSettings(s *Settings) {
	if s == nil {
		return
	}
	a.settings.Store(s)
}
