// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package adapter manages analysis server lifecycles across language
// families. A Registry maps file kinds to their ServerAdapter; the
// Manager keeps at most one live server per adapter and workspace root,
// spawning lazily and reaping idle servers.
package adapter

import (
	"sort"
	"sync"

	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
)

// =============================================================================
// REGISTRY
// =============================================================================

// Registry maps file kinds to server adapters.
//
// Description:
//
//	Each adapter claims a set of file kinds via SupportedFileKinds.
//	Registration is last-writer-wins per kind, which lets a caller
//	override a built-in adapter with a custom one.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byKind   map[string]engine.ServerAdapter
	adapters []engine.ServerAdapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		byKind: make(map[string]engine.ServerAdapter),
	}
}

// Register adds an adapter for all of its supported file kinds.
func (r *Registry) Register(a engine.ServerAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.adapters = append(r.adapters, a)
	for _, kind := range a.SupportedFileKinds() {
		r.byKind[kind] = a
	}
}

// ForFileKind returns the adapter registered for a file kind.
func (r *Registry) ForFileKind(kind string) (engine.ServerAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byKind[kind]
	return a, ok
}

// FileKinds returns all registered file kinds in sorted order.
func (r *Registry) FileKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.byKind))
	for kind := range r.byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Adapters returns all registered adapters in registration order.
func (r *Registry) Adapters() []engine.ServerAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]engine.ServerAdapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}
