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
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// =============================================================================
// EXCLUSION SET
// =============================================================================

// ExclusionSet holds path-substring patterns marking directory trees
// where project-root detection must not occur, such as the module cache
// where a go.sum cannot be created.
//
// Description:
//
//	A file path matches if any pattern is a substring of its absolute
//	form. The test is order-independent and evaluated before any
//	filesystem walk.
//
// Thread Safety:
//
//	Read-only after construction; safe for concurrent use.
type ExclusionSet []string

// Matches reports whether absPath falls under any exclusion pattern.
func (e ExclusionSet) Matches(absPath string) bool {
	for _, pattern := range e {
		if pattern != "" && strings.Contains(absPath, pattern) {
			return true
		}
	}
	return false
}

// DefaultExclusions derives the exclusion set from the Go toolchain's
// module cache location.
//
// Description:
//
//	Runs `go env GOMODCACHE` and returns the reported path as the sole
//	exclusion pattern. Query failure is non-fatal: an informational log
//	is emitted and the empty set is returned.
//
// Inputs:
//
//	ctx - Context bounding the toolchain query
//
// Outputs:
//
//	ExclusionSet - Module cache path, or empty on failure
func DefaultExclusions(ctx context.Context) ExclusionSet {
	out, err := exec.CommandContext(ctx, "go", "env", "GOMODCACHE").Output()
	if err != nil {
		slog.Info("Could not query GOMODCACHE; workspace exclusions disabled",
			slog.Any("error", err),
		)
		return ExclusionSet{}
	}

	cache := strings.TrimSpace(string(out))
	if cache == "" {
		return ExclusionSet{}
	}
	return ExclusionSet{cache}
}

// =============================================================================
// WORKSPACE RESOLVER
// =============================================================================

// Resolver resolves the project root for a file.
//
// Description:
//
//	Walks ancestor directories nearest to farthest looking for a
//	project-root marker file, short-circuiting on excluded paths.
//	Pure filesystem walk with no mutable state.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Resolver struct {
	// Markers are the filenames whose presence marks a project root.
	Markers []string

	// Exclusions are path substrings where resolution must not occur.
	Exclusions ExclusionSet
}

// ResolveWorkspace returns the project root for filePath.
//
// Description:
//
//	The file's absolute path is tested against the exclusion set
//	first; a match resolves to none immediately. Otherwise ancestors
//	are walked nearest to farthest, and the first one containing any
//	marker directly inside it (non-recursive check) wins. With no
//	match, strict mode resolves to none while non-strict mode falls
//	back to the file's own directory so the caller always has some
//	working directory.
//
// Inputs:
//
//	filePath - Path of the file being analyzed
//	strict - Whether to fail instead of falling back when no marker is found
//
// Outputs:
//
//	string - The resolved root directory, or "" when ok is false
//	bool - False if the path is excluded, or unresolved under strict mode
func (r *Resolver) ResolveWorkspace(filePath string, strict bool) (string, bool) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	if r.Exclusions.Matches(absPath) {
		return "", false
	}

	for dir := filepath.Dir(absPath); ; dir = filepath.Dir(dir) {
		for _, marker := range r.Markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, true
			}
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}

	if strict {
		return "", false
	}
	return filepath.Dir(absPath), true
}

// ModulePath returns the module path declared by the root's go.mod.
//
// Description:
//
//	Best-effort parse for diagnostics and workspace listings. Returns
//	"" when the go.mod is missing or malformed.
func ModulePath(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return ""
	}
	return modfile.ModulePath(data)
}
