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
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// =============================================================================
// EXECUTABLE LOCATOR
// =============================================================================

// DefaultFallbackPath returns the bundled gopls location tried when the
// user supplies no binary path, or the supplied path is unusable.
//
// Description:
//
//	Resolves to <dir of this executable>/third_party/go/bin/gopls so a
//	packaged install can ship its own server. Callers may still end up
//	on a PATH lookup: LocateServer treats a bare "gopls" candidate as a
//	PATH search.
func DefaultFallbackPath() string {
	name := "gopls"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	self, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(self), "third_party", "go", "bin", name)
}

// LocateServer resolves the gopls binary path.
//
// Description:
//
//	Tries the user-specified path first; if it is empty or unusable,
//	tries the fallback path. A candidate containing no path separator
//	is searched on PATH. Absence is reported as (path="", ok=false)
//	with an informational log, never as an error.
//
// Inputs:
//
//	userPath - User-configured binary path override (may be empty)
//	fallback - Bundled fallback path tried second
//
// Outputs:
//
//	string - The resolved executable path, or "" if none is usable
//	bool - True if a usable binary was found
//
// Thread Safety:
//
//	Safe for concurrent use.
func LocateServer(userPath, fallback string) (string, bool) {
	for _, candidate := range []string{userPath, fallback} {
		if candidate == "" {
			continue
		}
		if resolved, ok := resolveExecutable(candidate); ok {
			return resolved, true
		}
	}

	slog.Info("No gopls executable found",
		slog.String("user_path", userPath),
		slog.String("fallback_path", fallback),
	)
	return "", false
}

// resolveExecutable checks a single candidate for usability.
func resolveExecutable(candidate string) (string, bool) {
	// Bare names go through PATH lookup
	if !strings.ContainsRune(candidate, os.PathSeparator) {
		resolved, err := exec.LookPath(candidate)
		if err != nil {
			return "", false
		}
		return resolved, true
	}

	if isExecutableFile(candidate) {
		return candidate, true
	}
	return "", false
}

// isExecutableFile reports whether path is a regular file with an
// execute bit set (any file on Windows, which has no such bit).
func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
