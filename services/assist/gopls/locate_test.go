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
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeBinary creates a file in dir with the given mode and returns its path.
func fakeBinary(t *testing.T, dir, name string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLocateServer_UserPathFirst(t *testing.T) {
	dir := t.TempDir()
	userBin := fakeBinary(t, dir, "user-gopls", 0o755)
	fallbackBin := fakeBinary(t, dir, "fallback-gopls", 0o755)

	got, ok := LocateServer(userBin, fallbackBin)
	if !ok || got != userBin {
		t.Errorf("LocateServer = (%q, %v), want (%q, true)", got, ok, userBin)
	}
}

func TestLocateServer_FallbackWhenUserPathUnusable(t *testing.T) {
	dir := t.TempDir()
	fallbackBin := fakeBinary(t, dir, "gopls", 0o755)

	got, ok := LocateServer(filepath.Join(dir, "missing"), fallbackBin)
	if !ok || got != fallbackBin {
		t.Errorf("LocateServer = (%q, %v), want (%q, true)", got, ok, fallbackBin)
	}
}

func TestLocateServer_NonExecutableRejected(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no execute bit on windows")
	}
	dir := t.TempDir()
	plain := fakeBinary(t, dir, "gopls", 0o644)

	if _, ok := LocateServer(plain, ""); ok {
		t.Error("non-executable file accepted")
	}
}

func TestLocateServer_Absent(t *testing.T) {
	dir := t.TempDir()

	got, ok := LocateServer(filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	if ok || got != "" {
		t.Errorf("LocateServer = (%q, %v), want (\"\", false)", got, ok)
	}

	if _, ok := LocateServer("", ""); ok {
		t.Error("empty candidates accepted")
	}
}

func TestLocateServer_PathLookup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH semantics differ on windows")
	}
	dir := t.TempDir()
	fakeBinary(t, dir, "fake-gopls", 0o755)
	t.Setenv("PATH", dir)

	got, ok := LocateServer("fake-gopls", "")
	if !ok || got != filepath.Join(dir, "fake-gopls") {
		t.Errorf("LocateServer = (%q, %v)", got, ok)
	}
}
