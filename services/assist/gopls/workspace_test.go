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
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExclusionSet_Matches(t *testing.T) {
	set := ExclusionSet{"/go/pkg/mod", "/readonly"}

	cases := []struct {
		path string
		want bool
	}{
		{"/home/user/go/pkg/mod/github.com/x/y.go", true},
		{"/readonly/cache/a.go", true},
		{"/home/user/project/main.go", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := set.Matches(tc.path); got != tc.want {
			t.Errorf("Matches(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestExclusionSet_EmptyPatternNeverMatches(t *testing.T) {
	set := ExclusionSet{""}
	if set.Matches("/any/path/at/all.go") {
		t.Error("empty pattern must not match everything")
	}
}

func TestResolveWorkspace_Excluded(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module excluded\n")
	file := filepath.Join(root, "pkg", "a.go")
	writeFile(t, file, "package pkg\n")

	r := &Resolver{
		Markers:    []string{"go.mod"},
		Exclusions: ExclusionSet{root},
	}

	// Exclusion short-circuits even though a marker exists, in both modes
	for _, strict := range []bool{true, false} {
		if _, ok := r.ResolveWorkspace(file, strict); ok {
			t.Errorf("excluded path resolved (strict=%v)", strict)
		}
	}
}

func TestResolveWorkspace_NearestMarkerWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module outer\n")
	nested := filepath.Join(root, "tools", "gen")
	writeFile(t, filepath.Join(nested, "go.mod"), "module inner\n")
	file := filepath.Join(nested, "cmd", "main.go")
	writeFile(t, file, "package main\n")

	r := &Resolver{Markers: []string{"go.mod"}}

	for _, strict := range []bool{true, false} {
		got, ok := r.ResolveWorkspace(file, strict)
		if !ok {
			t.Fatalf("unresolved (strict=%v)", strict)
		}
		if got != nested {
			t.Errorf("strict=%v: resolved %q, want nearest %q", strict, got, nested)
		}
	}
}

func TestResolveWorkspace_MarkerInFileDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module here\n")
	file := filepath.Join(root, "main.go")
	writeFile(t, file, "package main\n")

	r := &Resolver{Markers: []string{"go.mod"}}
	got, ok := r.ResolveWorkspace(file, true)
	if !ok || got != root {
		t.Errorf("resolved (%q, %v), want (%q, true)", got, ok, root)
	}
}

func TestResolveWorkspace_NoMarker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "loose")
	file := filepath.Join(dir, "snippet.go")
	writeFile(t, file, "package loose\n")

	r := &Resolver{Markers: []string{"definitely-not-present.marker"}}

	if _, ok := r.ResolveWorkspace(file, true); ok {
		t.Error("strict mode must not resolve without a marker")
	}

	got, ok := r.ResolveWorkspace(file, false)
	if !ok {
		t.Fatal("non-strict mode must fall back")
	}
	if got != dir {
		t.Errorf("fallback = %q, want file's directory %q", got, dir)
	}
}

func TestResolveWorkspace_MultipleMarkers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.work"), "go 1.25\n")
	file := filepath.Join(root, "svc", "main.go")
	writeFile(t, file, "package main\n")

	r := &Resolver{Markers: []string{"go.mod", "go.work"}}
	got, ok := r.ResolveWorkspace(file, true)
	if !ok || got != root {
		t.Errorf("resolved (%q, %v), want (%q, true)", got, ok, root)
	}
}

func TestModulePath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "go.mod"), "module github.com/example/widget\n\ngo 1.25\n")

	if got := ModulePath(root); got != "github.com/example/widget" {
		t.Errorf("ModulePath = %q", got)
	}

	if got := ModulePath(filepath.Join(root, "nope")); got != "" {
		t.Errorf("ModulePath for missing go.mod = %q, want empty", got)
	}
}
