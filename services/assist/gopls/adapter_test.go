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
	"testing"

	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
)

// newInstalledAdapter builds an adapter backed by a fake gopls binary.
func newInstalledAdapter(t *testing.T, args ...string) *Adapter {
	t.Helper()
	bin := fakeBinary(t, t.TempDir(), "gopls", 0o755)
	return New(context.Background(), Options{
		BinaryPath:             bin,
		Args:                   args,
		ExcludedWorkspacePaths: []string{},
	})
}

// newIneligibleAdapter builds an adapter with no usable binary.
func newIneligibleAdapter(t *testing.T) *Adapter {
	t.Helper()
	return New(context.Background(), Options{
		BinaryPath:             "/nonexistent/gopls",
		FallbackPath:           "/also/nonexistent/gopls",
		ExcludedWorkspacePaths: []string{},
	})
}

func TestAdapter_Identity(t *testing.T) {
	a := newInstalledAdapter(t)

	if a.ServerName() != "gopls" {
		t.Errorf("ServerName = %q", a.ServerName())
	}
	if a.LanguageID() != "go" {
		t.Errorf("LanguageID = %q", a.LanguageID())
	}
	if kinds := a.SupportedFileKinds(); len(kinds) != 1 || kinds[0] != "go" {
		t.Errorf("SupportedFileKinds = %v", kinds)
	}
	if markers := a.ProjectRootMarkers(); len(markers) != 1 || markers[0] != "go.mod" {
		t.Errorf("ProjectRootMarkers = %v", markers)
	}
}

func TestAdapter_Eligibility(t *testing.T) {
	if !newInstalledAdapter(t).Eligible() {
		t.Error("adapter with usable binary should be eligible")
	}
	if newIneligibleAdapter(t).Eligible() {
		t.Error("adapter without binary should be ineligible")
	}
}

func TestAdapter_LaunchCommand(t *testing.T) {
	a := newInstalledAdapter(t, "-remote=auto")

	argv := a.LaunchCommand("/tmp/diag.log")
	if len(argv) < 4 {
		t.Fatalf("argv too short: %v", argv)
	}
	if argv[0] != a.ServerPath() {
		t.Errorf("argv[0] = %q, want %q", argv[0], a.ServerPath())
	}
	if argv[1] != "-remote=auto" {
		t.Errorf("argv[1] = %q", argv[1])
	}
	if countFlag(argv, "-logfile") != 1 {
		t.Errorf("expected -logfile exactly once: %v", argv)
	}
}

func TestAdapter_LaunchCommand_NotInstalled(t *testing.T) {
	if argv := newIneligibleAdapter(t).LaunchCommand("/tmp/diag.log"); argv != nil {
		t.Errorf("expected nil argv, got %v", argv)
	}
}

func TestAdapter_ExtraCapabilities(t *testing.T) {
	caps := newInstalledAdapter(t).ExtraCapabilities()
	if !caps.Workspace.Configuration {
		t.Error("workspace.configuration capability not advertised")
	}
}

func TestAdapter_ConfigurationResponse_CountAndIdentity(t *testing.T) {
	a := newInstalledAdapter(t)

	items := []engine.ConfigurationItem{
		{ScopeURI: "file:///a", Section: "gopls"},
		{ScopeURI: "file:///b", Section: "gopls"},
		{ScopeURI: "file:///c", Section: "gopls"},
	}
	sections := a.ConfigurationResponse(items)

	if len(sections) != len(items) {
		t.Fatalf("got %d sections for %d items", len(sections), len(items))
	}

	// Every element must be the same shared settings object
	first, ok := sections[0].(*Settings)
	if !ok {
		t.Fatalf("section type %T", sections[0])
	}
	for i, s := range sections {
		if s.(*Settings) != first {
			t.Errorf("section %d is not the shared settings object", i)
		}
	}
	if first != a.Settings() {
		t.Error("sections do not reference the adapter's live settings")
	}
}

func TestAdapter_ConfigurationResponse_Empty(t *testing.T) {
	if sections := newInstalledAdapter(t).ConfigurationResponse(nil); len(sections) != 0 {
		t.Errorf("expected empty response, got %v", sections)
	}
}

func TestAdapter_ReplaceSettings(t *testing.T) {
	a := newInstalledAdapter(t)

	next := DefaultSettings()
	next.SemanticTokens = false
	a.ReplaceSettings(next)

	if a.Settings() != next {
		t.Error("settings not replaced")
	}
	if got := a.ConfigurationResponse([]engine.ConfigurationItem{{}})[0].(*Settings); got != next {
		t.Error("configuration pull not reflecting replaced settings")
	}

	a.ReplaceSettings(nil)
	if a.Settings() != next {
		t.Error("nil replacement must be a no-op")
	}
}

func TestAdapter_InitializationOptions(t *testing.T) {
	a := newInstalledAdapter(t)

	opts, ok := a.InitializationOptions().(*Settings)
	if !ok {
		t.Fatalf("options type %T", a.InitializationOptions())
	}
	if opts.HoverKind != HoverKindStructured {
		t.Errorf("HoverKind = %q", opts.HoverKind)
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.HoverKind != HoverKindStructured {
		t.Errorf("HoverKind = %q", s.HoverKind)
	}
	if !s.SemanticTokens {
		t.Error("semantic tokens should default on")
	}
	hints := []bool{
		s.Hints.AssignVariableTypes,
		s.Hints.CompositeLiteralFields,
		s.Hints.CompositeLiteralTypes,
		s.Hints.ConstantValues,
		s.Hints.FunctionTypeParameters,
		s.Hints.ParameterNames,
		s.Hints.RangeVariableTypes,
	}
	for i, on := range hints {
		if !on {
			t.Errorf("hint %d should default on", i)
		}
	}
}

func TestAdapter_ResolveWorkspace_UsesExclusions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root+"/go.mod", "module x\n")
	file := root + "/main.go"
	writeFile(t, file, "package main\n")

	a := New(context.Background(), Options{
		BinaryPath:             "/nonexistent",
		FallbackPath:           "/nonexistent",
		ExcludedWorkspacePaths: []string{root},
	})

	if _, ok := a.ResolveWorkspace(file, false); ok {
		t.Error("excluded workspace resolved")
	}
}
