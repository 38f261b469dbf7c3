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
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
)

// fakeHoverClient returns a canned hover result or error and counts calls.
type fakeHoverClient struct {
	result *engine.HoverResult
	err    error
	calls  int
}

func (f *fakeHoverClient) Hover(ctx context.Context, filePath string, pos engine.Position) (*engine.HoverResult, error) {
	f.calls++
	return f.result, f.err
}

func structuredResult(t *testing.T, payload structuredHover) *engine.HoverResult {
	t.Helper()
	value, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return &engine.HoverResult{
		Contents: engine.HoverContents{Kind: "markdown", Value: string(value)},
	}
}

func TestGetDocumentation(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{result: structuredResult(t, structuredHover{
		Signature:         "func F() error",
		FullDocumentation: "Does X.",
	})}

	got, err := a.GetDocumentation(context.Background(), client, "/tmp/x.go", engine.Position{Line: 3, Character: 8})
	if err != nil {
		t.Fatalf("GetDocumentation: %v", err)
	}
	if got != "func F() error\nDoes X." {
		t.Errorf("GetDocumentation = %q", got)
	}
	if client.calls != 1 {
		t.Errorf("hover called %d times, want 1", client.calls)
	}
}

func TestGetDocumentation_TrimsWhitespace(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{result: structuredResult(t, structuredHover{
		Signature:         "var x int",
		FullDocumentation: "\n",
	})}

	got, err := a.GetDocumentation(context.Background(), client, "/tmp/x.go", engine.Position{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "var x int" {
		t.Errorf("GetDocumentation = %q", got)
	}
}

func TestGetDocumentation_NoHoverInfo(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{err: engine.ErrNoHoverInfo}

	_, err := a.GetDocumentation(context.Background(), client, "/tmp/x.go", engine.Position{})
	if !errors.Is(err, ErrNoDocumentation) {
		t.Errorf("expected ErrNoDocumentation, got %v", err)
	}
	if err.Error() != "No documentation available." {
		t.Errorf("message = %q", err.Error())
	}
	if client.calls != 1 {
		t.Errorf("hover called %d times, want exactly 1", client.calls)
	}
}

func TestGetDocumentation_EngineErrorPassthrough(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{err: engine.ErrRequestTimeout}

	_, err := a.GetDocumentation(context.Background(), client, "/tmp/x.go", engine.Position{})
	if !errors.Is(err, engine.ErrRequestTimeout) {
		t.Errorf("expected timeout passthrough, got %v", err)
	}
}

func TestGetType(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{result: structuredResult(t, structuredHover{
		Signature:         "func F() error",
		FullDocumentation: "Does X.",
	})}

	got, err := a.GetType(context.Background(), client, "/tmp/x.go", engine.Position{})
	if err != nil {
		t.Fatalf("GetType: %v", err)
	}
	if got != "func F() error" {
		t.Errorf("GetType = %q", got)
	}
}

func TestGetType_NoHoverInfo(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{err: engine.ErrNoHoverInfo}

	_, err := a.GetType(context.Background(), client, "/tmp/x.go", engine.Position{})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
	if err.Error() != "Unknown type." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestHover_MalformedStructuredPayload(t *testing.T) {
	a := newInstalledAdapter(t)
	client := &fakeHoverClient{result: &engine.HoverResult{
		Contents: engine.HoverContents{Kind: "markdown", Value: "not json"},
	}}

	if _, err := a.GetDocumentation(context.Background(), client, "/tmp/x.go", engine.Position{}); !errors.Is(err, engine.ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestHover_PanicsOnNonStructuredMode(t *testing.T) {
	a := newInstalledAdapter(t)
	s := DefaultSettings()
	s.HoverKind = "FullDocumentation"
	a.ReplaceSettings(s)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic for non-structured hover mode")
		}
		if msg, ok := r.(string); !ok || !strings.Contains(msg, "Structured") {
			t.Errorf("panic value = %v", r)
		}
	}()

	// Must panic before the hover query is issued
	_, _ = a.GetDocumentation(context.Background(), &fakeHoverClient{}, "/tmp/x.go", engine.Position{})
}
