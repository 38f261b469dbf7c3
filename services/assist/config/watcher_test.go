// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWatcher_ReloadOnWrite verifies a file edit triggers the callback.
func TestWatcher_ReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8384\n"), 0o644))

	reloaded := make(chan *AssistConfig, 1)
	w, err := NewWatcher(path, func(cfg *AssistConfig) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher time to register before writing
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 9001, cfg.Server.Port)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback not invoked")
	}
}

// TestWatcher_IgnoresMalformedEdit verifies a bad edit is skipped.
func TestWatcher_IgnoresMalformedEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8384\n"), 0o644))

	reloaded := make(chan *AssistConfig, 4)
	w, err := NewWatcher(path, func(cfg *AssistConfig) { reloaded <- cfg })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("server: [broken\n"), 0o644))

	select {
	case cfg := <-reloaded:
		t.Fatalf("malformed edit triggered reload: %+v", cfg)
	case <-time.After(time.Second):
		// expected: no callback for a malformed file
	}
}

// TestWatcher_OtherFilesIgnored verifies sibling files don't trigger.
func TestWatcher_OtherFilesIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8384\n"), 0o644))

	reloaded := make(chan *AssistConfig, 4)
	w, err := NewWatcher(path, func(cfg *AssistConfig) { reloaded <- cfg })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("sibling file edit triggered reload")
	case <-time.After(time.Second):
	}
}
