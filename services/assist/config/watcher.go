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
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration when the file changes on disk.
//
// # Description
//
// Detects edits to the config file (including editors that replace the
// file via rename) and invokes the callback with the freshly loaded
// configuration. A reload that fails to parse is logged and skipped,
// keeping the last good configuration in effect.
//
// # Thread Safety
//
// Safe for concurrent use. Start should only be called once.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload func(*AssistConfig)
}

// NewWatcher creates a watcher for the config file.
//
// # Inputs
//
//   - path: Config file path ("" means DefaultPath()).
//   - onReload: Invoked with each successfully reloaded config.
//
// # Outputs
//
//   - *Watcher: Ready-to-start watcher.
//   - error: Non-nil if watcher creation fails.
func NewWatcher(path string, onReload func(*AssistConfig)) (*Watcher, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:     path,
		watcher:  watcher,
		onReload: onReload,
	}, nil
}

// Start begins watching for config changes.
//
// # Description
//
// Watches the config file's directory so atomic-replace saves are
// still observed. Blocks until the context is cancelled. Should be run
// in a goroutine.
//
// # Example
//
//	w, _ := config.NewWatcher("", func(cfg *config.AssistConfig) {
//		adapter.ReplaceSettings(cfg.Gopls.Settings)
//	})
//	go w.Start(ctx)
func (w *Watcher) Start(ctx context.Context) {
	defer w.watcher.Close()

	// Watch the directory: editors often rename over the file, which
	// drops a watch registered on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		slog.Warn("Failed to watch config directory",
			"path", w.path,
			"error", err)
		return
	}

	slog.Debug("Started watching config file",
		"path", w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error",
				"error", err)

		case <-ctx.Done():
			slog.Debug("Config watcher stopping")
			return
		}
	}
}

// handleEvent processes a single fsnotify event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	cfg, err := Load(w.path)
	if err != nil {
		slog.Warn("Ignoring config reload after parse failure",
			"path", w.path,
			"error", err)
		return
	}

	slog.Info("Config reloaded",
		"path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
