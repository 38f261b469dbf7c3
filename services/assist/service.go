// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package assist exposes editor-facing code intelligence (documentation,
// type lookup, workspace resolution) over HTTP, backed by gopls through
// the generic analysis engine.
package assist

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/AleutianAssist/services/assist/adapter"
	"github.com/AleutianAI/AleutianAssist/services/assist/config"
	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
	"github.com/AleutianAI/AleutianAssist/services/assist/gopls"
)

// ServiceVersion is the assist service version.
const ServiceVersion = "0.1.0"

// Service wires the gopls adapter, the server manager, and the request
// plumbing together.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Service struct {
	gopls          *gopls.Adapter
	manager        *adapter.Manager
	requestTimeout time.Duration
}

// NewService builds the service from configuration.
//
// Description:
//
//	Constructs the gopls adapter (locating the binary and deriving
//	workspace exclusions), registers it, and creates the server
//	manager with the configured timeouts. The idle monitor is started
//	here; ShutdownAll stops it.
//
// Inputs:
//
//	ctx - Context bounding adapter construction (GOMODCACHE query)
//	cfg - Loaded service configuration
//
// Outputs:
//
//	*Service - The wired service
func NewService(ctx context.Context, cfg *config.AssistConfig) *Service {
	a := gopls.New(ctx, gopls.Options{
		BinaryPath:             cfg.Gopls.BinaryPath,
		Args:                   cfg.Gopls.Args,
		ExcludedWorkspacePaths: cfg.Gopls.ExcludedWorkspacePaths,
	})
	if cfg.Gopls.Settings != nil {
		a.ReplaceSettings(cfg.Gopls.Settings)
	}

	registry := adapter.NewRegistry()
	registry.Register(a)

	managerCfg := adapter.ManagerConfig{
		IdleTimeout:      time.Duration(cfg.Manager.IdleTimeoutMinutes) * time.Minute,
		StartupTimeout:   time.Duration(cfg.Manager.StartupTimeoutSeconds) * time.Second,
		RequestTimeout:   time.Duration(cfg.Manager.RequestTimeoutSeconds) * time.Second,
		StrictResolution: cfg.Manager.StrictResolution,
	}

	manager := adapter.NewManager(registry, managerCfg)
	manager.StartIdleMonitor()

	return &Service{
		gopls:          a,
		manager:        manager,
		requestTimeout: managerCfg.RequestTimeout,
	}
}

// Adapter returns the gopls adapter, primarily for runtime settings
// replacement on config reload.
func (s *Service) Adapter() *gopls.Adapter { return s.gopls }

// Manager returns the server manager.
func (s *Service) Manager() *adapter.Manager { return s.manager }

// fileKindOrDefault normalizes an optional request file kind.
func fileKindOrDefault(kind string) string {
	if kind == "" {
		return "go"
	}
	return kind
}

// prepare resolves a ready server for the request and opens the
// document on it.
func (s *Service) prepare(ctx context.Context, fileKind, filePath, contents string) (*engine.Server, error) {
	srv, err := s.manager.ServerFor(ctx, fileKindOrDefault(fileKind), filePath)
	if err != nil {
		return nil, err
	}

	if contents == "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		contents = string(data)
	}

	if err := srv.OpenDocument(filePath, contents); err != nil {
		return nil, err
	}
	return srv, nil
}

// requestContext applies the configured request timeout.
func (s *Service) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

// Doc returns hover documentation for a position.
//
// Description:
//
//	Resolves the file's workspace, ensures a ready gopls for it, opens
//	the document, and asks the adapter for documentation.
//
// Outputs:
//
//	string - Signature and documentation text
//	error - gopls.ErrNoDocumentation when the position has none;
//	        manager and engine errors otherwise
func (s *Service) Doc(ctx context.Context, req PositionRequest) (string, error) {
	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	srv, err := s.prepare(ctx, req.FileKind, req.FilePath, req.Contents)
	if err != nil {
		return "", err
	}
	return s.gopls.GetDocumentation(ctx, srv, req.FilePath, toEnginePosition(req))
}

// TypeOf returns a single-line type display for a position.
//
// Outputs:
//
//	string - The signature text
//	error - gopls.ErrUnknownType when the position has no type info
func (s *Service) TypeOf(ctx context.Context, req PositionRequest) (string, error) {
	ctx, cancel := s.requestContext(ctx)
	defer cancel()

	srv, err := s.prepare(ctx, req.FileKind, req.FilePath, req.Contents)
	if err != nil {
		return "", err
	}
	return s.gopls.GetType(ctx, srv, req.FilePath, toEnginePosition(req))
}

// Workspace resolves the project root for a file without starting a
// server.
//
// Outputs:
//
//	root - The resolved directory, "" when not found
//	modulePath - The go.mod module path at root, best-effort
//	ok - False when excluded or unresolved under strict mode
func (s *Service) Workspace(req WorkspaceRequest) (root, modulePath string, ok bool) {
	root, ok = s.gopls.ResolveWorkspace(req.FilePath, req.Strict)
	if !ok {
		return "", "", false
	}
	return root, gopls.ModulePath(root), true
}

// Eligible reports whether a usable gopls binary was located.
func (s *Service) Eligible() bool { return s.gopls.Eligible() }

// ApplyConfig applies a reloaded configuration at runtime.
//
// Only the gopls settings are hot-swappable; binary path, exclusions,
// and timeouts take effect on restart.
func (s *Service) ApplyConfig(cfg *config.AssistConfig) {
	if cfg == nil {
		return
	}
	s.gopls.ReplaceSettings(cfg.Gopls.Settings)
}

// Shutdown stops all managed servers.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.manager.ShutdownAll(ctx)
}

// toEnginePosition converts the API's 1-based position to the wire
// protocol's 0-based form.
func toEnginePosition(req PositionRequest) engine.Position {
	return engine.Position{
		Line:      req.Line - 1,
		Character: req.Column - 1,
	}
}
