// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
)

// =============================================================================
// MANAGER CONFIG
// =============================================================================

// ManagerConfig configures the server manager.
type ManagerConfig struct {
	// IdleTimeout is how long a server can be idle before being shut down.
	// Set to 0 to disable idle shutdown.
	IdleTimeout time.Duration

	// StartupTimeout is the maximum time to wait for a server to start.
	StartupTimeout time.Duration

	// RequestTimeout is the default timeout for analysis requests.
	RequestTimeout time.Duration

	// StrictResolution makes workspace resolution fail instead of
	// falling back to the file's directory when no root marker is found.
	StrictResolution bool
}

// DefaultManagerConfig returns sensible defaults for the manager.
//
// Description:
//
//	Returns a configuration with:
//	  - IdleTimeout: 10 minutes
//	  - StartupTimeout: 30 seconds
//	  - RequestTimeout: 10 seconds
//	  - StrictResolution: false
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		IdleTimeout:    10 * time.Minute,
		StartupTimeout: 30 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager manages analysis server instances across language families.
//
// Description:
//
//	Provides lazy startup of servers as needed, with idle timeout and
//	graceful shutdown. Each adapter has at most one server instance per
//	resolved workspace root.
//
// Thread Safety:
//
//	Safe for concurrent use.
type Manager struct {
	config   ManagerConfig
	registry *Registry

	servers   map[string]*engine.Server
	serversMu sync.RWMutex
	startMu   sync.Map // server key -> *sync.Mutex for startup serialization

	stopped  chan struct{}
	stopOnce sync.Once
}

// NewManager creates a new server manager.
//
// Inputs:
//
//	registry - Adapter registry (must not be nil)
//	config - Manager configuration
//
// Outputs:
//
//	*Manager - The configured manager
func NewManager(registry *Registry, config ManagerConfig) *Manager {
	return &Manager{
		config:   config,
		registry: registry,
		servers:  make(map[string]*engine.Server),
		stopped:  make(chan struct{}),
	}
}

// serverKey identifies a server by adapter name and workspace root.
func serverKey(serverName, rootPath string) string {
	return serverName + "|" + rootPath
}

// ServerFor returns a ready server for the given file, starting one if
// needed.
//
// Description:
//
//	Resolves the file's workspace through the adapter registered for
//	the file kind, then returns the server for that workspace. Uses
//	double-check locking so only one server is started per workspace
//	even under concurrent requests.
//
// Inputs:
//
//	ctx - Context for cancellation and startup timeout
//	fileKind - The file kind (e.g., "go")
//	filePath - Absolute path of the file being analyzed
//
// Outputs:
//
//	*engine.Server - The ready server
//	error - Non-nil if the kind is unsupported, the workspace cannot be
//	        resolved under strict resolution, or the server failed to start
//
// Errors:
//
//	ErrUnsupportedFileKind - No adapter for the file kind
//	ErrNoWorkspace - Strict resolution found no project root
//	engine.ErrServerNotInstalled - Server binary not found
//	engine.ErrInitializeFailed - Server initialization failed
//
// Thread Safety:
//
//	Safe for concurrent use.
func (m *Manager) ServerFor(ctx context.Context, fileKind, filePath string) (*engine.Server, error) {
	if ctx == nil {
		return nil, fmt.Errorf("ctx must not be nil")
	}

	select {
	case <-m.stopped:
		return nil, ErrManagerStopped
	default:
	}

	a, ok := m.registry.ForFileKind(fileKind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileKind, fileKind)
	}

	rootPath, ok := a.ResolveWorkspace(filePath, m.config.StrictResolution)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoWorkspace, filePath)
	}

	key := serverKey(a.ServerName(), rootPath)

	// Fast path: check if already running
	m.serversMu.RLock()
	server, running := m.servers[key]
	m.serversMu.RUnlock()

	if running && server.State() == engine.ServerStateReady {
		return server, nil
	}

	// Get per-workspace startup lock
	lockI, _ := m.startMu.LoadOrStore(key, &sync.Mutex{})
	lock := lockI.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	// Double-check after acquiring lock
	m.serversMu.RLock()
	server, running = m.servers[key]
	m.serversMu.RUnlock()

	if running && server.State() == engine.ServerStateReady {
		return server, nil
	}

	// Clean up dead server if exists
	if running && server.State() == engine.ServerStateStopped {
		m.serversMu.Lock()
		delete(m.servers, key)
		m.serversMu.Unlock()
	}

	server = engine.NewServer(a, rootPath)

	// Apply startup timeout
	startCtx := ctx
	if m.config.StartupTimeout > 0 {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithTimeout(ctx, m.config.StartupTimeout)
		defer cancel()
	}

	if err := server.Start(startCtx); err != nil {
		return nil, err
	}

	m.serversMu.Lock()
	m.servers[key] = server
	m.serversMu.Unlock()

	return server, nil
}

// Get returns the server for an adapter and workspace root if one is
// running and ready. Does not start a new server.
func (m *Manager) Get(serverName, rootPath string) *engine.Server {
	m.serversMu.RLock()
	defer m.serversMu.RUnlock()

	server, ok := m.servers[serverKey(serverName, rootPath)]
	if ok && server.State() == engine.ServerStateReady {
		return server
	}
	return nil
}

// Shutdown shuts down the server for an adapter and workspace root.
//
// Description:
//
//	Gracefully shuts down the matching server. No-op if no server is
//	running for the key.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (m *Manager) Shutdown(ctx context.Context, serverName, rootPath string) error {
	key := serverKey(serverName, rootPath)

	m.serversMu.Lock()
	server, ok := m.servers[key]
	if ok {
		delete(m.servers, key)
	}
	m.serversMu.Unlock()

	if !ok {
		return nil
	}

	return server.Shutdown(ctx)
}

// ShutdownAll shuts down all servers and stops the manager.
//
// Description:
//
//	Gracefully shuts down all running servers. After this call,
//	ServerFor will return ErrManagerStopped.
//
// Outputs:
//
//	error - Non-nil if any shutdown encountered errors (last error returned)
//
// Thread Safety:
//
//	Safe for concurrent use. Multiple calls are idempotent.
func (m *Manager) ShutdownAll(ctx context.Context) error {
	m.stopOnce.Do(func() {
		close(m.stopped)
	})

	m.serversMu.Lock()
	servers := make(map[string]*engine.Server)
	for key, srv := range m.servers {
		servers[key] = srv
	}
	m.servers = make(map[string]*engine.Server)
	m.serversMu.Unlock()

	var lastErr error
	for _, server := range servers {
		if err := server.Shutdown(ctx); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// IsAvailable checks if an analysis server is available for a file kind.
//
// Description:
//
//	Checks if the kind has a registered adapter and that adapter's
//	server binary is installed. Does not start the server.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (m *Manager) IsAvailable(fileKind string) bool {
	a, ok := m.registry.ForFileKind(fileKind)
	return ok && a.Eligible()
}

// RunningServers returns the keys of servers in the ready state.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (m *Manager) RunningServers() []string {
	m.serversMu.RLock()
	defer m.serversMu.RUnlock()

	keys := make([]string, 0, len(m.servers))
	for key, srv := range m.servers {
		if srv.State() == engine.ServerStateReady {
			keys = append(keys, key)
		}
	}
	return keys
}

// Config returns the manager configuration.
func (m *Manager) Config() ManagerConfig {
	return m.config
}

// Registry returns the adapter registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// =============================================================================
// IDLE MONITOR
// =============================================================================

// StartIdleMonitor starts the idle server cleanup goroutine.
//
// Description:
//
//	Starts a background goroutine that periodically checks for idle
//	servers and shuts them down. The check interval is half the idle
//	timeout. Does nothing if IdleTimeout is 0.
//
// Thread Safety:
//
//	Safe for concurrent use. Multiple calls start multiple monitors
//	(not recommended).
func (m *Manager) StartIdleMonitor() {
	if m.config.IdleTimeout <= 0 {
		return
	}

	go func() {
		// Check at half the idle timeout interval
		interval := m.config.IdleTimeout / 2
		if interval < time.Second {
			interval = time.Second
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-m.stopped:
				return
			case <-ticker.C:
				m.shutdownIdle()
			}
		}
	}()
}

// shutdownIdle shuts down servers that have been idle too long.
func (m *Manager) shutdownIdle() {
	m.serversMu.RLock()
	var toShutdown []*engine.Server
	var keys []string
	for key, srv := range m.servers {
		if srv.State() == engine.ServerStateReady && time.Since(srv.LastUsed()) > m.config.IdleTimeout {
			toShutdown = append(toShutdown, srv)
			keys = append(keys, key)
		}
	}
	m.serversMu.RUnlock()

	ctx := context.Background()
	for i, srv := range toShutdown {
		slog.Info("Shutting down idle analysis server",
			slog.String("server", srv.Adapter().ServerName()),
			slog.String("root_path", srv.RootPath()),
			slog.Duration("idle_timeout", m.config.IdleTimeout),
		)
		m.serversMu.Lock()
		delete(m.servers, keys[i])
		m.serversMu.Unlock()
		_ = srv.Shutdown(ctx)
	}
}
