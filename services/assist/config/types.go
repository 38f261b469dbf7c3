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
	"github.com/AleutianAI/AleutianAssist/services/assist/gopls"
)

type AssistConfig struct {
	// Server: HTTP listen surface
	Server ServerConfig `yaml:"server"`

	// Logging: process log level and optional file output
	Logging LoggingConfig `yaml:"logging"`

	// Gopls: binary discovery, launch arguments, and workspace exclusions
	Gopls GoplsConfig `yaml:"gopls"`

	// Manager: server lifecycle timeouts
	Manager ManagerTimeouts `yaml:"manager"`
}

type ServerConfig struct {
	Host string `yaml:"host"` // e.g. 127.0.0.1
	Port int    `yaml:"port"` // e.g. 8384
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // empty disables file logging
}

type GoplsConfig struct {
	// BinaryPath overrides gopls discovery; empty falls back to the
	// bundled binary next to the executable. A bare name (no path
	// separator) is resolved via PATH.
	BinaryPath string `yaml:"binary_path"`

	// Args are extra gopls command-line arguments.
	Args []string `yaml:"args"`

	// ExcludedWorkspacePaths overrides the GOMODCACHE-derived exclusion
	// list. Nil means derive at startup.
	ExcludedWorkspacePaths []string `yaml:"excluded_workspace_paths"`

	// Settings is the gopls configuration pushed at the handshake and
	// served on configuration pulls.
	Settings *gopls.Settings `yaml:"settings"`
}

type ManagerTimeouts struct {
	IdleTimeoutMinutes    int  `yaml:"idle_timeout_minutes"`
	StartupTimeoutSeconds int  `yaml:"startup_timeout_seconds"`
	RequestTimeoutSeconds int  `yaml:"request_timeout_seconds"`
	StrictResolution      bool `yaml:"strict_resolution"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() AssistConfig {
	return AssistConfig{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8384,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Gopls: GoplsConfig{
			Args:     []string{},
			Settings: gopls.DefaultSettings(),
		},
		Manager: ManagerTimeouts{
			IdleTimeoutMinutes:    10,
			StartupTimeoutSeconds: 30,
			RequestTimeoutSeconds: 10,
		},
	}
}
