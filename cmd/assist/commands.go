// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string

	// serve flags
	listenAddr string

	// query flags
	queryFile   string
	queryLine   int
	queryColumn int
	strictRoot  bool

	rootCmd = &cobra.Command{
		Use:   "assist",
		Short: "A code intelligence sidecar that fronts gopls for editors",
		Long: `Assist runs gopls behind a small HTTP API, exposing hover
documentation, type lookup, and workspace resolution to editor
integrations without each of them speaking LSP.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the assist HTTP service",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	docCmd = &cobra.Command{
		Use:   "doc",
		Short: "Print documentation for the symbol at a position",
		RunE:  runDoc, // Defined in cmd_query.go
	}

	typeCmd = &cobra.Command{
		Use:   "type",
		Short: "Print the type of the symbol at a position",
		RunE:  runType, // Defined in cmd_query.go
	}

	workspaceCmd = &cobra.Command{
		Use:   "workspace",
		Short: "Print the project root a file belongs to",
		RunE:  runWorkspace, // Defined in cmd_query.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.aleutian/assist.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address override (host:port)")

	for _, cmd := range []*cobra.Command{docCmd, typeCmd} {
		cmd.Flags().StringVar(&queryFile, "file", "", "file path (required)")
		cmd.Flags().IntVar(&queryLine, "line", 0, "1-based line number (required)")
		cmd.Flags().IntVar(&queryColumn, "column", 0, "1-based column number (required)")
		_ = cmd.MarkFlagRequired("file")
		_ = cmd.MarkFlagRequired("line")
		_ = cmd.MarkFlagRequired("column")
	}

	workspaceCmd.Flags().StringVar(&queryFile, "file", "", "file path (required)")
	workspaceCmd.Flags().BoolVar(&strictRoot, "strict", false, "fail instead of falling back to the file's directory")
	_ = workspaceCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, docCmd, typeCmd, workspaceCmd)
}
