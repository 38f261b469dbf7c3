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
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAssist/pkg/logging"
	"github.com/AleutianAI/AleutianAssist/services/assist"
	"github.com/AleutianAI/AleutianAssist/services/assist/config"
)

// queryService builds a service for a one-shot lookup.
func queryService(ctx context.Context) (*assist.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if logLevel != "" {
		level = logLevel
	}
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(level),
		Service: "assist",
	})
	logger.Install()

	return assist.NewService(ctx, cfg), nil
}

// runDoc prints documentation for a position and exits.
func runDoc(cmd *cobra.Command, args []string) error {
	return runLookup(cmd, func(ctx context.Context, svc *assist.Service, req assist.PositionRequest) (string, error) {
		return svc.Doc(ctx, req)
	})
}

// runType prints the type display for a position and exits.
func runType(cmd *cobra.Command, args []string) error {
	return runLookup(cmd, func(ctx context.Context, svc *assist.Service, req assist.PositionRequest) (string, error) {
		return svc.TypeOf(ctx, req)
	})
}

func runLookup(cmd *cobra.Command, lookup func(context.Context, *assist.Service, assist.PositionRequest) (string, error)) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := queryService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Shutdown(shutdownCtx)
	}()

	result, err := lookup(ctx, svc, assist.PositionRequest{
		FilePath: queryFile,
		Line:     queryLine,
		Column:   queryColumn,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

// runWorkspace prints the resolved project root and exits.
func runWorkspace(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := queryService(ctx)
	if err != nil {
		return err
	}

	root, modulePath, ok := svc.Workspace(assist.WorkspaceRequest{
		FilePath: queryFile,
		Strict:   strictRoot,
	})
	if !ok {
		return fmt.Errorf("no workspace found for %s", queryFile)
	}

	if modulePath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", root, modulePath)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), root)
	}
	return nil
}
