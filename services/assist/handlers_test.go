// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAssist/services/assist/config"
)

func init() {
	// Set Gin to test mode to reduce noise
	gin.SetMode(gin.TestMode)
}

// newTestService builds a service with no usable gopls binary and no
// toolchain-derived exclusions.
func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Gopls.BinaryPath = filepath.Join(t.TempDir(), "missing-gopls")
	cfg.Gopls.ExcludedWorkspacePaths = []string{}
	svc := NewService(context.Background(), &cfg)
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	return svc
}

func setupTestRouter(svc *Service) *gin.Engine {
	router := gin.New()
	handlers := NewHandlers(svc)
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlers_HandleHealth(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	req, _ := http.NewRequest("GET", "/v1/assist/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", resp.Status)
	}
	if resp.Version != ServiceVersion {
		t.Errorf("expected version %q, got %q", ServiceVersion, resp.Version)
	}
}

func TestHandlers_HandleReady_NotInstalled(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	req, _ := http.NewRequest("GET", "/v1/assist/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var resp ReadyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Ready || resp.GoplsInstalled {
		t.Errorf("expected not ready without a gopls binary: %+v", resp)
	}
}

func TestHandlers_HandleReady_Installed(t *testing.T) {
	bin := filepath.Join(t.TempDir(), "gopls")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Gopls.BinaryPath = bin
	cfg.Gopls.ExcludedWorkspacePaths = []string{}
	svc := NewService(context.Background(), &cfg)
	t.Cleanup(func() { _ = svc.Shutdown(context.Background()) })
	router := setupTestRouter(svc)

	req, _ := http.NewRequest("GET", "/v1/assist/ready", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp ReadyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if !resp.Ready || resp.GoplsPath != bin {
		t.Errorf("unexpected readiness: %+v", resp)
	}
}

func TestHandlers_HandleDoc_InvalidBody(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	w := postJSON(t, router, "/v1/assist/doc", map[string]interface{}{
		"line": 1,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "INVALID_REQUEST" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestHandlers_HandleDoc_ServerNotInstalled(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	if err := os.WriteFile(file, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/v1/assist/doc", PositionRequest{
		FilePath: file,
		Line:     1,
		Column:   1,
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d: %s", http.StatusServiceUnavailable, w.Code, w.Body.String())
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "SERVER_NOT_INSTALLED" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestHandlers_HandleType_UnsupportedFileKind(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	w := postJSON(t, router, "/v1/assist/type", PositionRequest{
		FilePath: "/tmp/x.py",
		FileKind: "python",
		Line:     1,
		Column:   1,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "UNSUPPORTED_FILE_KIND" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestHandlers_HandleWorkspace(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/demo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(root, "cmd", "main.go")
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/v1/assist/workspace", WorkspaceRequest{FilePath: file})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp WorkspaceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Root != root {
		t.Errorf("root = %q, want %q", resp.Root, root)
	}
	if resp.ModulePath != "example.com/demo" {
		t.Errorf("module path = %q", resp.ModulePath)
	}
}

func TestHandlers_HandleWorkspace_StrictNotFound(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	dir := t.TempDir()
	file := filepath.Join(dir, "orphan.go")
	if err := os.WriteFile(file, []byte("package orphan\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/v1/assist/workspace", WorkspaceRequest{
		FilePath: file,
		Strict:   true,
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "NO_WORKSPACE" {
		t.Errorf("error code = %q", resp.Code)
	}
}

func TestHandlers_HandleWorkspace_NonStrictFallback(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	dir := t.TempDir()
	file := filepath.Join(dir, "orphan.go")
	if err := os.WriteFile(file, []byte("package orphan\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w := postJSON(t, router, "/v1/assist/workspace", WorkspaceRequest{FilePath: file})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp WorkspaceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Root != dir {
		t.Errorf("root = %q, want fallback %q", resp.Root, dir)
	}
	if resp.ModulePath != "" {
		t.Errorf("module path = %q, want empty", resp.ModulePath)
	}
}

func TestHandlers_RequestIDEcho(t *testing.T) {
	router := setupTestRouter(newTestService(t))

	req, _ := http.NewRequest("GET", "/v1/assist/health", nil)
	req.Header.Set("X-Request-ID", "test-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Health doesn't mint IDs, so use a POST that does
	dir := t.TempDir()
	file := filepath.Join(dir, "a.go")
	if err := os.WriteFile(file, []byte("package a\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(WorkspaceRequest{FilePath: file})
	req2, _ := http.NewRequest("POST", "/v1/assist/workspace", bytes.NewReader(data))
	req2.Header.Set("X-Request-ID", "test-id-123")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)

	if got := w2.Header().Get("X-Request-ID"); got != "test-id-123" {
		t.Errorf("X-Request-ID = %q, want echo of inbound id", got)
	}

	var resp WorkspaceResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequestID != "test-id-123" {
		t.Errorf("RequestID = %q", resp.RequestID)
	}
}
