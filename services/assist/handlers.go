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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianAssist/services/assist/adapter"
	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
	"github.com/AleutianAI/AleutianAssist/services/assist/gopls"
)

// Handlers contains the HTTP handlers for the assist service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleDoc handles POST /v1/assist/doc.
//
// Description:
//
//	Returns hover documentation for the symbol at a cursor position.
//
// Request Body:
//
//	PositionRequest
//
// Response:
//
//	200 OK: DocResponse
//	400 Bad Request: Validation error or unsupported file kind
//	404 Not Found: No documentation at the position, or no workspace
//	503 Service Unavailable: gopls not installed
//	504 Gateway Timeout: Analysis request timed out
func (h *Handlers) HandleDoc(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleDoc")

	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	doc, err := h.svc.Doc(c.Request.Context(), req)
	if err != nil {
		h.writeLookupError(c, logger, err, "DOC_FAILED")
		return
	}

	c.JSON(http.StatusOK, DocResponse{
		Documentation: doc,
		RequestID:     requestID,
	})
}

// HandleType handles POST /v1/assist/type.
//
// Description:
//
//	Returns a single-line type display for the symbol at a cursor
//	position.
//
// Request Body:
//
//	PositionRequest
//
// Response:
//
//	200 OK: TypeResponse
//	400 Bad Request: Validation error or unsupported file kind
//	404 Not Found: No type info at the position, or no workspace
//	503 Service Unavailable: gopls not installed
//	504 Gateway Timeout: Analysis request timed out
func (h *Handlers) HandleType(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleType")

	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	typ, err := h.svc.TypeOf(c.Request.Context(), req)
	if err != nil {
		h.writeLookupError(c, logger, err, "TYPE_FAILED")
		return
	}

	c.JSON(http.StatusOK, TypeResponse{
		Type:      typ,
		RequestID: requestID,
	})
}

// HandleWorkspace handles POST /v1/assist/workspace.
//
// Description:
//
//	Resolves the project root a file belongs to. Never starts a
//	server.
//
// Request Body:
//
//	WorkspaceRequest
//
// Response:
//
//	200 OK: WorkspaceResponse
//	400 Bad Request: Validation error
//	404 Not Found: Path excluded or unresolved in strict mode
func (h *Handlers) HandleWorkspace(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleWorkspace")

	var req WorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	root, modulePath, ok := h.svc.Workspace(req)
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No workspace found for file",
			Code:  "NO_WORKSPACE",
		})
		return
	}

	logger.Debug("Workspace resolved", "root", root, "module", modulePath)

	c.JSON(http.StatusOK, WorkspaceResponse{
		Root:       root,
		ModulePath: modulePath,
		RequestID:  requestID,
	})
}

// HandleHealth handles GET /v1/assist/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/assist/ready.
//
// Description:
//
//	Returns readiness including whether a usable gopls binary exists.
//	A missing binary reports 503 so orchestration doesn't route
//	traffic to an instance that can't answer.
//
// Response:
//
//	200 OK: ReadyResponse (Ready=true)
//	503 Service Unavailable: ReadyResponse (Ready=false)
func (h *Handlers) HandleReady(c *gin.Context) {
	eligible := h.svc.Eligible()

	resp := ReadyResponse{
		Ready:          eligible,
		GoplsInstalled: eligible,
		GoplsPath:      h.svc.Adapter().ServerPath(),
		RunningServers: h.svc.Manager().RunningServers(),
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// writeLookupError maps lookup failures to HTTP responses.
//
// The fixed user-facing messages for missing hover data cross the API
// verbatim, matching what editor clients display.
func (h *Handlers) writeLookupError(c *gin.Context, logger *slog.Logger, err error, fallbackCode string) {
	statusCode := http.StatusInternalServerError
	errCode := fallbackCode

	switch {
	case errors.Is(err, gopls.ErrNoDocumentation):
		statusCode = http.StatusNotFound
		errCode = "NO_DOCUMENTATION"
	case errors.Is(err, gopls.ErrUnknownType):
		statusCode = http.StatusNotFound
		errCode = "UNKNOWN_TYPE"
	case errors.Is(err, adapter.ErrNoWorkspace):
		statusCode = http.StatusNotFound
		errCode = "NO_WORKSPACE"
	case errors.Is(err, adapter.ErrUnsupportedFileKind):
		statusCode = http.StatusBadRequest
		errCode = "UNSUPPORTED_FILE_KIND"
	case errors.Is(err, engine.ErrServerNotInstalled):
		statusCode = http.StatusServiceUnavailable
		errCode = "SERVER_NOT_INSTALLED"
	case errors.Is(err, engine.ErrRequestTimeout):
		statusCode = http.StatusGatewayTimeout
		errCode = "REQUEST_TIMEOUT"
	case errors.Is(err, adapter.ErrManagerStopped):
		statusCode = http.StatusServiceUnavailable
		errCode = "SHUTTING_DOWN"
	}

	if statusCode >= http.StatusInternalServerError {
		logger.Error("Lookup failed", "error", err)
	} else {
		logger.Debug("Lookup returned no result", "error", err)
	}

	c.JSON(statusCode, ErrorResponse{
		Error: err.Error(),
		Code:  errCode,
	})
}

// getOrCreateRequestID returns the inbound request ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
