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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all assist routes with the router.
//
// Description:
//
//	Registers all /v1/assist/* endpoints with the given Gin router
//	group. The router group should already have any required
//	middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/assist/doc - Hover documentation at a position
//	POST /v1/assist/type - Type display at a position
//	POST /v1/assist/workspace - Project root for a file
//	GET  /v1/assist/health - Health check
//	GET  /v1/assist/ready - Readiness check
//
// Example:
//
//	service := assist.NewService(ctx, cfg)
//	handlers := assist.NewHandlers(service)
//
//	v1 := router.Group("/v1")
//	assist.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	group := rg.Group("/assist")
	{
		// Lookup operations
		group.POST("/doc", handlers.HandleDoc)
		group.POST("/type", handlers.HandleType)
		group.POST("/workspace", handlers.HandleWorkspace)

		// Health checks
		group.GET("/health", handlers.HandleHealth)
		group.GET("/ready", handlers.HandleReady)
	}
}
