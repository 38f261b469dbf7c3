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

import "errors"

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrUnsupportedFileKind indicates no registered adapter handles the
	// requested file kind.
	ErrUnsupportedFileKind = errors.New("unsupported file kind")

	// ErrManagerStopped indicates the manager has been shut down and can
	// no longer spawn servers.
	ErrManagerStopped = errors.New("manager is stopped")

	// ErrNoWorkspace indicates no project root could be resolved for the
	// file under strict resolution.
	ErrNoWorkspace = errors.New("no workspace for file")
)
