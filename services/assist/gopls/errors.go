// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package gopls

import "errors"

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

// User-facing lookup failures. The messages are fixed display strings
// shown verbatim to editor clients, hence the sentence casing.
var (
	// ErrNoDocumentation indicates the server had no hover documentation
	// for the requested position.
	ErrNoDocumentation = errors.New("No documentation available.")

	// ErrUnknownType indicates the server could not determine a type for
	// the requested position.
	ErrUnknownType = errors.New("Unknown type.")
)
