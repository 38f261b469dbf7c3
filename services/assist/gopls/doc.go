// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package gopls adapts the generic analysis engine to the gopls
// language server.
//
// The adapter owns everything Go-specific: locating the gopls binary
// (user override first, bundled fallback second), resolving which
// project a file belongs to while refusing to treat the module cache
// as a workspace, assembling the launch command line, negotiating
// settings and capabilities, and turning structured hover payloads
// into documentation and type answers.
//
// Typical wiring:
//
//	a := gopls.New(ctx, gopls.Options{BinaryPath: cfg.GoplsBinaryPath})
//	if !a.Eligible() {
//		// no gopls on this machine; do not offer Go support
//	}
//	registry.Register(a)
package gopls
