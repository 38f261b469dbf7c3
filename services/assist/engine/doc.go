// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine is the generic LSP client engine for Aleutian Assist.
//
// The engine owns everything language-independent about talking to an
// external analysis server: JSON-RPC message framing (Content-Length
// headers), request/response correlation, the initialize handshake,
// subprocess stdio piping, and graceful shutdown. Language-specific
// knowledge -- which binary to run, how to build its command line,
// which settings to negotiate, how to interpret hover payloads -- is
// supplied by a ServerAdapter implementation.
//
// # Components
//
//   - Protocol: JSON-RPC 2.0 over stdin/stdout, both request
//     directions (client-to-server calls and server-initiated pulls
//     such as workspace/configuration)
//   - Server: one analysis server process bound to one workspace root
//   - ServerAdapter: the per-language capability set the engine
//     composes with
//
// # Thread Safety
//
// All exported types are safe for concurrent use after construction.
//
// # Example
//
//	srv := engine.NewServer(adapter, "/path/to/project")
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
//
//	hover, err := srv.Hover(ctx, "/path/to/project/main.go", engine.Position{Line: 9, Character: 4})
package engine
