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

// =============================================================================
// SERVER LAUNCHER
// =============================================================================

// BuildLaunchCommand assembles the gopls command line.
//
// Description:
//
//	Produces the argument vector consumed verbatim by the process
//	spawn: binary path, user-supplied extra arguments in order, then
//	the diagnostic log flag. The protocol trace flag is appended only
//	when traceEnabled, since rpc tracing is expensive and opt-in.
//	No spawning happens here.
//
// Inputs:
//
//	serverPath - Resolved gopls binary path
//	extraArgs - User-supplied extra arguments, in order
//	logPath - Diagnostic log file path
//	traceEnabled - Whether debug-level diagnostics are enabled
//
// Outputs:
//
//	[]string - The complete argument vector, argv[0] first
func BuildLaunchCommand(serverPath string, extraArgs []string, logPath string, traceEnabled bool) []string {
	argv := make([]string, 0, len(extraArgs)+4)
	argv = append(argv, serverPath)
	argv = append(argv, extraArgs...)
	argv = append(argv, "-logfile", logPath)
	if traceEnabled {
		argv = append(argv, "-rpc.trace")
	}
	return argv
}
