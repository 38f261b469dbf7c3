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

import (
	"reflect"
	"testing"
)

func countFlag(argv []string, flag string) int {
	n := 0
	for _, arg := range argv {
		if arg == flag {
			n++
		}
	}
	return n
}

func TestBuildLaunchCommand_Basic(t *testing.T) {
	argv := BuildLaunchCommand("/usr/bin/gopls", nil, "/tmp/gopls.log", false)

	want := []string{"/usr/bin/gopls", "-logfile", "/tmp/gopls.log"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("argv = %v, want %v", argv, want)
	}
}

func TestBuildLaunchCommand_LogFlagExactlyOnce(t *testing.T) {
	for _, trace := range []bool{true, false} {
		argv := BuildLaunchCommand("gopls", []string{"-remote=auto"}, "/tmp/g.log", trace)
		if n := countFlag(argv, "-logfile"); n != 1 {
			t.Errorf("trace=%v: -logfile appears %d times", trace, n)
		}
	}
}

func TestBuildLaunchCommand_TraceGating(t *testing.T) {
	withTrace := BuildLaunchCommand("gopls", nil, "/tmp/g.log", true)
	if countFlag(withTrace, "-rpc.trace") != 1 {
		t.Error("-rpc.trace missing when tracing enabled")
	}

	withoutTrace := BuildLaunchCommand("gopls", nil, "/tmp/g.log", false)
	if countFlag(withoutTrace, "-rpc.trace") != 0 {
		t.Error("-rpc.trace present when tracing disabled")
	}
}

func TestBuildLaunchCommand_ExtraArgsOrder(t *testing.T) {
	argv := BuildLaunchCommand("gopls", []string{"-remote=auto", "-vv"}, "/tmp/g.log", true)

	want := []string{"gopls", "-remote=auto", "-vv", "-logfile", "/tmp/g.log", "-rpc.trace"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("argv = %v, want %v", argv, want)
	}
}
