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
// SETTINGS
// =============================================================================

// HoverKindStructured is the hover verbosity mode required by the
// documentation and type introspectors: gopls delivers the hover value
// as machine-decodable JSON fields instead of pre-rendered text.
const HoverKindStructured = "Structured"

// InlayHints holds the per-feature inlay hint toggles recognized by
// gopls.
type InlayHints struct {
	AssignVariableTypes    bool `json:"assignVariableTypes" yaml:"assign_variable_types"`
	CompositeLiteralFields bool `json:"compositeLiteralFields" yaml:"composite_literal_fields"`
	CompositeLiteralTypes  bool `json:"compositeLiteralTypes" yaml:"composite_literal_types"`
	ConstantValues         bool `json:"constantValues" yaml:"constant_values"`
	FunctionTypeParameters bool `json:"functionTypeParameters" yaml:"function_type_parameters"`
	ParameterNames         bool `json:"parameterNames" yaml:"parameter_names"`
	RangeVariableTypes     bool `json:"rangeVariableTypes" yaml:"range_variable_types"`
}

// Settings is the gopls configuration surface.
//
// Description:
//
//	A single process-wide instance is shared by reference across all
//	workspaces the server manages. Runtime updates replace the whole
//	object atomically rather than mutating fields in place, so a
//	concurrent configuration pull never observes a torn update.
type Settings struct {
	HoverKind      string     `json:"hoverKind" yaml:"hover_kind"`
	Hints          InlayHints `json:"hints" yaml:"hints"`
	SemanticTokens bool       `json:"semanticTokens" yaml:"semantic_tokens"`
}

// DefaultSettings returns the fixed baseline configuration.
//
// Description:
//
//	Structured hover mode, all inlay hint categories enabled, and
//	semantic tokens enabled. Seeds the initialize handshake and is the
//	object later replaced by runtime configuration changes.
func DefaultSettings() *Settings {
	return &Settings{
		HoverKind: HoverKindStructured,
		Hints: InlayHints{
			AssignVariableTypes:    true,
			CompositeLiteralFields: true,
			CompositeLiteralTypes:  true,
			ConstantValues:         true,
			FunctionTypeParameters: true,
			ParameterNames:         true,
			RangeVariableTypes:     true,
		},
		SemanticTokens: true,
	}
}
