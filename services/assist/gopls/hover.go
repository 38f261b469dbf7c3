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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianAssist/services/assist/engine"
)

// =============================================================================
// HOVER INTROSPECTOR
// =============================================================================

// HoverClient is the slice of the engine the introspectors consume.
// Satisfied by *engine.Server.
type HoverClient interface {
	Hover(ctx context.Context, filePath string, pos engine.Position) (*engine.HoverResult, error)
}

// structuredHover is the payload gopls embeds in the hover value under
// Structured hover mode.
type structuredHover struct {
	Signature         string `json:"signature"`
	FullDocumentation string `json:"fullDocumentation"`
	SingleLine        string `json:"singleLine"`
	SymbolName        string `json:"symbolName"`
}

// GetDocumentation returns the full documentation for the symbol at a
// position.
//
// Description:
//
//	Issues a hover query through the engine, decodes the structured
//	payload, and concatenates the signature and full documentation
//	fields, trimmed of surrounding whitespace.
//
//	Requires the negotiated hover mode to be Structured; a different
//	mode indicates an internal negotiation bug and panics.
//
// Inputs:
//
//	ctx - Context for cancellation and timeout
//	srv - The ready gopls server
//	filePath - Absolute path of the open document
//	pos - Zero-indexed cursor position
//
// Outputs:
//
//	string - Signature and documentation, newline-joined and trimmed
//	error - ErrNoDocumentation on the distinguished no-hover condition;
//	        engine errors pass through unchanged
//
// Thread Safety:
//
//	Safe for concurrent use. Read-only and idempotent for a stable
//	document state.
func (a *Adapter) GetDocumentation(ctx context.Context, srv HoverClient, filePath string, pos engine.Position) (string, error) {
	a.mustBeStructured()

	hover, err := srv.Hover(ctx, filePath, pos)
	if err != nil {
		if errors.Is(err, engine.ErrNoHoverInfo) {
			return "", ErrNoDocumentation
		}
		return "", err
	}

	payload, err := decodeStructuredHover(hover.Contents.Value)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(payload.Signature + "\n" + payload.FullDocumentation), nil
}

// GetType returns a single-line type display for the symbol at a
// position.
//
// Description:
//
//	Same hover query as GetDocumentation, returning only the signature
//	field. The distinguished no-hover condition becomes ErrUnknownType.
//
// Thread Safety:
//
//	Safe for concurrent use.
func (a *Adapter) GetType(ctx context.Context, srv HoverClient, filePath string, pos engine.Position) (string, error) {
	a.mustBeStructured()

	hover, err := srv.Hover(ctx, filePath, pos)
	if err != nil {
		if errors.Is(err, engine.ErrNoHoverInfo) {
			return "", ErrUnknownType
		}
		return "", err
	}

	payload, err := decodeStructuredHover(hover.Contents.Value)
	if err != nil {
		return "", err
	}

	return payload.Signature, nil
}

// mustBeStructured asserts the negotiated hover mode.
//
// A non-Structured mode here means the handshake and the introspectors
// disagree about the payload format, which is a programming error, not
// a user one.
func (a *Adapter) mustBeStructured() {
	if kind := a.settings.Load().HoverKind; kind != HoverKindStructured {
		panic(fmt.Sprintf("hover introspection requires %s hover mode, negotiated %q", HoverKindStructured, kind))
	}
}

// decodeStructuredHover parses the JSON payload gopls embeds in the
// hover value.
func decodeStructuredHover(value string) (*structuredHover, error) {
	var payload structuredHover
	if err := json.Unmarshal([]byte(value), &payload); err != nil {
		return nil, fmt.Errorf("%w: structured hover payload: %v", engine.ErrInvalidResponse, err)
	}
	return &payload, nil
}
