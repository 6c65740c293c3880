// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the deadlock service.
//
// This file contains request and response types for the chat endpoint and the
// shared validator instance used across the package.
package datatypes

import (
	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/gridlock/pkg/validation"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxMessageContentBytes is the maximum size of a chat message. Checked
	// in bytes, not runes, to bound memory regardless of encoding.
	MaxMessageContentBytes = 32 * 1024 // 32KB
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// apiValidate is the validator instance for request datatypes.
// Initialized in init() with custom validators.
var apiValidate *validator.Validate

func init() {
	apiValidate = validator.New()

	_ = apiValidate.RegisterValidation("maxbytes", validateMaxBytes)
	_ = apiValidate.RegisterValidation("resname", validateResourceName)
}

// validateMaxBytes rejects string fields larger than MaxMessageContentBytes.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxMessageContentBytes
}

// validateResourceName applies the shared process/resource naming rules.
func validateResourceName(fl validator.FieldLevel) bool {
	return validation.ValidateName(fl.Field().String()) == nil
}

// =============================================================================
// Chat Request Types
// =============================================================================

// ChatRequest represents the body for the system-state chat endpoint.
//
// # Description
//
// ChatRequest carries the user's question about the current allocation state.
// The server composes the full analysis prompt; clients send only the
// question text.
//
// # Validation
//
// Uses go-playground/validator:
//   - Message: required, max 32768 bytes (maxbytes)
type ChatRequest struct {
	Message string `json:"message" validate:"required,maxbytes"`
}

// Validate validates the ChatRequest fields after JSON binding.
func (r *ChatRequest) Validate() error {
	return apiValidate.Struct(r)
}

// =============================================================================
// Chat Response Types
// =============================================================================

// ChatResponse carries a successful LLM answer.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatErrorResponse carries the generation error together with a canned
// fallback the UI can always show.
type ChatErrorResponse struct {
	Error    string `json:"error"`
	Fallback string `json:"fallback"`
}
