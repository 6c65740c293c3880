// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extensions

import (
	"context"
	"errors"
)

// ErrMessageBlocked is returned when a message is rejected by the filter.
// Implementations should wrap this error with the reason.
//
// Example:
//
//	if containsPII(msg) {
//	    return "", fmt.Errorf("message contains PII: %w", ErrMessageBlocked)
//	}
var ErrMessageBlocked = errors.New("message blocked by filter")

// FilterResult contains the outcome of a filter operation.
type FilterResult struct {
	// Original is the input message before filtering.
	Original string

	// Filtered is the message after filtering transformations.
	// If WasModified is false, this equals Original.
	Filtered string

	// WasModified indicates if any transformations were applied.
	WasModified bool

	// WasBlocked indicates if the message was completely rejected.
	// If true, Filtered should not be used.
	WasBlocked bool

	// BlockReason explains why the message was blocked (if WasBlocked).
	BlockReason string
}

// MessageFilter transforms chat messages before and after LLM processing.
//
// Implementations must be safe for concurrent use by multiple goroutines.
//
// # Filter Pipeline
//
// Messages flow through filters at two points:
//
//  1. FilterInput: before the user question is embedded in the prompt
//     (redact PII, block policy violations, catch prompt injection)
//
//  2. FilterOutput: before the LLM answer is returned to the user
//     (remove leaked secrets, add disclaimers)
//
// # Blocking vs Transforming
//
// Filters can either transform content and let it through, or reject the
// whole message by returning a FilterResult with WasBlocked=true and
// BlockReason set. On a block the caller must not send anything to the LLM
// and should surface ErrMessageBlocked.
//
// # Standalone Behavior
//
// The default NopMessageFilter passes all messages through unchanged.
type MessageFilter interface {
	// FilterInput processes a user message before LLM inference.
	//
	// The error return is for filter failures only; blocks are reported
	// through the result.
	FilterInput(ctx context.Context, message string) (*FilterResult, error)

	// FilterOutput processes an LLM response before returning it to the
	// user.
	FilterOutput(ctx context.Context, message string) (*FilterResult, error)
}

// NopMessageFilter is the default message filter for the standalone demo.
//
// It passes all messages through unchanged without any transformation or
// blocking.
//
// Thread-safe: this implementation has no mutable state.
type NopMessageFilter struct{}

// FilterInput returns the message unchanged.
func (f *NopMessageFilter) FilterInput(ctx context.Context, message string) (*FilterResult, error) {
	return &FilterResult{
		Original: message,
		Filtered: message,
	}, nil
}

// FilterOutput returns the message unchanged.
func (f *NopMessageFilter) FilterOutput(ctx context.Context, message string) (*FilterResult, error) {
	return &FilterResult{
		Original: message,
		Filtered: message,
	}, nil
}

// Compile-time interface compliance check.
var _ MessageFilter = (*NopMessageFilter)(nil)
