// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"time"
)

// AuditEvent represents a security-relevant event for compliance logging.
//
// # Event Categories
//
// Events are categorized by type for filtering and alerting:
//   - Chat: "chat.message", "chat.response", "chat.blocked"
//   - State: "state.scenario_applied", "state.cleared"
//   - System: "system.start", "system.stop"
//
// Example:
//
//	event := AuditEvent{
//	    EventType: "chat.message",
//	    Timestamp: time.Now().UTC(),
//	    Action:    "send",
//	    Outcome:   "success",
//	    Metadata: map[string]any{
//	        "request_id": requestID,
//	        "backend":    "gemini",
//	    },
//	}
type AuditEvent struct {
	// EventType categorizes the event for filtering and alerting.
	// Format: "category.action" (e.g., "chat.message")
	EventType string

	// Timestamp is when the event occurred (always use UTC).
	// If zero, implementations should set it to time.Now().UTC().
	Timestamp time.Time

	// Action describes what operation was attempted.
	// Common values: "send", "receive", "apply", "clear"
	Action string

	// Outcome indicates the result of the action.
	// Values: "success", "failure", "blocked", "error"
	Outcome string

	// Metadata holds additional event-specific data.
	//
	// Common metadata keys:
	//   - "error": error message if Outcome is "failure" or "error"
	//   - "request_id": correlates the event with request logs
	//   - "backend": LLM backend that served the request
	//   - "duration_ms": operation duration for performance analysis
	Metadata map[string]any
}

// AuditLogger records security-relevant events for compliance and analysis.
//
// Implementations must be safe for concurrent use by multiple goroutines.
// Log should be non-blocking or have reasonable timeouts so it never stalls
// a chat request.
//
// # Standalone Behavior
//
// The default NopAuditLogger discards all events. Local single-user
// deployments need no audit trail.
//
// # Managed Deployments
//
// Concrete implementations ship events to SIEM systems, cloud logging, or
// compliance databases. Events that matter there should be logged
// synchronously; Flush exists so buffered implementations can drain before
// shutdown.
type AuditLogger interface {
	// Log records a security-relevant event.
	//
	// Implementations should set Timestamp if zero, persist or transmit
	// the event, and return quickly.
	Log(ctx context.Context, event AuditEvent) error

	// Flush ensures all buffered events are persisted. Call before
	// application shutdown to prevent event loss. Sync implementations
	// may treat this as a no-op.
	Flush(ctx context.Context) error
}

// NopAuditLogger is the default audit logger for the standalone demo.
//
// It discards all events without recording them.
//
// Thread-safe: this implementation has no mutable state.
type NopAuditLogger struct{}

// Log discards the event without recording it.
func (l *NopAuditLogger) Log(ctx context.Context, event AuditEvent) error {
	return nil
}

// Flush is a no-op since nothing is buffered.
func (l *NopAuditLogger) Flush(ctx context.Context) error {
	return nil
}

// Compile-time interface compliance check.
var _ AuditLogger = (*NopAuditLogger)(nil)
