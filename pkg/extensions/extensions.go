// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines seams for deployment-specific functionality.
//
// The demo runs standalone with no-op defaults for every interface here.
// Deployments that need compliance logging or content policies provide
// concrete implementations and inject them via ServiceOptions without
// modifying the core service.
//
// # Extension Categories
//
//   - audit.go: compliance audit logging (AuditLogger)
//   - filter.go: chat message transformation and blocking (MessageFilter)
//
// # Thread Safety
//
// All interface implementations must be safe for concurrent use.
// Multiple goroutines may call methods simultaneously.
package extensions

// ServiceOptions groups the extension points for service configuration.
//
// All fields are optional; nil values are replaced with no-op defaults when
// DefaultOptions() is used as the starting point.
//
// Example:
//
//	// Standalone: use defaults
//	opts := extensions.DefaultOptions()
//
//	// Managed deployment: inject implementations
//	opts := extensions.DefaultOptions().
//	    WithAudit(siemAuditor).
//	    WithFilter(piiFilter)
type ServiceOptions struct {
	// AuditLogger records chat exchanges and blocked messages.
	// Default: NopAuditLogger (discards all events)
	AuditLogger AuditLogger

	// MessageFilter transforms chat messages before and after the LLM.
	// Default: NopMessageFilter (passes through unchanged)
	MessageFilter MessageFilter
}

// DefaultOptions returns ServiceOptions with no-op defaults.
//
// This is the configuration used by the standalone demo. Nothing is
// filtered and no audit trail is kept.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuditLogger:   &NopAuditLogger{},
		MessageFilter: &NopMessageFilter{},
	}
}

// WithAudit returns a copy of opts with the given AuditLogger.
// Useful for fluent configuration.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}

// WithFilter returns a copy of opts with the given MessageFilter.
func (opts ServiceOptions) WithFilter(filter MessageFilter) ServiceOptions {
	opts.MessageFilter = filter
	return opts
}
