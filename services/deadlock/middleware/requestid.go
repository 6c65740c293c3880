// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id on both requests and responses.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the context key for the assigned id.
// Using a typed key prevents collisions with other context values.
const requestIDKey = "gridlock_request_id"

// maxInboundIDLength bounds how much caller-supplied id we echo back.
const maxInboundIDLength = 128

// RequestID creates a middleware that tags every request with an id.
//
// # Description
//
// Propagates the caller's X-Request-ID when present and sane, otherwise
// assigns a fresh UUID. The id is stored in the Gin context for handlers
// and logging, and returned on the response header so clients can quote it
// when reporting problems.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware function ready for use with Gin.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxInboundIDLength {
			id = uuid.New().String()
		}

		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}

// GetRequestID retrieves the id assigned by RequestID.
//
// Returns the empty string when the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if v, exists := c.Get(requestIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
