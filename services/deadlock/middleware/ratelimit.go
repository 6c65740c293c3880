// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides HTTP middleware for the deadlock service.
//
// The request-id middleware tags every request for log correlation; the rate
// limiter shields the LLM-backed chat route from abuse.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/gridlock/services/deadlock/observability"
)

// RateLimit creates a middleware enforcing a shared token bucket across all
// callers of the routes it guards.
//
// # Description
//
// The bucket refills at rps tokens per second and holds at most burst
// tokens, so short spikes up to burst are served and sustained traffic is
// held to rps. Requests that find the bucket empty are rejected immediately
// with 429; nothing queues.
//
// # Inputs
//
//   - rps: Sustained requests per second. Must be positive.
//   - burst: Bucket capacity. Must be at least 1.
//   - endpoint: Label recorded on the error counter for rejections.
//   - metrics: Error instruments. May be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware function ready for use with Gin.
//
// # Thread Safety
//
// Thread-safe. One limiter is shared by every request through the returned
// middleware.
func RateLimit(rps float64, burst int, endpoint observability.Endpoint, metrics *observability.DeadlockMetrics) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			if metrics != nil {
				metrics.RecordError(endpoint, observability.ErrorCodeRateLimited)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded, please retry later",
			})
			return
		}
		c.Next()
	}
}
