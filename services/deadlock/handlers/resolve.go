// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/monitor"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
)

var resolveTracer = otel.Tracer("aleutian.deadlock.handlers")

// HandleResolveDeadlock terminates one victim process when the table holds a
// cycle. The response carries the surviving table so clients can refresh
// without a second round trip; repeated calls unwind multi-process cycles one
// victim at a time.
func HandleResolveDeadlock(store *rag.Store, hub *events.Hub, mon monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := resolveTracer.Start(c.Request.Context(), "HandleResolveDeadlock")
		defer span.End()

		outcome := store.ResolveOnce()
		if m := observability.DefaultMetrics; m != nil {
			m.RecordResolution(outcome.Resolved)
			m.RecordRequest(observability.EndpointResolve, true)
		}

		if !outcome.Resolved {
			span.SetAttributes(attribute.Bool("resolve.terminated", false))
			if outcome.Message == "No processes to resolve" {
				c.JSON(http.StatusOK, gin.H{"message": outcome.Message})
				return
			}
			c.JSON(http.StatusOK, gin.H{"resolved": false, "message": outcome.Message})
			return
		}

		span.SetAttributes(
			attribute.Bool("resolve.terminated", true),
			attribute.String("resolve.victim", outcome.Terminated),
		)
		slog.Info("Terminated deadlock victim", "process", outcome.Terminated)

		hub.Publish(events.TypeProcessTerminated, map[string]interface{}{"process": outcome.Terminated})
		mon.CheckNow()

		c.JSON(http.StatusOK, gin.H{
			"resolved":   true,
			"terminated": outcome.Terminated,
			"processes":  store.Snapshot(),
		})
	}
}
