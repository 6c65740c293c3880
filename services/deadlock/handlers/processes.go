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
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/gridlock/services/deadlock/datatypes"
	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/monitor"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
)

var processTracer = otel.Tracer("aleutian.deadlock.handlers")

// HandleGetProcesses returns the full allocation table as a name-to-entry map.
func HandleGetProcesses(store *rag.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := processTracer.Start(c.Request.Context(), "HandleGetProcesses")
		defer span.End()

		snapshot := store.Snapshot()
		span.SetAttributes(attribute.Int("process.count", len(snapshot)))
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointProcesses, true)
		}
		c.JSON(http.StatusOK, gin.H{"processes": snapshot})
	}
}

// HandleAddProcess registers a process with its held and requested resources.
// Re-declaring an existing process overwrites its entry.
func HandleAddProcess(store *rag.Store, hub *events.Hub, mon monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := processTracer.Start(c.Request.Context(), "HandleAddProcess")
		defer span.End()

		var req datatypes.AddProcessRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the add-process request", "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointProcesses, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointProcesses, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
			return
		}

		if err := store.Add(req.ProcessName, req.HoldsResource, req.RequestsResource); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Rejected process declaration", "process", req.ProcessName, "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointProcesses, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointProcesses, false)
			}
			if errors.Is(err, rag.ErrMissingField) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		span.SetAttributes(
			attribute.String("process.name", req.ProcessName),
			attribute.Int("process.count", store.Len()),
		)
		slog.Info("Process declared",
			"process", req.ProcessName,
			"holds", req.HoldsResource,
			"requests", req.RequestsResource,
		)

		hub.Publish(events.TypeProcessAdded, map[string]interface{}{
			"process":  req.ProcessName,
			"holds":    req.HoldsResource,
			"requests": req.RequestsResource,
		})
		mon.CheckNow()

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointProcesses, true)
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "process": req.ProcessName})
	}
}

// HandleClearProcesses drops every process from the table.
func HandleClearProcesses(store *rag.Store, hub *events.Hub, mon monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := processTracer.Start(c.Request.Context(), "HandleClearProcesses")
		defer span.End()

		store.Clear()
		slog.Info("Allocation table cleared")

		hub.Publish(events.TypeStateCleared, map[string]interface{}{"processes": 0})
		mon.CheckNow()

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointProcesses, true)
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
