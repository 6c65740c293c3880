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
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/monitor"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
	"github.com/AleutianAI/gridlock/services/deadlock/scenario"
)

var scenarioTracer = otel.Tracer("aleutian.deadlock.handlers")

// HandleListScenarios returns the scenario catalog sorted by name.
func HandleListScenarios(catalog *scenario.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := scenarioTracer.Start(c.Request.Context(), "HandleListScenarios")
		defer span.End()

		scenarios := catalog.List()
		span.SetAttributes(attribute.Int("scenario.count", len(scenarios)))
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointScenarios, true)
		}
		c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
	}
}

// HandleApplyScenario replaces the whole allocation table with a named
// preset. The previous table is discarded only when every entry of the
// preset validates.
func HandleApplyScenario(catalog *scenario.Catalog, store *rag.Store, hub *events.Hub, mon monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := scenarioTracer.Start(c.Request.Context(), "HandleApplyScenario")
		defer span.End()

		name := c.Param("name")
		span.SetAttributes(attribute.String("scenario.name", name))

		s, ok := catalog.Get(name)
		if !ok {
			span.SetStatus(codes.Error, "scenario not found")
			slog.Warn("Requested unknown scenario", "scenario", name)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointScenarios, observability.ErrorCodeNotFound)
				m.RecordRequest(observability.EndpointScenarios, false)
			}
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("scenario %q not found", name)})
			return
		}

		if err := store.Replace(s.Entries()); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to apply scenario", "scenario", name, "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointScenarios, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointScenarios, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		slog.Info("Applied scenario", "scenario", name, "processes", len(s.Processes))
		hub.Publish(events.TypeScenarioApplied, map[string]interface{}{
			"scenario":  s.Name,
			"processes": len(s.Processes),
		})
		mon.CheckNow()

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointScenarios, true)
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"scenario":  s.Name,
			"processes": store.Snapshot(),
		})
	}
}
