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
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
	"github.com/AleutianAI/gridlock/services/deadlock/visualize"
)

var visualizeTracer = otel.Tracer("aleutian.deadlock.handlers")

// HandleVisualize renders the allocation graph as a base64-encoded PNG.
func HandleVisualize(store *rag.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := visualizeTracer.Start(c.Request.Context(), "HandleVisualize")
		defer span.End()

		snapshot := store.Snapshot()
		span.SetAttributes(attribute.Int("process.count", len(snapshot)))

		start := time.Now()
		image, err := visualize.RenderBase64(snapshot)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if errors.Is(err, rag.ErrEmptyStore) {
				if m := observability.DefaultMetrics; m != nil {
					m.RecordError(observability.EndpointVisualize, observability.ErrorCodeEmptyState)
					m.RecordRequest(observability.EndpointVisualize, false)
				}
				c.JSON(http.StatusBadRequest, gin.H{"error": "No processes to visualize"})
				return
			}
			slog.Error("Failed to render the allocation graph", "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointVisualize, observability.ErrorCodeRenderError)
				m.RecordRequest(observability.EndpointVisualize, false)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if m := observability.DefaultMetrics; m != nil {
			m.RecordRenderDuration(time.Since(start).Seconds())
			m.RecordRequest(observability.EndpointVisualize, true)
		}
		c.JSON(http.StatusOK, gin.H{"image": image})
	}
}
