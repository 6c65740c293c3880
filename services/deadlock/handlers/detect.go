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
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/gridlock/services/deadlock/monitor"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
)

var detectTracer = otel.Tracer("aleutian.deadlock.handlers")

// HandleDetectDeadlock runs an on-demand cycle check. The check goes through
// the monitor so a state transition observed here raises the same events and
// gauges as a background sweep.
func HandleDetectDeadlock(mon monitor.Monitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := detectTracer.Start(c.Request.Context(), "HandleDetectDeadlock")
		defer span.End()

		deadlocked := mon.CheckNow()
		span.SetAttributes(attribute.Bool("deadlock.detected", deadlocked))
		if m := observability.DefaultMetrics; m != nil {
			m.RecordRequest(observability.EndpointDetect, true)
		}
		c.JSON(http.StatusOK, gin.H{"deadlock": deadlocked})
	}
}
