// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/handlers"
	"github.com/AleutianAI/gridlock/services/deadlock/middleware"
	"github.com/AleutianAI/gridlock/services/deadlock/monitor"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
	"github.com/AleutianAI/gridlock/services/deadlock/scenario"
	"github.com/AleutianAI/gridlock/services/deadlock/ui"
	"github.com/AleutianAI/gridlock/services/llm"
)

func SetupRoutes(router *gin.Engine, store *rag.Store, hub *events.Hub,
	mon monitor.Monitor, catalog *scenario.Catalog, llmClient llm.LLMClient,
	chatCfg handlers.ChatConfig) {

	router.GET("/", ui.Index)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group
	api := router.Group("/api")
	{
		api.GET("/processes", handlers.HandleGetProcesses(store))
		api.POST("/processes", handlers.HandleAddProcess(store, hub, mon))
		api.DELETE("/processes", handlers.HandleClearProcesses(store, hub, mon))
		api.GET("/detect", handlers.HandleDetectDeadlock(mon))
		api.POST("/resolve", handlers.HandleResolveDeadlock(store, hub, mon))
		api.GET("/visualize", handlers.HandleVisualize(store))
		api.POST("/chat",
			middleware.RateLimit(chatCfg.RateRPS, chatCfg.RateBurst,
				observability.EndpointChat, observability.DefaultMetrics),
			handlers.HandleChat(llmClient, store, chatCfg))
		api.GET("/events", handlers.HandleEvents(hub))
		// Scenario preset routes
		scenarios := api.Group("/scenarios")
		{
			scenarios.GET("", handlers.HandleListScenarios(catalog))
			scenarios.POST("/:name/apply", handlers.HandleApplyScenario(catalog, store, hub, mon))
		}
	}
}
