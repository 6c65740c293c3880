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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/gridlock/pkg/extensions"
	"github.com/AleutianAI/gridlock/services/deadlock/datatypes"
	"github.com/AleutianAI/gridlock/services/deadlock/middleware"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
	"github.com/AleutianAI/gridlock/services/llm"
)

var chatTracer = otel.Tracer("aleutian.deadlock.handlers")

// chatFallback is returned alongside the raw error whenever generation fails,
// so the UI always has a usable recommendation.
const chatFallback = "Basic deadlock resolution: Terminate the process holding the fewest resources."

// chatPromptTemplate frames the current allocation table (as indented JSON)
// and the user question for the model.
const chatPromptTemplate = `You are an expert in operating system deadlocks analyzing this system state:
%s

User Question: %s

Provide a comprehensive response with:
1. Deadlock analysis (present or not)
2. Explanation of the current situation
3. Step-by-step resolution if deadlock exists
4. Prevention techniques
5. Best practices for resource allocation

Format your response with clear headings and keep it under 300 words.`

// defaultChatTimeout bounds one generation round trip.
const defaultChatTimeout = 60 * time.Second

// ChatConfig carries the tunables for the chat endpoint.
type ChatConfig struct {
	// Timeout bounds one LLM round trip. Zero means defaultChatTimeout.
	Timeout time.Duration

	// Backend labels latency metrics and audit events (gemini, openai, ...).
	Backend string

	// RateRPS is the sustained request rate admitted to the endpoint.
	// Enforced by middleware on the route, not by the handler.
	RateRPS float64

	// RateBurst is the token bucket capacity for the rate limiter.
	RateBurst int

	// Extensions supplies the audit logger and message filter. Zero-value
	// fields fall back to the no-op implementations.
	Extensions extensions.ServiceOptions
}

// DefaultChatConfig returns the standalone configuration: 60s timeout, 1 rps
// with a burst of 5, no-op extensions.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		Timeout:    defaultChatTimeout,
		Backend:    "gemini",
		RateRPS:    1,
		RateBurst:  5,
		Extensions: extensions.DefaultOptions(),
	}
}

// HandleChat answers a free-form question about the current allocation state.
//
// The handler snapshots the table, embeds it with the question in the
// analysis prompt, and relays the model's answer verbatim. Generation
// failures of any kind return 500 with the raw error plus a fixed fallback
// recommendation; they are never retried here.
func HandleChat(llmClient llm.LLMClient, store *rag.Store, cfg ChatConfig) gin.HandlerFunc {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultChatTimeout
	}
	defaults := extensions.DefaultOptions()
	if cfg.Extensions.AuditLogger == nil {
		cfg.Extensions.AuditLogger = defaults.AuditLogger
	}
	if cfg.Extensions.MessageFilter == nil {
		cfg.Extensions.MessageFilter = defaults.MessageFilter
	}

	return func(c *gin.Context) {
		ctx, span := chatTracer.Start(c.Request.Context(), "HandleChat")
		defer span.End()
		requestID := middleware.GetRequestID(c)

		var req datatypes.ChatRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to parse the chat request", "error", err, "requestId", requestID)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		if strings.TrimSpace(req.Message) == "" {
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}

		if err := req.Validate(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "validation failed")
			slog.Error("Chat request validation failed", "error", err, "requestId", requestID)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: validation failed"})
			return
		}

		filterResult, filterErr := cfg.Extensions.MessageFilter.FilterInput(ctx, req.Message)
		if filterErr != nil {
			span.RecordError(filterErr)
			span.SetStatus(codes.Error, "message filter failed")
			slog.Error("Message filter failed", "error", filterErr, "requestId", requestID)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeInternal)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "message processing failed"})
			return
		}
		if filterResult.WasBlocked {
			_ = cfg.Extensions.AuditLogger.Log(ctx, extensions.AuditEvent{
				EventType: "chat.blocked",
				Timestamp: time.Now().UTC(),
				Action:    "send",
				Outcome:   "blocked",
				Metadata: map[string]any{
					"request_id": requestID,
					"reason":     filterResult.BlockReason,
				},
			})
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeValidation)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusForbidden, gin.H{
				"error":  "Message blocked by content filter",
				"reason": filterResult.BlockReason,
			})
			return
		}
		message := filterResult.Filtered

		snapshot := store.Snapshot()
		state, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Failed to serialize the allocation table", "error", err)
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, observability.ErrorCodeInternal)
				m.RecordRequest(observability.EndpointChat, false)
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		prompt := fmt.Sprintf(chatPromptTemplate, state, message)

		span.SetAttributes(
			attribute.Int("process.count", len(snapshot)),
			attribute.Int("message.length", len(message)),
			attribute.String("llm.backend", cfg.Backend),
		)

		genCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		start := time.Now()
		answer, err := llmClient.Generate(genCtx, prompt, llm.GenerationParams{})
		duration := time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("LLMClient.Generate failed",
				"error", err,
				"backend", cfg.Backend,
				"requestId", requestID,
			)
			code := observability.ErrorCodeLLMError
			if errors.Is(err, context.DeadlineExceeded) {
				code = observability.ErrorCodeTimeout
			}
			if m := observability.DefaultMetrics; m != nil {
				m.RecordError(observability.EndpointChat, code)
				m.RecordRequest(observability.EndpointChat, false)
			}
			_ = cfg.Extensions.AuditLogger.Log(ctx, extensions.AuditEvent{
				EventType: "chat.message",
				Timestamp: time.Now().UTC(),
				Action:    "send",
				Outcome:   "error",
				Metadata: map[string]any{
					"request_id": requestID,
					"backend":    cfg.Backend,
					"error":      err.Error(),
				},
			})
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":    err.Error(),
				"fallback": chatFallback,
			})
			return
		}

		// A blocked answer must not leave the process; the canned fallback
		// stands in for it.
		if outResult, outErr := cfg.Extensions.MessageFilter.FilterOutput(ctx, answer); outErr == nil {
			if outResult.WasBlocked {
				answer = chatFallback
			} else {
				answer = outResult.Filtered
			}
		}

		_ = cfg.Extensions.AuditLogger.Log(ctx, extensions.AuditEvent{
			EventType: "chat.message",
			Timestamp: time.Now().UTC(),
			Action:    "send",
			Outcome:   "success",
			Metadata: map[string]any{
				"request_id":  requestID,
				"backend":     cfg.Backend,
				"duration_ms": duration.Milliseconds(),
			},
		})
		if m := observability.DefaultMetrics; m != nil {
			m.RecordChatDuration(cfg.Backend, duration.Seconds())
			m.RecordRequest(observability.EndpointChat, true)
		}
		c.JSON(http.StatusOK, gin.H{"response": answer})
	}
}
