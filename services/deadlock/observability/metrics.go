// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the deadlock
// service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the resource
// allocation table and its analysis endpoints. Metrics include:
//   - Request counters (by endpoint, status, error type)
//   - Detection counters and the current deadlock state gauge
//   - Resolution counters by outcome
//   - Chat latency histograms by backend
//   - Render duration histograms
//   - Event hub subscriber gauge and published-event counters
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for deadlock analysis metrics
const deadlockSubsystem = "deadlock"

// DeadlockMetrics holds all Prometheus metrics for the deadlock service.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring allocation-table
// activity. Initialize once at startup via InitMetrics().
//
// # Thread Safety
//
// All operations are thread-safe.
type DeadlockMetrics struct {
	// RequestsTotal counts API requests by endpoint and status.
	// Labels: endpoint (processes, detect, resolve, visualize, chat, ...),
	// status (success, error)
	RequestsTotal *prometheus.CounterVec

	// ErrorsTotal counts errors by endpoint and type.
	// Labels: endpoint, error_code (validation, llm_error, timeout, ...)
	ErrorsTotal *prometheus.CounterVec

	// DetectionsTotal counts cycle checks by result.
	// Labels: result (deadlock, clear)
	DetectionsTotal *prometheus.CounterVec

	// DeadlockState is 1 while the current table contains a cycle, else 0.
	DeadlockState prometheus.Gauge

	// ProcessCount tracks the number of declared processes.
	ProcessCount prometheus.Gauge

	// ResolutionsTotal counts resolution attempts by outcome.
	// Labels: outcome (terminated, noop)
	ResolutionsTotal *prometheus.CounterVec

	// ChatDurationSeconds measures LLM round-trip latency.
	// Labels: backend (gemini, openai, ollama, anthropic)
	ChatDurationSeconds *prometheus.HistogramVec

	// RenderDurationSeconds measures graph render latency.
	RenderDurationSeconds prometheus.Histogram

	// EventSubscribers tracks currently connected event stream clients.
	EventSubscribers prometheus.Gauge

	// EventsPublishedTotal counts events pushed to subscribers.
	// Labels: event (process_added, state_cleared, deadlock_detected, ...)
	EventsPublishedTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of DeadlockMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *DeadlockMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once
// at application startup, after the Prometheus registry is available.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *DeadlockMetrics {
	DefaultMetrics = &DeadlockMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "requests_total",
				Help:      "Total number of API requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "errors_total",
				Help:      "Total errors by endpoint and type",
			},
			[]string{"endpoint", "error_code"},
		),

		DetectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "detections_total",
				Help:      "Total cycle checks by result",
			},
			[]string{"result"},
		),

		DeadlockState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "state",
				Help:      "1 while the allocation graph contains a cycle, 0 otherwise",
			},
		),

		ProcessCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "process_count",
				Help:      "Number of processes currently declared",
			},
		),

		ResolutionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "resolutions_total",
				Help:      "Total resolution attempts by outcome",
			},
			[]string{"outcome"},
		),

		ChatDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "chat_duration_seconds",
				Help:      "LLM round-trip latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"backend"},
		),

		RenderDurationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "render_duration_seconds",
				Help:      "Graph render latency in seconds",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),

		EventSubscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "event_subscribers",
				Help:      "Number of currently connected event stream clients",
			},
		),

		EventsPublishedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: deadlockSubsystem,
				Name:      "events_published_total",
				Help:      "Total events pushed to subscribers by type",
			},
			[]string{"event"},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeEmptyState indicates an operation on an empty table.
	ErrorCodeEmptyState ErrorCode = "empty_state"

	// ErrorCodeLLMError indicates LLM API failure.
	ErrorCodeLLMError ErrorCode = "llm_error"

	// ErrorCodeTimeout indicates operation timeout.
	ErrorCodeTimeout ErrorCode = "timeout"

	// ErrorCodeRenderError indicates graph rendering failure.
	ErrorCodeRenderError ErrorCode = "render_error"

	// ErrorCodeNotFound indicates a missing process or scenario.
	ErrorCodeNotFound ErrorCode = "not_found"

	// ErrorCodeRateLimited indicates the chat limiter rejected the request.
	ErrorCodeRateLimited ErrorCode = "rate_limited"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents an API endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointProcesses covers the process table CRUD routes.
	EndpointProcesses Endpoint = "processes"

	// EndpointDetect is the cycle check route.
	EndpointDetect Endpoint = "detect"

	// EndpointResolve is the victim termination route.
	EndpointResolve Endpoint = "resolve"

	// EndpointVisualize is the graph render route.
	EndpointVisualize Endpoint = "visualize"

	// EndpointChat is the LLM analysis route.
	EndpointChat Endpoint = "chat"

	// EndpointScenarios covers the scenario catalog routes.
	EndpointScenarios Endpoint = "scenarios"

	// EndpointEvents is the websocket event stream.
	EndpointEvents Endpoint = "events"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed API request.
func (m *DeadlockMetrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError records a categorized error.
func (m *DeadlockMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordDetection records a cycle check result and updates the state gauge.
func (m *DeadlockMetrics) RecordDetection(deadlocked bool) {
	if deadlocked {
		m.DetectionsTotal.WithLabelValues("deadlock").Inc()
		m.DeadlockState.Set(1)
		return
	}
	m.DetectionsTotal.WithLabelValues("clear").Inc()
	m.DeadlockState.Set(0)
}

// SetProcessCount updates the declared process gauge.
func (m *DeadlockMetrics) SetProcessCount(n int) {
	m.ProcessCount.Set(float64(n))
}

// RecordResolution records a resolution attempt.
func (m *DeadlockMetrics) RecordResolution(terminated bool) {
	outcome := "noop"
	if terminated {
		outcome = "terminated"
	}
	m.ResolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordChatDuration records LLM round-trip latency for a backend.
func (m *DeadlockMetrics) RecordChatDuration(backend string, seconds float64) {
	m.ChatDurationSeconds.WithLabelValues(backend).Observe(seconds)
}

// RecordRenderDuration records graph render latency.
func (m *DeadlockMetrics) RecordRenderDuration(seconds float64) {
	m.RenderDurationSeconds.Observe(seconds)
}

// SubscriberConnected increments the event subscriber gauge.
func (m *DeadlockMetrics) SubscriberConnected() {
	m.EventSubscribers.Inc()
}

// SubscriberDisconnected decrements the event subscriber gauge.
func (m *DeadlockMetrics) SubscriberDisconnected() {
	m.EventSubscribers.Dec()
}

// RecordEventPublished counts an event pushed to subscribers.
func (m *DeadlockMetrics) RecordEventPublished(event string) {
	m.EventsPublishedTotal.WithLabelValues(event).Inc()
}
