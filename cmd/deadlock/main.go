// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command deadlock starts the deadlock-detection demo HTTP server.
//
// This is the main entry point for the containerized deadlock service.
// It reads configuration from environment variables and starts the server.
//
// # Environment Variables
//
//   - DEADLOCK_PORT: HTTP server port (default: 12240)
//   - LLM_BACKEND_TYPE: LLM provider - gemini, openai, ollama, claude (default: gemini)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OpenTelemetry collector (optional, tracing off when unset)
//   - CHAT_TIMEOUT_SECONDS: LLM round-trip deadline (default: 60)
//   - CHAT_RATE_LIMIT_RPS: sustained chat request rate (default: 1)
//   - CHAT_RATE_LIMIT_BURST: chat rate limiter burst (default: 5)
//   - MONITOR_INTERVAL_SECONDS: background sweep period, 0 disables (default: 15)
//   - SCENARIO_DIR: preset overlay directory (optional)
//   - DEADLOCK_LOG_DIR: directory for JSON log files (optional, stderr only when unset)
//   - LOG_LEVEL: debug, info, warn, or error (default: info)
//
// # Usage
//
//	# Build
//	go build -o deadlock ./cmd/deadlock
//
//	# Run
//	GEMINI_API_KEY=... ./deadlock
package main

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/gridlock/pkg/logging"
	"github.com/AleutianAI/gridlock/services/deadlock"
)

func main() {
	// Setup structured logging
	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogDir:  os.Getenv("DEADLOCK_LOG_DIR"),
		Service: "deadlock",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// Build configuration from environment variables
	cfg := deadlock.Config{
		Port:            getEnvInt("DEADLOCK_PORT", 12240),
		LLMBackend:      getEnvString("LLM_BACKEND_TYPE", "gemini"),
		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ChatTimeout:     time.Duration(getEnvInt("CHAT_TIMEOUT_SECONDS", 60)) * time.Second,
		ChatRateRPS:     getEnvFloat("CHAT_RATE_LIMIT_RPS", 1),
		ChatRateBurst:   getEnvInt("CHAT_RATE_LIMIT_BURST", 5),
		MonitorInterval: time.Duration(getEnvInt("MONITOR_INTERVAL_SECONDS", 15)) * time.Second,
		ScenarioDir:     os.Getenv("SCENARIO_DIR"),
	}

	slog.Info("Starting deadlock service",
		"port", cfg.Port,
		"llm_backend", cfg.LLMBackend,
		"monitor_interval", cfg.MonitorInterval.String(),
	)

	// Create the service with default (no-op) extension options
	// Enterprise builds will pass custom ServiceOptions here
	svc, err := deadlock.New(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to create deadlock service: %v", err)
	}

	// Run the server (blocks until shutdown)
	if err := svc.Run(); err != nil {
		log.Fatalf("Deadlock service error: %v", err)
	}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
