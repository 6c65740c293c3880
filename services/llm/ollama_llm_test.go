// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestOllamaClient creates an OllamaClient pointing to a test server,
// bypassing environment variable configuration.
func newTestOllamaClient(baseURL, model string) *OllamaClient {
	return &OllamaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

// TestOllamaClient_Generate_ReturnsResponse verifies the non-streaming
// generate round trip.
func TestOllamaClient_Generate_ReturnsResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}
		var req ollamaGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected stream=false for Generate")
		}
		if req.Model != "test-model" {
			t.Errorf("Expected model test-model, got %s", req.Model)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Model:    req.Model,
			Response: "a deadlock is a circular wait",
			Done:     true,
		})
	}))
	defer server.Close()

	client := newTestOllamaClient(server.URL, "test-model")
	out, err := client.Generate(context.Background(), "explain deadlocks", GenerationParams{})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != "a deadlock is a circular wait" {
		t.Errorf("Unexpected response: %q", out)
	}
}

// TestOllamaClient_Generate_DefaultSamplerOptions verifies the defaults sent
// when no params are provided.
func TestOllamaClient_Generate_DefaultSamplerOptions(t *testing.T) {
	t.Parallel()

	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	client := newTestOllamaClient(server.URL, "test-model")
	if _, err := client.Generate(context.Background(), "hi", GenerationParams{}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got.Options["temperature"] != 0.2 {
		t.Errorf("Expected default temperature 0.2, got %v", got.Options["temperature"])
	}
	if got.Options["top_k"] != float64(20) {
		t.Errorf("Expected default top_k 20, got %v", got.Options["top_k"])
	}
	if got.Options["top_p"] != 0.9 {
		t.Errorf("Expected default top_p 0.9, got %v", got.Options["top_p"])
	}
	if got.Options["num_predict"] != float64(2048) {
		t.Errorf("Expected default num_predict 2048, got %v", got.Options["num_predict"])
	}
}

// TestOllamaClient_Generate_ExplicitParams verifies caller params override the
// defaults.
func TestOllamaClient_Generate_ExplicitParams(t *testing.T) {
	t.Parallel()

	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "ok", Done: true})
	}))
	defer server.Close()

	temp := float32(0.7)
	maxTokens := 128
	client := newTestOllamaClient(server.URL, "test-model")
	params := GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
		Stop:        []string{"\n\n"},
	}
	if _, err := client.Generate(context.Background(), "hi", params); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if got.Options["temperature"] != 0.7 {
		t.Errorf("Expected temperature 0.7, got %v", got.Options["temperature"])
	}
	if got.Options["num_predict"] != float64(128) {
		t.Errorf("Expected num_predict 128, got %v", got.Options["num_predict"])
	}
	stops, ok := got.Options["stop"].([]interface{})
	if !ok || len(stops) != 1 || stops[0] != "\n\n" {
		t.Errorf("Expected stop sequence to be forwarded, got %v", got.Options["stop"])
	}
}

// TestOllamaClient_Generate_ModelNotFound verifies the friendly pull hint on a
// 404 for a missing model.
func TestOllamaClient_Generate_ModelNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'missing-model' not found"}`))
	}))
	defer server.Close()

	client := newTestOllamaClient(server.URL, "missing-model")
	_, err := client.Generate(context.Background(), "hi", GenerationParams{})
	if err == nil {
		t.Fatal("Expected error for missing model")
	}
	if !strings.Contains(err.Error(), "ollama pull missing-model") {
		t.Errorf("Expected pull hint in error, got: %v", err)
	}
}

// TestOllamaClient_Generate_ServerError verifies non-200 responses surface as
// errors.
func TestOllamaClient_Generate_ServerError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := newTestOllamaClient(server.URL, "test-model")
	_, err := client.Generate(context.Background(), "hi", GenerationParams{})
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

// TestNewOllamaClient_Defaults verifies the local daemon defaults.
func TestNewOllamaClient_Defaults(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("OLLAMA_MODEL", "")

	client, err := NewOllamaClient()
	if err != nil {
		t.Fatalf("NewOllamaClient returned error: %v", err)
	}
	if client.baseURL != "http://localhost:11434" {
		t.Errorf("Expected default base URL, got %s", client.baseURL)
	}
	if client.model != "llama3.1:8b" {
		t.Errorf("Expected default model llama3.1:8b, got %s", client.model)
	}
}

// TestNewOllamaClient_TrimsTrailingSlash verifies base URL normalization.
func TestNewOllamaClient_TrimsTrailingSlash(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://ollama.internal:11434/")
	t.Setenv("OLLAMA_MODEL", "llama3.1:8b")

	client, err := NewOllamaClient()
	if err != nil {
		t.Fatalf("NewOllamaClient returned error: %v", err)
	}
	if client.baseURL != "http://ollama.internal:11434" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
}
