// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import "testing"

// TestNewGeminiClient_MissingKey verifies construction fails fast without a
// configured key.
func TestNewGeminiClient_MissingKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := NewGeminiClient()
	if err == nil {
		t.Fatal("Expected error when GEMINI_API_KEY is not configured")
	}
}

// TestNewGeminiClient_DefaultModel verifies the model default.
func TestNewGeminiClient_DefaultModel(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "")

	client, err := NewGeminiClient()
	if err != nil {
		t.Fatalf("NewGeminiClient returned error: %v", err)
	}
	if client.model != "gemini-1.5-pro-latest" {
		t.Errorf("Expected default model gemini-1.5-pro-latest, got %s", client.model)
	}
}

// TestNewGeminiClient_ModelOverride verifies GEMINI_MODEL is honored.
func TestNewGeminiClient_ModelOverride(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")

	client, err := NewGeminiClient()
	if err != nil {
		t.Fatalf("NewGeminiClient returned error: %v", err)
	}
	if client.model != "gemini-1.5-flash" {
		t.Errorf("Expected model override, got %s", client.model)
	}
}
