package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSendChatMessage(t *testing.T) {
	// 1. Setup a fake deadlock service
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify the URL path
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}

		// Verify the request body
		var reqBody map[string]interface{}
		json.NewDecoder(r.Body).Decode(&reqBody)
		if reqBody["message"] != "Why is this deadlocked?" {
			t.Errorf("Expected message 'Why is this deadlocked?', got %v", reqBody["message"])
		}

		// Return a fake answer
		json.NewEncoder(w).Encode(map[string]string{
			"response": "Two processes wait on each other's resources.",
		})
	}))
	defer mockService.Close()

	// 2. Point the CLI at the mock via the env var the base URL helper checks
	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	// 3. Run the function
	result, err := sendChatMessage("Why is this deadlocked?")

	// 4. Assertions
	if err != nil {
		t.Fatalf("sendChatMessage returned error: %v", err)
	}
	if result.Answer != "Two processes wait on each other's resources." {
		t.Errorf("Unexpected answer %q", result.Answer)
	}
	if result.Fallback {
		t.Error("Expected a live answer, not the fallback")
	}
}

func TestSendChatMessage_FallbackOnModelFailure(t *testing.T) {
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error":    "generation failed",
			"fallback": "I'm having trouble processing your request right now.",
		})
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	result, err := sendChatMessage("hello")
	if err != nil {
		t.Fatalf("Expected fallback, not error: %v", err)
	}
	if !result.Fallback {
		t.Error("Expected fallback flag set")
	}
	if result.Answer != "I'm having trouble processing your request right now." {
		t.Errorf("Expected the canned text, got %q", result.Answer)
	}
}

func TestSendChatMessage_RateLimited(t *testing.T) {
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	_, err := sendChatMessage("hello")
	if err == nil {
		t.Fatal("Expected rate limit error, got nil")
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Expected a rate limit message, got %q", err.Error())
	}
}

func TestSendChatMessage_MissingMessageRejected(t *testing.T) {
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Message is required"})
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	_, err := sendChatMessage("")
	if err == nil {
		t.Fatal("Expected rejection error, got nil")
	}
	if !strings.Contains(err.Error(), "Message is required") {
		t.Errorf("Expected the service error surfaced, got %q", err.Error())
	}
}
