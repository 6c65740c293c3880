// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the deadlock resolution handler

package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/gridlock/services/deadlock/events"
)

// TestHandleResolveDeadlock_EmptyTable verifies the no-processes message.
func TestHandleResolveDeadlock_EmptyTable(t *testing.T) {
	store, hub, mon := newTestDeps(t)
	router := createTestRouter("POST", "/api/resolve", HandleResolveDeadlock(store, hub, mon))

	w := performRequest(router, "POST", "/api/resolve", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "No processes to resolve", response["message"])
	assert.NotContains(t, response, "terminated")
}

// TestHandleResolveDeadlock_NoCycle verifies the answer when processes exist
// but nothing is deadlocked.
func TestHandleResolveDeadlock_NoCycle(t *testing.T) {
	store, hub, mon := newTestDeps(t)
	require.NoError(t, store.Add("P1", "R1", "R2"))

	router := createTestRouter("POST", "/api/resolve", HandleResolveDeadlock(store, hub, mon))
	w := performRequest(router, "POST", "/api/resolve", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, false, response["resolved"])
	assert.Equal(t, "No deadlock detected", response["message"])
	assert.Equal(t, 1, store.Len(), "nothing may be terminated without a cycle")
}

// TestHandleResolveDeadlock_TerminatesVictim verifies victim selection, the
// surviving table in the response, and the termination event.
func TestHandleResolveDeadlock_TerminatesVictim(t *testing.T) {
	store, hub, mon := newTestDeps(t)
	require.NoError(t, store.Add("P1", "R1", "LongResource"))
	require.NoError(t, store.Add("P2", "LongResource", "R1"))

	ch := hub.Subscribe()
	t.Cleanup(func() { hub.Unsubscribe(ch) })

	router := createTestRouter("POST", "/api/resolve", HandleResolveDeadlock(store, hub, mon))
	w := performRequest(router, "POST", "/api/resolve", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Resolved   bool                         `json:"resolved"`
		Terminated string                       `json:"terminated"`
		Processes  map[string]map[string]string `json:"processes"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	// P1 holds the shorter resource name, so it is the victim.
	assert.True(t, response.Resolved)
	assert.Equal(t, "P1", response.Terminated)
	require.Len(t, response.Processes, 1)
	assert.Contains(t, response.Processes, "P2")

	ev := receiveEvent(t, ch, events.TypeProcessTerminated)
	payload, ok := ev.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "P1", payload["process"])
}

// TestHandleResolveDeadlock_RepeatedCallsUnwind verifies that resolution
// removes one victim per call until the cycle is gone.
func TestHandleResolveDeadlock_RepeatedCallsUnwind(t *testing.T) {
	store, hub, mon := newTestDeps(t)
	require.NoError(t, store.Add("P1", "R1", "R2"))
	require.NoError(t, store.Add("P2", "R2", "R1"))

	router := createTestRouter("POST", "/api/resolve", HandleResolveDeadlock(store, hub, mon))

	w := performRequest(router, "POST", "/api/resolve", nil)
	var first map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &first)
	assert.Equal(t, true, first["resolved"])
	assert.Equal(t, 1, store.Len())

	w = performRequest(router, "POST", "/api/resolve", nil)
	var second map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &second)
	assert.Equal(t, false, second["resolved"])
	assert.Equal(t, "No deadlock detected", second["message"])
	assert.Equal(t, 1, store.Len())
}
