// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for the graph visualization handler

package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHandleVisualize_EmptyTable verifies the fixed empty-state error.
func TestHandleVisualize_EmptyTable(t *testing.T) {
	store, _, _ := newTestDeps(t)
	router := createTestRouter("GET", "/api/visualize", HandleVisualize(store))

	w := performRequest(router, "GET", "/api/visualize", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "No processes to visualize", response["error"])
}

// TestHandleVisualize_ReturnsPNG verifies that the response carries a
// base64-encoded PNG of the allocation graph.
func TestHandleVisualize_ReturnsPNG(t *testing.T) {
	store, _, _ := newTestDeps(t)
	require.NoError(t, store.Add("P1", "R1", "R2"))
	require.NoError(t, store.Add("P2", "R2", "R1"))

	router := createTestRouter("GET", "/api/visualize", HandleVisualize(store))
	w := performRequest(router, "GET", "/api/visualize", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Image string `json:"image"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	require.NotEmpty(t, response.Image)

	raw, err := base64.StdEncoding.DecodeString(response.Image)
	require.NoError(t, err, "image must be valid base64")
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, raw[:4], "payload must be a PNG")
}
