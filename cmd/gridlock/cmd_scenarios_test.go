// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetchScenarios(t *testing.T) {
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scenarios" {
			t.Errorf("Expected path /api/scenarios, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"scenarios": []map[string]interface{}{
				{
					"name":        "classic_deadlock",
					"description": "Two processes in a circular wait",
					"processes": []map[string]string{
						{"name": "worker_a", "holds": "db_lock", "requests": "file_lock"},
						{"name": "worker_b", "holds": "file_lock", "requests": "db_lock"},
					},
				},
				{
					"name":      "no_cycle",
					"processes": []map[string]string{},
				},
			},
		})
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	scenarios, err := fetchScenarios()
	if err != nil {
		t.Fatalf("fetchScenarios returned error: %v", err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("Expected 2 scenarios, got %d", len(scenarios))
	}
	if scenarios[0].Name != "classic_deadlock" {
		t.Errorf("Expected classic_deadlock first, got %s", scenarios[0].Name)
	}
	if len(scenarios[0].Processes) != 2 {
		t.Errorf("Expected 2 processes in the first scenario, got %d", len(scenarios[0].Processes))
	}
	if scenarios[0].Processes[0].Holds != "db_lock" {
		t.Errorf("Expected worker_a to hold db_lock, got %s", scenarios[0].Processes[0].Holds)
	}
}

func TestSendApplyScenario(t *testing.T) {
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/scenarios/classic_deadlock/apply" {
			t.Errorf("Expected apply path, got %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":  true,
			"scenario": "classic_deadlock",
			"processes": map[string]interface{}{
				"worker_a": map[string]string{"holds": "db_lock", "requests": "file_lock"},
				"worker_b": map[string]string{"holds": "file_lock", "requests": "db_lock"},
			},
		})
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	applied, err := sendApplyScenario("classic_deadlock")
	if err != nil {
		t.Fatalf("sendApplyScenario returned error: %v", err)
	}
	if !applied.Success {
		t.Error("Expected success true")
	}
	if applied.Scenario != "classic_deadlock" {
		t.Errorf("Expected scenario echo, got %s", applied.Scenario)
	}
	if len(applied.Processes) != 2 {
		t.Errorf("Expected 2 processes, got %d", len(applied.Processes))
	}
}

func TestSendApplyScenario_NotFound(t *testing.T) {
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "scenario \"bogus\" not found"})
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	_, err := sendApplyScenario("bogus")
	if err == nil {
		t.Fatal("Expected not-found error, got nil")
	}
	if !strings.Contains(err.Error(), "no scenario named") {
		t.Errorf("Expected a helpful not-found message, got %q", err.Error())
	}
}

func TestSendApplyScenario_EscapesName(t *testing.T) {
	var gotPath string
	mockService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "scenario": "a b"})
	}))
	defer mockService.Close()

	t.Setenv("GRIDLOCK_SERVER", mockService.URL)

	if _, err := sendApplyScenario("a b"); err != nil {
		t.Fatalf("sendApplyScenario returned error: %v", err)
	}
	if gotPath != "/api/scenarios/a%20b/apply" {
		t.Errorf("Expected escaped path, got %s", gotPath)
	}
}
