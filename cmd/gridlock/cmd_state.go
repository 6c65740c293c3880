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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/AleutianAI/gridlock/pkg/ux"
	"github.com/AleutianAI/gridlock/pkg/validation"
	"github.com/AleutianAI/gridlock/services/deadlock/datatypes"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// ProcessEntry mirrors one row of the service's allocation table.
type ProcessEntry struct {
	Holds    string `json:"holds"`
	Requests string `json:"requests"`
}

type processListResponse struct {
	Processes map[string]ProcessEntry `json:"processes"`
}

type addResponse struct {
	Success bool   `json:"success"`
	Process string `json:"process"`
}

// StatusResult aggregates the health, table size, and detection state shown
// by the status command.
type StatusResult struct {
	Server    string `json:"server"`
	Healthy   bool   `json:"healthy"`
	Processes int    `json:"processes"`
	Deadlock  bool   `json:"deadlock"`
}

func fetchProcesses() (map[string]ProcessEntry, error) {
	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Get(fmt.Sprintf("%s/api/processes", baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	var list processListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse response from the service: %w", err)
	}
	return list.Processes, nil
}

func sendAddProcess(name, holds, requests string) (addResponse, error) {
	var added addResponse
	postBody, err := json.Marshal(datatypes.AddProcessRequest{
		ProcessName:      name,
		HoldsResource:    holds,
		RequestsResource: requests,
	})
	if err != nil {
		return added, fmt.Errorf("failed to create request body: %w", err)
	}

	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Post(fmt.Sprintf("%s/api/processes", baseURL),
		"application/json", bytes.NewBuffer(postBody))
	if err != nil {
		return added, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr datatypes.ErrorResponse
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return added, fmt.Errorf("service rejected the process: %s", apiErr.Error)
		}
		return added, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	if err := json.Unmarshal(bodyBytes, &added); err != nil {
		return added, fmt.Errorf("failed to parse response from the service: %w", err)
	}
	return added, nil
}

func sendClear() error {
	baseURL := getServerBaseURL()
	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/processes", baseURL), nil)
	if err != nil {
		return fmt.Errorf("failed to create the clear request: %w", err)
	}

	resp, err := newAPIClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned an error: %s", resp.Status)
	}
	return nil
}

func fetchHealth() error {
	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Get(fmt.Sprintf("%s/health", baseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned an error: %s", resp.Status)
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) {
	result := StatusResult{Server: getServerBaseURL()}

	if err := fetchHealth(); err != nil {
		fail("Service unreachable", err)
	}
	result.Healthy = true

	processes, err := fetchProcesses()
	if err != nil {
		fail("Could not list processes", err)
	}
	result.Processes = len(processes)

	deadlocked, err := fetchDetect()
	if err != nil {
		fail("Could not run detection", err)
	}
	result.Deadlock = deadlocked

	if jsonOutput {
		OutputData("status", result)
		return
	}

	ux.Title("Gridlock")
	ux.KeyValue("server", result.Server)
	ux.KeyValue("processes", fmt.Sprintf("%d", result.Processes))
	if result.Deadlock {
		ux.Error("Deadlock detected")
	} else {
		ux.Success("No deadlock")
	}
}

func runPs(cmd *cobra.Command, args []string) {
	processes, err := fetchProcesses()
	if err != nil {
		fail("Could not list processes", err)
	}

	if jsonOutput {
		OutputData("ps", processes)
		return
	}

	if len(processes) == 0 {
		ux.Muted("No processes declared.")
		return
	}

	// Stable order regardless of map iteration
	names := make([]string, 0, len(processes))
	for name := range processes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := processes[name]
		ux.Allocation(name, entry.Holds, entry.Requests)
	}
}

func runAdd(cmd *cobra.Command, args []string) {
	var name, holds, requests string

	switch len(args) {
	case 3:
		name, holds, requests = args[0], args[1], args[2]
	case 0:
		if !ux.IsInteractive() {
			fail("add requires NAME HOLDS REQUESTS arguments when stdin is not a terminal", nil)
		}
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Process name").
					Placeholder("worker_a").
					Value(&name).
					Validate(validation.ValidateName),
				huh.NewInput().
					Title("Holds resource").
					Placeholder("db_lock").
					Value(&holds).
					Validate(validation.ValidateName),
				huh.NewInput().
					Title("Requests resource").
					Placeholder("file_lock").
					Value(&requests).
					Validate(validation.ValidateName),
			),
		)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("Aborted.")
				return
			}
			fail("Interactive form failed", err)
		}
	default:
		fail("add takes either no arguments or exactly NAME HOLDS REQUESTS", nil)
	}

	added, err := sendAddProcess(name, holds, requests)
	if err != nil {
		fail("Could not add process", err)
	}

	if jsonOutput {
		OutputData("add", added)
		return
	}
	ux.Success(fmt.Sprintf("Added process %s", added.Process))
}

func runClear(cmd *cobra.Command, args []string) {
	if err := sendClear(); err != nil {
		fail("Could not clear state", err)
	}

	if jsonOutput {
		OutputData("clear", map[string]bool{"cleared": true})
		return
	}
	ux.Success("All processes removed")
}
