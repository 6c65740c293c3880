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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"

	"github.com/AleutianAI/gridlock/pkg/ux"
	"github.com/AleutianAI/gridlock/services/deadlock/datatypes"
	"github.com/spf13/cobra"
)

type resolveResponse struct {
	Resolved   bool                    `json:"resolved"`
	Terminated string                  `json:"terminated"`
	Message    string                  `json:"message"`
	Processes  map[string]ProcessEntry `json:"processes"`
}

func fetchDetect() (bool, error) {
	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Get(fmt.Sprintf("%s/api/detect", baseURL))
	if err != nil {
		return false, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	var detect datatypes.DetectResponse
	if err := json.NewDecoder(resp.Body).Decode(&detect); err != nil {
		return false, fmt.Errorf("failed to parse response from the service: %w", err)
	}
	return detect.Deadlock, nil
}

func sendResolve() (resolveResponse, error) {
	var resolved resolveResponse
	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Post(fmt.Sprintf("%s/api/resolve", baseURL), "application/json", nil)
	if err != nil {
		return resolved, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resolved, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&resolved); err != nil {
		return resolved, fmt.Errorf("failed to parse response from the service: %w", err)
	}
	return resolved, nil
}

func fetchVisualization() ([]byte, error) {
	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Get(fmt.Sprintf("%s/api/visualize", baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var apiErr datatypes.ErrorResponse
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", apiErr.Error)
		}
		return nil, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	var visual datatypes.VisualizeResponse
	if err := json.Unmarshal(bodyBytes, &visual); err != nil {
		return nil, fmt.Errorf("failed to parse response from the service: %w", err)
	}

	png, err := base64.StdEncoding.DecodeString(visual.Image)
	if err != nil {
		return nil, fmt.Errorf("service sent malformed image data: %w", err)
	}
	return png, nil
}

// runDetect exits with CLIExitDeadlock when a cycle is found so scripts can
// branch on the result without parsing output.
func runDetect(cmd *cobra.Command, args []string) {
	deadlocked, err := fetchDetect()
	if err != nil {
		fail("Could not run detection", err)
	}

	if jsonOutput {
		OutputData("detect", datatypes.DetectResponse{Deadlock: deadlocked})
	} else if deadlocked {
		fmt.Printf("%s %s\n", ux.IconCycle.Render(), ux.Styles.Error.Render("Deadlock detected: circular wait in the allocation graph"))
	} else {
		ux.Success("No deadlock")
	}

	if deadlocked {
		os.Exit(CLIExitDeadlock)
	}
}

func runResolve(cmd *cobra.Command, args []string) {
	resolved, err := sendResolve()
	if err != nil {
		fail("Could not resolve", err)
	}

	if jsonOutput {
		OutputData("resolve", resolved)
		return
	}

	if !resolved.Resolved {
		ux.Info(resolved.Message)
		return
	}

	ux.Success(fmt.Sprintf("Terminated process %s", resolved.Terminated))
	if len(resolved.Processes) == 0 {
		ux.Muted("No processes remain.")
		return
	}
	ux.Muted("Remaining processes:")
	names := make([]string, 0, len(resolved.Processes))
	for name := range resolved.Processes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entry := resolved.Processes[name]
		ux.Allocation(name, entry.Holds, entry.Requests)
	}
}

func runVisualize(cmd *cobra.Command, args []string) {
	png, err := fetchVisualization()
	if err != nil {
		fail("Could not render the graph", err)
	}

	if err := os.WriteFile(outputFile, png, 0644); err != nil {
		fail("Could not write the image file", err)
	}

	if jsonOutput {
		OutputData("visualize", map[string]interface{}{
			"file":       outputFile,
			"size_bytes": len(png),
		})
		return
	}
	ux.Success(fmt.Sprintf("Wrote %s (%d bytes)", outputFile, len(png)))
}
