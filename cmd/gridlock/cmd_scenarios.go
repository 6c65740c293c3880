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
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/AleutianAI/gridlock/pkg/ux"
	"github.com/spf13/cobra"
)

// ScenarioInfo describes one preset offered by the service.
type ScenarioInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Processes   []ScenarioProcess `json:"processes"`
}

// ScenarioProcess is one declaration inside a preset.
type ScenarioProcess struct {
	Name     string `json:"name"`
	Holds    string `json:"holds"`
	Requests string `json:"requests"`
}

type scenarioListResponse struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
}

type applyScenarioResponse struct {
	Success   bool                    `json:"success"`
	Scenario  string                  `json:"scenario"`
	Processes map[string]ProcessEntry `json:"processes"`
}

func fetchScenarios() ([]ScenarioInfo, error) {
	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Get(fmt.Sprintf("%s/api/scenarios", baseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	var list scenarioListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse response from the service: %w", err)
	}
	return list.Scenarios, nil
}

func sendApplyScenario(name string) (applyScenarioResponse, error) {
	var applied applyScenarioResponse
	baseURL := getServerBaseURL()
	applyURL := fmt.Sprintf("%s/api/scenarios/%s/apply", baseURL, url.PathEscape(name))

	resp, err := newAPIClient().Post(applyURL, "application/json", nil)
	if err != nil {
		return applied, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return applied, fmt.Errorf("no scenario named %q, run 'gridlock scenarios' to list them", name)
	}
	if resp.StatusCode != http.StatusOK {
		return applied, fmt.Errorf("service returned an error: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&applied); err != nil {
		return applied, fmt.Errorf("failed to parse response from the service: %w", err)
	}
	return applied, nil
}

func runScenarios(cmd *cobra.Command, args []string) {
	scenarios, err := fetchScenarios()
	if err != nil {
		fail("Could not list scenarios", err)
	}

	if jsonOutput {
		OutputData("scenarios", scenarios)
		return
	}

	if len(scenarios) == 0 {
		ux.Muted("No scenario presets available.")
		return
	}

	ux.Title("Scenario Presets")
	for _, s := range scenarios {
		desc := s.Description
		if desc == "" {
			desc = fmt.Sprintf("%d processes", len(s.Processes))
		}
		fmt.Printf("%s %s %s\n",
			ux.IconBullet.Render(),
			ux.Styles.Bold.Render(s.Name),
			ux.Styles.Muted.Render(desc),
		)
	}
}

func runLoad(cmd *cobra.Command, args []string) {
	name := args[0]
	applied, err := sendApplyScenario(name)
	if err != nil {
		fail("Could not load scenario", err)
	}

	if jsonOutput {
		OutputData("load", applied)
		return
	}

	ux.Success(fmt.Sprintf("Loaded scenario %s (%d processes)", applied.Scenario, len(applied.Processes)))
	names := make([]string, 0, len(applied.Processes))
	for procName := range applied.Processes {
		names = append(names, procName)
	}
	sort.Strings(names)
	for _, procName := range names {
		entry := applied.Processes[procName]
		ux.Allocation(procName, entry.Holds, entry.Requests)
	}
}
