// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scenario provides named preset process sets for the deadlock demo.
//
// Presets ship embedded in the binary; an operator can overlay or replace
// them by pointing SCENARIO_DIR at a directory of YAML files, which is
// hot-reloaded while the service runs.
package scenario

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/gridlock/pkg/validation"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
)

const (
	// MaxScenarioFileSize bounds a single scenario file read.
	MaxScenarioFileSize = 256 * 1024

	// MaxProcessesPerScenario bounds the process list of one preset.
	MaxProcessesPerScenario = 64
)

// ProcessSpec is one process row of a preset.
type ProcessSpec struct {
	Name     string `yaml:"name" json:"name"`
	Holds    string `yaml:"holds" json:"holds"`
	Requests string `yaml:"requests" json:"requests"`
}

// Scenario is a named preset that replaces the whole allocation table when
// applied.
type Scenario struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description,omitempty"`
	Processes   []ProcessSpec `yaml:"processes" json:"processes"`
}

// Entries converts the preset into allocation-table form.
func (s *Scenario) Entries() map[string]rag.Entry {
	entries := make(map[string]rag.Entry, len(s.Processes))
	for _, p := range s.Processes {
		entries[p.Name] = rag.Entry{Holds: p.Holds, Requests: p.Requests}
	}
	return entries
}

// parseScenario unmarshals and validates one YAML document. Field values are
// sanitized in place so a parsed scenario applies without further checks.
func parseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling scenario YAML: %w", err)
	}

	if strings.TrimSpace(s.Name) == "" {
		return nil, fmt.Errorf("scenario has no name")
	}
	s.Name = strings.TrimSpace(s.Name)

	if len(s.Processes) == 0 {
		return nil, fmt.Errorf("scenario %q has no processes", s.Name)
	}
	if len(s.Processes) > MaxProcessesPerScenario {
		return nil, fmt.Errorf("scenario %q has too many processes: %d (max %d)",
			s.Name, len(s.Processes), MaxProcessesPerScenario)
	}

	seen := make(map[string]bool, len(s.Processes))
	for i := range s.Processes {
		p := &s.Processes[i]

		name, err := validation.SanitizeName(p.Name)
		if err != nil {
			return nil, fmt.Errorf("scenario %q process %d name: %w", s.Name, i, err)
		}
		holds, err := validation.SanitizeName(p.Holds)
		if err != nil {
			return nil, fmt.Errorf("scenario %q process %q holds: %w", s.Name, name, err)
		}
		requests, err := validation.SanitizeName(p.Requests)
		if err != nil {
			return nil, fmt.Errorf("scenario %q process %q requests: %w", s.Name, name, err)
		}

		if seen[name] {
			return nil, fmt.Errorf("scenario %q declares process %q twice", s.Name, name)
		}
		seen[name] = true

		p.Name, p.Holds, p.Requests = name, holds, requests
	}

	return &s, nil
}
