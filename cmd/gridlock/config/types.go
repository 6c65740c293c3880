// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

type GridlockConfig struct {
	// Server: where the deadlock service lives
	Server ServerConfig `yaml:"server"`

	// Personality: default output style (full, standard, minimal, machine).
	// Empty picks automatically based on whether stdout is a terminal.
	Personality string `yaml:"personality,omitempty"`
}

type ServerConfig struct {
	URL            string `yaml:"url"`             // e.g. http://localhost:12240
	TimeoutSeconds int    `yaml:"timeout_seconds"` // per-request HTTP timeout
}

func DefaultConfig() GridlockConfig {
	return GridlockConfig{
		Server: ServerConfig{
			URL:            "http://localhost:12240",
			TimeoutSeconds: 90,
		},
	}
}
