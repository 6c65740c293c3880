// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for user-supplied
// identifiers.
//
// Process and resource names arrive from the HTTP API, the CLI, and scenario
// files, and end up in log lines, prompts, and rendered images. Validating
// them here keeps control characters and unbounded strings out of all three.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxNameLength bounds process and resource identifiers.
const MaxNameLength = 64

// namePattern matches printable identifiers with no control characters.
// Interior spaces are allowed; names like "disk B" appear in teaching
// scenarios.
var namePattern = regexp.MustCompile(`^[^\x00-\x1f\x7f]{1,64}$`)

// ValidateName validates a process or resource identifier.
//
// Valid names:
//   - 1-64 characters after trimming surrounding whitespace
//   - no control characters
//   - not blank
//
// Returns an error describing the first violation found.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("name too long: %d characters (max %d)", len(name), MaxNameLength)
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: control characters are not allowed", name)
	}

	return nil
}

// ValidateNames validates multiple identifiers.
// Returns an error listing all invalid names if any fail validation.
func ValidateNames(names []string) error {
	var invalid []string
	for _, n := range names {
		if err := ValidateName(n); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid names: %v", invalid)
	}
	return nil
}

// SanitizeName trims surrounding whitespace and validates the result.
// Returns the trimmed name if valid, or an error if invalid.
//
// Use this at input boundaries so "P1 " and "P1" refer to the same process:
//
//	name, err := validation.SanitizeName(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := ValidateName(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
