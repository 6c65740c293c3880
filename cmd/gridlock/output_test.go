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
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout redirects stdout during fn and returns what was written.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf strings.Builder
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("Failed to read captured output: %v", err)
	}
	return buf.String()
}

// captureStderr redirects stderr during fn and returns what was written.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stderr = w

	fn()

	w.Close()
	os.Stderr = old

	var buf strings.Builder
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("Failed to read captured output: %v", err)
	}
	return buf.String()
}

// TestOutputData_WrapsInCommandResult tests the --json envelope.
func TestOutputData_WrapsInCommandResult(t *testing.T) {
	out := captureStdout(t, func() {
		OutputData("detect", map[string]bool{"deadlock": true})
	})

	var result CommandResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if result.APIVersion != "1.0" {
		t.Errorf("APIVersion = %s, want 1.0", result.APIVersion)
	}
	if result.Command != "detect" {
		t.Errorf("Command = %s, want detect", result.Command)
	}
	if !result.Success {
		t.Error("Expected Success true")
	}
	if result.Timestamp.IsZero() {
		t.Error("Expected a non-zero timestamp")
	}
	data, ok := result.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Data has unexpected type %T", result.Data)
	}
	if data["deadlock"] != true {
		t.Errorf("Data.deadlock = %v, want true", data["deadlock"])
	}
}

// TestOutputError_PlainMode tests that plain errors go to stderr.
func TestOutputError_PlainMode(t *testing.T) {
	errOut := captureStderr(t, func() {
		OutputError(false, "Could not reach server", errors.New("connection refused"))
	})

	if errOut != "Error: Could not reach server: connection refused\n" {
		t.Errorf("Unexpected stderr output: %q", errOut)
	}
}

// TestOutputError_PlainModeNilErr tests message-only errors.
func TestOutputError_PlainModeNilErr(t *testing.T) {
	errOut := captureStderr(t, func() {
		OutputError(false, "add takes either no arguments or exactly NAME HOLDS REQUESTS", nil)
	})

	if !strings.HasPrefix(errOut, "Error: add takes") {
		t.Errorf("Unexpected stderr output: %q", errOut)
	}
	if strings.Contains(errOut, "<nil>") {
		t.Errorf("Nil error leaked into output: %q", errOut)
	}
}

// TestOutputError_JSONMode tests that --json errors are a decodable envelope on stdout.
func TestOutputError_JSONMode(t *testing.T) {
	out := captureStdout(t, func() {
		OutputError(true, "Could not reach server", errors.New("connection refused"))
	})

	var result CommandResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if result.Success {
		t.Error("Expected Success false")
	}
	if !strings.Contains(result.Error, "connection refused") {
		t.Errorf("Error = %q, want the underlying cause included", result.Error)
	}
}

// TestExitCodeConstants tests exit code constant values.
func TestExitCodeConstants(t *testing.T) {
	if CLIExitSuccess != 0 {
		t.Errorf("CLIExitSuccess = %d, want 0", CLIExitSuccess)
	}
	if CLIExitDeadlock != 1 {
		t.Errorf("CLIExitDeadlock = %d, want 1", CLIExitDeadlock)
	}
	if CLIExitError != 2 {
		t.Errorf("CLIExitError = %d, want 2", CLIExitError)
	}
}
