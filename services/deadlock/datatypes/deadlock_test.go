// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"strings"
	"testing"
)

// =============================================================================
// AddProcessRequest Validation Tests
// =============================================================================

func TestAddProcessRequest_Validate_Success(t *testing.T) {
	req := &AddProcessRequest{
		ProcessName:      "P1",
		HoldsResource:    "Printer",
		RequestsResource: "Scanner",
	}

	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got error: %v", err)
	}
}

func TestAddProcessRequest_Validate_MissingProcessName(t *testing.T) {
	req := &AddProcessRequest{
		HoldsResource:    "Printer",
		RequestsResource: "Scanner",
	}

	if err := req.Validate(); err == nil {
		t.Error("expected error for missing process_name, got nil")
	}
}

func TestAddProcessRequest_Validate_MissingHoldsResource(t *testing.T) {
	req := &AddProcessRequest{
		ProcessName:      "P1",
		RequestsResource: "Scanner",
	}

	if err := req.Validate(); err == nil {
		t.Error("expected error for missing holds_resource, got nil")
	}
}

func TestAddProcessRequest_Validate_MissingRequestsResource(t *testing.T) {
	req := &AddProcessRequest{
		ProcessName:   "P1",
		HoldsResource: "Printer",
	}

	if err := req.Validate(); err == nil {
		t.Error("expected error for missing requests_resource, got nil")
	}
}

func TestAddProcessRequest_Validate_ControlCharacterName(t *testing.T) {
	req := &AddProcessRequest{
		ProcessName:      "P1\x00",
		HoldsResource:    "Printer",
		RequestsResource: "Scanner",
	}

	if err := req.Validate(); err == nil {
		t.Error("expected error for control character in name, got nil")
	}
}

func TestAddProcessRequest_Validate_OverlongName(t *testing.T) {
	req := &AddProcessRequest{
		ProcessName:      strings.Repeat("a", 65),
		HoldsResource:    "Printer",
		RequestsResource: "Scanner",
	}

	if err := req.Validate(); err == nil {
		t.Error("expected error for over-length name, got nil")
	}
}

// =============================================================================
// ChatRequest Validation Tests
// =============================================================================

func TestChatRequest_Validate_Success(t *testing.T) {
	req := &ChatRequest{Message: "Is there a deadlock right now?"}

	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got error: %v", err)
	}
}

func TestChatRequest_Validate_MissingMessage(t *testing.T) {
	req := &ChatRequest{}

	if err := req.Validate(); err == nil {
		t.Error("expected error for missing message, got nil")
	}
}

func TestChatRequest_Validate_MessageTooLarge(t *testing.T) {
	req := &ChatRequest{Message: strings.Repeat("a", MaxMessageContentBytes+1)}

	if err := req.Validate(); err == nil {
		t.Errorf("expected error for message over %d bytes, got nil", MaxMessageContentBytes)
	}
}

func TestChatRequest_Validate_MessageAtLimit(t *testing.T) {
	req := &ChatRequest{Message: strings.Repeat("a", MaxMessageContentBytes)}

	if err := req.Validate(); err != nil {
		t.Errorf("expected message at exactly the byte limit to validate, got error: %v", err)
	}
}
