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

// AddProcessRequest is the payload for registering a process together with the
// resource it holds and the resource it is waiting on.
//
// # Validation
//
// Uses go-playground/validator:
//   - ProcessName: required, valid resource name (resname)
//   - HoldsResource: required, valid resource name (resname)
//   - RequestsResource: required, valid resource name (resname)
type AddProcessRequest struct {
	ProcessName      string `json:"process_name" validate:"required,resname"`
	HoldsResource    string `json:"holds_resource" validate:"required,resname"`
	RequestsResource string `json:"requests_resource" validate:"required,resname"`
}

// Validate validates the AddProcessRequest fields after JSON binding.
func (r *AddProcessRequest) Validate() error {
	return apiValidate.Struct(r)
}

// MessageResponse carries a human-readable status message.
type MessageResponse struct {
	Message string `json:"message"`
}

// DetectResponse reports whether the current allocation state contains a cycle.
type DetectResponse struct {
	Deadlock bool `json:"deadlock"`
}

// VisualizeResponse carries the rendered allocation graph as base64 PNG data.
type VisualizeResponse struct {
	Image string `json:"image"`
}

// ErrorResponse is the generic error body returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
