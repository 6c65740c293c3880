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
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AleutianAI/gridlock/pkg/ux"
	"github.com/AleutianAI/gridlock/services/deadlock/datatypes"
	"github.com/spf13/cobra"
)

// chatResult is the answer text plus whether it came from the canned
// fallback because the model was unreachable.
type chatResult struct {
	Answer   string `json:"answer"`
	Fallback bool   `json:"fallback"`
}

func sendChatMessage(message string) (chatResult, error) {
	var result chatResult
	postBody, err := json.Marshal(datatypes.ChatRequest{Message: message})
	if err != nil {
		return result, fmt.Errorf("failed to create request body: %w", err)
	}

	baseURL := getServerBaseURL()
	resp, err := newAPIClient().Post(fmt.Sprintf("%s/api/chat", baseURL),
		"application/json", bytes.NewBuffer(postBody))
	if err != nil {
		return result, fmt.Errorf("failed to connect to the deadlock service: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	switch resp.StatusCode {
	case http.StatusOK:
		var chat datatypes.ChatResponse
		if err := json.Unmarshal(bodyBytes, &chat); err != nil {
			return result, fmt.Errorf("failed to parse response from the service: %w", err)
		}
		result.Answer = chat.Response
		return result, nil

	case http.StatusTooManyRequests:
		return result, fmt.Errorf("the chat endpoint is rate limited, try again in a moment")

	case http.StatusInternalServerError:
		// The service sends canned guidance when the model is unreachable
		var chatErr datatypes.ChatErrorResponse
		if json.Unmarshal(bodyBytes, &chatErr) == nil && chatErr.Fallback != "" {
			result.Answer = chatErr.Fallback
			result.Fallback = true
			return result, nil
		}
		return result, fmt.Errorf("service returned an error: %s", resp.Status)

	default:
		var apiErr datatypes.ErrorResponse
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return result, fmt.Errorf("service rejected the message: %s", apiErr.Error)
		}
		return result, fmt.Errorf("service returned an error: %s", resp.Status)
	}
}

func runChat(cmd *cobra.Command, args []string) {
	message := strings.Join(args, " ")

	var result chatResult
	send := func() error {
		var err error
		result, err = sendChatMessage(message)
		return err
	}

	var err error
	if jsonOutput {
		err = send()
	} else {
		err = ux.WithSpinner("Consulting the model", send)
	}
	if err != nil {
		fail("Chat failed", err)
	}

	if jsonOutput {
		OutputData("chat", result)
		return
	}

	if result.Fallback {
		ux.Warning("The model was unavailable, showing canned guidance")
	}
	fmt.Printf("\nAnswer:\n%s\n", result.Answer)
}
