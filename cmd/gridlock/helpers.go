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
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/gridlock/cmd/gridlock/config"
)

// Constants for default connection settings
const (
	DefaultServerPort = 12240
	DefaultServerHost = "localhost"
)

// getServerBaseURL returns the address of the deadlock service.
func getServerBaseURL() string {
	// 1. Priority: --server flag
	if serverURL != "" {
		return strings.TrimRight(serverURL, "/")
	}
	// 2. Environment Variable (Used by Tests & Docker overrides)
	if url := os.Getenv("GRIDLOCK_SERVER"); url != "" {
		return strings.TrimRight(url, "/")
	}
	// 3. Config file
	if url := config.Global.Server.URL; url != "" {
		return strings.TrimRight(url, "/")
	}
	// 4. Default: Standard Host/Port
	return fmt.Sprintf("http://%s:%d", DefaultServerHost, DefaultServerPort)
}

// newAPIClient returns an HTTP client honoring the configured timeout. The
// chat endpoint can block for the full LLM generation window, so the default
// keeps headroom above the server's own 60s deadline.
func newAPIClient() *http.Client {
	timeout := 90 * time.Second
	if config.Global.Server.TimeoutSeconds > 0 {
		timeout = time.Duration(config.Global.Server.TimeoutSeconds) * time.Second
	}
	return &http.Client{Timeout: timeout}
}
