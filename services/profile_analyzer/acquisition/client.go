// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package acquisition

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient interface allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// defaultAccountAgeDays is used when the source does not expose a creation
// date. Unauthenticated pages never do.
const defaultAccountAgeDays = 365

// maxResponseBytes bounds how much of an upstream body a strategy reads.
const maxResponseBytes = 4 << 20

// fetchResult is one completed HTTP exchange.
type fetchResult struct {
	status int
	body   string
}

// getWithTimeout issues a GET with the given headers under a per-attempt
// deadline layered onto the caller's context.
func getWithTimeout(ctx context.Context, client HTTPClient, url string, headers map[string]string, timeout time.Duration) (*fetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &fetchResult{status: resp.StatusCode, body: string(body)}, nil
}

// classifyStatus maps a non-200 status to a failure reason.
func classifyStatus(status int) FailReason {
	switch {
	case status == http.StatusTooManyRequests:
		return ReasonRateLimited
	case status == http.StatusNotFound:
		return ReasonNotFound
	default:
		return ReasonConnection
	}
}
