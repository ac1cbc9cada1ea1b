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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/ProfileSentry/pkg/logging"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

// AnalyzerClient talks to a running profile-analyzer service over HTTP.
type AnalyzerClient struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
}

// NewAnalyzerClient creates a client for the given base URL, e.g.
// "http://localhost:12350". A nil logger disables client-side logging.
func NewAnalyzerClient(baseURL string, logger *logging.Logger) *AnalyzerClient {
	if logger == nil {
		logger = logging.New(logging.Config{Quiet: true})
	}
	return &AnalyzerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Acquisition can walk the whole strategy chain; give it room.
		http:   &http.Client{Timeout: 2 * time.Minute},
		logger: logger,
	}
}

// Analyze submits a username for full pipeline analysis.
func (c *AnalyzerClient) Analyze(ctx context.Context, username string) (*datatypes.AnalysisResponse, error) {
	req := datatypes.AnalyzeRequest{Username: username}
	var resp datatypes.AnalysisResponse
	if err := c.postJSON(ctx, "/v1/analyze", req, &resp); err != nil {
		return nil, err
	}
	c.logger.Info("analyze completed",
		"username", username,
		"prediction", resp.Prediction,
		"confidence", resp.Confidence,
	)
	return &resp, nil
}

// Predict submits explicit attribute values for classification, bypassing
// acquisition entirely.
func (c *AnalyzerClient) Predict(ctx context.Context, req *datatypes.PredictRequest) (*datatypes.AnalysisResponse, error) {
	if err := datatypes.ValidatePredict(req); err != nil {
		return nil, fmt.Errorf("invalid prediction request: %w", err)
	}
	var resp datatypes.AnalysisResponse
	if err := c.postJSON(ctx, "/v1/predict", req, &resp); err != nil {
		return nil, err
	}
	c.logger.Info("predict completed",
		"user_id", req.UserID,
		"prediction", resp.Prediction,
	)
	return &resp, nil
}

// Health checks service liveness.
func (c *AnalyzerClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("could not reach analyzer at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("analyzer returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *AnalyzerClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("could not reach analyzer at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("analyzer rejected the request: %s", apiErr.Error)
		}
		return fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		c.logger.Debug("raw analyzer response", "body", string(bodyBytes))
		return fmt.Errorf("failed to parse analyzer response: %w", err)
	}
	return nil
}
