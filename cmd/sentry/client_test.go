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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

func TestAnalyzerClient_Analyze(t *testing.T) {
	var gotPath string
	var gotBody datatypes.AnalyzeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodPost {
			t.Errorf("Method = %v, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %v, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		json.NewEncoder(w).Encode(datatypes.AnalysisResponse{
			Prediction: "FAKE",
			Confidence: 85,
			RiskScore:  65,
			Reasons:    []string{"very high following-to-follower ratio"},
			Features: datatypes.FeatureCounts{
				FollowerCount:  12,
				FollowingCount: 4000,
				PostCount:      1,
			},
			AcquisitionMethod: datatypes.MethodSynthetic,
		})
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, nil)
	resp, err := client.Analyze(context.Background(), "suspicious_user")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if gotPath != "/v1/analyze" {
		t.Errorf("path = %v, want /v1/analyze", gotPath)
	}
	if gotBody.Username != "suspicious_user" {
		t.Errorf("request username = %v, want suspicious_user", gotBody.Username)
	}
	if resp.Prediction != "FAKE" {
		t.Errorf("Prediction = %v, want FAKE", resp.Prediction)
	}
	if resp.RiskScore != 65 {
		t.Errorf("RiskScore = %v, want 65", resp.RiskScore)
	}
}

func TestAnalyzerClient_Analyze_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "username is required"})
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, nil)
	_, err := client.Analyze(context.Background(), "")
	if err == nil {
		t.Fatal("Analyze() expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "username is required") {
		t.Errorf("error = %v, want it to carry the API message", err)
	}
}

func TestAnalyzerClient_Analyze_Unreachable(t *testing.T) {
	client := NewAnalyzerClient("http://127.0.0.1:1", nil)
	_, err := client.Analyze(context.Background(), "somebody")
	if err == nil {
		t.Fatal("Analyze() expected error for unreachable server")
	}
	if !strings.Contains(err.Error(), "could not reach analyzer") {
		t.Errorf("error = %v, want connection failure message", err)
	}
}

func TestAnalyzerClient_Predict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/predict" {
			t.Errorf("path = %v, want /v1/predict", r.URL.Path)
		}
		json.NewEncoder(w).Encode(datatypes.AnalysisResponse{
			Prediction: "GENUINE",
			Confidence: 92.5,
		})
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, nil)
	resp, err := client.Predict(context.Background(), &datatypes.PredictRequest{
		UserID:        "somebody",
		FollowerCount: 500,
		HasProfilePic: true,
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if resp.Prediction != "GENUINE" {
		t.Errorf("Prediction = %v, want GENUINE", resp.Prediction)
	}
}

func TestAnalyzerClient_Predict_RejectsInvalidRequest(t *testing.T) {
	// The client validates before touching the network.
	client := NewAnalyzerClient("http://127.0.0.1:1", nil)

	tests := []struct {
		name string
		req  *datatypes.PredictRequest
	}{
		{"missing user id", &datatypes.PredictRequest{FollowerCount: 10}},
		{"negative followers", &datatypes.PredictRequest{UserID: "x", FollowerCount: -1}},
		{"negative posts", &datatypes.PredictRequest{UserID: "x", PostCount: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Predict(context.Background(), tt.req)
			if err == nil {
				t.Fatal("Predict() expected validation error")
			}
			if !strings.Contains(err.Error(), "invalid prediction request") {
				t.Errorf("error = %v, want validation message", err)
			}
		})
	}
}

func TestAnalyzerClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %v, want /health", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, nil)
	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestAnalyzerClient_Health_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewAnalyzerClient(server.URL, nil)
	if err := client.Health(context.Background()); err == nil {
		t.Error("Health() expected error for 503")
	}
}

func TestResolveServerURL(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("SENTRY_SERVER", "http://env:1")
		got := resolveServerURL("http://flag:1")
		if got != "http://flag:1" {
			t.Errorf("resolveServerURL() = %v, want flag value", got)
		}
	})

	t.Run("env beats default", func(t *testing.T) {
		t.Setenv("SENTRY_SERVER", "http://env:1")
		got := resolveServerURL("")
		if got != "http://env:1" {
			t.Errorf("resolveServerURL() = %v, want env value", got)
		}
	})

	t.Run("falls back to default", func(t *testing.T) {
		t.Setenv("SENTRY_SERVER", "")
		t.Setenv("HOME", t.TempDir()) // No config file present.
		got := resolveServerURL("")
		if got != defaultServerURL {
			t.Errorf("resolveServerURL() = %v, want %v", got, defaultServerURL)
		}
	})
}
