// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/ProfileSentry/pkg/validation"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/acquisition"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/middleware"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/scoring"
)

// whitelistResponse is the fixed verdict for trusted accounts. Acquisition
// and scoring are bypassed entirely, so the feature echo is all zeros.
func whitelistResponse() datatypes.AnalysisResponse {
	return datatypes.AnalysisResponse{
		Prediction:    "GENUINE",
		Confidence:    99.9,
		IsWhitelisted: true,
	}
}

// Analyze handles POST /v1/analyze: acquire a profile for the submitted
// handle, score it, and return the verdict.
func Analyze(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
			return
		}

		username := validation.NormalizeUsername(req.Username)
		if err := validation.ValidateUsername(username); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if app.Whitelist.IsTrusted(username) {
			slog.Info("Whitelisted account, skipping analysis",
				"username", username,
				"request_id", middleware.GetRequestID(c))
			app.Metrics.RecordVerdict("GENUINE", "whitelist")
			c.JSON(http.StatusOK, whitelistResponse())
			return
		}

		rec, err := app.Pipeline.Fetch(c.Request.Context(), username)
		if err != nil {
			if errors.Is(err, acquisition.ErrEmptyIdentifier) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
				return
			}
			slog.Error("Acquisition chain exhausted",
				"username", username,
				"error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile data is unavailable, try again later"})
			return
		}

		verdict := scoring.Evaluate(*rec)
		app.Metrics.RecordVerdict(verdict.Label(), "analyze")

		slog.Info("Profile analyzed",
			"username", username,
			"prediction", verdict.Label(),
			"risk_score", verdict.RiskScore,
			"method", rec.Method,
			"request_id", middleware.GetRequestID(c))

		c.JSON(http.StatusOK, datatypes.AnalysisResponse{
			Prediction: verdict.Label(),
			Confidence: verdict.Confidence,
			Features: datatypes.FeatureCounts{
				PostCount:      rec.PostCount,
				FollowerCount:  rec.FollowerCount,
				FollowingCount: rec.FollowingCount,
			},
			RiskScore:         verdict.RiskScore,
			Reasons:           verdict.Reasons,
			AcquisitionMethod: rec.Method,
		})
	}
}
