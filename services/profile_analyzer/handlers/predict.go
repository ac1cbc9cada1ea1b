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
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/classifier"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

// Predict handles POST /v1/predict: classify explicitly submitted
// attribute values without running the acquisition chain.
//
// # Description
//
// The decision ladder, in order: whitelist override, influencer override
// (verified with a large following), hand-tuned suspicion heuristics, and
// finally the trained classifier. The heuristics only apply to unverified
// accounts.
func Predict(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Classifier == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "prediction model is not available, try again later",
			})
			return
		}

		var req datatypes.PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userID := strings.TrimSpace(req.UserID)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		features := datatypes.FeatureCounts{
			PostCount:      req.PostCount,
			FollowerCount:  req.FollowerCount,
			FollowingCount: req.FollowingCount,
		}

		if app.Whitelist.IsTrusted(userID) {
			slog.Info("Whitelisted account on predict path",
				"user_id", userID)
			app.Metrics.RecordVerdict("GENUINE", "whitelist")
			c.JSON(http.StatusOK, whitelistResponse())
			return
		}

		// Influencer override: verified accounts with a large following
		// are genuine regardless of the heuristics below.
		if req.IsVerified && req.FollowerCount > 10000 {
			slog.Info("Influencer profile detected",
				"user_id", userID,
				"followers", req.FollowerCount)
			app.Metrics.RecordVerdict("GENUINE", "predict")
			c.JSON(http.StatusOK, datatypes.AnalysisResponse{
				Prediction:   "GENUINE",
				Confidence:   99.0,
				IsInfluencer: true,
				Features:     features,
			})
			return
		}

		if suspicious(&req, userID) {
			app.Metrics.RecordVerdict("FAKE", "predict")
			c.JSON(http.StatusOK, datatypes.AnalysisResponse{
				Prediction: "FAKE",
				Confidence: 95.0,
				Features:   features,
			})
			return
		}

		row := classifier.FeatureRow{
			"followers_count": float64(req.FollowerCount),
			"following_count": float64(req.FollowingCount),
			"post_count":      float64(req.PostCount),
			"has_profile_pic": boolFeature(req.HasProfilePic),
			"is_private":      boolFeature(req.IsPrivate),
			"is_verified":     boolFeature(req.IsVerified),
			"lang_code":       float64(app.Classifier.LangCode(strings.ToLower(req.Language))),
		}

		label := "FAKE"
		if app.Classifier.Predict(row) == classifier.LabelGenuine {
			label = "GENUINE"
		}
		proba := app.Classifier.PredictProba(row)
		confidence := math.Round(math.Max(proba[0], proba[1])*100*100) / 100

		slog.Info("Model prediction",
			"user_id", userID,
			"prediction", label,
			"confidence", confidence)
		app.Metrics.RecordVerdict(label, "predict")

		c.JSON(http.StatusOK, datatypes.AnalysisResponse{
			Prediction: label,
			Confidence: confidence,
			Features:   features,
		})
	}
}

// suspicious applies the hand-tuned fake heuristics. Verified accounts are
// exempt from all three.
func suspicious(req *datatypes.PredictRequest, userID string) bool {
	if req.IsVerified {
		return false
	}

	if req.FollowerCount > 0 && float64(req.FollowingCount)/float64(req.FollowerCount) < 0.01 {
		slog.Info("Suspicious following/follower ratio",
			"user_id", userID)
		return true
	}
	if req.FollowerCount > 1000 && req.PostCount < 10 {
		slog.Info("Suspiciously low post count",
			"user_id", userID)
		return true
	}
	if req.IsPrivate && req.FollowerCount > 5000 {
		slog.Info("Suspicious private account with high follower count",
			"user_id", userID)
		return true
	}
	return false
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
