// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures for the profile analyzer service.
//
// This file contains the profile record exchanged between the acquisition
// pipeline and the risk scorer, plus the verdict shape handed to the
// presentation layer.
package datatypes

import "github.com/go-playground/validator/v10"

// =============================================================================
// Acquisition Provenance
// =============================================================================

// AcquisitionMethod records which strategy produced a ProfileRecord.
//
// Provenance is for observability and testing only; it never influences
// scoring.
type AcquisitionMethod string

const (
	// MethodCached means the record was read from the on-disk cache.
	MethodCached AcquisitionMethod = "cached"

	// MethodAuthenticated means the record came from a credentialed session.
	MethodAuthenticated AcquisitionMethod = "authenticated"

	// MethodScrapedDesktop through MethodScrapedProxy identify the
	// unauthenticated scrape variant that succeeded.
	MethodScrapedDesktop AcquisitionMethod = "scraped_desktop_web"
	MethodScrapedMobile  AcquisitionMethod = "scraped_mobile_web"
	MethodScrapedAPI     AcquisitionMethod = "scraped_api_emulation"
	MethodScrapedDirect  AcquisitionMethod = "scraped_direct_request"
	MethodScrapedPublic  AcquisitionMethod = "scraped_public_api"
	MethodScrapedProxy   AcquisitionMethod = "scraped_proxy_rotation"

	// MethodScrapedMinimal marks a record where the page confirmed the
	// account exists but the counts could not be parsed.
	MethodScrapedMinimal AcquisitionMethod = "scraped_variant_minimal"

	// MethodSynthetic marks a fabricated record produced by the fallback
	// generator. Downstream consumers must be able to tell this apart from
	// real data.
	MethodSynthetic AcquisitionMethod = "synthetic"
)

// =============================================================================
// Profile Record
// =============================================================================

// ProfileRecord is the normalized set of account attributes consumed by the
// risk scorer.
//
// # Invariants
//
//   - Counts are never negative; the acquisition boundary coerces and
//     validates before a record is built.
//   - AccountAgeDays == 0 means "unknown", not "brand new".
//   - A record is immutable once produced by acquisition; the scorer never
//     mutates it.
type ProfileRecord struct {
	// Identifier is the stable account handle. Non-empty.
	Identifier string `json:"identifier"`

	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
	PostCount      int `json:"post_count"`

	// AccountAgeDays is days since account creation; 0 when unknown.
	AccountAgeDays int `json:"account_age_days"`

	IsVerified      bool `json:"is_verified"`
	IsPrivate       bool `json:"is_private"`
	HasProfileImage bool `json:"has_profile_image"`

	// Biography may be empty.
	Biography string `json:"biography"`

	// ProfileImageURL is kept for the avatar proxy; may be empty.
	ProfileImageURL string `json:"profile_image_url,omitempty"`

	// RecentPosts holds the engagement snapshot of up to MaxRecentPosts
	// posts (authenticated fetches only).
	RecentPosts []PostSnapshot `json:"recent_posts,omitempty"`

	// Method records the strategy that produced this record.
	Method AcquisitionMethod `json:"acquisition_method"`
}

// MaxRecentPosts bounds how many recent posts an authenticated fetch pulls.
const MaxRecentPosts = 12

// PostSnapshot is a compact view of one recent post.
type PostSnapshot struct {
	Likes    int    `json:"likes"`
	Comments int    `json:"comments"`
	Caption  string `json:"caption,omitempty"`
	IsVideo  bool   `json:"is_video"`
}

// =============================================================================
// Verdict
// =============================================================================

// Verdict is the output of the risk scorer.
type Verdict struct {
	IsFake bool `json:"is_fake"`

	// Confidence is in [0, 100].
	Confidence float64 `json:"confidence"`

	// RiskScore is the unbounded rule accumulator, typically 0-200.
	RiskScore int `json:"risk_score"`

	// Reasons is ordered by rule evaluation order, not by weight.
	Reasons []string `json:"reasons"`
}

// Label returns the presentation label for the verdict.
func (v Verdict) Label() string {
	if v.IsFake {
		return "FAKE"
	}
	return "GENUINE"
}

// =============================================================================
// API Request / Response Types
// =============================================================================

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	// Username is the account handle to analyze, with or without a
	// leading @.
	Username string `json:"username" binding:"required"`
}

// PredictRequest is the body of POST /v1/predict. It carries explicit
// attribute values instead of a handle, mirroring the attribute-level form
// submission path.
type PredictRequest struct {
	UserID         string `json:"user_id" binding:"required"`
	FollowerCount  int    `json:"followers_count" binding:"min=0"`
	FollowingCount int    `json:"following_count" binding:"min=0"`
	PostCount      int    `json:"post_count" binding:"min=0"`
	HasProfilePic  bool   `json:"has_profile_pic"`
	IsPrivate      bool   `json:"is_private"`
	IsVerified     bool   `json:"is_verified"`
	Language       string `json:"language,omitempty"`
}

// FeatureCounts is the feature echo embedded in every analysis response.
type FeatureCounts struct {
	PostCount      int `json:"post_count"`
	FollowerCount  int `json:"follower_count"`
	FollowingCount int `json:"following_count"`
}

// AnalysisResponse is the presentation-layer shape for both the analyze and
// predict endpoints.
type AnalysisResponse struct {
	Prediction    string        `json:"prediction"` // "GENUINE" | "FAKE"
	Confidence    float64       `json:"confidence"`
	IsWhitelisted bool          `json:"is_whitelisted"`
	IsInfluencer  bool          `json:"is_influencer,omitempty"`
	Features      FeatureCounts `json:"features"`

	// Observability extras. Absent on whitelist short-circuits.
	RiskScore         int               `json:"risk_score,omitempty"`
	Reasons           []string          `json:"reasons,omitempty"`
	AcquisitionMethod AcquisitionMethod `json:"acquisition_method,omitempty"`
}

// =============================================================================
// Shared Validator Instance
// =============================================================================

// profileValidate is the validator instance for analyzer datatypes.
var profileValidate *validator.Validate

func init() {
	profileValidate = validator.New()
	// Reuse the gin binding tags so CLI-side validation matches the
	// server's request binding.
	profileValidate.SetTagName("binding")
}

// ValidatePredict runs struct-level validation on a PredictRequest outside of
// gin binding (used by the CLI path).
func ValidatePredict(req *PredictRequest) error {
	return profileValidate.Struct(req)
}
