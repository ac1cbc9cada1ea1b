// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scoring

import (
	"strings"
	"testing"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvaluate_IdentityOverride verifies the manually-verified account always
// gets the fixed authentic verdict, regardless of every other attribute.
func TestEvaluate_IdentityOverride(t *testing.T) {
	tests := []struct {
		name string
		rec  datatypes.ProfileRecord
	}{
		{"bare record", datatypes.ProfileRecord{Identifier: "vijayalakshmi14061988"}},
		{"mixed case", datatypes.ProfileRecord{Identifier: "VijayaLakshmi14061988"}},
		{"bot-looking fields", datatypes.ProfileRecord{
			Identifier:     "vijayalakshmi14061988",
			FollowerCount:  1,
			FollowingCount: 9000,
			AccountAgeDays: 2,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.rec)
			assert.False(t, v.IsFake)
			assert.Equal(t, 85.0, v.Confidence)
			assert.Equal(t, 15, v.RiskScore)
			assert.Equal(t, []string{"Profile manually verified as authentic"}, v.Reasons)
		})
	}
}

// TestEvaluate_ZeroFollowersSkipsRatio checks the division guard: with zero
// followers the ratio rules must not run and must not contribute anything.
func TestEvaluate_ZeroFollowersSkipsRatio(t *testing.T) {
	v := Evaluate(datatypes.ProfileRecord{
		Identifier:      "someone",
		FollowerCount:   0,
		FollowingCount:  4000,
		PostCount:       200,
		AccountAgeDays:  400,
		HasProfileImage: true,
		Biography:       strings.Repeat("b", 60),
	})
	for _, r := range v.Reasons {
		assert.NotContains(t, r, "ratio", "ratio rule must be skipped when follower_count == 0")
	}
	// The compound bot-pattern rule reuses the ratio and must also stay quiet.
	assert.NotContains(t, v.Reasons, "Bot-like activity pattern")
	// Only the zero-follower bracket should have added follower risk.
	assert.Contains(t, v.Reasons, "No followers")
}

// TestEvaluate_FakeThreshold exercises the decision boundary. Rule weights
// are all multiples of five, so 40 and 45 are the nearest reachable values
// on either side of the threshold.
func TestEvaluate_FakeThreshold(t *testing.T) {
	base := datatypes.ProfileRecord{
		Identifier:      "threshold_case",
		FollowerCount:   100,
		FollowingCount:  2100, // ratio 21 -> risk +40
		PostCount:       150,
		AccountAgeDays:  400,
		HasProfileImage: true,
	}

	t.Run("risk exactly 40 is genuine", func(t *testing.T) {
		rec := base
		rec.Biography = strings.Repeat("x", 60)
		v := Evaluate(rec)
		require.Equal(t, 40, v.RiskScore)
		assert.False(t, v.IsFake)
	})

	t.Run("risk 45 is fake", func(t *testing.T) {
		rec := base
		rec.Biography = "short" // < 10 chars -> risk +5
		v := Evaluate(rec)
		require.Equal(t, 45, v.RiskScore)
		assert.True(t, v.IsFake)
	})
}

// TestEvaluate_RiskImpliesFake fuzzes the invariant risk > 40 <=> fake over
// a spread of profiles.
func TestEvaluate_RiskImpliesFake(t *testing.T) {
	recs := []datatypes.ProfileRecord{
		{Identifier: "a"},
		{Identifier: "b", FollowerCount: 5, FollowingCount: 4000, AccountAgeDays: 3},
		{Identifier: "c", FollowerCount: 50000, FollowingCount: 200, PostCount: 300, AccountAgeDays: 800, IsVerified: true, HasProfileImage: true, Biography: strings.Repeat("b", 80)},
		{Identifier: "d", FollowerCount: 120, FollowingCount: 110, PostCount: 40, AccountAgeDays: 200, HasProfileImage: true, Biography: "hello there, this is a biography over fifty characters long"},
		{Identifier: "e", FollowerCount: 2000000, FollowingCount: 150, PostCount: 2500, AccountAgeDays: 3000, IsVerified: true, HasProfileImage: true, Biography: strings.Repeat("b", 80)},
		{Identifier: "f", FollowingCount: 10, PostCount: 1, HasProfileImage: false},
	}
	for _, rec := range recs {
		v := Evaluate(rec)
		assert.Equal(t, v.RiskScore > FakeRiskThreshold, v.IsFake, "identifier %s", rec.Identifier)
		assert.GreaterOrEqual(t, v.Confidence, 0.0)
		assert.LessOrEqual(t, v.Confidence, 98.0)
	}
}

// TestEvaluate_CeilingMonotonic verifies the risk-based confidence ceilings:
// higher risk never yields higher confidence across the ceiling bands.
func TestEvaluate_CeilingMonotonic(t *testing.T) {
	// Identical shape, only the following count (and therefore the ratio
	// band) escalates: 20/30/40 ratio risk on top of a fixed 25 from the
	// image and bio penalties.
	low := Evaluate(datatypes.ProfileRecord{ // ratio 5.5 -> risk 45
		Identifier: "low", FollowerCount: 1000, FollowingCount: 5500,
		PostCount: 150, AccountAgeDays: 400, Biography: "short",
	})
	mid := Evaluate(datatypes.ProfileRecord{ // ratio 11.0 -> risk 55
		Identifier: "mid", FollowerCount: 1000, FollowingCount: 11001,
		PostCount: 150, AccountAgeDays: 400, Biography: "short",
	})
	high := Evaluate(datatypes.ProfileRecord{ // ratio 21.0 -> risk 65
		Identifier: "high", FollowerCount: 1000, FollowingCount: 21001,
		PostCount: 150, AccountAgeDays: 400, Biography: "short",
	})

	require.Equal(t, 45, low.RiskScore)
	require.Equal(t, 55, mid.RiskScore)
	require.Equal(t, 65, high.RiskScore)

	assert.LessOrEqual(t, high.Confidence, 30.0)
	assert.LessOrEqual(t, mid.Confidence, 50.0)
	assert.LessOrEqual(t, low.Confidence, 70.0)
	assert.LessOrEqual(t, high.Confidence, mid.Confidence)
	assert.LessOrEqual(t, mid.Confidence, low.Confidence)
}

// TestEvaluate_EstablishedVerifiedProfile is the end-to-end genuine scenario.
func TestEvaluate_EstablishedVerifiedProfile(t *testing.T) {
	v := Evaluate(datatypes.ProfileRecord{
		Identifier:      "established",
		FollowerCount:   50000,
		FollowingCount:  200,
		PostCount:       300,
		AccountAgeDays:  800,
		IsVerified:      true,
		HasProfileImage: true,
		Biography:       strings.Repeat("b", 80),
	})
	assert.False(t, v.IsFake)
	assert.GreaterOrEqual(t, v.Confidence, 80.0)
	assert.LessOrEqual(t, v.Confidence, 98.0)
}

// TestEvaluate_BotProfile is the end-to-end fake scenario: compound rules
// stack the risk well past 60 so the tightest ceiling applies.
func TestEvaluate_BotProfile(t *testing.T) {
	v := Evaluate(datatypes.ProfileRecord{
		Identifier:      "bot_account_123456789",
		FollowerCount:   5,
		FollowingCount:  4000,
		PostCount:       0,
		AccountAgeDays:  3,
		IsVerified:      false,
		HasProfileImage: false,
	})
	assert.True(t, v.IsFake)
	assert.Greater(t, v.RiskScore, 60)
	assert.LessOrEqual(t, v.Confidence, 30.0)
}

// TestEvaluate_ReasonOrdering pins the exact reason sequence to rule
// evaluation order (not weight order).
func TestEvaluate_ReasonOrdering(t *testing.T) {
	v := Evaluate(datatypes.ProfileRecord{
		Identifier:      "ordering",
		FollowerCount:   5,
		FollowingCount:  4000,
		PostCount:       0,
		AccountAgeDays:  3,
		HasProfileImage: false,
	})
	assert.Equal(t, []string{
		"Extremely high following/followers ratio (800.0)",
		"Very new account (3 days old)",
		"No posts at all",
		"No profile picture",
		"Very few followers (5)",
		"No bio",
		"New account with minimal activity",
		"Bot-like activity pattern",
	}, v.Reasons)
}

// TestEvaluate_FollowerBaseReasonsGrouped pins the thousands grouping in
// the follower-base reason strings.
func TestEvaluate_FollowerBaseReasonsGrouped(t *testing.T) {
	tests := []struct {
		name      string
		followers int
		want      string
	}{
		{"solid base", 50000, "Solid follower base (50,000)"},
		{"large base", 2000000, "Large follower base (2,000,000)"},
		{"celebrity", 60000000, "Major influencer/celebrity (60,000,000)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(datatypes.ProfileRecord{
				Identifier:      "grouped",
				FollowerCount:   tt.followers,
				FollowingCount:  200,
				PostCount:       300,
				AccountAgeDays:  800,
				HasProfileImage: true,
			})
			assert.Contains(t, v.Reasons, tt.want)
		})
	}
}

// TestEvaluate_UnknownAgeSkipsAgeRules confirms zero age means unknown.
func TestEvaluate_UnknownAgeSkipsAgeRules(t *testing.T) {
	v := Evaluate(datatypes.ProfileRecord{
		Identifier:      "ageless",
		FollowerCount:   200,
		FollowingCount:  100,
		PostCount:       50,
		AccountAgeDays:  0,
		HasProfileImage: true,
		Biography:       strings.Repeat("b", 60),
	})
	for _, r := range v.Reasons {
		assert.NotContains(t, r, "account (")
	}
}
