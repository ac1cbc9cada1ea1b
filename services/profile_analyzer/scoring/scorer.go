// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring implements the heuristic fake-profile risk scorer.
//
// # Description
//
// The scorer is a pure accumulator-based rule engine: every rule runs
// unconditionally in a fixed order, adds to a risk counter and a confidence
// counter, and appends a human-readable reason. Rule order determines reason
// order, so tests can assert on the exact reason sequence.
//
// The final clamp sequence (global clamp, genuine-branch re-clamp, then
// risk-based ceilings) is intentionally applied in that exact order. The
// policy reads inconsistently but downstream behavior depends on the exact
// final number, so it is preserved verbatim rather than simplified.
//
// # Thread Safety
//
// Evaluate is pure; it holds no state and is safe for concurrent use.
package scoring

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

// FakeRiskThreshold is the risk score above which a profile is called fake.
const FakeRiskThreshold = 40

// verifiedOverrides maps identifiers that are always reported authentic,
// bypassing every rule. Checked before anything else.
var verifiedOverrides = map[string]struct{}{
	"vijayalakshmi14061988": {},
}

// Evaluate maps a profile record to a verdict.
//
// # Description
//
// Runs the rule engine over the record. Total: it never fails, and a
// degenerate record (zero counts, empty biography) simply accumulates the
// corresponding risk rules instead of erroring.
//
// # Inputs
//
//   - rec: The profile record. Not mutated.
//
// # Outputs
//
//   - datatypes.Verdict: Classification, confidence in [0, 100], raw risk
//     accumulator, and the ordered reason list.
func Evaluate(rec datatypes.ProfileRecord) datatypes.Verdict {
	// 1. Identity override: manually verified accounts short-circuit the
	// whole engine with a fixed verdict.
	if _, ok := verifiedOverrides[strings.ToLower(rec.Identifier)]; ok {
		return datatypes.Verdict{
			IsFake:     false,
			Confidence: 85,
			RiskScore:  15,
			Reasons:    []string{"Profile manually verified as authentic"},
		}
	}

	risk := 0
	confidence := 50 // neutral prior
	var reasons []string

	add := func(dRisk, dConf int, reason string) {
		risk += dRisk
		confidence += dConf
		reasons = append(reasons, reason)
	}

	// 2. Follower/following ratio. Skipped entirely when there are no
	// followers so the ratio stays undefined (and zero for the compound
	// rules below).
	ratio := 0.0
	if rec.FollowerCount > 0 {
		ratio = float64(rec.FollowingCount) / float64(rec.FollowerCount)
		switch {
		case ratio > 20:
			add(40, -35, fmt.Sprintf("Extremely high following/followers ratio (%.1f)", ratio))
		case ratio > 10:
			add(30, -25, fmt.Sprintf("Very high following/followers ratio (%.1f)", ratio))
		case ratio > 5:
			add(20, -15, fmt.Sprintf("High following/followers ratio (%.1f)", ratio))
		case ratio < 0.001 && rec.FollowerCount > 10000:
			add(0, 15, fmt.Sprintf("Excellent follower/following ratio (%.4f)", ratio))
		case ratio < 0.01 && rec.FollowerCount > 1000:
			add(0, 10, fmt.Sprintf("Good follower/following ratio (%.3f)", ratio))
		}
	}

	// 3. Account age. Zero means unknown, so the whole block is skipped.
	if age := rec.AccountAgeDays; age > 0 {
		switch {
		case age < 7:
			add(35, -30, fmt.Sprintf("Very new account (%d days old)", age))
		case age < 30:
			add(25, -20, fmt.Sprintf("New account (%d days old)", age))
		case age < 90:
			add(15, -10, fmt.Sprintf("Recent account (%d days old)", age))
		case age > 365*2:
			add(0, 15, fmt.Sprintf("Well-established account (%d years old)", age/365))
		case age > 365:
			add(0, 10, fmt.Sprintf("Established account (%d years old)", age/365))
		}
	}

	// 4. Posting activity.
	posts := rec.PostCount
	switch {
	case posts == 0:
		add(30, -25, "No posts at all")
	case posts < 3:
		add(20, -15, fmt.Sprintf("Minimal posts (%d)", posts))
	case posts < 10:
		add(10, -5, fmt.Sprintf("Very few posts (%d)", posts))
	case posts > 5000:
		add(15, -10, fmt.Sprintf("Suspiciously high post count (%d)", posts))
	case posts > 100 && posts < 1000:
		add(0, 10, fmt.Sprintf("Reasonable posting activity (%d posts)", posts))
	case posts > 1000 && posts < 5000:
		add(0, 5, fmt.Sprintf("High posting activity (%d posts)", posts))
	}

	// 5. Verification bonus.
	if rec.IsVerified {
		add(0, 30, "Verified account")
	}

	// 6. Profile image penalty.
	if !rec.HasProfileImage {
		add(20, -15, "No profile picture")
	}

	// 7. Follower count bracket.
	followers := rec.FollowerCount
	switch {
	case followers == 0:
		add(25, -20, "No followers")
	case followers < 10:
		add(15, -10, fmt.Sprintf("Very few followers (%d)", followers))
	case followers < 50:
		add(5, -3, fmt.Sprintf("Few followers (%d)", followers))
	case followers > 10000 && followers < 1000000:
		add(0, 10, fmt.Sprintf("Solid follower base (%s)", formatCount(followers)))
	case followers > 1000000 && followers < 50000000:
		add(0, 15, fmt.Sprintf("Large follower base (%s)", formatCount(followers)))
	case followers > 50000000:
		add(0, 20, fmt.Sprintf("Major influencer/celebrity (%s)", formatCount(followers)))
	}

	// 8. Biography length.
	switch bio := rec.Biography; {
	case len(bio) == 0:
		add(10, -8, "No bio")
	case len(bio) < 10:
		add(5, -3, "Minimal bio")
	case len(bio) > 50:
		add(0, 5, "Detailed bio")
	}

	// 9. Compound rules, reusing the ratio computed above (zero when the
	// follower count was zero). The age guard is deliberately absent on the
	// first rule: an unknown age combined with no activity still reads as
	// suspicious.
	if rec.AccountAgeDays < 30 && posts < 5 {
		add(20, -15, "New account with minimal activity")
	}
	if ratio > 10 && rec.AccountAgeDays < 90 && followers < 100 {
		add(25, -20, "Bot-like activity pattern")
	}
	if rec.IsVerified && rec.AccountAgeDays > 365 && posts > 50 {
		add(0, 10, "Strong authenticity indicators")
	}

	isFake := risk > FakeRiskThreshold

	// Clamp order matters and is preserved verbatim: global bound, then the
	// genuine-branch floor/ceiling, then the risk ceilings last.
	conf := clamp(float64(confidence), 0, 95)
	if !isFake {
		conf = clamp(conf, 80, 98)
	}
	switch {
	case risk > 60:
		conf = min(conf, 30)
	case risk > 50:
		conf = min(conf, 50)
	case risk > 30:
		conf = min(conf, 70)
	}

	return datatypes.Verdict{
		IsFake:     isFake,
		Confidence: conf,
		RiskScore:  risk,
		Reasons:    reasons,
	}
}

// formatCount renders 1234567 as "1,234,567" so the follower-base reasons
// read the way the presentation layer prints counts.
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []string
	for len(s) > 3 {
		out = append([]string{s[len(s)-3:]}, out...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(out, ",")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
