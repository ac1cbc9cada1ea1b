// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"strings"
)

// VerdictReport is the CLI-facing view of one analysis result.
type VerdictReport struct {
	Username   string
	Prediction string // "GENUINE" | "FAKE"
	Confidence float64
	RiskScore  int
	Reasons    []string

	FollowerCount  int
	FollowingCount int
	PostCount      int

	AcquisitionMethod string
	Whitelisted       bool
}

// RenderVerdict formats a report for terminal display.
func RenderVerdict(r VerdictReport) string {
	var b strings.Builder

	header := fmt.Sprintf("@%s: %s (%.1f%% confidence)", r.Username, r.Prediction, r.Confidence)
	switch {
	case r.Whitelisted:
		b.WriteString(Styles.Success.Render(header))
		b.WriteString("\n")
		b.WriteString(Styles.Muted.Render("trusted account, analysis skipped"))
	case r.Prediction == "FAKE":
		b.WriteString(Styles.Error.Render(header))
	default:
		b.WriteString(Styles.Success.Render(header))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s followers   %s following   %s posts\n",
		formatCount(r.FollowerCount),
		formatCount(r.FollowingCount),
		formatCount(r.PostCount)))

	if !r.Whitelisted {
		b.WriteString(fmt.Sprintf("risk score %d, data source %s\n", r.RiskScore, r.AcquisitionMethod))
	}

	if len(r.Reasons) > 0 {
		b.WriteString("\n")
		for _, reason := range r.Reasons {
			b.WriteString(fmt.Sprintf("%s %s\n", IconBullet, reason))
		}
	}

	return Styles.Box.Render(strings.TrimRight(b.String(), "\n"))
}

// formatCount renders 1234567 as "1,234,567".
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
