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
	"regexp"
	"strconv"
	"strings"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

// Profile pages embed the public counts in the meta description, e.g.
// `<meta name="description" content="1,234 Followers, 56 Following, 78
// Posts - ...">`. Parsing that line survives frontend redesigns far better
// than walking the DOM.
var (
	metaDescriptionRe = regexp.MustCompile(`(?is)<meta\s+[^>]*name=["']description["'][^>]*content=["']([^"']*)["']`)
	contentFirstRe    = regexp.MustCompile(`(?is)<meta\s+[^>]*content=["']([^"']*)["'][^>]*name=["']description["']`)
	titleRe           = regexp.MustCompile(`(?is)<title[^>]*>([^<]*)</title>`)

	followersRe = regexp.MustCompile(`(\d+(?:,\d+)*)\s*Followers?`)
	followingRe = regexp.MustCompile(`(\d+(?:,\d+)*)\s*Following`)
	postsRe     = regexp.MustCompile(`(\d+(?:,\d+)*)\s*Posts?`)
)

// followerPatterns are the looser patterns tried against public-endpoint
// payloads, which may be RSS, markdown, or embedded JSON.
var followerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*followers`),
	regexp.MustCompile(`(?i)"followers":\s*(\d+)`),
	regexp.MustCompile(`(?i)followerCount["\s]*:["\s]*(\d+)`),
}

// parseCount converts "1,234,567" to an int.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// metaDescription pulls the description meta tag content out of raw HTML.
// Returns "" when the page has none.
func metaDescription(html string) string {
	if m := metaDescriptionRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	// Attribute order is not guaranteed.
	if m := contentFirstRe.FindStringSubmatch(html); m != nil {
		return m[1]
	}
	return ""
}

// recordFromHTML builds a record from a scraped profile page.
//
// # Description
//
// Prefers the meta-description counts. When those are missing but the page
// title confirms the profile exists, it degrades to a minimal record tagged
// with the minimal method so downstream consumers know the counts are
// unpopulated. Returns nil when the page tells us nothing.
func recordFromHTML(html, username string, method datatypes.AcquisitionMethod) *datatypes.ProfileRecord {
	if desc := metaDescription(html); desc != "" {
		if m := followersRe.FindStringSubmatch(desc); m != nil {
			rec := &datatypes.ProfileRecord{
				Identifier:      username,
				FollowerCount:   parseCount(m[1]),
				HasProfileImage: true,
				Biography:       desc,
				AccountAgeDays:  defaultAccountAgeDays,
				Method:          method,
			}
			if fm := followingRe.FindStringSubmatch(desc); fm != nil {
				rec.FollowingCount = parseCount(fm[1])
			}
			if pm := postsRe.FindStringSubmatch(desc); pm != nil {
				rec.PostCount = parseCount(pm[1])
			}
			return rec
		}
	}

	if m := titleRe.FindStringSubmatch(html); m != nil && strings.Contains(m[1], "Instagram") {
		return &datatypes.ProfileRecord{
			Identifier:      username,
			HasProfileImage: true,
			Biography:       "Profile exists but data extraction failed",
			AccountAgeDays:  defaultAccountAgeDays,
			Method:          datatypes.MethodScrapedMinimal,
		}
	}

	return nil
}

// followerCountFromText scans a loosely structured payload for a follower
// count. Returns -1 when no pattern matches.
func followerCountFromText(text string) int {
	for _, pattern := range followerPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return parseCount(m[1])
		}
	}
	return -1
}
