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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

const profilePage = `<!DOCTYPE html>
<html>
<head>
<title>Some Person (@someperson) &bull; Instagram photos and videos</title>
<meta name="description" content="1,234,567 Followers, 412 Following, 2,890 Posts - See Instagram photos and videos from Some Person (@someperson)">
</head>
<body></body>
</html>`

func TestRecordFromHTML_FullCounts(t *testing.T) {
	rec := recordFromHTML(profilePage, "someperson", datatypes.MethodScrapedDesktop)
	require.NotNil(t, rec)

	assert.Equal(t, "someperson", rec.Identifier)
	assert.Equal(t, 1234567, rec.FollowerCount)
	assert.Equal(t, 412, rec.FollowingCount)
	assert.Equal(t, 2890, rec.PostCount)
	assert.True(t, rec.HasProfileImage)
	assert.Equal(t, datatypes.MethodScrapedDesktop, rec.Method)
	assert.Equal(t, defaultAccountAgeDays, rec.AccountAgeDays)
}

func TestRecordFromHTML_AttributeOrderReversed(t *testing.T) {
	html := `<meta content="88 Followers, 12 Following, 3 Posts - x" name="description">`
	rec := recordFromHTML(html, "u", datatypes.MethodScrapedMobile)
	require.NotNil(t, rec)
	assert.Equal(t, 88, rec.FollowerCount)
}

func TestRecordFromHTML_TitleOnlyFallsBackToMinimal(t *testing.T) {
	html := `<html><head><title>Someone on Instagram</title></head><body>js required</body></html>`
	rec := recordFromHTML(html, "someone", datatypes.MethodScrapedMobile)
	require.NotNil(t, rec)

	assert.Equal(t, datatypes.MethodScrapedMinimal, rec.Method)
	assert.Equal(t, 0, rec.FollowerCount)
	assert.Equal(t, 0, rec.PostCount)
}

func TestRecordFromHTML_UnrelatedPage(t *testing.T) {
	html := `<html><head><title>404 Not Found</title></head></html>`
	assert.Nil(t, recordFromHTML(html, "ghost", datatypes.MethodScrapedDesktop))
}

func TestFollowerCountFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain followers", "about 4,200 followers on this page", 4200},
		{"capitalized", "12,000 Followers strong", 12000},
		{"embedded json", `{"followers": 31337}`, 31337},
		{"camel case key", `"followerCount": "9001"`, 9001},
		{"nothing", "a page about gardening", -1},
		{"empty", "", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, followerCountFromText(tt.text))
		})
	}
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 1234567, parseCount("1,234,567"))
	assert.Equal(t, 7, parseCount("7"))
	assert.Equal(t, 0, parseCount("garbage"))
	assert.Equal(t, 0, parseCount(""))
}
