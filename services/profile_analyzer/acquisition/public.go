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
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

const publicTimeout = 10 * time.Second

// publicEndpoints are third-party mirrors that republish profile pages.
// They only yield a follower count, so records from this strategy carry
// zero following/post counts.
func publicEndpoints(username string) []string {
	return []string{
		fmt.Sprintf("https://nitter.net/%s/rss", username),
		fmt.Sprintf("https://r.jina.ai/http://instagram.com/%s", username),
		fmt.Sprintf("https://r.jina.ai/http://www.instagram.com/%s", username),
	}
}

// publicStrategy scans mirror payloads for a follower count. Partial data
// beats synthetic data.
type publicStrategy struct {
	client HTTPClient
}

func (s *publicStrategy) Name() string { return "public_api" }

func (s *publicStrategy) Fetch(ctx context.Context, username string) Outcome {
	var last Outcome = Failed(ReasonConnection, nil)

	for _, endpoint := range publicEndpoints(username) {
		result, err := getWithTimeout(ctx, s.client, endpoint, nil, publicTimeout)
		if err != nil {
			last = Failed(ReasonConnection, err)
			continue
		}
		if result.status != http.StatusOK {
			last = Failed(classifyStatus(result.status), fmt.Errorf("public endpoint status %d", result.status))
			continue
		}

		followers := followerCountFromText(result.body)
		if followers < 0 {
			last = Failed(ReasonParse, nil)
			continue
		}

		return Success(&datatypes.ProfileRecord{
			Identifier:      username,
			FollowerCount:   followers,
			HasProfileImage: true,
			Biography:       "Data from public API",
			AccountAgeDays:  defaultAccountAgeDays,
			Method:          datatypes.MethodScrapedPublic,
		})
	}

	return last
}
