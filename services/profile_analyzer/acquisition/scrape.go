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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

const (
	mobileUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	botUA     = "Mozilla/5.0 (compatible; InstagramBot/1.0)"
)

// scrapeVariant is one unauthenticated page-scrape configuration. The
// variants differ only in headers and timeout; a source that rate-limits
// one browser fingerprint frequently serves another.
type scrapeVariant struct {
	method  datatypes.AcquisitionMethod
	timeout time.Duration
	url     func(username string) string
	headers func(username string) map[string]string
	// parseJSON handles API-shaped variants; nil means parse as HTML.
	parseJSON bool
}

func profileURL(username string) string {
	return fmt.Sprintf("https://www.instagram.com/%s/", url.PathEscape(username))
}

var scrapeVariants = []scrapeVariant{
	{
		method:  datatypes.MethodScrapedMobile,
		timeout: 10 * time.Second,
		url:     profileURL,
		headers: func(string) map[string]string {
			return map[string]string{
				"User-Agent":                mobileUA,
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
				"Accept-Language":           "en-US,en;q=0.5",
				"DNT":                       "1",
				"Upgrade-Insecure-Requests": "1",
				"Sec-Fetch-Dest":            "document",
				"Sec-Fetch-Mode":            "navigate",
				"Sec-Fetch-Site":            "none",
			}
		},
	},
	{
		method:  datatypes.MethodScrapedDesktop,
		timeout: 10 * time.Second,
		url:     profileURL,
		headers: func(string) map[string]string {
			return map[string]string{
				"User-Agent":                desktopUA,
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
				"Accept-Language":           "en-US,en;q=0.9",
				"Cache-Control":             "no-cache",
				"Sec-Ch-Ua-Platform":        `"Windows"`,
				"Sec-Fetch-Dest":            "document",
				"Sec-Fetch-Mode":            "navigate",
				"Sec-Fetch-Site":            "none",
				"Upgrade-Insecure-Requests": "1",
			}
		},
	},
	{
		method:    datatypes.MethodScrapedAPI,
		timeout:   10 * time.Second,
		parseJSON: true,
		url: func(username string) string {
			return fmt.Sprintf("https://www.instagram.com/api/v1/users/web_profile_info/?username=%s", url.QueryEscape(username))
		},
		headers: func(username string) map[string]string {
			return map[string]string{
				"User-Agent":       mobileUA,
				"Accept":           "*/*",
				"X-IG-App-ID":      webAppID,
				"X-Requested-With": "XMLHttpRequest",
				"Referer":          profileURL(username),
				"Sec-Fetch-Dest":   "empty",
				"Sec-Fetch-Mode":   "cors",
				"Sec-Fetch-Site":   "same-origin",
			}
		},
	},
	{
		method:  datatypes.MethodScrapedDirect,
		timeout: 5 * time.Second,
		url:     profileURL,
		headers: func(string) map[string]string {
			return map[string]string{"User-Agent": botUA}
		},
	},
}

// scrapeStrategy tries each unauthenticated variant in order and returns
// the first record any of them produces. A shared rate limiter spaces the
// outbound requests so variant retries do not burst.
type scrapeStrategy struct {
	client  HTTPClient
	limiter *rate.Limiter
}

func (s *scrapeStrategy) Name() string { return "scrape_variants" }

func (s *scrapeStrategy) Fetch(ctx context.Context, username string) Outcome {
	var last Outcome = Failed(ReasonConnection, nil)

	for _, variant := range scrapeVariants {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return Failed(ReasonConnection, err)
			}
		}

		outcome := s.tryVariant(ctx, variant, username)
		if outcome.OK() {
			return outcome
		}
		last = outcome
	}

	return last
}

func (s *scrapeStrategy) tryVariant(ctx context.Context, v scrapeVariant, username string) Outcome {
	result, err := getWithTimeout(ctx, s.client, v.url(username), v.headers(username), v.timeout)
	if err != nil {
		return Failed(ReasonConnection, err)
	}
	if result.status != http.StatusOK {
		return Failed(classifyStatus(result.status), fmt.Errorf("%s status %d", v.method, result.status))
	}

	if v.parseJSON {
		return parseAPIEmulation(result.body, username)
	}

	rec := recordFromHTML(result.body, username, v.method)
	if rec == nil {
		return Failed(ReasonParse, nil)
	}
	return Success(rec)
}

// parseAPIEmulation reads the anonymous web_profile_info payload. Same
// shape as the authenticated endpoint, minus the session-only fields.
func parseAPIEmulation(body, username string) Outcome {
	var payload webProfileResponse
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return Failed(ReasonParse, err)
	}
	user := payload.Data.User
	if user == nil {
		return Failed(ReasonNotFound, nil)
	}

	return Success(&datatypes.ProfileRecord{
		Identifier:      username,
		FollowerCount:   user.EdgeFollowedBy.Count,
		FollowingCount:  user.EdgeFollow.Count,
		PostCount:       user.EdgeOwnerToTimelineMedia.Count,
		AccountAgeDays:  defaultAccountAgeDays,
		IsVerified:      user.IsVerified,
		IsPrivate:       user.IsPrivate,
		HasProfileImage: user.ProfilePicURL != "",
		Biography:       user.Biography,
		ProfileImageURL: user.ProfilePicURL,
		Method:          datatypes.MethodScrapedAPI,
	})
}
