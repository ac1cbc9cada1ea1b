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
	"os"
	"strings"
	"time"

	"github.com/awnumar/memguard"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

const (
	loginPageURL = "https://www.instagram.com/accounts/login/"
	loginAjaxURL = "https://www.instagram.com/accounts/login/ajax/"

	// webAppID is the public web client's application id, sent by every
	// browser session.
	webAppID = "936619743392459"

	authTimeout = 60 * time.Second
)

// Credentials holds the scrape account login. The password lives in a
// memguard enclave and is only decrypted for the duration of the login
// request.
type Credentials struct {
	Username string
	password *memguard.Enclave
}

// CredentialsFromEnv reads INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD.
//
// # Outputs
//
//   - *Credentials: Sealed credentials, or nil when either variable is
//     unset. A nil return disables the authenticated strategy.
func CredentialsFromEnv() *Credentials {
	user := os.Getenv("INSTAGRAM_USERNAME")
	pass := os.Getenv("INSTAGRAM_PASSWORD")
	if user == "" || pass == "" {
		return nil
	}
	// Seal the password immediately; the plaintext copy in the env stays,
	// but at least our own heap copy is encrypted at rest.
	enclave := memguard.NewEnclave([]byte(pass))
	return &Credentials{Username: user, password: enclave}
}

// authenticatedStrategy logs in with a real account and reads the profile
// through the session-scoped web API, which exposes fields the anonymous
// page never shows (verified flag, privacy, recent posts).
type authenticatedStrategy struct {
	creds  *Credentials
	client HTTPClient
}

func (s *authenticatedStrategy) Name() string { return "authenticated" }

func (s *authenticatedStrategy) Fetch(ctx context.Context, username string) Outcome {
	if s.creds == nil {
		return Failed(ReasonUnavailable, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	session, outcome := s.login(ctx)
	if !outcome.OK() && outcome.Reason != "" {
		return outcome
	}

	return s.fetchProfile(ctx, session, username)
}

// session carries the cookies a logged-in exchange needs.
type session struct {
	csrfToken string
	cookies   string
}

// loginResponse is the JSON body of the login ajax endpoint.
type loginResponse struct {
	Authenticated     bool `json:"authenticated"`
	TwoFactorRequired bool `json:"two_factor_required"`
	User              bool `json:"user"`
}

func (s *authenticatedStrategy) login(ctx context.Context) (*session, Outcome) {
	// First hit the login page to pick up a CSRF token.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginPageURL, nil)
	if err != nil {
		return nil, Failed(ReasonConnection, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, Failed(ReasonConnection, err)
	}
	_ = resp.Body.Close()

	csrf := cookieValue(resp, "csrftoken")
	if csrf == "" {
		return nil, Failed(ReasonConnection, fmt.Errorf("no csrf token in login page response"))
	}

	// Decrypt the password only for the lifetime of this request body.
	buf, err := s.creds.password.Open()
	if err != nil {
		return nil, Failed(ReasonUnavailable, fmt.Errorf("open credential enclave: %w", err))
	}
	form := url.Values{
		"username":     {s.creds.Username},
		"enc_password": {fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), buf.String())},
	}
	buf.Destroy()

	loginReq, err := http.NewRequestWithContext(ctx, http.MethodPost, loginAjaxURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, Failed(ReasonConnection, err)
	}
	loginReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	loginReq.Header.Set("X-CSRFToken", csrf)
	loginReq.Header.Set("Cookie", "csrftoken="+csrf)

	loginResp, err := s.client.Do(loginReq)
	if err != nil {
		return nil, Failed(ReasonConnection, err)
	}
	defer func() { _ = loginResp.Body.Close() }()

	if loginResp.StatusCode != http.StatusOK {
		return nil, Failed(classifyStatus(loginResp.StatusCode), fmt.Errorf("login status %d", loginResp.StatusCode))
	}

	var body loginResponse
	if err := json.NewDecoder(loginResp.Body).Decode(&body); err != nil {
		return nil, Failed(ReasonParse, err)
	}
	if body.TwoFactorRequired {
		return nil, Failed(ReasonTwoFactor, nil)
	}
	if !body.Authenticated {
		return nil, Failed(ReasonBadCredentials, nil)
	}

	sessionID := cookieValue(loginResp, "sessionid")
	return &session{
		csrfToken: csrf,
		cookies:   fmt.Sprintf("csrftoken=%s; sessionid=%s", csrf, sessionID),
	}, Outcome{}
}

// webProfileResponse mirrors the slice of the web_profile_info payload the
// analyzer consumes.
type webProfileResponse struct {
	Data struct {
		User *struct {
			Username      string `json:"username"`
			Biography     string `json:"biography"`
			IsVerified    bool   `json:"is_verified"`
			IsPrivate     bool   `json:"is_private"`
			ProfilePicURL string `json:"profile_pic_url_hd"`
			EdgeFollowedBy struct {
				Count int `json:"count"`
			} `json:"edge_followed_by"`
			EdgeFollow struct {
				Count int `json:"count"`
			} `json:"edge_follow"`
			EdgeOwnerToTimelineMedia struct {
				Count int `json:"count"`
				Edges []struct {
					Node struct {
						IsVideo          bool `json:"is_video"`
						EdgeLikedBy      struct {
							Count int `json:"count"`
						} `json:"edge_liked_by"`
						EdgeMediaToComment struct {
							Count int `json:"count"`
						} `json:"edge_media_to_comment"`
						EdgeMediaToCaption struct {
							Edges []struct {
								Node struct {
									Text string `json:"text"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"edge_media_to_caption"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

func (s *authenticatedStrategy) fetchProfile(ctx context.Context, sess *session, username string) Outcome {
	endpoint := fmt.Sprintf("https://www.instagram.com/api/v1/users/web_profile_info/?username=%s", url.QueryEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Failed(ReasonConnection, err)
	}
	req.Header.Set("X-IG-App-ID", webAppID)
	req.Header.Set("X-CSRFToken", sess.csrfToken)
	req.Header.Set("Cookie", sess.cookies)

	resp, err := s.client.Do(req)
	if err != nil {
		return Failed(ReasonConnection, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Failed(classifyStatus(resp.StatusCode), fmt.Errorf("profile status %d", resp.StatusCode))
	}

	var body webProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Failed(ReasonParse, err)
	}
	user := body.Data.User
	if user == nil {
		return Failed(ReasonNotFound, nil)
	}

	rec := &datatypes.ProfileRecord{
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
		Method:          datatypes.MethodAuthenticated,
	}

	for _, edge := range user.EdgeOwnerToTimelineMedia.Edges {
		if len(rec.RecentPosts) >= datatypes.MaxRecentPosts {
			break
		}
		snap := datatypes.PostSnapshot{
			Likes:    edge.Node.EdgeLikedBy.Count,
			Comments: edge.Node.EdgeMediaToComment.Count,
			IsVideo:  edge.Node.IsVideo,
		}
		if captions := edge.Node.EdgeMediaToCaption.Edges; len(captions) > 0 {
			snap.Caption = captions[0].Node.Text
		}
		rec.RecentPosts = append(rec.RecentPosts, snap)
	}

	return Success(rec)
}

// cookieValue extracts one cookie from a response's Set-Cookie headers.
func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
