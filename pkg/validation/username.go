// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// storage keys, outbound URLs, or subprocess calls. Using these validators
// prevents injection attacks (key collisions, URL manipulation, path traversal).
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// usernamePattern matches valid social-media account handles.
// Allows: lowercase letters, digits, periods and underscores.
// Max length: 30 characters (the source platform's limit).
var usernamePattern = regexp.MustCompile(`^[a-z0-9_][a-z0-9._]{0,29}$`)

// ValidateUsername validates an account handle before it is used as a cache
// key or interpolated into an outbound URL.
//
// Valid handles:
//   - 1-30 characters
//   - Lowercase letters a-z, digits 0-9
//   - Periods (.) and underscores (_), not leading with a period
//
// Returns an error if the handle is invalid.
//
// Example:
//
//	if err := validation.ValidateUsername(handle); err != nil {
//	    return nil, fmt.Errorf("invalid handle: %w", err)
//	}
//	// Safe to use in a URL path segment
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("invalid username format: %q (must be 1-30 lowercase alphanumeric chars, periods, or underscores)", username)
	}

	return nil
}

// NormalizeUsername canonicalizes an account handle without judging it:
// trims surrounding whitespace, lowercases, and strips one leading @.
// Returns "" for blank input.
//
// Use this where the caller tolerates arbitrary handles (the acquisition
// pipeline accepts anything nonempty and lets the strategies fail or fall
// through to the synthetic generator); pair it with ValidateUsername at
// boundaries that must reject malformed input.
func NormalizeUsername(username string) string {
	normalized := strings.ToLower(strings.TrimSpace(username))
	return strings.TrimPrefix(normalized, "@")
}

// SanitizeUsername normalizes and validates an account handle.
// Returns the canonical lowercase handle with any leading @ removed, or an
// error if invalid.
//
// Use this at the request boundary so every downstream component (cache,
// scorer overrides, scrape URLs) sees the same canonical form:
//
//	handle, err := validation.SanitizeUsername(userInput)
//	if err != nil {
//	    return err
//	}
//	// handle is lowercase, @-stripped, and validated
func SanitizeUsername(username string) (string, error) {
	normalized := NormalizeUsername(username)
	if err := ValidateUsername(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
