// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package acquisition fetches profile attributes for a username through an
// ordered chain of source strategies: cache read, authenticated fetch,
// unauthenticated scrape variants, public third-party endpoints,
// proxy-rotated scrape, and finally a synthetic generator. The pipeline
// short-circuits on the first strategy that produces a record.
package acquisition

import (
	"context"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

// FailReason classifies why a strategy could not produce a record.
type FailReason string

const (
	// ReasonUnavailable means the strategy cannot run at all in this
	// deployment (no credentials, no proxies configured).
	ReasonUnavailable FailReason = "unavailable"

	// ReasonConnection covers transport-level failures and timeouts.
	ReasonConnection FailReason = "connection_error"

	// ReasonRateLimited means the source answered 429.
	ReasonRateLimited FailReason = "rate_limited"

	// ReasonBadCredentials means the login was rejected.
	ReasonBadCredentials FailReason = "bad_credentials"

	// ReasonTwoFactor means the account requires a second factor the
	// service cannot supply.
	ReasonTwoFactor FailReason = "two_factor_required"

	// ReasonNotFound means the source says the profile does not exist.
	ReasonNotFound FailReason = "profile_not_found"

	// ReasonParse means the source responded but the payload could not be
	// turned into a record.
	ReasonParse FailReason = "parse_failed"

	// ReasonPanic means the strategy panicked and the pipeline absorbed it.
	ReasonPanic FailReason = "panic"
)

// Outcome is the tagged result of one strategy attempt. Exactly one of
// Record or Reason is meaningful: a populated Record means success, an
// empty Record means Reason explains the failure.
type Outcome struct {
	Record *datatypes.ProfileRecord
	Reason FailReason
	Err    error
}

// Success wraps a populated record.
func Success(rec *datatypes.ProfileRecord) Outcome {
	return Outcome{Record: rec}
}

// Failed wraps a classified failure. err may be nil when the reason alone
// tells the whole story.
func Failed(reason FailReason, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}

// OK reports whether the attempt produced a record.
func (o Outcome) OK() bool {
	return o.Record != nil
}

// Strategy is one technique for acquiring profile data.
//
// Fetch must never panic across the interface boundary on well-formed
// input; the pipeline still guards with a recover as a backstop. A
// strategy reports problems through the Outcome, not by raising.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Fetch attempts to build a record for the username. The username has
	// already been sanitized by the pipeline.
	Fetch(ctx context.Context, username string) Outcome
}
