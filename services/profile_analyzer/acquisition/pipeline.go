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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/ProfileSentry/pkg/validation"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/observability"
)

// ErrEmptyIdentifier is returned when the caller passes a blank username.
// It is the only input the pipeline rejects outright.
var ErrEmptyIdentifier = errors.New("acquisition: empty identifier")

// ErrUnavailable is returned when no strategy produced a record. With the
// synthetic fallback in the chain this only happens if the chain was
// explicitly built without it.
var ErrUnavailable = errors.New("acquisition: no strategy produced a record")

// Pipeline runs the strategy chain for a username.
//
// # Description
//
// Strategies are tried in priority order; the first success wins and later
// strategies are never invoked. Successful non-cache records are persisted
// to the cache, synthetic ones included, so repeat lookups for the same
// handle stay stable. Fetch never panics: a panicking strategy is absorbed
// and treated as a failed attempt.
//
// # Thread Safety
//
// Safe for concurrent use. Concurrent fetches for the same identifier may
// race to write the same cache entry; last writer wins, which is fine
// because entries are idempotent snapshots.
type Pipeline struct {
	strategies []Strategy
	cache      ProfileCache
	metrics    *observability.AnalyzerMetrics
}

// Config assembles a default pipeline.
type Config struct {
	// Cache is required.
	Cache ProfileCache

	// Client serves all direct (non-proxied) outbound requests. Defaults
	// to a plain http.Client with a 30s transport timeout.
	Client HTTPClient

	// Credentials enable the authenticated strategy; nil disables it.
	Credentials *Credentials

	// Proxies enable the proxy-rotation strategy; empty disables it.
	Proxies []string

	// Metrics may be nil.
	Metrics *observability.AnalyzerMetrics
}

// New builds the default strategy chain: cache, authenticated fetch,
// scrape variants, public endpoints, proxy rotation, synthetic fallback.
func New(cfg Config) *Pipeline {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	// One request per second across scrape variants, burst of one. The
	// source bans fingerprints that burst.
	limiter := rate.NewLimiter(rate.Limit(1), 1)

	strategies := []Strategy{
		&cacheStrategy{cache: cfg.Cache},
		&authenticatedStrategy{creds: cfg.Credentials, client: client},
		&scrapeStrategy{client: client, limiter: limiter},
		&publicStrategy{client: client},
		newProxyStrategy(cfg.Proxies),
		&syntheticStrategy{},
	}

	return &Pipeline{
		strategies: strategies,
		cache:      cfg.Cache,
		metrics:    cfg.Metrics,
	}
}

// NewWithStrategies builds a pipeline over an explicit chain. Used by
// tests and by callers that need a reduced chain.
func NewWithStrategies(cache ProfileCache, metrics *observability.AnalyzerMetrics, strategies ...Strategy) *Pipeline {
	return &Pipeline{strategies: strategies, cache: cache, metrics: metrics}
}

// Fetch acquires a record for the username.
//
// # Inputs
//
//   - ctx: Bounds the whole chain; each strategy also carries its own
//     per-attempt timeout.
//   - username: Raw handle; normalized (trimmed, lowercased, @-stripped)
//     before any strategy runs.
//
// # Outputs
//
//   - *datatypes.ProfileRecord: Populated record from the first strategy
//     that succeeded.
//   - error: ErrEmptyIdentifier for a blank handle, ErrUnavailable when
//     the whole chain failed. Nothing else.
func (p *Pipeline) Fetch(ctx context.Context, username string) (*datatypes.ProfileRecord, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return nil, ErrEmptyIdentifier
	}

	for _, strategy := range p.strategies {
		start := time.Now()
		outcome := p.attempt(ctx, strategy, username)
		p.metrics.RecordAcquisition(strategy.Name(), outcome.OK(), time.Since(start).Seconds())

		if !outcome.OK() {
			// Unavailable strategies are expected noise; real failures
			// deserve a log line.
			if outcome.Reason != ReasonUnavailable {
				slog.Debug("Acquisition strategy failed",
					"strategy", strategy.Name(),
					"username", username,
					"reason", outcome.Reason,
					"error", outcome.Err)
			}
			continue
		}

		rec := outcome.Record
		slog.Info("Profile acquired",
			"strategy", strategy.Name(),
			"username", username,
			"method", rec.Method,
			"followers", rec.FollowerCount)

		if rec.Method != datatypes.MethodCached {
			if err := p.cache.Put(ctx, rec); err != nil {
				slog.Warn("Failed to cache acquired profile",
					"username", username,
					"error", err)
			}
		}
		return rec, nil
	}

	return nil, ErrUnavailable
}

// attempt invokes one strategy with a panic guard.
func (p *Pipeline) attempt(ctx context.Context, strategy Strategy, username string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Failed(ReasonPanic, fmt.Errorf("strategy %s panicked: %v", strategy.Name(), r))
		}
	}()
	return strategy.Fetch(ctx, username)
}
