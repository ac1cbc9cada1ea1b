// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the profile analyzer.
//
// # Description
//
// Metrics cover the three things operators actually page on:
//   - which acquisition strategies are succeeding (upstream health)
//   - the verdict mix (a sudden FAKE spike usually means a scraper broke,
//     not a bot wave)
//   - avatar proxy cache behavior
//
// Metrics are exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aleutian"

const analyzerSubsystem = "profile_analyzer"

// AnalyzerMetrics holds all Prometheus metrics for the analyzer service.
//
// # Thread Safety
//
// All operations are thread-safe. The recording helpers are nil-safe so
// tests can pass a nil *AnalyzerMetrics and skip registration entirely.
type AnalyzerMetrics struct {
	// AcquisitionAttemptsTotal counts strategy attempts.
	// Labels: strategy, outcome (success, failed)
	AcquisitionAttemptsTotal *prometheus.CounterVec

	// AcquisitionDurationSeconds measures per-strategy fetch latency.
	// Labels: strategy
	AcquisitionDurationSeconds *prometheus.HistogramVec

	// VerdictsTotal counts verdicts by label and path.
	// Labels: label (GENUINE, FAKE), path (analyze, predict, whitelist)
	VerdictsTotal *prometheus.CounterVec

	// AvatarRequestsTotal counts avatar proxy requests.
	// Labels: result (cache_hit, fetched, placeholder)
	AvatarRequestsTotal *prometheus.CounterVec
}

// InitMetrics creates and registers all analyzer metrics.
//
// # Description
//
// Should be called once at application startup. Panics if called twice
// (duplicate registration in the default registry).
func InitMetrics() *AnalyzerMetrics {
	return &AnalyzerMetrics{
		AcquisitionAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analyzerSubsystem,
				Name:      "acquisition_attempts_total",
				Help:      "Acquisition strategy attempts by strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),

		AcquisitionDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: analyzerSubsystem,
				Name:      "acquisition_duration_seconds",
				Help:      "Per-strategy fetch duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.25, 1, 2.5, 5, 10, 15, 30, 60},
			},
			[]string{"strategy"},
		),

		VerdictsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analyzerSubsystem,
				Name:      "verdicts_total",
				Help:      "Verdicts produced by label and request path",
			},
			[]string{"label", "path"},
		),

		AvatarRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analyzerSubsystem,
				Name:      "avatar_requests_total",
				Help:      "Avatar proxy requests by result",
			},
			[]string{"result"},
		),
	}
}

// RecordAcquisition records one strategy attempt.
func (m *AnalyzerMetrics) RecordAcquisition(strategy string, success bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "failed"
	if success {
		outcome = "success"
	}
	m.AcquisitionAttemptsTotal.WithLabelValues(strategy, outcome).Inc()
	m.AcquisitionDurationSeconds.WithLabelValues(strategy).Observe(seconds)
}

// RecordVerdict records one produced verdict.
func (m *AnalyzerMetrics) RecordVerdict(label, path string) {
	if m == nil {
		return
	}
	m.VerdictsTotal.WithLabelValues(label, path).Inc()
}

// RecordAvatar records one avatar proxy request result.
func (m *AnalyzerMetrics) RecordAvatar(result string) {
	if m == nil {
		return
	}
	m.AvatarRequestsTotal.WithLabelValues(result).Inc()
}
