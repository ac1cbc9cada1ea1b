// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the HTTP endpoints of the profile analyzer.
package handlers

import (
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/acquisition"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/classifier"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/imageproxy"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/observability"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/whitelist"
)

// App bundles the dependencies the handlers need. It is constructed once
// at startup and passed by reference; handlers hold no package-level
// state.
type App struct {
	Whitelist *whitelist.Gate
	Pipeline  *acquisition.Pipeline

	// Classifier may be nil when the model artifact failed to load. The
	// predict path then answers 503; the analyze path is unaffected.
	Classifier *classifier.Classifier

	Avatars *imageproxy.Proxy
	Metrics *observability.AnalyzerMetrics
}
