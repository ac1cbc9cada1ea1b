// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package routes wires the analyzer's HTTP endpoints onto a gin router.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/handlers"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/middleware"
)

// Register registers all profile analyzer routes with the router.
//
// Endpoints:
//
//	GET  /health      - Liveness probe
//	GET  /metrics     - Prometheus metrics
//	POST /v1/analyze  - Acquire and score a profile by handle
//	POST /v1/predict  - Classify explicitly submitted attributes
//	GET  /v1/avatar   - Proxy an external avatar image
func Register(router *gin.Engine, app *handlers.App) {
	router.Use(middleware.RequestID())

	router.GET("/health", handlers.Health())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.POST("/analyze", handlers.Analyze(app))
	v1.POST("/predict", handlers.Predict(app))
	v1.GET("/avatar", handlers.Avatar(app))
}
