// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/acquisition"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/classifier"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/handlers"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/imageproxy"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/observability"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/routes"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/storage"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/whitelist"
)

const serviceName = "profile-analyzer"

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// loadWhitelist builds the gate from ANALYZER_WHITELIST_PATH when set,
// falling back to the compiled-in list. A file-backed gate also gets a
// watcher so edits apply without a restart.
func loadWhitelist(ctx context.Context) (*whitelist.Gate, error) {
	path := os.Getenv("ANALYZER_WHITELIST_PATH")
	if path == "" {
		return whitelist.NewGate()
	}

	gate, err := whitelist.NewGateFromFile(path)
	if err != nil {
		return nil, err
	}
	watcher, err := whitelist.NewWatcher(gate)
	if err != nil {
		slog.Warn("Whitelist file watcher unavailable, hot reload disabled",
			"path", path, "error", err)
		return gate, nil
	}
	go watcher.Start(ctx)
	slog.Info("Whitelist loaded from file", "path", path, "accounts", gate.Len())
	return gate, nil
}

// loadClassifier loads the model artifact. A load failure is not fatal:
// the service degrades to heuristic-only verdicts and the predict endpoint
// answers 503.
func loadClassifier() *classifier.Classifier {
	path := os.Getenv("ANALYZER_MODEL_PATH")

	var model *classifier.Classifier
	var err error
	if path == "" {
		model, err = classifier.LoadDefault()
	} else {
		model, err = classifier.Load(path)
	}
	if err != nil {
		slog.Error("Classifier unavailable, serving heuristic-only verdicts",
			"path", path, "error", err)
		return nil
	}
	slog.Info("Classifier loaded", "trained_at", model.TrainedAt())
	return model
}

func main() {
	port := os.Getenv("ANALYZER_PORT")
	if port == "" {
		port = "12350"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	cachePath := os.Getenv("ANALYZER_CACHE_PATH")
	if cachePath == "" {
		cachePath = "/data/profile_cache"
	}
	db, err := storage.Open(storage.DefaultConfig(cachePath))
	if err != nil {
		log.Fatalf("FATAL: could not open the profile cache at %s: %v", cachePath, err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	gate, err := loadWhitelist(ctx)
	if err != nil {
		log.Fatalf("FATAL: could not load the whitelist: %v", err)
	}

	metrics := observability.InitMetrics()
	profiles := storage.NewProfileStore(db)
	images := storage.NewImageStore(db)

	creds := acquisition.CredentialsFromEnv()
	if creds == nil {
		slog.Info("No scrape-account credentials configured, authenticated strategy disabled")
	}

	app := &handlers.App{
		Whitelist: gate,
		Pipeline: acquisition.New(acquisition.Config{
			Cache:       profiles,
			Credentials: creds,
			Proxies:     acquisition.ProxiesFromEnv(),
			Metrics:     metrics,
		}),
		Classifier: loadClassifier(),
		Avatars:    imageproxy.New(images, nil, metrics),
		Metrics:    metrics,
	}

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	routes.Register(router, app)

	log.Println("Starting the profile analyzer server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
