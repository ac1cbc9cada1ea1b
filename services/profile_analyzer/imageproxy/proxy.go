// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package imageproxy serves profile avatars through the analyzer so the
// browser never talks to the source CDN directly. Fetched bytes are cached
// by URL content-hash; failures degrade to a neutral placeholder instead
// of a broken image.
package imageproxy

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/acquisition"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/observability"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/storage"
)

// PlaceholderContentType is the content type of the degraded response.
const PlaceholderContentType = "image/svg+xml"

//go:embed placeholder.svg
var placeholderSVG []byte

const (
	fetchTimeout = 15 * time.Second

	// maxImageBytes bounds a single cached avatar.
	maxImageBytes = 8 << 20
)

// Proxy fetches and caches external avatar images.
//
// # Thread Safety
//
// Safe for concurrent use. Concurrent requests for the same URL are
// collapsed into a single upstream fetch.
type Proxy struct {
	store   *storage.ImageStore
	client  acquisition.HTTPClient
	metrics *observability.AnalyzerMetrics
	group   singleflight.Group
}

// New builds a proxy. client defaults to a plain http.Client when nil.
func New(store *storage.ImageStore, client acquisition.HTTPClient, metrics *observability.AnalyzerMetrics) *Proxy {
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Proxy{store: store, client: client, metrics: metrics}
}

// Placeholder returns the degraded-response image.
func Placeholder() (string, []byte) {
	return PlaceholderContentType, placeholderSVG
}

// Get returns the avatar bytes for an external URL.
//
// # Description
//
// Serves from cache when possible, otherwise fetches with a bounded
// timeout and caches the result. Any failure (bad URL, upstream error,
// oversized body) returns the placeholder; Get never returns an error to
// the presentation layer.
//
// # Outputs
//
//   - string: Content type of the returned bytes.
//   - []byte: Image bytes, possibly the placeholder.
func (p *Proxy) Get(ctx context.Context, rawURL string) (string, []byte) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		p.metrics.RecordAvatar("placeholder")
		return Placeholder()
	}

	if cached, err := p.store.Get(ctx, rawURL); err == nil {
		p.metrics.RecordAvatar("cache_hit")
		return cached.ContentType, cached.Data
	}

	// Collapse concurrent fetches of the same URL to one upstream request.
	key := storage.ImageKey(rawURL)
	v, err, _ := p.group.Do(key, func() (any, error) {
		return p.fetch(ctx, rawURL)
	})
	if err != nil {
		slog.Warn("Avatar fetch failed",
			"url", rawURL,
			"error", err)
		p.metrics.RecordAvatar("placeholder")
		return Placeholder()
	}

	img := v.(*storage.CachedImage)
	p.metrics.RecordAvatar("fetched")
	return img.ContentType, img.Data
}

func (p *Proxy) fetch(ctx context.Context, rawURL string) (*storage.CachedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, errors.New("image exceeds size limit")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	img := &storage.CachedImage{ContentType: contentType, Data: data}
	if err := p.store.Put(ctx, rawURL, img); err != nil {
		slog.Warn("Failed to cache avatar",
			"url", rawURL,
			"error", err)
	}
	return img, nil
}
