// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package imageproxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/storage"
)

type mockClient struct {
	handler func(req *http.Request) (*http.Response, error)
	calls   int
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.handler(req)
}

func imageResponse(status int, contentType, body string) *http.Response {
	h := make(http.Header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestProxy(t *testing.T, client *mockClient) (*Proxy, *storage.ImageStore) {
	t.Helper()
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewImageStore(db)
	return New(store, client, nil), store
}

func TestGet_FetchesAndCaches(t *testing.T) {
	client := &mockClient{handler: func(*http.Request) (*http.Response, error) {
		return imageResponse(http.StatusOK, "image/jpeg", "jpeg-bytes"), nil
	}}
	p, store := newTestProxy(t, client)
	ctx := context.Background()

	ct, data := p.Get(ctx, "https://cdn.example.com/a.jpg")
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, 1, client.calls)

	// Second request is served from the cache.
	ct, data = p.Get(ctx, "https://cdn.example.com/a.jpg")
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, 1, client.calls)

	cached, err := store.Get(ctx, "https://cdn.example.com/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", cached.ContentType)
}

func TestGet_BadURLReturnsPlaceholder(t *testing.T) {
	client := &mockClient{handler: func(*http.Request) (*http.Response, error) {
		t.Fatal("no request should be made for an invalid URL")
		return nil, nil
	}}
	p, _ := newTestProxy(t, client)

	for _, raw := range []string{"", "not a url", "ftp://example.com/x.png", "javascript:alert(1)"} {
		ct, data := p.Get(context.Background(), raw)
		assert.Equal(t, PlaceholderContentType, ct, raw)
		assert.NotEmpty(t, data, raw)
	}
	assert.Equal(t, 0, client.calls)
}

func TestGet_UpstreamFailureReturnsPlaceholder(t *testing.T) {
	client := &mockClient{handler: func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}
	p, _ := newTestProxy(t, client)

	ct, data := p.Get(context.Background(), "https://cdn.example.com/down.jpg")
	assert.Equal(t, PlaceholderContentType, ct)
	assert.Equal(t, placeholderSVG, data)
}

func TestGet_UpstreamNon200ReturnsPlaceholder(t *testing.T) {
	client := &mockClient{handler: func(*http.Request) (*http.Response, error) {
		return imageResponse(http.StatusNotFound, "text/html", "gone"), nil
	}}
	p, _ := newTestProxy(t, client)

	ct, _ := p.Get(context.Background(), "https://cdn.example.com/missing.jpg")
	assert.Equal(t, PlaceholderContentType, ct)
}

func TestGet_SniffsMissingContentType(t *testing.T) {
	// A real PNG header so detection lands on image/png.
	png := "\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 64)
	client := &mockClient{handler: func(*http.Request) (*http.Response, error) {
		return imageResponse(http.StatusOK, "", png), nil
	}}
	p, _ := newTestProxy(t, client)

	ct, _ := p.Get(context.Background(), "https://cdn.example.com/noct.png")
	assert.Equal(t, "image/png", ct)
}

func TestGet_FailuresAreNotCached(t *testing.T) {
	failing := true
	client := &mockClient{handler: func(*http.Request) (*http.Response, error) {
		if failing {
			return nil, errors.New("flaky upstream")
		}
		return imageResponse(http.StatusOK, "image/jpeg", "recovered"), nil
	}}
	p, _ := newTestProxy(t, client)
	ctx := context.Background()

	ct, _ := p.Get(ctx, "https://cdn.example.com/flaky.jpg")
	assert.Equal(t, PlaceholderContentType, ct)

	failing = false
	ct, data := p.Get(ctx, "https://cdn.example.com/flaky.jpg")
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte("recovered"), data)
}
