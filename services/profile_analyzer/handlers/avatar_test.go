// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/imageproxy"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/storage"
)

type fixedImageClient struct{}

func (fixedImageClient) Do(*http.Request) (*http.Response, error) {
	h := make(http.Header)
	h.Set("Content-Type", "image/jpeg")
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader("avatar-bytes")),
	}, nil
}

func avatarRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := &App{
		Avatars: imageproxy.New(storage.NewImageStore(db), fixedImageClient{}, nil),
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v1/avatar", Avatar(app))
	return r
}

func TestAvatar_ServesImage(t *testing.T) {
	r := avatarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/avatar?url=https%3A%2F%2Fcdn.example.com%2Fa.jpg", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "avatar-bytes", w.Body.String())
}

func TestAvatar_MissingURL(t *testing.T) {
	r := avatarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/avatar", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvatar_BadURLDegradesToPlaceholder(t *testing.T) {
	r := avatarRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/avatar?url=not-a-url", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, imageproxy.PlaceholderContentType, w.Header().Get("Content-Type"))
}
