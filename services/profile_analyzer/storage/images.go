// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const imageKeyPrefix = "image:"

// CachedImage is a fetched avatar plus its content type.
type CachedImage struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// ImageStore caches proxied avatar bytes keyed by the content hash of the
// source URL.
type ImageStore struct {
	db *badger.DB
}

// NewImageStore wraps an open database.
func NewImageStore(db *badger.DB) *ImageStore {
	return &ImageStore{db: db}
}

// ImageKey derives the cache key for a source URL (sha256 hex digest).
func ImageKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached image for a source URL, or ErrNotFound.
func (s *ImageStore) Get(ctx context.Context, url string) (*CachedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var img CachedImage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(imageKeyPrefix + ImageKey(url)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &img)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read image for %q: %w", url, err)
	}
	return &img, nil
}

// Put caches fetched image bytes under the URL's content hash.
func (s *ImageStore) Put(ctx context.Context, url string, img *CachedImage) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if img == nil || len(img.Data) == 0 {
		return errors.New("image data must be non-empty")
	}

	payload, err := json.Marshal(img)
	if err != nil {
		return fmt.Errorf("marshal image for %q: %w", url, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(imageKeyPrefix+ImageKey(url)), payload)
	})
	if err != nil {
		return fmt.Errorf("write image for %q: %w", url, err)
	}
	return nil
}
