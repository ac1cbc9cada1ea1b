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
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no record exists for the requested key.
var ErrNotFound = errors.New("storage: not found")

const profileKeyPrefix = "profile:"

// ProfileStore persists acquired profile records keyed by identifier.
//
// # Description
//
// A thin JSON-over-Badger store. Records carry no expiry; a cached
// record for an identifier is served until it is overwritten.
//
// # Thread Safety
//
// Safe for concurrent use. Writers for the same identifier race benignly
// (entries are idempotent snapshots).
type ProfileStore struct {
	db *badger.DB
}

// NewProfileStore wraps an open database.
func NewProfileStore(db *badger.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// Get reads the cached record for an identifier.
//
// # Outputs
//
//   - *datatypes.ProfileRecord: The stored record, Method rewritten to
//     MethodCached so provenance reflects how this copy was obtained.
//   - error: ErrNotFound when absent; wrapped storage errors otherwise.
func (s *ProfileStore) Get(ctx context.Context, identifier string) (*datatypes.ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	var rec datatypes.ProfileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + identifier))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read profile %q: %w", identifier, err)
	}

	rec.Method = datatypes.MethodCached
	return &rec, nil
}

// Put persists a record under its identifier, overwriting any previous
// snapshot. The record's original provenance is stored as-is.
func (s *ProfileStore) Put(ctx context.Context, rec *datatypes.ProfileRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if rec == nil || rec.Identifier == "" {
		return errors.New("record must have an identifier")
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal profile %q: %w", rec.Identifier, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+rec.Identifier), payload)
	})
	if err != nil {
		return fmt.Errorf("write profile %q: %w", rec.Identifier, err)
	}
	return nil
}

// Delete removes the cached record for an identifier. Missing keys are not
// an error.
func (s *ProfileStore) Delete(ctx context.Context, identifier string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(profileKeyPrefix + identifier))
	})
	if err != nil {
		return fmt.Errorf("delete profile %q: %w", identifier, err)
	}
	return nil
}
