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

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/storage"
)

// ProfileCache is the slice of the store the pipeline needs.
type ProfileCache interface {
	Get(ctx context.Context, identifier string) (*datatypes.ProfileRecord, error)
	Put(ctx context.Context, rec *datatypes.ProfileRecord) error
}

// cacheStrategy serves previously acquired records. It runs first so a
// cache hit skips every network strategy.
type cacheStrategy struct {
	cache ProfileCache
}

func (s *cacheStrategy) Name() string { return "cache" }

func (s *cacheStrategy) Fetch(ctx context.Context, username string) Outcome {
	rec, err := s.cache.Get(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Failed(ReasonNotFound, nil)
		}
		return Failed(ReasonConnection, err)
	}
	return Success(rec)
}
