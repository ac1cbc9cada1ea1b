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
	"fmt"
	"hash/fnv"
	"math/rand"
	"strings"

	"github.com/AleutianAI/ProfileSentry/services/profile_analyzer/datatypes"
)

// knownCelebrityHandles get the verified-looking synthetic treatment even
// when the handle is long.
var knownCelebrityHandles = map[string]struct{}{
	"instagram": {},
	"cristiano": {},
}

// syntheticStrategy fabricates a plausible record when every real source
// has failed. It always succeeds.
//
// # Description
//
// The handle's shape steers the fabricated profile: short handles and
// known celebrity names get large verified-style numbers, long handles and
// handles with many underscores get bot-style numbers, everything else
// gets a midsize account. The generator is seeded from the handle so the
// same username always fabricates the same record, which keeps repeated
// requests and tests stable.
type syntheticStrategy struct{}

func (s *syntheticStrategy) Name() string { return "synthetic" }

func (s *syntheticStrategy) Fetch(_ context.Context, username string) Outcome {
	seed := fnv.New64a()
	_, _ = seed.Write([]byte(username))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	_, celebrity := knownCelebrityHandles[strings.ToLower(username)]
	looksVerified := len(username) < 8 || celebrity
	looksBot := len(username) > 15 || strings.Count(username, "_") > 2

	var followers, following, posts int
	switch {
	case looksVerified:
		followers = randRange(rng, 1_000_000, 50_000_000)
		following = randRange(rng, 100, 1000)
		posts = randRange(rng, 100, 1000)
	case looksBot:
		followers = randRange(rng, 10, 500)
		following = randRange(rng, 500, 2000)
		posts = randRange(rng, 0, 10)
	default:
		followers = randRange(rng, 1000, 50_000)
		following = randRange(rng, 200, 1000)
		posts = randRange(rng, 10, 500)
	}

	return Success(&datatypes.ProfileRecord{
		Identifier:      username,
		FollowerCount:   followers,
		FollowingCount:  following,
		PostCount:       posts,
		AccountAgeDays:  randRange(rng, 30, 1000),
		IsVerified:      looksVerified,
		IsPrivate:       rng.Intn(2) == 0,
		HasProfileImage: rng.Intn(2) == 0,
		Biography:       fmt.Sprintf("Profile for @%s", username),
		Method:          datatypes.MethodSynthetic,
	})
}

// randRange returns a deterministic value in [lo, hi].
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}
