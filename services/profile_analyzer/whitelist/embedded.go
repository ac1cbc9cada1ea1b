// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package whitelist

import (
	_ "embed"
)

// DefaultWhitelist holds the raw byte content of the 'default_whitelist.yaml' file.
//
// The default trusted-account list is baked into the binary at compile time so
// the service always has a working whitelist even when no override file is
// configured. Operators supply a replacement via ANALYZER_WHITELIST_PATH.
//
//go:embed default_whitelist.yaml
var DefaultWhitelist []byte
