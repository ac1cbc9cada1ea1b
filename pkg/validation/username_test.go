// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		// Valid handles
		{"simple", "zuck", false},
		{"single char", "a", false},
		{"with digits", "user123", false},
		{"with underscore", "some_user", false},
		{"with period", "some.user", false},
		{"leading underscore", "_private", false},
		{"max length", strings.Repeat("a", 30), false},
		{"numeric handle", "14061988", false},

		// Invalid handles
		{"empty", "", true},
		{"uppercase", "Zuck", true}, // Must be canonical lowercase
		{"too long", strings.Repeat("a", 31), true},
		{"leading period", ".user", true},
		{"spaces", "some user", true},
		{"path traversal", "../etc/passwd", true},
		{"url injection", "user/../../admin", true},
		{"query injection", "user?admin=1", true},
		{"unicode", "usér", true},
		{"newline", "user\nname", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "zuck", "zuck"},
		{"mixed case with at", "@Cristiano", "cristiano"},
		{"surrounding whitespace", "  @Handle ", "handle"},
		{"only first at stripped", "@@double", "@double"},
		{"blank", "   ", ""},

		// Normalization never rejects; malformed handles pass through
		// lowercased for the acquisition chain to deal with.
		{"unicode", "Usér", "usér"},
		{"overlong", strings.Repeat("A", 300), strings.Repeat("a", 300)},
		{"injection attempt", "../Etc/Passwd", "../etc/passwd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeUsername(tt.input); got != tt.want {
				t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"lowercases", "Zuck", "zuck", false},
		{"strips at sign", "@zuck", "zuck", false},
		{"strips whitespace", "  zuck  ", "zuck", false},
		{"combined", " @Some_User ", "some_user", false},
		{"empty after trim", "   ", "", true},
		{"bare at sign", "@", "", true},
		{"still invalid", "@bad handle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeUsername(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeUsername(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
