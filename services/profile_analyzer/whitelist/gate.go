// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package whitelist maintains the set of accounts that are trusted without
// analysis. Trusted lookups happen on every request, so the gate keeps the
// set in memory and answers from a map under a read lock.
package whitelist

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// listFile is the on-disk and embedded shape of a whitelist document.
type listFile struct {
	Version  int      `yaml:"version"`
	Accounts []string `yaml:"accounts"`
}

// Gate answers "is this account trusted?" for the analyze and predict paths.
//
// # Thread Safety
//
// Safe for concurrent use. Reload swaps the set atomically under a write
// lock; IsTrusted only takes a read lock.
type Gate struct {
	mu       sync.RWMutex
	accounts map[string]struct{}
	path     string
}

// NewGate builds a gate from the embedded default list.
//
// # Outputs
//
//   - *Gate: Gate seeded with the compiled-in accounts.
//   - error: Non-nil if the embedded document fails to parse, which means
//     the binary itself is broken.
func NewGate() (*Gate, error) {
	g := &Gate{}
	if err := g.load(DefaultWhitelist); err != nil {
		return nil, fmt.Errorf("embedded whitelist: %w", err)
	}
	return g, nil
}

// NewGateFromFile builds a gate from an operator-supplied YAML file and
// remembers the path so Reload can re-read it later.
func NewGateFromFile(path string) (*Gate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whitelist: %w", err)
	}
	g := &Gate{path: path}
	if err := g.load(data); err != nil {
		return nil, fmt.Errorf("parse whitelist %s: %w", path, err)
	}
	return g, nil
}

func (g *Gate) load(data []byte) error {
	var doc listFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	accounts := make(map[string]struct{}, len(doc.Accounts))
	for _, raw := range doc.Accounts {
		name := normalize(raw)
		if name == "" {
			continue
		}
		accounts[name] = struct{}{}
	}

	g.mu.Lock()
	g.accounts = accounts
	g.mu.Unlock()
	return nil
}

// normalize maps a handle to its canonical lookup form.
func normalize(raw string) string {
	name := strings.TrimSpace(strings.ToLower(raw))
	return strings.TrimPrefix(name, "@")
}

// IsTrusted reports whether the account bypasses analysis.
//
// Matching is case-insensitive and ignores a leading '@'.
func (g *Gate) IsTrusted(username string) bool {
	name := normalize(username)
	if name == "" {
		return false
	}

	g.mu.RLock()
	_, ok := g.accounts[name]
	g.mu.RUnlock()
	return ok
}

// Len returns the number of trusted accounts currently loaded.
func (g *Gate) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.accounts)
}

// Reload re-reads the backing file and swaps in the new set.
//
// # Description
//
// A parse or read failure leaves the previous set in place, so a botched
// edit to the override file never empties the whitelist.
//
// # Outputs
//
//   - error: Non-nil if the gate has no backing file or the file is invalid.
func (g *Gate) Reload() error {
	g.mu.RLock()
	path := g.path
	g.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("whitelist gate has no backing file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read whitelist: %w", err)
	}
	if err := g.load(data); err != nil {
		return fmt.Errorf("parse whitelist %s: %w", path, err)
	}

	slog.Info("Whitelist reloaded",
		"path", path,
		"accounts", g.Len())
	return nil
}
