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
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a file-backed gate when its override file changes.
//
// # Description
//
// Lets operators edit the whitelist file in place without restarting
// the service. Only meaningful for gates built with NewGateFromFile.
//
// # Thread Safety
//
// Safe for concurrent use. Start should only be called once.
type Watcher struct {
	gate    *Gate
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the gate's backing file.
func NewWatcher(gate *Gate) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(gate.path); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &Watcher{gate: gate, watcher: fw}, nil
}

// Start blocks until the context is cancelled, reloading the gate on
// every write or create event. Should be run in a goroutine.
func (w *Watcher) Start(ctx context.Context) {
	defer func() { _ = w.watcher.Close() }()

	slog.Debug("Started watching whitelist file",
		"path", w.gate.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Editors commonly replace the file rather than writing
			// in place, so Create counts as a change too.
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := w.gate.Reload(); err != nil {
					slog.Warn("Whitelist reload failed",
						"path", event.Name,
						"error", err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Whitelist watcher error",
				"error", err)

		case <-ctx.Done():
			return
		}
	}
}
