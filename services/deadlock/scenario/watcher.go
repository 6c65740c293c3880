// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scenario

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce is how long to wait for more file events before reloading.
// Editors fire several events per save; one reload covers them all.
const watchDebounce = 200 * time.Millisecond

// Watch hot-reloads the catalog when the overlay directory changes.
//
// # Description
//
// Starts a goroutine watching the overlay directory for created, written,
// removed, or renamed scenario files. Events are debounced, then the whole
// catalog is rebuilt. The goroutine exits when ctx is cancelled. A catalog
// without an overlay directory has nothing to watch and returns nil
// immediately.
func (c *Catalog) Watch(ctx context.Context) error {
	if c.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return err
	}

	slog.Info("Watching scenario overlay directory", "dir", c.dir)
	go c.watchLoop(ctx, watcher)
	return nil
}

// watchLoop debounces file events and reloads. Runs until ctx is cancelled
// or the watcher closes.
func (c *Catalog) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				stopTimer()
				return
			}
			if !isScenarioFile(event.Name) {
				continue
			}
			// Reset or start the debounce timer
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				stopTimer()
				return
			}
			slog.Warn("Scenario watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if err := c.Reload(); err != nil {
				slog.Warn("Scenario reload failed", "error", err)
			}
		}
	}
}
