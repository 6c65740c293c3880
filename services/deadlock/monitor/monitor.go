// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package monitor runs the background deadlock sweep. It periodically
// re-evaluates the allocation table, keeps the deadlock gauge current, and
// publishes an event whenever the system transitions into or out of a
// deadlocked state.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/gridlock/services/deadlock/events"
	"github.com/AleutianAI/gridlock/services/deadlock/observability"
	"github.com/AleutianAI/gridlock/services/deadlock/rag"
)

// Ticker is the subset of time.Ticker the sweep loop needs.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// Clock creates tickers. The default implementation uses real time; tests
// substitute a manual one to drive sweeps deterministically.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realTicker struct{ *time.Ticker }

func (t realTicker) Chan() <-chan time.Time { return t.C }

type realClock struct{}

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// Config holds settings for the background sweep.
//
// # Fields
//
//   - Interval: How often to re-check the allocation table. Default: 15s.
//   - Clock: Ticker source. Default: real time.
//   - Metrics: Detection instruments to keep current. May be nil.
type Config struct {
	Interval time.Duration
	Clock    Clock
	Metrics  *observability.DeadlockMetrics
}

// DefaultConfig returns production-ready monitor settings.
func DefaultConfig() Config {
	return Config{Interval: 15 * time.Second, Clock: realClock{}}
}

// Monitor owns the deadlocked/clear state of the system.
//
// # Description
//
// Exactly one monitor should run per service instance. Handlers that mutate
// the allocation table call CheckNow so state changes are observed
// immediately rather than on the next tick.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Monitor interface {
	// Start launches the sweep goroutine. Returns an error if the monitor
	// is already running.
	Start(ctx context.Context) error

	// Stop signals the sweep goroutine to exit. Safe to call repeatedly.
	Stop() error

	// CheckNow evaluates the table immediately and reports whether it is
	// deadlocked. Transitions are published to the event hub.
	CheckNow() bool

	// Deadlocked reports the last observed state without re-evaluating.
	Deadlocked() bool
}

// deadlockMonitor implements Monitor using the ticker + done channel pattern.
type deadlockMonitor struct {
	store  *rag.Store
	hub    *events.Hub
	config Config

	done    chan struct{}
	mu      sync.Mutex
	running bool

	stateMu    sync.Mutex
	deadlocked bool
}

// New creates a monitor over store. hub may be nil.
func New(store *rag.Store, hub *events.Hub, cfg Config) Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Clock == nil {
		cfg.Clock = realClock{}
	}
	return &deadlockMonitor{
		store:  store,
		hub:    hub,
		config: cfg,
		done:   make(chan struct{}),
	}
}

// Start begins the background sweep.
//
// # Outputs
//
//   - error: Non-nil if the monitor is already running.
func (m *deadlockMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("monitor is already running")
	}
	m.running = true
	m.done = make(chan struct{}) // Reset done channel for potential restart
	m.mu.Unlock()

	slog.Info("Deadlock monitor starting", "interval", m.config.Interval.String())

	go m.runLoop(ctx)
	return nil
}

// Stop gracefully stops the sweep goroutine. Safe to call multiple times.
func (m *deadlockMonitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil // Already stopped
	}

	slog.Info("Deadlock monitor stopping")
	close(m.done)
	m.running = false
	return nil
}

// CheckNow evaluates the table once.
//
// # Description
//
// Takes a single snapshot so the detection result, process count, and any
// published cycle payload all describe the same instant. Records the result
// on the detection metrics and publishes deadlock_detected or
// deadlock_cleared when the state flips.
func (m *deadlockMonitor) CheckNow() bool {
	snap := m.store.Snapshot()
	deadlocked := rag.HasCycle(snap)

	m.stateMu.Lock()
	changed := deadlocked != m.deadlocked
	m.deadlocked = deadlocked
	m.stateMu.Unlock()

	if m.config.Metrics != nil {
		m.config.Metrics.RecordDetection(deadlocked)
		m.config.Metrics.SetProcessCount(len(snap))
	}

	if changed {
		if deadlocked {
			cycles := rag.CyclesIn(snap)
			slog.Warn("Deadlock detected",
				"processes", len(snap),
				"cycles", len(cycles),
			)
			if m.hub != nil {
				m.hub.Publish(events.TypeDeadlockDetected, map[string]interface{}{
					"deadlock": true,
					"cycles":   cycles,
				})
			}
		} else {
			slog.Info("Deadlock cleared", "processes", len(snap))
			if m.hub != nil {
				m.hub.Publish(events.TypeDeadlockCleared, map[string]interface{}{
					"deadlock": false,
				})
			}
		}
	}

	return deadlocked
}

// Deadlocked returns the last observed state.
func (m *deadlockMonitor) Deadlocked() bool {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return m.deadlocked
}

// runLoop sweeps on every tick until stopped. An initial sweep runs
// immediately so the gauge is correct right after startup.
func (m *deadlockMonitor) runLoop(ctx context.Context) {
	ticker := m.config.Clock.NewTicker(m.config.Interval)
	defer ticker.Stop()

	m.CheckNow()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Deadlock monitor stopped (context cancelled)")
			return
		case <-m.done:
			slog.Info("Deadlock monitor stopped (stop requested)")
			return
		case <-ticker.Chan():
			m.CheckNow()
		}
	}
}
