// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package events broadcasts allocation-table changes to connected clients.
//
// A single Hub goroutine owns the subscriber set; registration, removal, and
// publishing all flow through channels so no locks are needed. Publishers
// never block: events are dropped when the hub is saturated, and consumers
// that fall too far behind are disconnected rather than allowed to stall
// everyone else.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/gridlock/services/deadlock/observability"
)

// Event types pushed to subscribers.
const (
	TypeProcessAdded      = "process_added"
	TypeStateCleared      = "state_cleared"
	TypeProcessTerminated = "process_terminated"
	TypeScenarioApplied   = "scenario_applied"
	TypeDeadlockDetected  = "deadlock_detected"
	TypeDeadlockCleared   = "deadlock_cleared"
)

const (
	// subscriberBuffer is each consumer's queue depth before it is dropped.
	subscriberBuffer = 16

	// publishBuffer bounds how many events may be in flight to the hub.
	publishBuffer = 64
)

// Event is a single state-change notification.
type Event struct {
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Hub fans events out to subscribers. Create with NewHub and start Run in its
// own goroutine before subscribing or publishing.
type Hub struct {
	register   chan chan Event
	unregister chan chan Event
	events     chan Event
	done       chan struct{}
	metrics    *observability.DeadlockMetrics
}

// NewHub creates a hub. metrics may be nil.
func NewHub(metrics *observability.DeadlockMetrics) *Hub {
	return &Hub{
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		events:     make(chan Event, publishBuffer),
		done:       make(chan struct{}),
		metrics:    metrics,
	}
}

// Run owns the subscriber set. It blocks until ctx is cancelled, then closes
// every subscriber channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	subscribers := make(map[chan Event]struct{})

	for {
		select {
		case <-ctx.Done():
			for ch := range subscribers {
				close(ch)
			}
			slog.Info("Event hub stopped", "subscribers", len(subscribers))
			return

		case ch := <-h.register:
			subscribers[ch] = struct{}{}
			if h.metrics != nil {
				h.metrics.SubscriberConnected()
			}

		case ch := <-h.unregister:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
				if h.metrics != nil {
					h.metrics.SubscriberDisconnected()
				}
			}

		case ev := <-h.events:
			if h.metrics != nil {
				h.metrics.RecordEventPublished(ev.Type)
			}
			for ch := range subscribers {
				select {
				case ch <- ev:
				default:
					// Slow consumer: drop it rather than stall the hub.
					delete(subscribers, ch)
					close(ch)
					if h.metrics != nil {
						h.metrics.SubscriberDisconnected()
					}
					slog.Warn("Dropped slow event subscriber")
				}
			}
		}
	}
}

// Subscribe registers a new consumer. The returned channel closes when the
// hub shuts down or the consumer falls too far behind. After shutdown the
// returned channel is already closed.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	select {
	case h.register <- ch:
	case <-h.done:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a consumer. Safe to call after the hub already dropped
// or closed the channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	select {
	case h.unregister <- ch:
	case <-h.done:
	}
}

// Publish enqueues an event without blocking the caller. Events are dropped
// with a warning when the hub is saturated.
func (h *Hub) Publish(eventType string, payload interface{}) {
	ev := Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Payload:   payload,
	}
	select {
	case h.events <- ev:
	default:
		slog.Warn("Event hub saturated, dropping event", "type", eventType)
	}
}
