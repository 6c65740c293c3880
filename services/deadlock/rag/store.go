// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rag implements the in-memory resource-allocation graph: the process
// table, deadlock-cycle detection over the derived directed graph, and the
// single-victim resolution policy.
//
// # Model
//
// Each process holds exactly one named resource and requests exactly one
// named resource. Resources exist only as graph nodes implied by those
// references; nothing checks that a resource has a single holder. Two
// processes may claim to hold the same resource and the table will accept
// it. That looseness is part of the model, not an oversight, and downstream
// code must not assume resource exclusivity.
//
// # Derived Graph
//
// The graph is rebuilt from the table on every detection or rendering call:
// one edge from the held resource to the process, one edge from the process
// to the requested resource. A directed cycle in that graph is the classical
// necessary condition for deadlock under single-instance resources.
package rag

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AleutianAI/gridlock/pkg/validation"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrMissingField is returned when a process definition omits its name,
	// held resource, or requested resource.
	ErrMissingField = errors.New("process name, held resource, and requested resource are all required")

	// ErrEmptyStore is returned by operations that need at least one process.
	ErrEmptyStore = errors.New("no processes defined")

	// ErrNotFound is returned when removing a process that does not exist.
	ErrNotFound = errors.New("process not found")
)

// =============================================================================
// Types
// =============================================================================

// Entry describes one process: the resource it holds and the one it requests.
type Entry struct {
	Holds    string `json:"holds"`
	Requests string `json:"requests"`
}

// Store is the process table. All methods are safe for concurrent use.
//
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu    sync.RWMutex
	procs map[string]Entry
}

// NewStore returns an empty process table.
func NewStore() *Store {
	return &Store{procs: make(map[string]Entry)}
}

// =============================================================================
// Mutations
// =============================================================================

// Add inserts or overwrites the entry for name.
//
// All three fields are required; surrounding whitespace is trimmed before
// the entry is stored so "P1 " and "P1" are the same process. Returns
// ErrMissingField when any field is blank, or a validation error when a
// field is not a usable identifier.
func (s *Store) Add(name, holds, requests string) error {
	cleanName, cleanHolds, cleanRequests, err := sanitizeEntry(name, holds, requests)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs[cleanName] = Entry{Holds: cleanHolds, Requests: cleanRequests}
	return nil
}

// Remove deletes one entry. Returns ErrNotFound if name is absent.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.procs[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.procs, name)
	return nil
}

// Clear removes all entries unconditionally. Clearing an empty table is a
// no-op.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs = make(map[string]Entry)
}

// Replace swaps the whole table for the given entries, validating each one
// first. On any validation error the table is left untouched.
func (s *Store) Replace(entries map[string]Entry) error {
	next := make(map[string]Entry, len(entries))
	for name, e := range entries {
		cleanName, cleanHolds, cleanRequests, err := sanitizeEntry(name, e.Holds, e.Requests)
		if err != nil {
			return fmt.Errorf("entry %q: %w", name, err)
		}
		next[cleanName] = Entry{Holds: cleanHolds, Requests: cleanRequests}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.procs = next
	return nil
}

// =============================================================================
// Reads
// =============================================================================

// Snapshot returns a copy of the table for read-only consumption by the
// detector, visualizer, and chat bridge. Mutating the returned map does not
// affect the store.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string]Entry, len(s.procs))
	for name, e := range s.procs {
		snap[name] = e
	}
	return snap
}

// Len returns the number of processes in the table.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.procs)
}

// Detect reports whether the current table contains a deadlock cycle.
func (s *Store) Detect() bool {
	return HasCycle(s.Snapshot())
}

// =============================================================================
// Helpers
// =============================================================================

func sanitizeEntry(name, holds, requests string) (string, string, string, error) {
	cleanName, err := validation.SanitizeName(name)
	if err != nil {
		return "", "", "", fieldError("process_name", name, err)
	}
	cleanHolds, err := validation.SanitizeName(holds)
	if err != nil {
		return "", "", "", fieldError("holds_resource", holds, err)
	}
	cleanRequests, err := validation.SanitizeName(requests)
	if err != nil {
		return "", "", "", fieldError("requests_resource", requests, err)
	}
	return cleanName, cleanHolds, cleanRequests, nil
}

// fieldError maps blank fields onto ErrMissingField so callers can translate
// them to the fixed "all fields are required" API answer, and keeps the
// validator's message for everything else.
func fieldError(field, value string, err error) error {
	if strings.TrimSpace(value) == "" {
		return ErrMissingField
	}
	return fmt.Errorf("%s: %w", field, err)
}
