// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rag

import (
	"sort"
	"unicode/utf8"
)

// Outcome is the result of one resolution attempt.
type Outcome struct {
	// Resolved is true when a victim was terminated.
	Resolved bool `json:"resolved"`

	// Terminated names the removed process when Resolved is true.
	Terminated string `json:"terminated,omitempty"`

	// Message explains a non-resolution (empty table, no cycle).
	Message string `json:"message,omitempty"`
}

// ResolveOnce breaks a detected deadlock by terminating a single victim.
//
// The victim is the process whose held-resource name is shortest; ties go to
// the lexicographically smallest process name, so resolution is reproducible
// regardless of insertion order. Exactly one process is removed per call;
// a cycle of n processes needs at most n calls to clear.
//
// The check-select-remove sequence runs under one lock, so a concurrent Add
// cannot slip between detection and termination.
func (s *Store) ResolveOnce() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.procs) == 0 {
		return Outcome{Resolved: false, Message: "No processes to resolve"}
	}

	if !HasCycle(s.procs) {
		return Outcome{Resolved: false, Message: "No deadlock detected"}
	}

	victim := selectVictim(s.procs)
	delete(s.procs, victim)
	return Outcome{Resolved: true, Terminated: victim}
}

// selectVictim picks the process holding the "fewest" resources. Every
// process holds exactly one, so the original policy degenerates to comparing
// the LENGTH of the held-resource name; shortest wins, and equal lengths
// fall back to the smallest process name.
func selectVictim(procs map[string]Entry) string {
	names := make([]string, 0, len(procs))
	for name := range procs {
		names = append(names, name)
	}
	sort.Strings(names)

	victim := names[0]
	for _, name := range names[1:] {
		if utf8.RuneCountInString(procs[name].Holds) < utf8.RuneCountInString(procs[victim].Holds) {
			victim = name
		}
	}
	return victim
}
