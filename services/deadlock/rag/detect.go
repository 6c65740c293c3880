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

	"gonum.org/v1/gonum/graph/topo"
)

// HasCycle reports whether the snapshot's resource-allocation graph contains
// at least one directed cycle. A self-loop counts as a cycle. An empty
// snapshot yields false.
//
// The result depends only on the snapshot contents.
func HasCycle(snapshot map[string]Entry) bool {
	if len(snapshot) == 0 {
		return false
	}

	g := BuildGraph(snapshot)
	if len(g.SelfLoops) > 0 {
		return true
	}
	return len(topo.DirectedCyclesIn(g.Directed)) > 0
}

// CyclesIn enumerates the elementary cycles of the snapshot's graph as lists
// of node names. Self-loops appear as single-element cycles. Each cycle is
// rotated so its lexicographically smallest name comes first and the cycles
// themselves are sorted, so identical snapshots report identical cycles.
func CyclesIn(snapshot map[string]Entry) [][]string {
	if len(snapshot) == 0 {
		return nil
	}

	g := BuildGraph(snapshot)

	var cycles [][]string
	for _, name := range g.SelfLoops {
		cycles = append(cycles, []string{name})
	}

	for _, c := range topo.DirectedCyclesIn(g.Directed) {
		names := make([]string, 0, len(c))
		for _, n := range c {
			names = append(names, g.Name(n.ID()))
		}
		// Johnson's enumeration closes each cycle by repeating its first
		// node; drop the repetition before normalizing.
		if len(names) > 1 && names[0] == names[len(names)-1] {
			names = names[:len(names)-1]
		}
		cycles = append(cycles, canonical(names))
	}

	sort.Slice(cycles, func(i, j int) bool {
		a, b := cycles[i], cycles[j]
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return len(a) < len(b)
	})

	return cycles
}

// canonical rotates a cycle so the smallest name leads. The relative order
// of the remaining names is preserved; a cycle is a ring, so rotation does
// not change what it describes.
func canonical(cycle []string) []string {
	if len(cycle) < 2 {
		return cycle
	}

	min := 0
	for i, name := range cycle {
		if name < cycle[min] {
			min = i
		}
	}

	out := make([]string, 0, len(cycle))
	out = append(out, cycle[min:]...)
	out = append(out, cycle[:min]...)
	return out
}
