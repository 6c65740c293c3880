// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for cycle detection over the resource-allocation graph

package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCycle_EmptySnapshot(t *testing.T) {
	assert.False(t, HasCycle(nil))
	assert.False(t, HasCycle(map[string]Entry{}))
}

func TestHasCycle_AcyclicChain(t *testing.T) {
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R2"},
		"P2": {Holds: "R2", Requests: "R3"},
		"P3": {Holds: "R3", Requests: "R4"},
	}
	assert.False(t, HasCycle(snap))
}

func TestHasCycle_CircularPair(t *testing.T) {
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R2"},
		"P2": {Holds: "R2", Requests: "R1"},
	}
	assert.True(t, HasCycle(snap))
}

func TestHasCycle_ThreeWayCycle(t *testing.T) {
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R2"},
		"P2": {Holds: "R2", Requests: "R3"},
		"P3": {Holds: "R3", Requests: "R1"},
	}
	assert.True(t, HasCycle(snap))
}

func TestHasCycle_HoldsAndRequestsSameResource(t *testing.T) {
	// R1 -> P1 -> R1 is a two-node cycle in the derived graph.
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R1"},
	}
	assert.True(t, HasCycle(snap))
}

func TestHasCycle_ProcessNamedLikeResource(t *testing.T) {
	// The process requests a resource with its own name, which collapses to
	// a self-loop on one shared node.
	snap := map[string]Entry{
		"X": {Holds: "R1", Requests: "X"},
	}
	assert.True(t, HasCycle(snap))

	g := BuildGraph(snap)
	assert.Equal(t, []string{"X"}, g.SelfLoops)
}

func TestHasCycle_SharedResourceNoCycle(t *testing.T) {
	// Two holders of R1 is physically impossible but the model allows it;
	// detection still answers from the edges alone.
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R2"},
		"P2": {Holds: "R1", Requests: "R3"},
	}
	assert.False(t, HasCycle(snap))
}

func TestHasCycle_CycleBesideAcyclicBranch(t *testing.T) {
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R2"},
		"P2": {Holds: "R2", Requests: "R1"},
		"P3": {Holds: "R3", Requests: "R4"},
	}
	assert.True(t, HasCycle(snap))
}

func TestCyclesIn_EmptySnapshot(t *testing.T) {
	assert.Nil(t, CyclesIn(nil))
}

func TestCyclesIn_CircularPair(t *testing.T) {
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "R2"},
		"P2": {Holds: "R2", Requests: "R1"},
	}

	cycles := CyclesIn(snap)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"P1", "R2", "P2", "R1"}, cycles[0])
}

func TestCyclesIn_SelfLoopAsSingleElement(t *testing.T) {
	snap := map[string]Entry{
		"X": {Holds: "R1", Requests: "X"},
	}

	cycles := CyclesIn(snap)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"X"}, cycles[0])
}

func TestBuildGraph_DeterministicAcrossInsertOrder(t *testing.T) {
	a := map[string]Entry{}
	a["P1"] = Entry{Holds: "R1", Requests: "R2"}
	a["P2"] = Entry{Holds: "R2", Requests: "R1"}
	a["P3"] = Entry{Holds: "R3", Requests: "R1"}

	b := map[string]Entry{}
	b["P3"] = Entry{Holds: "R3", Requests: "R1"}
	b["P2"] = Entry{Holds: "R2", Requests: "R1"}
	b["P1"] = Entry{Holds: "R1", Requests: "R2"}

	ga, gb := BuildGraph(a), BuildGraph(b)
	assert.Equal(t, ga.Nodes(), gb.Nodes())
	assert.Equal(t, ga.Edges(), gb.Edges())
	assert.Equal(t, CyclesIn(a), CyclesIn(b))
}

func TestBuildGraph_NodeClassification(t *testing.T) {
	snap := map[string]Entry{
		"P1": {Holds: "R1", Requests: "P2"},
		"P2": {Holds: "R2", Requests: "R1"},
	}

	g := BuildGraph(snap)
	assert.True(t, g.IsProcess("P1"))
	assert.True(t, g.IsProcess("P2"), "a name used as both process and resource counts as a process")
	assert.False(t, g.IsProcess("R1"))
	assert.False(t, g.IsProcess("R2"))
	assert.ElementsMatch(t, []string{"P1", "P2", "R1", "R2"}, g.Nodes())
}
