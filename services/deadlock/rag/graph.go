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

	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the directed resource-allocation graph derived from a snapshot.
//
// Processes and resources share one node namespace keyed by name, exactly as
// they share one namespace in the table (a process may be named like a
// resource). Duplicate edges collapse; an edge whose endpoints are the same
// node cannot live in the simple graph and is tracked in SelfLoops instead.
type Graph struct {
	// Directed is the underlying graph. It never contains self-edges.
	Directed *simple.DirectedGraph

	// SelfLoops holds node names with an edge to themselves, sorted.
	SelfLoops []string

	ids   map[string]int64
	names map[int64]string
	procs map[string]bool
}

// BuildGraph derives the resource-allocation graph from a snapshot.
//
// Node IDs are assigned in sorted process-name order so that two identical
// snapshots produce identical graphs, which keeps downstream layout and
// cycle reporting deterministic.
func BuildGraph(snapshot map[string]Entry) *Graph {
	g := &Graph{
		Directed: simple.NewDirectedGraph(),
		ids:      make(map[string]int64),
		names:    make(map[int64]string),
		procs:    make(map[string]bool, len(snapshot)),
	}

	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
		g.procs[name] = true
	}
	sort.Strings(names)

	loops := make(map[string]bool)
	for _, name := range names {
		e := snapshot[name]
		g.node(e.Holds)
		g.node(name)
		g.node(e.Requests)
		g.edge(e.Holds, name, loops)
		g.edge(name, e.Requests, loops)
	}

	g.SelfLoops = make([]string, 0, len(loops))
	for name := range loops {
		g.SelfLoops = append(g.SelfLoops, name)
	}
	sort.Strings(g.SelfLoops)

	return g
}

// Name returns the node name for a gonum node ID.
func (g *Graph) Name(id int64) string {
	return g.names[id]
}

// ID returns the gonum node ID for a name and whether the node exists.
func (g *Graph) ID(name string) (int64, bool) {
	id, ok := g.ids[name]
	return id, ok
}

// IsProcess reports whether the named node is a process. A name used both as
// a process and as a resource counts as a process.
func (g *Graph) IsProcess(name string) bool {
	return g.procs[name]
}

// Nodes returns all node names, sorted.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.ids))
	for name := range g.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Edges returns all non-loop edges as [from, to] name pairs, sorted.
func (g *Graph) Edges() [][2]string {
	var edges [][2]string
	it := g.Directed.Edges()
	for it.Next() {
		e := it.Edge()
		edges = append(edges, [2]string{g.names[e.From().ID()], g.names[e.To().ID()]})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

func (g *Graph) node(name string) int64 {
	if id, ok := g.ids[name]; ok {
		return id
	}
	n := g.Directed.NewNode()
	g.Directed.AddNode(n)
	id := n.ID()
	g.ids[name] = id
	g.names[id] = name
	return id
}

func (g *Graph) edge(from, to string, loops map[string]bool) {
	if from == to {
		loops[from] = true
		return
	}
	g.Directed.SetEdge(simple.Edge{
		F: simple.Node(g.ids[from]),
		T: simple.Node(g.ids[to]),
	})
}
