// Package domain contains the core domain models and business logic for the task dependency graph.
package domain

import (
	"cmp"
	"iter"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents the task-level dependency graph wired by a manager.
// Nodes are task names; an edge points from a task to a predecessor.
type Graph struct {
	edges          map[InternedString][]InternedString
	executionOrder []InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		edges: make(map[InternedString][]InternedString),
	}
}

// AddNode adds a node and its predecessors to the graph.
// Adding an existing node appends to its predecessors.
func (g *Graph) AddNode(name InternedString, deps ...InternedString) {
	g.edges[name] = append(g.edges[name], deps...)
}

// TaskCount returns the number of nodes in the graph.
func (g *Graph) TaskCount() int {
	return len(g.edges)
}

// Dependencies returns the predecessors recorded for a node.
func (g *Graph) Dependencies(name InternedString) []InternedString {
	return g.edges[name]
}

// Validate checks for cycles in the graph using a topological sort.
// It populates the execution order if successful. Predecessors that were
// never added as nodes are treated as leaves.
func (g *Graph) Validate() error {
	g.executionOrder = make([]InternedString, 0, len(g.edges))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.edges[u] {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	names := slices.SortedFunc(maps.Keys(g.edges), func(a, b InternedString) int {
		return cmp.Compare(a.String(), b.String())
	})
	for _, name := range names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(Tagged(ErrCycleDetected), "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields node names in execution order,
// predecessors first. It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[InternedString] {
	return func(yield func(InternedString) bool) {
		for _, name := range g.executionOrder {
			if !yield(name) {
				return
			}
		}
	}
}
