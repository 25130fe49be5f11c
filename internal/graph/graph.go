// Package graph builds the static dependency graph between bindings: an edge
// runs from a binding to every identifier its type declares an injection for.
package graph

import (
	"fmt"
	"sort"
	"sync"
)

// NodeKey uniquely identifies a node in the graph.
type NodeKey struct {
	ID any
}

// Node represents a binding in the dependency graph.
type Node struct {
	Key NodeKey

	// Declared is false for nodes that only appear as someone's dependency.
	Declared bool

	// Label is an optional display name.
	Label string

	Dependencies []NodeKey
	Dependents   []NodeKey
}

// DependencyGraph manages the dependency relationships between bindings.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[NodeKey]*Node
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[NodeKey]*Node),
	}
}

// AddNode declares id with its direct dependencies, replacing any previous
// declaration. Dependencies that are not declared yet get placeholder nodes.
func (g *DependencyGraph) AddNode(id any, label string, deps ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := NodeKey{ID: id}
	node := g.node(key)
	node.Declared = true
	node.Label = label

	for _, old := range node.Dependencies {
		if dep, ok := g.nodes[old]; ok {
			dep.Dependents = remove(dep.Dependents, key)
		}
	}
	node.Dependencies = node.Dependencies[:0]

	for _, d := range deps {
		depKey := NodeKey{ID: d}
		if contains(node.Dependencies, depKey) {
			continue
		}
		node.Dependencies = append(node.Dependencies, depKey)
		dep := g.node(depKey)
		dep.Dependents = append(dep.Dependents, key)
	}
}

func (g *DependencyGraph) node(key NodeKey) *Node {
	n, ok := g.nodes[key]
	if !ok {
		n = &Node{Key: key}
		g.nodes[key] = n
	}
	return n
}

// HasNode reports whether id was declared with AddNode.
func (g *DependencyGraph) HasNode(id any) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[NodeKey{ID: id}]
	return ok && n.Declared
}

// GetDependencies returns the direct dependencies of id.
func (g *DependencyGraph) GetDependencies(id any) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if n, ok := g.nodes[NodeKey{ID: id}]; ok {
		out := make([]NodeKey, len(n.Dependencies))
		copy(out, n.Dependencies)
		return out
	}
	return nil
}

// GetDependents returns the nodes that depend directly on id.
func (g *DependencyGraph) GetDependents(id any) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if n, ok := g.nodes[NodeKey{ID: id}]; ok {
		out := make([]NodeKey, len(n.Dependents))
		copy(out, n.Dependents)
		return out
	}
	return nil
}

// Undeclared returns dependencies that no AddNode call declared, in a stable order.
func (g *DependencyGraph) Undeclared() []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []NodeKey
	for _, key := range g.sortedKeys() {
		if !g.nodes[key].Declared {
			out = append(out, key)
		}
	}
	return out
}

// Size returns the number of nodes, placeholders included.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// DetectCycles checks the graph for cycles and returns the first one found
// as a *CircularDependencyError.
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[NodeKey]int, len(g.nodes))
	var stack []NodeKey

	var visit func(key NodeKey) error
	visit = func(key NodeKey) error {
		switch state[key] {
		case visiting:
			start := 0
			for i, k := range stack {
				if k == key {
					start = i
					break
				}
			}
			path := make([]NodeKey, len(stack)-start)
			copy(path, stack[start:])
			return &CircularDependencyError{Node: key, Path: path}
		case visited:
			return nil
		}

		state[key] = visiting
		stack = append(stack, key)
		for _, dep := range g.nodes[key].Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[key] = visited
		return nil
	}

	for _, key := range g.sortedKeys() {
		if state[key] == unvisited {
			if err := visit(key); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsAcyclic reports whether the graph has no cycles.
func (g *DependencyGraph) IsAcyclic() bool {
	return g.DetectCycles() == nil
}

// sortedKeys returns node keys ordered by their string form; callers hold mu.
func (g *DependencyGraph) sortedKeys() []NodeKey {
	keys := make([]NodeKey, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// String returns a string representation of the node key.
func (k NodeKey) String() string {
	if s, ok := k.ID.(fmt.Stringer); ok {
		return s.String()
	}
	if s, ok := k.ID.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", k.ID)
}

// String returns a string representation of the node.
func (n *Node) String() string {
	return fmt.Sprintf("Node{%s, deps:%d, dependents:%d}",
		n.Key.String(), len(n.Dependencies), len(n.Dependents))
}

func contains(keys []NodeKey, key NodeKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func remove(keys []NodeKey, key NodeKey) []NodeKey {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
