package graph

import (
	"fmt"
	"io"
	"strings"
)

// Visualizer provides methods to visualize the dependency graph.
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer.
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format.
func (v *Visualizer) WriteDOT(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	keys := v.graph.sortedKeys()
	nodeIDs := make(map[NodeKey]string, len(keys))
	for i, key := range keys {
		node := v.graph.nodes[key]
		nodeIDs[key] = fmt.Sprintf("n%d", i)
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q, style=filled];\n",
			nodeIDs[key], v.formatNodeLabel(node), v.getNodeColor(node))
	}

	for _, key := range keys {
		for _, dep := range v.graph.nodes[key].Dependencies {
			fmt.Fprintf(&b, "  %s -> %s;\n", nodeIDs[key], nodeIDs[dep])
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes an indented adjacency listing of the graph.
func (v *Visualizer) WriteText(w io.Writer) error {
	v.graph.mu.RLock()
	defer v.graph.mu.RUnlock()

	var b strings.Builder
	for _, key := range v.graph.sortedKeys() {
		node := v.graph.nodes[key]
		b.WriteString(v.formatNodeLabel(node))
		if !node.Declared {
			b.WriteString(" (unbound)")
		}
		b.WriteString("\n")
		for _, dep := range node.Dependencies {
			fmt.Fprintf(&b, "  -> %s\n", v.formatNodeLabel(v.graph.nodes[dep]))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (v *Visualizer) formatNodeLabel(node *Node) string {
	if node.Label != "" {
		return node.Label
	}
	return node.Key.String()
}

func (v *Visualizer) getNodeColor(node *Node) string {
	switch {
	case !node.Declared:
		return "lightcoral"
	case len(node.Dependencies) == 0:
		return "lightgreen"
	default:
		return "lightblue"
	}
}
