package callgraph

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderText formats the graph as a human-readable summary.
func RenderText(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("Call Graph Summary:\n")
	fmt.Fprintf(&sb, "  Nodes (Functions): %d\n", len(g.Nodes))
	fmt.Fprintf(&sb, "  Edges (Calls): %d\n\n", len(g.Edges))

	sb.WriteString("Functions:\n")
	for _, n := range g.Nodes {
		fmt.Fprintf(&sb, "  - %s (%s:%d-%d)\n", n.Name, n.File, n.StartLine, n.EndLine)
	}

	sb.WriteString("\nFunction Calls:\n")
	for _, e := range g.Edges {
		caller, callerOK := g.NodeByID(e.CallerID)
		callee, calleeOK := g.NodeByID(e.CalleeID)
		if !callerOK || !calleeOK {
			continue
		}
		fmt.Fprintf(&sb, "  - %s -> %s (at %s:%d)\n", caller.Name, callee.Name, e.File, e.Line)
	}
	return sb.String()
}

// RenderJSON formats the graph as indented JSON.
func RenderJSON(g *Graph) (string, error) {
	type jsonNode struct {
		ID string `json:"id"`
		Node
	}
	type jsonGraph struct {
		Nodes     []jsonNode          `json:"nodes"`
		Edges     []Edge              `json:"edges"`
		Adjacency map[string][]string `json:"adjacency"`
	}

	out := jsonGraph{
		Nodes:     make([]jsonNode, 0, len(g.Nodes)),
		Edges:     g.Edges,
		Adjacency: g.Adjacency(),
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	for _, n := range g.Nodes {
		out.Nodes = append(out.Nodes, jsonNode{ID: n.ID(), Node: n})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode call graph: %w", err)
	}
	return string(data), nil
}

// RenderDOT formats the graph in Graphviz DOT notation.
func RenderDOT(g *Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph CallGraph {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box];\n\n")

	for _, n := range g.Nodes {
		label := fmt.Sprintf("%s\\n%s:%d", n.Name, n.File, n.StartLine)
		fmt.Fprintf(&sb, "  %s [label=\"%s\"];\n", dotID(n.ID()), label)
	}

	sb.WriteString("\n")
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		key := e.CallerID + "->" + e.CalleeID
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Fprintf(&sb, "  %s -> %s;\n", dotID(e.CallerID), dotID(e.CalleeID))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotID(id string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_", ".", "_", "-", "_", "\\", "_", " ", "_")
	return "n_" + replacer.Replace(id)
}
