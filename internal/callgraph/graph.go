// Package callgraph builds function call graphs by composing two scan
// passes: a flat discovery of function definitions, then a per-function
// extraction of call sites resolved against the discovered nodes.
package callgraph

import "fmt"

// Node is one discovered callable entity.
type Node struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ID returns the node's stable identity: "file:start_line:name".
func (n Node) ID() string {
	return fmt.Sprintf("%s:%d:%s", n.File, n.StartLine, n.Name)
}

// Edge is one discovered call relationship, annotated with the call site.
type Edge struct {
	CallerID string `json:"caller"`
	CalleeID string `json:"callee"`
	File     string `json:"file"`
	Line     int    `json:"line"`
}

// Graph holds nodes in discovery order and edges in extraction order. Edges
// may repeat a (caller, callee) pair when a function is called more than
// once; Adjacency dedupes.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NodeByID returns the node with the given id.
func (g *Graph) NodeByID(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID() == id {
			return n, true
		}
	}
	return Node{}, false
}

// FindByName resolves a callee name to a node by exact match, first in
// discovery order. Collisions resolve to the earliest discovery.
func (g *Graph) FindByName(name string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Adjacency returns the external edge-set representation: caller id to
// ordered callee ids, duplicates removed, first-seen order preserved.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.Nodes))
	seen := make(map[string]map[string]bool)
	for _, e := range g.Edges {
		if seen[e.CallerID] == nil {
			seen[e.CallerID] = make(map[string]bool)
		}
		if seen[e.CallerID][e.CalleeID] {
			continue
		}
		seen[e.CallerID][e.CalleeID] = true
		out[e.CallerID] = append(out[e.CallerID], e.CalleeID)
	}
	return out
}
