package callgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeGraph() *Graph {
	foo := Node{Name: "foo", File: "main.py", StartLine: 1, EndLine: 2}
	bar := Node{Name: "bar", File: "main.py", StartLine: 3, EndLine: 4}
	return &Graph{
		Nodes: []Node{foo, bar},
		Edges: []Edge{
			{CallerID: foo.ID(), CalleeID: bar.ID(), File: "main.py", Line: 2},
			{CallerID: foo.ID(), CalleeID: bar.ID(), File: "main.py", Line: 2},
		},
	}
}

func TestNodeID(t *testing.T) {
	n := Node{Name: "foo", File: "src/main.py", StartLine: 12, EndLine: 20}
	assert.Equal(t, "src/main.py:12:foo", n.ID())
}

func TestFindByNamePrefersDiscoveryOrder(t *testing.T) {
	g := &Graph{Nodes: []Node{
		{Name: "dup", File: "a.py", StartLine: 1, EndLine: 2},
		{Name: "dup", File: "b.py", StartLine: 5, EndLine: 6},
	}}
	n, ok := g.FindByName("dup")
	require.True(t, ok)
	assert.Equal(t, "a.py", n.File)

	_, ok = g.FindByName("missing")
	assert.False(t, ok)
}

func TestAdjacencyDedupesPreservingOrder(t *testing.T) {
	a := Node{Name: "a", File: "f", StartLine: 1}
	b := Node{Name: "b", File: "f", StartLine: 5}
	c := Node{Name: "c", File: "f", StartLine: 9}
	g := &Graph{
		Nodes: []Node{a, b, c},
		Edges: []Edge{
			{CallerID: a.ID(), CalleeID: c.ID(), Line: 2},
			{CallerID: a.ID(), CalleeID: b.ID(), Line: 3},
			{CallerID: a.ID(), CalleeID: c.ID(), Line: 4},
		},
	}

	adj := g.Adjacency()
	assert.Equal(t, []string{c.ID(), b.ID()}, adj[a.ID()])
}

func TestRenderText(t *testing.T) {
	out := RenderText(twoNodeGraph())
	assert.Contains(t, out, "Nodes (Functions): 2")
	assert.Contains(t, out, "- foo (main.py:1-2)")
	assert.Contains(t, out, "- foo -> bar (at main.py:2)")
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(twoNodeGraph())
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "main.py:1:foo"`)
	assert.Contains(t, out, `"adjacency"`)
	assert.Contains(t, out, `"main.py:3:bar"`)
}

func TestRenderDOTSanitizesIDs(t *testing.T) {
	out := RenderDOT(twoNodeGraph())
	assert.True(t, strings.HasPrefix(out, "digraph CallGraph {"))
	assert.Contains(t, out, "n_main_py_1_foo")
	assert.Contains(t, out, "n_main_py_1_foo -> n_main_py_3_bar;")
	// Duplicate edges collapse in DOT output.
	assert.Equal(t, 1, strings.Count(out, "->"))
}
