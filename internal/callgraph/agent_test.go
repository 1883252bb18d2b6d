package callgraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphscout-dev/graphscout/internal/logger"
	"github.com/graphscout-dev/graphscout/internal/oracle"
	"github.com/graphscout-dev/graphscout/internal/vfs"
)

func newTestAgent(script *oracle.Script) *Agent {
	return New(script, vfs.New(), logger.New(nil, logger.LevelError))
}

func TestBuildTwoFunctionGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("def foo():\n    bar()\ndef bar():\n    pass\n"), 0644))

	script := &oracle.Script{}
	// Node discovery: one window covers the whole 4-line document.
	script.On("function definition",
		`{"actions": [`+
			`{"name": "found_target", "input": {"function_name": "foo", "start_line": 1, "end_line": 2}},`+
			`{"name": "found_target", "input": {"function_name": "bar", "start_line": 3, "end_line": 4}}]}`)
	// Edge discovery for foo's span (lines 1-2): a call to bar at line 2.
	script.On("2:     bar()",
		`{"actions": [{"name": "record_function_call", "input": {"name": "bar", "file_line": 2}}]}`)

	agent := newTestAgent(script)
	g, err := agent.Build(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "foo", g.Nodes[0].Name)
	assert.Equal(t, "bar", g.Nodes[1].Name)
	assert.Equal(t, path, g.Nodes[0].File)

	require.Len(t, g.Edges, 1)
	edge := g.Edges[0]
	assert.Equal(t, g.Nodes[0].ID(), edge.CallerID)
	assert.Equal(t, g.Nodes[1].ID(), edge.CalleeID)
	assert.Equal(t, 2, edge.Line)

	// One discovery turn plus one edge turn per node.
	assert.Equal(t, 3, script.Calls())
}

func TestBuildDropsUnresolvedCallees(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("def foo():\n    print(1)\n"), 0644))

	script := &oracle.Script{}
	script.On("function definition",
		`{"actions": [{"name": "found_target", "input": {"function_name": "foo", "start_line": 1, "end_line": 2}}]}`)
	script.On("Source Code",
		`{"actions": [{"name": "record_function_call", "input": {"name": "print", "file_line": 2}}]}`)

	agent := newTestAgent(script)
	g, err := agent.Build(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Edges)
}

func TestBuildScansEveryListedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("def a():\n    pass\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.py"), []byte("def b():\n    a()\n"), 0644))

	script := &oracle.Script{}
	script.On("a.py",
		`{"actions": [{"name": "found_target", "input": {"function_name": "a", "start_line": 1, "end_line": 2}}]}`)
	script.On("b.py",
		`{"actions": [{"name": "found_target", "input": {"function_name": "b", "start_line": 1, "end_line": 2}}]}`)
	script.On("2:     a()",
		`{"actions": [{"name": "record_function_call", "input": {"name": "a", "file_line": 2}}]}`)

	agent := newTestAgent(script)
	g, err := agent.Build(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "a", g.Nodes[0].Name)
	caller, ok := g.NodeByID(g.Edges[0].CallerID)
	require.True(t, ok)
	assert.Equal(t, "b", caller.Name)
}

func TestBuildPropagatesOracleFailures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(path, []byte("def foo():\n    pass\n"), 0644))

	script := &oracle.Script{}
	script.Push(`{"actions": [{"name": "explode", "input": {}}]}`)

	agent := newTestAgent(script)
	_, err := agent.Build(context.Background(), path)
	require.Error(t, err)
}
