package callgraph

import (
	"context"
	"fmt"

	"github.com/graphscout-dev/graphscout/internal/logger"
	"github.com/graphscout-dev/graphscout/internal/oracle"
	"github.com/graphscout-dev/graphscout/internal/scan"
	"github.com/graphscout-dev/graphscout/internal/vfs"
)

// Agent composes two scan passes into a call graph: node discovery scans each
// document for function definitions; edge discovery re-reads each node's span
// in a single oracle turn and resolves reported calls against the node set.
type Agent struct {
	engine *scan.Engine
	fs     *vfs.FS
	log    *logger.Logger
}

// New creates a call-graph agent.
func New(o oracle.Oracle, fs *vfs.FS, log *logger.Logger) *Agent {
	return &Agent{engine: scan.NewEngine(o, fs, log), fs: fs, log: log}
}

// SetChunkSize overrides the node-discovery window size.
func (a *Agent) SetChunkSize(n int) {
	a.engine.SetChunkSize(n)
}

// Metrics returns accumulated oracle usage for both passes.
func (a *Agent) Metrics() scan.Metrics {
	return a.engine.Metrics()
}

// Build extracts the call graph of a file or directory.
func (a *Agent) Build(ctx context.Context, pathOrDir string) (*Graph, error) {
	files, err := a.fs.List(pathOrDir)
	if err != nil {
		return nil, err
	}

	g := &Graph{}
	target := FunctionTarget()
	for _, file := range files {
		forest, err := a.engine.Discover(ctx, []*scan.Target{target}, file)
		if err != nil {
			return nil, err
		}
		for _, result := range forest {
			node, err := nodeFromResult(file, result)
			if err != nil {
				return nil, err
			}
			a.log.Debugf("found function %s in %s lines %d-%d", node.Name, node.File, node.StartLine, node.EndLine)
			g.Nodes = append(g.Nodes, node)
		}
	}

	for _, node := range g.Nodes {
		edges, err := a.extractCalls(ctx, node, g)
		if err != nil {
			return nil, err
		}
		g.Edges = append(g.Edges, edges...)
	}
	return g, nil
}

// extractCalls runs one bounded oracle turn over a node's declared span and
// resolves every reported callee by exact name. Unresolved callees are
// dropped: calls to external or undiscovered functions are expected.
func (a *Agent) extractCalls(ctx context.Context, caller Node, g *Graph) ([]Edge, error) {
	content, err := a.fs.ReadWindow(caller.File, caller.StartLine, caller.EndLine, true, "")
	if err != nil {
		return nil, fmt.Errorf("read span of %s: %w", caller.ID(), err)
	}

	request := fmt.Sprintf(
		"Extract the call graph information from the following source code.\n\nCurrent Part of Source Code:\n%s\n",
		content)
	actions, err := a.engine.SingleTurn(ctx, []scan.ActionSpec{scan.RecordCallSpec()}, request, scan.ActionRecordCall)
	if err != nil {
		return nil, fmt.Errorf("extract calls of %s: %w", caller.ID(), err)
	}

	edges := make([]Edge, 0, len(actions))
	for _, action := range actions {
		call, ok := action.(scan.RecordCall)
		if !ok {
			continue
		}
		callee, ok := g.FindByName(call.Callee)
		if !ok {
			a.log.Debugf("dropping unresolved call to %q at %s:%d", call.Callee, caller.File, call.Line)
			continue
		}
		edges = append(edges, Edge{
			CallerID: caller.ID(),
			CalleeID: callee.ID(),
			File:     caller.File,
			Line:     call.Line,
		})
	}
	return edges, nil
}

func nodeFromResult(file string, result *scan.Result) (Node, error) {
	name, _ := result.Data["name"].(string)
	start, startOK := numField(result.Data, "start_line")
	end, endOK := numField(result.Data, "end_line")
	if name == "" || !startOK || !endOK {
		return Node{}, fmt.Errorf("%w: function result missing name or span: %v", scan.ErrProtocol, result.Data)
	}

	nodeFile := file
	if reported, ok := result.Data["file"].(string); ok && reported != "" {
		nodeFile = reported
	}
	return Node{Name: name, File: nodeFile, StartLine: start, EndLine: end}, nil
}

func numField(data map[string]any, key string) (int, bool) {
	switch v := data[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
