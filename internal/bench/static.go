// Package bench builds a static tree-sitter baseline graph and compares the
// oracle-extracted graph against it.
package bench

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/graphscout-dev/graphscout/internal/callgraph"
	"github.com/graphscout-dev/graphscout/internal/logger"
	"github.com/graphscout-dev/graphscout/internal/vfs"
)

// language bundles a grammar with the node types that mark definitions and
// call sites in that grammar.
type language struct {
	lang     *sitter.Language
	defTypes map[string]bool
	callType string
}

var languages = map[string]language{
	".go": {
		lang:     golang.GetLanguage(),
		defTypes: map[string]bool{"function_declaration": true, "method_declaration": true},
		callType: "call_expression",
	},
	".py": {
		lang:     python.GetLanguage(),
		defTypes: map[string]bool{"function_definition": true},
		callType: "call",
	},
}

// Static extracts a call graph from the listed path without the oracle, using
// tree-sitter. Node IDs and name resolution follow the oracle pipeline: nodes
// in file order, callees resolved by exact name in discovery order, unresolved
// callees dropped. Files with no registered grammar are skipped with a warning.
func Static(ctx context.Context, fs *vfs.FS, log *logger.Logger, pathOrDir string) (*callgraph.Graph, error) {
	files, err := fs.List(pathOrDir)
	if err != nil {
		return nil, err
	}

	g := &callgraph.Graph{}
	type pendingCall struct {
		callerIdx int
		callee    string
		file      string
		line      int
	}
	pending := make([]pendingCall, 0)

	for _, file := range files {
		grammar, ok := languages[strings.ToLower(filepath.Ext(file))]
		if !ok {
			log.Warnf("no grammar for %s, skipping", file)
			continue
		}

		content, err := fs.ReadWhole(file)
		if err != nil {
			return nil, err
		}

		p := sitter.NewParser()
		p.SetLanguage(grammar.lang)
		tree, err := p.ParseCtx(ctx, nil, []byte(content))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}

		defs := collectDefs(tree.RootNode(), []byte(content), grammar)
		tree.Close()

		for _, def := range defs {
			g.Nodes = append(g.Nodes, callgraph.Node{
				Name:      def.name,
				File:      file,
				StartLine: def.start,
				EndLine:   def.end,
			})
			for _, call := range def.calls {
				pending = append(pending, pendingCall{
					callerIdx: len(g.Nodes) - 1,
					callee:    call.name,
					file:      file,
					line:      call.line,
				})
			}
		}
	}

	for _, call := range pending {
		callee, ok := g.FindByName(call.callee)
		if !ok {
			continue
		}
		g.Edges = append(g.Edges, callgraph.Edge{
			CallerID: g.Nodes[call.callerIdx].ID(),
			CalleeID: callee.ID(),
			File:     call.file,
			Line:     call.line,
		})
	}
	return g, nil
}

type staticCall struct {
	name string
	line int
}

type staticDef struct {
	name       string
	start, end int
	calls      []staticCall
}

func collectDefs(node *sitter.Node, content []byte, grammar language) []staticDef {
	defs := make([]staticDef, 0)
	walkDefs(node, content, grammar, &defs)
	return defs
}

func walkDefs(node *sitter.Node, content []byte, grammar language, defs *[]staticDef) {
	if node == nil {
		return
	}

	if grammar.defTypes[node.Type()] {
		nameNode := node.ChildByFieldName("name")
		if nameNode != nil {
			def := staticDef{
				name:  nameNode.Content(content),
				start: int(node.StartPoint().Row) + 1,
				end:   int(node.EndPoint().Row) + 1,
			}
			collectCalls(node.ChildByFieldName("body"), content, grammar, &def.calls)
			*defs = append(*defs, def)
		}
		// Nested definitions still get their own nodes.
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		walkDefs(node.Child(i), content, grammar, defs)
	}
}

func collectCalls(node *sitter.Node, content []byte, grammar language, calls *[]staticCall) {
	if node == nil {
		return
	}

	if node.Type() == grammar.callType {
		name := callName(node.ChildByFieldName("function"), content)
		if name != "" {
			*calls = append(*calls, staticCall{
				name: name,
				line: int(node.StartPoint().Row) + 1,
			})
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectCalls(node.Child(i), content, grammar, calls)
	}
}

// callName reduces a call's function expression to a bare name: the field of
// a selector or attribute access, otherwise the last dotted segment.
func callName(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}

	switch node.Type() {
	case "identifier":
		return node.Content(content)
	case "selector_expression":
		if field := node.ChildByFieldName("field"); field != nil {
			return field.Content(content)
		}
	case "attribute":
		if attr := node.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(content)
		}
	case "parenthesized_expression":
		return callName(node.ChildByFieldName("expression"), content)
	}

	raw := strings.TrimSpace(node.Content(content))
	if idx := strings.LastIndex(raw, "."); idx != -1 {
		raw = raw[idx+1:]
	}
	return strings.TrimSpace(raw)
}
