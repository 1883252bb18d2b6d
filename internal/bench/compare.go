package bench

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphscout-dev/graphscout/internal/callgraph"
)

// Metric scores one aspect of a graph against the baseline. Missing lists
// baseline keys absent from the scored graph; Extra lists scored keys absent
// from the baseline.
type Metric struct {
	Precision float64
	Recall    float64
	F1        float64
	Missing   []string
	Extra     []string
}

// Report holds node and edge metrics for one comparison.
type Report struct {
	Nodes Metric
	Edges Metric
}

// Compare scores got against the baseline want. Nodes are keyed by function
// name, edges by caller and callee name, so line-number drift between the two
// extractions does not count against either.
func Compare(got, want *callgraph.Graph) Report {
	return Report{
		Nodes: scoreSets(nodeKeys(got), nodeKeys(want)),
		Edges: scoreSets(edgeKeys(got), edgeKeys(want)),
	}
}

// String renders the report in the benchmark output format.
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("Benchmark Report:\n")
	writeMetric(&sb, "Nodes", r.Nodes)
	writeMetric(&sb, "Edges", r.Edges)
	return sb.String()
}

func writeMetric(sb *strings.Builder, label string, m Metric) {
	fmt.Fprintf(sb, "  %s: precision=%.2f recall=%.2f f1=%.2f\n", label, m.Precision, m.Recall, m.F1)
	for _, key := range m.Missing {
		fmt.Fprintf(sb, "    missing: %s\n", key)
	}
	for _, key := range m.Extra {
		fmt.Fprintf(sb, "    extra: %s\n", key)
	}
}

func nodeKeys(g *callgraph.Graph) map[string]bool {
	keys := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		keys[n.Name] = true
	}
	return keys
}

func edgeKeys(g *callgraph.Graph) map[string]bool {
	keys := make(map[string]bool, len(g.Edges))
	for _, e := range g.Edges {
		caller, callerOK := g.NodeByID(e.CallerID)
		callee, calleeOK := g.NodeByID(e.CalleeID)
		if !callerOK || !calleeOK {
			continue
		}
		keys[caller.Name+" -> "+callee.Name] = true
	}
	return keys
}

func scoreSets(got, want map[string]bool) Metric {
	truePositives := 0
	for key := range got {
		if want[key] {
			truePositives++
		}
	}

	m := Metric{}
	if len(got) > 0 {
		m.Precision = float64(truePositives) / float64(len(got))
	}
	if len(want) > 0 {
		m.Recall = float64(truePositives) / float64(len(want))
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	for key := range want {
		if !got[key] {
			m.Missing = append(m.Missing, key)
		}
	}
	for key := range got {
		if !want[key] {
			m.Extra = append(m.Extra, key)
		}
	}
	sort.Strings(m.Missing)
	sort.Strings(m.Extra)
	return m
}
