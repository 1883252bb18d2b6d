package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/graphscout-dev/graphscout/internal/callgraph"
	"github.com/graphscout-dev/graphscout/internal/fileutil"
	"github.com/graphscout-dev/graphscout/internal/scan"
)

func RunScan(cmd *cobra.Command, args []string) error {
	cfg, err := ResolveConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	fs, err := newFS(cfg)
	if err != nil {
		return err
	}
	o, err := NewOracle(cfg)
	if err != nil {
		return err
	}

	targets, err := targetSet(cmd)
	if err != nil {
		return err
	}

	engine := scan.NewEngine(o, fs, log)
	engine.SetChunkSize(cfg.ChunkSize)

	ctx, cancel := runContext(cfg)
	defer cancel()

	files, err := fs.List(args[0])
	if err != nil {
		return err
	}

	type fileResults struct {
		File    string         `json:"file"`
		Results []*scan.Result `json:"results"`
	}
	all := make([]fileResults, 0, len(files))
	for _, file := range files {
		forest, err := engine.Discover(ctx, targets, file)
		if err != nil {
			return err
		}
		if forest == nil {
			forest = []*scan.Result{}
		}
		all = append(all, fileResults{File: file, Results: forest})
	}
	logMetrics(log, engine.Metrics())

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	if asJSON {
		return fileutil.PrintJSON(cmd.OutOrStdout(), all)
	}

	out := cmd.OutOrStdout()
	for _, fr := range all {
		fmt.Fprintf(out, "%s:\n", fr.File)
		printForest(out, fr.Results, 1)
	}
	return nil
}

func targetSet(cmd *cobra.Command) ([]*scan.Target, error) {
	name, err := cmd.Flags().GetString("targets")
	if err != nil {
		return nil, fmt.Errorf("failed to read --targets flag: %w", err)
	}
	switch name {
	case "functions":
		return []*scan.Target{callgraph.FunctionTarget()}, nil
	case "classes":
		return callgraph.ClassTargets(), nil
	default:
		return nil, fmt.Errorf("unsupported target set %q (supported: functions, classes)", name)
	}
}

func printForest(w io.Writer, results []*scan.Result, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, r := range results {
		fmt.Fprintf(w, "%s- %s %s (lines %d-%d)\n",
			indent, r.TargetID, resultName(r), lineField(r, "start_line"), lineField(r, "end_line"))
		printForest(w, r.Children, depth+1)
	}
}

func resultName(r *scan.Result) string {
	for _, key := range []string{"name", "class_name"} {
		if name, ok := r.Data[key].(string); ok && name != "" {
			return name
		}
	}
	return "(unnamed)"
}

func lineField(r *scan.Result, key string) int {
	switch v := r.Data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
