package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphscout-dev/graphscout/internal/callgraph"
	"github.com/graphscout-dev/graphscout/internal/fileutil"
)

func RunCallGraph(cmd *cobra.Command, args []string) error {
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

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to read --format flag: %w", err)
	}
	if format == "" {
		format = cfg.Format
	}
	if format == "" {
		format = "text"
	}

	agent := callgraph.New(o, fs, log)
	agent.SetChunkSize(cfg.ChunkSize)

	ctx, cancel := runContext(cfg)
	defer cancel()

	g, err := agent.Build(ctx, args[0])
	if err != nil {
		return err
	}
	logMetrics(log, agent.Metrics())

	var rendered string
	switch format {
	case "text":
		rendered = callgraph.RenderText(g)
	case "json":
		rendered, err = callgraph.RenderJSON(g)
		if err != nil {
			return err
		}
	case "dot":
		rendered = callgraph.RenderDOT(g)
	default:
		return fmt.Errorf("unsupported format %q (supported: text, json, dot)", format)
	}
	rendered = fileutil.EnsureTrailingNewline(rendered)

	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to read --out flag: %w", err)
	}
	if outPath != "" {
		return fileutil.WriteIfChanged(outPath, []byte(rendered))
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
