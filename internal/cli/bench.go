package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/graphscout-dev/graphscout/internal/bench"
	"github.com/graphscout-dev/graphscout/internal/callgraph"
)

func RunBench(cmd *cobra.Command, args []string) error {
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

	agent := callgraph.New(o, fs, log)
	agent.SetChunkSize(cfg.ChunkSize)

	ctx, cancel := runContext(cfg)
	defer cancel()

	got, err := agent.Build(ctx, args[0])
	if err != nil {
		return err
	}
	want, err := bench.Static(ctx, fs, log, args[0])
	if err != nil {
		return err
	}

	log.Infof("oracle graph: %d nodes, %d edges; static baseline: %d nodes, %d edges",
		len(got.Nodes), len(got.Edges), len(want.Nodes), len(want.Edges))
	logMetrics(log, agent.Metrics())

	fmt.Fprint(cmd.OutOrStdout(), bench.Compare(got, want).String())
	return nil
}
