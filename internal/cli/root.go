package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "graphscout",
		Short: "Extract entities and call graphs from documents with an LLM oracle",
		Long: `Graphscout scans documents in bounded line windows, asking an LLM oracle
to report entity definitions (functions, classes) in each window, and
assembles the findings into result trees or a function call graph.

Configuration is read from .graphscout.yaml; flags override it.`,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default .graphscout.yaml)")
	flags.String("provider", "", "Oracle provider: openai|anthropic|ollama")
	flags.String("model", "", "Provider model name")
	flags.String("base-url", "", "Provider endpoint override")
	flags.String("api-key-env", "", "Environment variable holding the API key")
	flags.Int("chunk-size", 0, "Scan window size in lines")
	flags.String("log-level", "", "Log verbosity: debug|info|warn|error")
	flags.StringSlice("allow", nil, "Glob patterns of files to scan")

	scanCmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan a file or directory for target definitions",
		Args:  cobra.ExactArgs(1),
		RunE:  RunScan,
	}
	scanCmd.Flags().String("targets", "functions", "Target set: functions|classes")
	scanCmd.Flags().Bool("json", false, "Print machine-readable results")

	callgraphCmd := &cobra.Command{
		Use:   "callgraph <path>",
		Short: "Build the function call graph of a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE:  RunCallGraph,
	}
	callgraphCmd.Flags().String("format", "", "Output format: text|json|dot")
	callgraphCmd.Flags().String("out", "", "Write output to a file instead of stdout")

	benchCmd := &cobra.Command{
		Use:   "bench <path>",
		Short: "Score the oracle call graph against a static tree-sitter baseline",
		Args:  cobra.ExactArgs(1),
		RunE:  RunBench,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphscout %s\n", version)
		},
	}

	rootCmd.AddCommand(
		scanCmd,
		callgraphCmd,
		benchCmd,
		versionCmd,
	)

	return rootCmd
}
