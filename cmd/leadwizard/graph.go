package main

import (
	"fmt"

	"github.com/aretw0/leadwizard/internal/presentation/graph"
	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [flow-file]",
	Short: "Export the flow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the flow, with option labels on the edges.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Flow.Path
		if len(args) > 0 {
			path = args[0]
		}

		f, err := flow.LoadFile(path)
		if err != nil {
			return err
		}

		output := graph.GenerateMermaid(f.Nodes(), graph.Options{
			StartNode:    cfg.Flow.StartNode,
			FallbackNode: cfg.Flow.FallbackNode,
		}, nil)
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
