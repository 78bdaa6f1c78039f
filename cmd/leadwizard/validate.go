package main

import (
	"fmt"

	"github.com/aretw0/leadwizard/pkg/flow"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow-file]",
	Short: "Check a flow definition for consistency",
	Long: `Loads the flow (schema and references) and reports lint warnings such as
unreachable nodes or duplicate option values.`,
	Args: cobra.MaximumNArgs(1),
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
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		warnings := flow.Lint(f, cfg.Flow.StartNode)
		for _, w := range warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if !f.Has(cfg.Flow.FallbackNode) {
			return fmt.Errorf("validation failed: fallback node %q is not defined", cfg.Flow.FallbackNode)
		}

		fmt.Fprintf(out, "Flow is valid! ✅ (%d nodes, %d warnings)\n", f.Len(), len(warnings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
