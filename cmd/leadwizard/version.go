package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/leadwizard"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of leadwizard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "leadwizard version %s\n", strings.TrimSpace(leadwizard.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
