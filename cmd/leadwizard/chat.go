package main

import (
	"fmt"
	"os"

	"github.com/aretw0/leadwizard/internal/cli"
	"github.com/aretw0/leadwizard/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the wizard in the terminal",
	Long: `Starts an interactive session against in-memory stores.
Type the number of a button to select it, or any text to answer freely.
Commands: /restart, /quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		stack, err := cli.BuildStack(sigCtx, cfg, logger, cli.StackOptions{Local: true, Debug: debug})
		if err != nil {
			return fmt.Errorf("error initializing leadwizard: %w", err)
		}
		defer stack.Close()

		out := cmd.OutOrStdout()
		render := tui.PlainRenderer
		if !plain && cli.IsTerminal(os.Stdout) {
			tui.PrintBanner(out)
			render = tui.NewRenderer()
		}

		console := cli.NewConsole(stack.Service, cli.ConsoleOptions{
			In:        cmd.InOrStdin(),
			Out:       out,
			Render:    render,
			Marker:    cfg.Flow.SelectionMarker,
			SessionID: sessionID,
		})
		return console.Run(sigCtx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "Session id to use (default: a fresh UUID)")
	chatCmd.Flags().Bool("plain", false, "Disable markdown rendering and the banner")
}
