package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/leadwizard/internal/config"
	"github.com/aretw0/leadwizard/internal/logging"
	"github.com/spf13/cobra"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "leadwizard",
	Short: "Lead Wizard is a guided insurance-lead chat backend",
	Long: `Lead Wizard walks website visitors through a button-driven questionnaire,
captures the resulting insurance lead and answers free text with an LLM.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: ./leadwizard.yaml if present)")
	flags.String("flow", "", "Flow definition file (JSON or YAML)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text or json")
	flags.Bool("debug", false, "Log every wizard lifecycle event")

	_ = v.BindPFlag("flow.path", flags.Lookup("flow"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_format", flags.Lookup("log-format"))
}

// loadConfig reads the configuration and builds the logger for a command.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return cfg, logging.New(level, cfg.LogFormat), nil
}
