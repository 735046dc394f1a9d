package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "champ",
		Short: "Champ - champion/challenger gatekeeper for model registries",
		Long: `Champ evaluates newly registered model versions against the current
production champion and promotes the ones that qualify.

It scores candidates on a holdout dataset, applies absolute quality gates
and a champion comparison, records every decision to an audit trail, and
can serve the production model over HTTP.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newPromoteCommand())
	cmd.AddCommand(newEvaluateCommand())
	cmd.AddCommand(newVersionsCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newInitCommand())
	cmd.AddCommand(newDataCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
