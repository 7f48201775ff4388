package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dpeval",
		Short: "dpeval - evaluate web agents against curated dark-pattern recordings",
		Long: `dpeval compares recorded web-agent runs against curated reference runs.

It checks click-sequence correctness, scratchpad answers, merged assertion
scripts, and dark-pattern susceptibility, then aggregates the verdicts into
per-agent reports.`,
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
	cmd.AddCommand(newClicksCommand())
	cmd.AddCommand(newScratchpadCommand())
	cmd.AddCommand(newAssertionsCommand())
	cmd.AddCommand(newDarkPatternsCommand())
	cmd.AddCommand(newMergeCommand())
	cmd.AddCommand(newCombineCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
