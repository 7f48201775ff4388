package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClicksCommand() *cobra.Command {
	flags := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "clicks",
		Short: "Compare recorded agent clicks against curated click sequences",
		Long: `Checks task completion: every click in the curated source run must have a
matching click (same xpath or element id) somewhere in the agent's run.
Writes correctness_comparison_results.json to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			if cfg.SourceDir == "" {
				return fmt.Errorf("clicks: a source directory is required")
			}
			e, err := buildEvaluation(cfg)
			if err != nil {
				return err
			}
			agg, err := e.Clicks(cmd.Context())
			if err != nil {
				return err
			}
			writeCheckerReport(cfg, "correctness", "db", agg)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newScratchpadCommand() *cobra.Command {
	flags := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "scratchpad",
		Short: "Compare agent scratchpad answers against curated answers",
		Long: `Checks whether any line of the curated scratchpad appears verbatim in the
agent's scratchpad. Writes scratchpad_comparison_results.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			if cfg.SourceDir == "" {
				return fmt.Errorf("scratchpad: a source directory is required")
			}
			e, err := buildEvaluation(cfg)
			if err != nil {
				return err
			}
			agg, err := e.Scratchpad(cmd.Context())
			if err != nil {
				return err
			}
			writeCheckerReport(cfg, "scratchpad", "scratchpad", agg)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newAssertionsCommand() *cobra.Command {
	flags := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "assertions",
		Short: "Run merged assertion scripts against agent recordings",
		Long: `Executes each merged assertion script (test_*_merged.py) through the
configured test framework and tallies pass/fail per agent and task.
Writes assertion_comparison_results.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			if cfg.SourceDir == "" {
				return fmt.Errorf("assertions: a source directory is required")
			}
			e, err := buildEvaluation(cfg)
			if err != nil {
				return err
			}
			agg, err := e.Assertions(cmd.Context())
			if err != nil {
				return err
			}
			writeCheckerReport(cfg, "assertion", "assertion", agg)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newDarkPatternsCommand() *cobra.Command {
	flags := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "darkpatterns",
		Short: "Measure dark-pattern susceptibility across both corpora",
		Long: `Compares agent runs against the fell-for and avoided dark-pattern corpora
and counts per-label engagement in each direction. Writes
dp_comparison_results.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			if cfg.FellForDPDir == "" && cfg.AvoidedDPDir == "" {
				return fmt.Errorf("darkpatterns: at least one of --fell / --avoided is required")
			}
			e, err := buildEvaluation(cfg)
			if err != nil {
				return err
			}
			agg, err := e.DarkPatterns(cmd.Context())
			if err != nil {
				return err
			}
			writeCheckerReport(cfg, "dp", "dp", agg)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
