package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agenttrickydps/evaluator/internal/aggregate"
	"github.com/agenttrickydps/evaluator/internal/darkpatterns"
	"github.com/agenttrickydps/evaluator/internal/reporting"
)

func newCombineCommand() *cobra.Command {
	flags := &evalFlags{}
	var csvName string

	cmd := &cobra.Command{
		Use:   "combine",
		Short: "Run every checker and produce the combined report",
		Long: `Runs the click, scratchpad, assertion, and dark-pattern checkers, writes
their individual reports, then joins everything per (agent, site, task) into
a combined CSV and final_comparison_results.json. Checkers whose source
directories are not configured are skipped and render as N/A.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve()
			if err != nil {
				return err
			}
			e, err := buildEvaluation(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			inputs := aggregate.Inputs{}

			if cfg.SourceDir != "" {
				if inputs.Clicks, err = e.Clicks(ctx); err != nil {
					return err
				}
				writeCheckerReport(cfg, "correctness", "db", inputs.Clicks)

				if inputs.Assertion, err = e.Assertions(ctx); err != nil {
					return err
				}
				writeCheckerReport(cfg, "assertion", "assertion", inputs.Assertion)

				if inputs.Scratchpad, err = e.Scratchpad(ctx); err != nil {
					return err
				}
				writeCheckerReport(cfg, "scratchpad", "scratchpad", inputs.Scratchpad)
			} else {
				slog.Warn("no source directory configured, skipping click, assertion, and scratchpad checks")
			}

			if cfg.FellForDPDir != "" || cfg.AvoidedDPDir != "" {
				if inputs.DP, err = e.DarkPatterns(ctx); err != nil {
					return err
				}
				writeCheckerReport(cfg, "dp", "dp", inputs.DP)
			} else {
				slog.Warn("no dark-pattern corpora configured, skipping dp check")
			}

			rows := aggregate.Combine(inputs, darkpatterns.ParseCodes, cfg.Verbose)
			if len(rows) == 0 {
				return &NoComparisonsError{Message: "no source run matched any target run"}
			}

			csvPath := filepath.Join(cfg.OutputDir, csvName)
			if err := reporting.WriteCombinedCSV(csvPath, rows, cfg.Verbose); err != nil {
				return fmt.Errorf("write combined CSV: %w", err)
			}
			jsonPath := filepath.Join(cfg.OutputDir, reporting.CombinedJSONName)
			if err := reporting.WriteCombinedJSON(jsonPath, rows, e.ID, cfg.Verbose); err != nil {
				return fmt.Errorf("write combined JSON: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&csvName, "csv", "combined_results.csv", "Combined CSV file name")
	return cmd
}
