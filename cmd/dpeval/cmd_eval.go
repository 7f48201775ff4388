package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/agenttrickydps/evaluator/internal/aggregate"
	"github.com/agenttrickydps/evaluator/internal/config"
	"github.com/agenttrickydps/evaluator/internal/evaluation"
	"github.com/agenttrickydps/evaluator/internal/executor"
	"github.com/agenttrickydps/evaluator/internal/reporting"
)

// evalFlags are the flags shared by every checker command. Flag values
// override the config file and environment.
type evalFlags struct {
	configFile string

	sourceDir  string
	fellDir    string
	avoidedDir string
	targetDir  string
	outputDir  string

	workers int
	verbose bool
}

func (f *evalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to YAML config file")
	cmd.Flags().StringVar(&f.sourceDir, "source", "", "Curated source run directory")
	cmd.Flags().StringVar(&f.fellDir, "fell", "", "Source directory of runs that fell for dark patterns")
	cmd.Flags().StringVar(&f.avoidedDir, "avoided", "", "Source directory of runs that avoided dark patterns")
	cmd.Flags().StringVar(&f.targetDir, "target", "", "Agent target run directory")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Report output directory")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Assertion worker pool size (default: one per CPU)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Include per-pair details in reports")
}

func (f *evalFlags) resolve() (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}
	if f.sourceDir != "" {
		cfg.SourceDir = f.sourceDir
	}
	if f.fellDir != "" {
		cfg.FellForDPDir = f.fellDir
	}
	if f.avoidedDir != "" {
		cfg.AvoidedDPDir = f.avoidedDir
	}
	if f.targetDir != "" {
		cfg.TargetDir = f.targetDir
	}
	if f.outputDir != "" {
		cfg.OutputDir = f.outputDir
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.verbose {
		cfg.Verbose = true
	}

	if cfg.TargetDir == "" {
		return nil, fmt.Errorf("a target directory is required (--target, config file, or DPEVAL_TARGET_DIR)")
	}
	return cfg, nil
}

func buildEvaluation(cfg *config.Config) (*evaluation.Evaluation, error) {
	runner, err := executor.New(cfg.Executor)
	if err != nil {
		return nil, err
	}
	return evaluation.New(evaluation.Config{
		SourceDir:    cfg.SourceDir,
		FellForDPDir: cfg.FellForDPDir,
		AvoidedDPDir: cfg.AvoidedDPDir,
		TargetDir:    cfg.TargetDir,
		Workers:      cfg.Workers,
		Runner:       runner,
	}), nil
}

// writeCheckerReport writes one checker's JSON report. Failures are logged
// and swallowed so a bad report destination never discards the pass.
func writeCheckerReport(cfg *config.Config, fileName, fieldName string, agg *aggregate.Aggregator) {
	path := reporting.CheckerResultsPath(cfg.OutputDir, fileName)
	if err := reporting.WriteCheckerResults(path, fieldName, agg, cfg.Verbose); err != nil {
		slog.Error("failed to write checker report", "path", path, "error", err)
	}
}
