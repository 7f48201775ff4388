package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/agenttrickydps/evaluator/internal/assertmerge"
)

func newMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <source_dir> <target_dir>",
		Short: "Splice curated assertions into recorded agent scripts",
		Long: `For each curated source run, finds target runs for the same task (by
directory-name prefix) and inserts the source script's assertion lines after
the structurally matching clicks in the target script. The merged scripts are
written next to the originals as test_<name>_merged.py, ready for the
assertions command.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := assertmerge.MergeAll(args[0], args[1])
			if err != nil {
				return err
			}
			slog.Info("merge complete", "scripts_written", written)
			return nil
		},
	}
	return cmd
}
