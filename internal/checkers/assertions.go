package checkers

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/agenttrickydps/evaluator/internal/aggregate"
	"github.com/agenttrickydps/evaluator/internal/executor"
	"github.com/agenttrickydps/evaluator/internal/runstore"
)

// CheckAssertions runs the merged assertion script found in targetDir through
// the runner and classifies the result.
//
// A pair is excluded when no merged script exists or the script carries no
// expect() calls: merging produced nothing checkable, and counting it either
// way would bias the totals. A clean exit is correct; a failing exit is
// incorrect. Infrastructure errors (missing interpreter, timeout) also count
// as incorrect, since the script demonstrably did not pass, but they are
// logged loudly because they usually mean the whole sweep is misconfigured.
func CheckAssertions(ctx context.Context, targetDir string, runner executor.Runner) aggregate.Outcome {
	script := runstore.MergedScript(targetDir)
	if script == "" {
		return aggregate.OutcomeExcluded
	}

	content, err := os.ReadFile(script)
	if err != nil {
		slog.Warn("skipping pair: unreadable merged script", "script", script, "error", err)
		return aggregate.OutcomeExcluded
	}
	if !strings.Contains(string(content), "expect(") {
		slog.Debug("merged script has no assertions", "script", script)
		return aggregate.OutcomeExcluded
	}

	err = runner.Run(ctx, script)
	if err == nil {
		return aggregate.OutcomeCorrect
	}

	var exitErr *executor.ExitError
	if errors.As(err, &exitErr) {
		slog.Debug("assertions failed", "script", script, "code", exitErr.Code)
		return aggregate.OutcomeIncorrect
	}

	slog.Error("assertion script did not run", "script", script, "error", err)
	return aggregate.OutcomeIncorrect
}
