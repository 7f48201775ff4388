// Package evaluation orchestrates the four checker sweeps: it discovers
// source and target runs, pairs them by normalized task text, fans the
// comparisons out, and folds the verdicts into per-checker aggregators.
package evaluation

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agenttrickydps/evaluator/internal/aggregate"
	"github.com/agenttrickydps/evaluator/internal/checkers"
	"github.com/agenttrickydps/evaluator/internal/executor"
	"github.com/agenttrickydps/evaluator/internal/runstore"
	"github.com/agenttrickydps/evaluator/internal/taskmatch"
)

// Config describes one evaluation pass. SourceDir holds the curated runs for
// the binary checkers; the two DP corpora are separate trees, one per
// direction.
type Config struct {
	SourceDir    string
	FellForDPDir string
	AvoidedDPDir string
	TargetDir    string

	// Workers bounds the assertion pool. Zero means one per CPU.
	Workers int

	// Runner executes merged assertion scripts. Required for Assertions.
	Runner executor.Runner
}

// Evaluation is one pass over the corpora. The ID is stamped on every report
// the pass produces.
type Evaluation struct {
	ID  string
	cfg Config
}

func New(cfg Config) *Evaluation {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Evaluation{ID: uuid.NewString(), cfg: cfg}
}

// discover loads the source corpus at root and the shared target pool, and
// builds the task matcher over the targets.
func (e *Evaluation) discover(root string) ([]*runstore.Run, *taskmatch.Matcher, error) {
	sources, err := runstore.DiscoverSource(root)
	if err != nil {
		return nil, nil, err
	}
	targets, err := runstore.DiscoverTargets(e.cfg.TargetDir)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("discovered runs", "evaluation", e.ID, "sources", len(sources), "targets", len(targets))
	return sources, taskmatch.NewMatcher(targets), nil
}

func keyFor(target *runstore.Run) aggregate.Key {
	return aggregate.Key{
		Agent: target.Identity.Agent,
		Site:  target.Identity.Site,
		Task:  target.Identity.Task,
	}
}

// Clicks sweeps the strict click-overlap checker over every matched pair.
func (e *Evaluation) Clicks(ctx context.Context) (*aggregate.Aggregator, error) {
	sources, matcher, err := e.discover(e.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	agg := aggregate.NewAggregator()
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sourceDB := runstore.MinimalDB(src.Dir)
		for _, tgt := range matcher.FindMatches(src.Identity.Task) {
			outcome := checkers.CompareClickDBs(sourceDB, runstore.MaximalDB(tgt.Dir), checkers.ModeStrict)
			agg.IngestBinary(keyFor(tgt), outcome, aggregate.Detail{
				Result:          outcome,
				SourceDirectory: src.Dir,
				TargetDirectory: tgt.Dir,
			})
		}
	}
	return agg, nil
}

// Scratchpad sweeps the scratchpad-containment checker. A source run without
// a curated scratchpad is excluded; a target without one counts as incorrect,
// since the agent was asked to fill it.
func (e *Evaluation) Scratchpad(ctx context.Context) (*aggregate.Aggregator, error) {
	sources, matcher, err := e.discover(e.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	agg := aggregate.NewAggregator()
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sourcePath := runstore.SourceScratchpad(src.Dir)
		if _, err := os.Stat(sourcePath); err != nil {
			slog.Debug("skipping source without curated scratchpad", "source", src.Dir)
			continue
		}
		for _, tgt := range matcher.FindMatches(src.Identity.Task) {
			outcome := aggregate.OutcomeIncorrect
			if checkers.CompareScratchpads(sourcePath, runstore.TargetScratchpad(tgt.Dir)) {
				outcome = aggregate.OutcomeCorrect
			}
			agg.IngestBinary(keyFor(tgt), outcome, aggregate.Detail{
				Result:          outcome,
				SourceDirectory: src.Dir,
				TargetDirectory: tgt.Dir,
			})
		}
	}
	return agg, nil
}

// Assertions sweeps the merged-script checker. Each source run gets a worker
// folding into its own aggregator; the aggregators are merged when the pool
// drains, so no comparison ever contends on shared state. Pair-level failures
// never abort the pool.
func (e *Evaluation) Assertions(ctx context.Context) (*aggregate.Aggregator, error) {
	sources, matcher, err := e.discover(e.cfg.SourceDir)
	if err != nil {
		return nil, err
	}

	partials := make([]*aggregate.Aggregator, len(sources))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.cfg.Workers)

	for i, src := range sources {
		group.Go(func() error {
			agg := aggregate.NewAggregator()
			for _, tgt := range matcher.FindMatches(src.Identity.Task) {
				if err := groupCtx.Err(); err != nil {
					return err
				}
				outcome := checkers.CheckAssertions(groupCtx, tgt.Dir, e.cfg.Runner)
				agg.IngestBinary(keyFor(tgt), outcome, aggregate.Detail{
					Result:          outcome,
					SourceDirectory: src.Dir,
					TargetDirectory: tgt.Dir,
				})
			}
			partials[i] = agg
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	agg := aggregate.NewAggregator()
	for _, partial := range partials {
		agg.Merge(partial)
	}
	return agg, nil
}

// DarkPatterns sweeps both susceptibility corpora against the target pool.
func (e *Evaluation) DarkPatterns(ctx context.Context) (*aggregate.Aggregator, error) {
	agg := aggregate.NewAggregator()
	corpora := []struct {
		root      string
		direction aggregate.Direction
	}{
		{e.cfg.FellForDPDir, aggregate.DirectionFellForDP},
		{e.cfg.AvoidedDPDir, aggregate.DirectionDidNotFallForDP},
	}

	for _, corpus := range corpora {
		if corpus.root == "" {
			continue
		}
		sources, matcher, err := e.discover(corpus.root)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for _, tgt := range matcher.FindMatches(src.Identity.Task) {
				cmp := checkers.CompareDarkPatterns(src, tgt)
				if cmp.Excluded {
					continue
				}

				result := aggregate.OutcomeNotMatched
				if cmp.Matched {
					result = aggregate.OutcomeMatched
				}
				key := keyFor(tgt)
				agg.SeedLabels(key, cmp.SeedLabels)
				agg.IngestDP(key, corpus.direction, cmp.Labels, cmp.Matched, aggregate.Detail{
					Result:                 result,
					SourceDirectory:        src.Dir,
					TargetDirectory:        tgt.Dir,
					ComparisonType:         corpus.direction,
					SourceDarkPatternCodes: cmp.SourceCodes,
					TargetDarkPatternCodes: cmp.TargetCodes,
				})
			}
		}
	}
	return agg, nil
}
