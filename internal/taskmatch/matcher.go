package taskmatch

import (
	"github.com/agenttrickydps/evaluator/internal/runstore"
)

// Matcher selects target runs whose task matches a source run's task.
// Matching is many-to-many: a source task may match several repeated agent
// trials, and distinct source runs may match the same target run.
type Matcher struct {
	pool []*runstore.Run

	// normalized task text per pool entry, computed once
	normalized []string
}

// NewMatcher builds a matcher over a fixed pool of candidate target runs.
func NewMatcher(pool []*runstore.Run) *Matcher {
	normalized := make([]string, len(pool))
	for i, run := range pool {
		normalized[i] = Normalize(run.Identity.Task)
	}
	return &Matcher{pool: pool, normalized: normalized}
}

// FindMatches returns the target runs whose normalized task equals the
// normalized source task, deduplicated by directory. An empty result means
// there is nothing to compare, not an error.
func (m *Matcher) FindMatches(sourceTask string) []*runstore.Run {
	want := Normalize(sourceTask)
	if want == "" {
		return nil
	}

	seen := make(map[string]bool)
	var matches []*runstore.Run
	for i, run := range m.pool {
		if m.normalized[i] != want || seen[run.Dir] {
			continue
		}
		seen[run.Dir] = true
		matches = append(matches, run)
	}
	return matches
}
