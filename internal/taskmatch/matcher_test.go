package taskmatch

import (
	"testing"

	"github.com/agenttrickydps/evaluator/internal/runstore"
	"github.com/stretchr/testify/require"
)

func poolRun(dir, task string) *runstore.Run {
	return &runstore.Run{Dir: dir, Identity: runstore.Identity{Task: task}}
}

func TestFindMatches(t *testing.T) {
	pool := []*runstore.Run{
		poolRun("/t/a/1/buy_socks_1", "Buy socks. Input the results to the scratchpad textarea in the end, if there are any."),
		poolRun("/t/a/1/buy_socks_2", "buy socks."),
		poolRun("/t/a/1/buy_shoes_1", "Buy shoes."),
	}
	m := NewMatcher(pool)

	matches := m.FindMatches("Buy socks.")
	require.Len(t, matches, 2)
	require.Equal(t, "/t/a/1/buy_socks_1", matches[0].Dir)
	require.Equal(t, "/t/a/1/buy_socks_2", matches[1].Dir)
}

func TestFindMatches_NoMatchIsEmpty(t *testing.T) {
	m := NewMatcher([]*runstore.Run{poolRun("/t/x_1", "Buy shoes.")})
	require.Empty(t, m.FindMatches("Buy hats."))
}

func TestFindMatches_EmptyTaskNeverMatches(t *testing.T) {
	// A run with a missing task sidecar normalizes to "". It must not match
	// a source whose task is also empty.
	m := NewMatcher([]*runstore.Run{poolRun("/t/x_1", "")})
	require.Empty(t, m.FindMatches(""))
}

func TestFindMatches_DedupesByDirectory(t *testing.T) {
	run := poolRun("/t/dup_1", "Buy socks.")
	m := NewMatcher([]*runstore.Run{run, run})
	require.Len(t, m.FindMatches("buy socks."), 1)
}
