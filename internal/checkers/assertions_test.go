package checkers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agenttrickydps/evaluator/internal/aggregate"
	"github.com/agenttrickydps/evaluator/internal/executor"
)

// stubRunner records the script it was asked to run and returns a canned
// error.
type stubRunner struct {
	err    error
	script string
}

func (s *stubRunner) Run(_ context.Context, scriptPath string) error {
	s.script = scriptPath
	return s.err
}

func TestCheckAssertions_Pass(t *testing.T) {
	dir := t.TempDir()
	script := writeFile(t, dir, "test_buy_socks_merged.py",
		"async def test_buy_socks(page):\n    await page.click(\"#checkout\")\n    await expect(page.locator(\"#total\")).to_have_text(\"$42.99\")\n")

	runner := &stubRunner{}
	require.Equal(t, aggregate.OutcomeCorrect, CheckAssertions(context.Background(), dir, runner))
	require.Equal(t, script, runner.script)
}

func TestCheckAssertions_Fail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test_buy_socks_merged.py", "await expect(x).to_be_visible()\n")

	runner := &stubRunner{err: &executor.ExitError{Code: 1}}
	require.Equal(t, aggregate.OutcomeIncorrect, CheckAssertions(context.Background(), dir, runner))
}

func TestCheckAssertions_InfraErrorCountsIncorrect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test_buy_socks_merged.py", "await expect(x).to_be_visible()\n")

	runner := &stubRunner{err: errors.New("pytest: not found")}
	require.Equal(t, aggregate.OutcomeIncorrect, CheckAssertions(context.Background(), dir, runner))
}

func TestCheckAssertions_NoMergedScript(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "buy_socks_commands.py", "await page.click(\"#checkout\")\n")

	runner := &stubRunner{}
	require.Equal(t, aggregate.OutcomeExcluded, CheckAssertions(context.Background(), dir, runner))
	require.Empty(t, runner.script, "runner must not be invoked without a merged script")
}

func TestCheckAssertions_NoExpectCalls(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test_buy_socks_merged.py",
		"async def test_buy_socks(page):\n    await page.click(\"#checkout\")\n")

	runner := &stubRunner{}
	require.Equal(t, aggregate.OutcomeExcluded, CheckAssertions(context.Background(), dir, runner))
	require.Empty(t, runner.script)
}
