// Package taskmatch canonicalizes free-text task descriptions and matches
// source runs to the target runs that executed the same task.
package taskmatch

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// promptHelper is the boilerplate instruction appended to agent prompts. It
// carries no task identity and is stripped before comparison.
const promptHelper = "input the results to the scratchpad textarea in the end, if there are any."

var apostropheReplacer = strings.NewReplacer("'", "", "’", "", "ʼ", "")

// Normalize canonicalizes a task description so that textually equivalent
// tasks from different corpora compare equal. It is idempotent and never
// fails; input that cannot be reduced further is returned trimmed.
func Normalize(text string) string {
	s := norm.NFKC.String(text)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, promptHelper, "")
	s = apostropheReplacer.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// StripPromptHelper removes the scratchpad boilerplate and apostrophes from a
// task string without altering its casing. Used when echoing task text into
// reports.
func StripPromptHelper(text string) string {
	s := text
	for _, phrase := range []string{
		"Input the results to the scratchpad textarea in the end, if there are any.",
		promptHelper,
	} {
		s = strings.ReplaceAll(s, phrase, "")
	}
	return strings.TrimSpace(apostropheReplacer.Replace(s))
}
