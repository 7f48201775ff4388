// Package assertmerge splices assertion lines out of curated source command
// scripts into recorded target command scripts. Clicks are the anchors: a
// source click event is matched to a target click event by element id or
// xpath, and the assertion lines following the source click are inserted
// after the corresponding click in the target script. The result is written
// as test_<target>_merged.py so the test framework will collect it.
package assertmerge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/agenttrickydps/evaluator/internal/eventlog"
	"github.com/agenttrickydps/evaluator/internal/runstore"
)

const mergedSuffix = "_merged.py"

var (
	clickCallPattern = regexp.MustCompile(`await\s+page\.click\(\s*["']([^"']+)["']\s*\)`)
	defPattern       = regexp.MustCompile(`^\s*(async\s+def\s+|def\s+)`)
	prefixPattern    = regexp.MustCompile(`^(.*)_[0-9]+$`)
)

// TaskPrefix strips the trailing ordinal from a run directory name, e.g.
// "add_one_laptop_to_cart_1" -> "add_one_laptop_to_cart".
func TaskPrefix(base string) string {
	if m := prefixPattern.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	return base
}

// clickLineIndexes maps each page.click selector in the script to the line
// index of its call. A selector clicked twice keeps the last occurrence.
func clickLineIndexes(lines []string) map[string]int {
	indexes := make(map[string]int)
	for i, line := range lines {
		if m := clickCallPattern.FindStringSubmatch(line); m != nil {
			indexes[strings.TrimSpace(m[1])] = i
		}
	}
	return indexes
}

// selectorFor derives the page.click selector a recorded click event would
// have produced: the element id as a CSS id selector when present, the raw
// xpath otherwise.
func selectorFor(ev eventlog.Event) string {
	switch {
	case strings.HasPrefix(ev.ElementID, "#"):
		return ev.ElementID
	case ev.ElementID != "":
		return "#" + ev.ElementID
	default:
		return ev.XPath
	}
}

// assertionLinesAfter gathers the expect/assert lines following the click at
// start, stopping at the next click call or function definition.
func assertionLinesAfter(lines []string, start int) []string {
	var out []string
	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if clickCallPattern.MatchString(line) || defPattern.MatchString(line) {
			break
		}
		if strings.Contains(line, "await expect(") || strings.Contains(line, "assert ") {
			out = append(out, line)
		}
	}
	return out
}

type insertion struct {
	index int
	lines []string
}

func insertAfter(lines []string, idx int, extra []string) []string {
	if len(extra) == 0 {
		return lines
	}
	if idx >= len(lines)-1 {
		return append(lines, extra...)
	}
	out := make([]string, 0, len(lines)+len(extra))
	out = append(out, lines[:idx+1]...)
	out = append(out, extra...)
	out = append(out, lines[idx+1:]...)
	return out
}

// MergeScripts produces the merged target script lines, or nil when no
// assertion lines could be carried over.
//
// For each source click event whose selector appears in the source script, a
// matching target click event (same element id or same xpath) is looked up;
// if that event's selector appears in the target script, the source's
// trailing assertion lines are inserted after the target click line.
func MergeScripts(sourceEvents, targetEvents []eventlog.Event, sourceLines, targetLines []string) []string {
	sourceClicks := clickLineIndexes(sourceLines)
	targetClicks := clickLineIndexes(targetLines)

	var inserts []insertion
	for _, src := range sourceEvents {
		if src.EventType != eventlog.EventTypeClick {
			continue
		}

		srcSel := selectorFor(src)
		srcIdx, ok := sourceClicks[srcSel]
		if srcSel == "" || !ok {
			continue
		}

		var matched *eventlog.Event
		for i, tgt := range targetEvents {
			if tgt.EventType != eventlog.EventTypeClick {
				continue
			}
			if (src.ElementID != "" && src.ElementID == tgt.ElementID) ||
				(src.XPath != "" && src.XPath == tgt.XPath) {
				matched = &targetEvents[i]
				break
			}
		}
		if matched == nil {
			continue
		}

		tgtSel := selectorFor(*matched)
		tgtIdx, ok := targetClicks[tgtSel]
		if tgtSel == "" || !ok {
			continue
		}

		assertions := assertionLinesAfter(sourceLines, srcIdx)
		if len(assertions) == 0 {
			continue
		}
		inserts = append(inserts, insertion{index: tgtIdx, lines: assertions})
	}

	if len(inserts) == 0 {
		return nil
	}
	sort.SliceStable(inserts, func(i, j int) bool { return inserts[i].index < inserts[j].index })

	merged := append([]string{}, targetLines...)
	shift := 0
	for _, ins := range inserts {
		merged = insertAfter(merged, ins.index+shift, ins.lines)
		shift += len(ins.lines)
	}
	return merged
}

// MergePair merges one source run into one target run and writes the merged
// script into the target directory. It returns the written path, or "" when
// the pair lacks the required artifacts or yields no assertions.
func MergePair(sourceDir, targetDir string) (string, error) {
	minimalDB := runstore.MinimalDB(sourceDir)
	if minimalDB == "" {
		slog.Debug("merge: no curated event log", "source", sourceDir)
		return "", nil
	}
	sourceScript := runstore.SourceCommandsScript(sourceDir)
	if sourceScript == "" {
		slog.Debug("merge: no source commands script", "source", sourceDir)
		return "", nil
	}
	maximalDB := runstore.MaximalDB(targetDir)
	if maximalDB == "" {
		slog.Debug("merge: no full event log", "target", targetDir)
		return "", nil
	}
	targetScript := runstore.TargetCommandsScript(targetDir)
	if targetScript == "" {
		slog.Debug("merge: no target commands script", "target", targetDir)
		return "", nil
	}

	sourceEvents, err := eventlog.Load(minimalDB)
	if err != nil {
		return "", fmt.Errorf("assertmerge: load %s: %w", minimalDB, err)
	}
	targetEvents, err := eventlog.Load(maximalDB)
	if err != nil {
		return "", fmt.Errorf("assertmerge: load %s: %w", maximalDB, err)
	}

	sourceLines, err := readLines(sourceScript)
	if err != nil {
		return "", err
	}
	targetLines, err := readLines(targetScript)
	if err != nil {
		return "", err
	}
	if len(targetLines) == 0 {
		return "", nil
	}

	merged := MergeScripts(sourceEvents, targetEvents, sourceLines, targetLines)
	if merged == nil {
		slog.Debug("merge: no assertion lines carried over", "source", sourceDir, "target", targetDir)
		return "", nil
	}

	base := strings.TrimSuffix(filepath.Base(targetScript), ".py")
	mergedPath := filepath.Join(filepath.Dir(targetScript), "test_"+base+mergedSuffix)
	if err := os.WriteFile(mergedPath, []byte(strings.Join(merged, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("assertmerge: write %s: %w", mergedPath, err)
	}
	return mergedPath, nil
}

// MergeAll merges every source run against every target run whose directory
// name shares the source's task prefix. It returns the number of merged
// scripts written. Per-pair artifact gaps are skipped; only I/O failures on
// present artifacts abort the sweep.
func MergeAll(sourceRoot, targetRoot string) (int, error) {
	sources, err := runstore.DiscoverSource(sourceRoot)
	if err != nil {
		return 0, err
	}
	targets, err := runstore.DiscoverTargets(targetRoot)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, src := range sources {
		prefix := TaskPrefix(src.Basename()) + "_"
		for _, tgt := range targets {
			if !strings.HasPrefix(tgt.Basename(), prefix) {
				continue
			}
			path, err := MergePair(src.Dir, tgt.Dir)
			if err != nil {
				return written, err
			}
			if path != "" {
				slog.Info("merged script written", "path", path)
				written++
			}
		}
	}
	return written, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("assertmerge: read %s: %w", path, err)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}
