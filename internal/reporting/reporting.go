// Package reporting renders aggregated comparison results: one JSON file per
// checker, plus the combined CSV and JSON produced by the final join.
package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agenttrickydps/evaluator/internal/aggregate"
	"github.com/agenttrickydps/evaluator/internal/darkpatterns"
	"github.com/agenttrickydps/evaluator/internal/taskmatch"
)

// CombinedJSONName is the combined report written next to the combined CSV.
const CombinedJSONName = "final_comparison_results.json"

// CheckerResultsPath returns the per-checker report path inside dir.
func CheckerResultsPath(dir, name string) string {
	return filepath.Join(dir, name+"_comparison_results.json")
}

// WriteCheckerResults writes one checker's aggregated results as a JSON
// array, one entry per comparison key in insertion order. The result field is
// named after the checker ("db" yields "db_comparison_result"); dark-pattern
// entries carry the grouped per-label counters instead of a binary tally.
func WriteCheckerResults(path, name string, agg *aggregate.Aggregator, verbose bool) error {
	entries := make([]map[string]any, 0, agg.Len())
	for _, key := range agg.Keys() {
		e, _ := agg.Entry(key)

		entry := map[string]any{
			"agent":         key.Agent,
			"site":          key.Site,
			"task":          key.Task,
			"dark_patterns": codesFor(key.Site),
		}
		if e.FellForDP != nil {
			entry[name+"_comparison_result"] = aggregate.DPGroups{
				FellForDP:       e.FellForDP,
				DidNotFallForDP: e.DidNotFallForDP,
			}
		} else {
			entry[name+"_comparison_result"] = aggregate.BinaryCount{
				Correct:   e.Correct,
				Incorrect: e.Incorrect,
			}
		}
		if verbose {
			entry["details"] = e.Details
		}
		entries = append(entries, entry)
	}
	return writeJSON(path, entries)
}

var combinedHeader = []string{
	"agent",
	"dark_pattern",
	"site",
	"task",
	"correctness_result",
	"assertion_result",
	"dp_result",
	"scratchpad_result",
	"details",
}

// WriteCombinedCSV writes one row per combined comparison key. Absent
// checkers render as "N/A"; the details column is populated only in verbose
// mode.
func WriteCombinedCSV(path string, rows []aggregate.CombinedRow, verbose bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("reporting: create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("reporting: create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(combinedHeader); err != nil {
		return fmt.Errorf("reporting: write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Key.Agent,
			marshalCell(codesFor(row.Key.Site)),
			row.Key.Site,
			taskmatch.StripPromptHelper(row.Key.Task),
			formatBinary(row.Clicks),
			formatBinary(row.Assertion),
			formatDP(row.DP),
			formatBinary(row.Scratchpad),
			"",
		}
		if verbose {
			record[len(record)-1] = marshalCell(row.Details)
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("reporting: write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("reporting: flush %s: %w", path, err)
	}
	slog.Info("combined CSV written", "path", path)
	return nil
}

// CombinedDocument is the combined JSON report.
type CombinedDocument struct {
	EvaluationID string          `json:"evaluation_id,omitempty"`
	Results      []CombinedEntry `json:"results"`
}

// AggregatedResult nests the four checker tallies for one key. Checkers that
// produced no entry report explicit zeros rather than being omitted.
type AggregatedResult struct {
	DB         aggregate.BinaryCount `json:"db"`
	Assertion  aggregate.BinaryCount `json:"assertion"`
	Scratchpad aggregate.BinaryCount `json:"scratchpad"`
	DP         aggregate.DPGroups    `json:"dp"`
}

type CombinedEntry struct {
	Agent        string                  `json:"agent"`
	DarkPatterns []string                `json:"dark_patterns"`
	Site         string                  `json:"site"`
	Task         string                  `json:"task"`
	Aggregated   AggregatedResult        `json:"aggregated_result"`
	Details      []aggregate.PairSummary `json:"details,omitempty"`
}

// WriteCombinedJSON mirrors the combined CSV as structured JSON, stamped with
// the evaluation pass ID.
func WriteCombinedJSON(path string, rows []aggregate.CombinedRow, evaluationID string, verbose bool) error {
	doc := CombinedDocument{
		EvaluationID: evaluationID,
		Results:      make([]CombinedEntry, 0, len(rows)),
	}
	for _, row := range rows {
		entry := CombinedEntry{
			Agent:        row.Key.Agent,
			DarkPatterns: codesFor(row.Key.Site),
			Site:         row.Key.Site,
			Task:         taskmatch.StripPromptHelper(row.Key.Task),
			Aggregated: AggregatedResult{
				DB:         binaryOrZero(row.Clicks),
				Assertion:  binaryOrZero(row.Assertion),
				Scratchpad: binaryOrZero(row.Scratchpad),
				DP:         dpOrEmpty(row.DP),
			},
		}
		if verbose {
			entry.Details = row.Details
		}
		doc.Results = append(doc.Results, entry)
	}
	return writeJSON(path, doc)
}

func codesFor(site string) []string {
	codes := darkpatterns.ParseCodes(site)
	if codes == nil {
		return []string{}
	}
	return codes
}

func formatBinary(c *aggregate.BinaryCount) string {
	if c == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d correct", c.Correct, c.Correct+c.Incorrect)
}

func formatDP(g *aggregate.DPGroups) string {
	if g == nil {
		return "N/A"
	}
	return marshalCell(g)
}

func binaryOrZero(c *aggregate.BinaryCount) aggregate.BinaryCount {
	if c == nil {
		return aggregate.BinaryCount{}
	}
	return *c
}

func dpOrEmpty(g *aggregate.DPGroups) aggregate.DPGroups {
	if g == nil {
		return aggregate.DPGroups{
			FellForDP:       map[string]int{},
			DidNotFallForDP: map[string]int{},
		}
	}
	return *g
}

// marshalCell renders a value for embedding in a CSV cell. Marshal failures
// degrade to an empty cell; they cannot happen for the types used here.
func marshalCell(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal report cell", "error", err)
		return ""
	}
	return string(data)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("reporting: create report dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("reporting: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("reporting: write %s: %w", path, err)
	}
	slog.Info("JSON report written", "path", path)
	return nil
}
