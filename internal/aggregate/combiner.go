package aggregate

import (
	"strings"
)

// BinaryCount is a checker's correct/incorrect tally for one key.
type BinaryCount struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

// DPGroups holds the per-label susceptibility counters for both directions.
type DPGroups struct {
	FellForDP       map[string]int `json:"fell_for_dp"`
	DidNotFallForDP map[string]int `json:"did_not_fall_for_dp"`
}

// PairSummary is the cross-checker view of one (source, target) pair,
// assembled when combining verbose details.
type PairSummary struct {
	SourceDirectory string `json:"source_directory"`
	TargetDirectory string `json:"target_directory"`

	Clicks     Outcome `json:"db,omitempty"`
	Assertion  Outcome `json:"assertion,omitempty"`
	Scratchpad Outcome `json:"scratchpad,omitempty"`

	// Dark-pattern pairs come from two corpora; all of them that normalize
	// to this pair are grouped here.
	DP                     []Outcome `json:"dp,omitempty"`
	DPSourceDirectories    []string  `json:"source_directories,omitempty"`
	SourceDarkPatternCodes []string  `json:"source_dark_pattern_codes,omitempty"`
}

// CombinedRow is one report row per ComparisonKey after joining all four
// checkers. A nil checker summary means that checker produced no entry for
// the key; sinks render it as "N/A".
type CombinedRow struct {
	Key          Key
	DarkPatterns []string

	Clicks     *BinaryCount
	Assertion  *BinaryCount
	Scratchpad *BinaryCount
	DP         *DPGroups

	Details []PairSummary
}

// Inputs carries the four checkers' aggregators into Combine. Any of them
// may be nil (checker skipped).
type Inputs struct {
	Clicks     *Aggregator
	Assertion  *Aggregator
	Scratchpad *Aggregator
	DP         *Aggregator
}

// ParseCodes mirrors the dark-pattern code extraction used when building
// rows; injected to avoid an import cycle with the darkpatterns package.
type ParseCodes func(siteURL string) []string

// Combine joins the per-key summaries of all checkers on the shared
// ComparisonKey. Row order follows key insertion order across the inputs
// (clicks, assertion, scratchpad, dark patterns).
func Combine(in Inputs, parseCodes ParseCodes, verbose bool) []CombinedRow {
	keys := unionKeys(in.Clicks, in.Assertion, in.Scratchpad, in.DP)

	rows := make([]CombinedRow, 0, len(keys))
	for _, key := range keys {
		row := CombinedRow{
			Key:          key,
			DarkPatterns: parseCodes(key.Site),
		}

		if e, ok := entryFor(in.Clicks, key); ok {
			row.Clicks = &BinaryCount{Correct: e.Correct, Incorrect: e.Incorrect}
		}
		if e, ok := entryFor(in.Assertion, key); ok {
			row.Assertion = &BinaryCount{Correct: e.Correct, Incorrect: e.Incorrect}
		}
		if e, ok := entryFor(in.Scratchpad, key); ok {
			row.Scratchpad = &BinaryCount{Correct: e.Correct, Incorrect: e.Incorrect}
		}
		if e, ok := entryFor(in.DP, key); ok {
			row.DP = &DPGroups{FellForDP: e.FellForDP, DidNotFallForDP: e.DidNotFallForDP}
		}

		if verbose {
			row.Details = combineDetails(in, key)
		}

		rows = append(rows, row)
	}
	return rows
}

func unionKeys(aggs ...*Aggregator) []Key {
	seen := make(map[Key]bool)
	var keys []Key
	for _, agg := range aggs {
		if agg == nil {
			continue
		}
		for _, key := range agg.Keys() {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}
	return keys
}

func entryFor(agg *Aggregator, key Key) (*Entry, bool) {
	if agg == nil {
		return nil, false
	}
	return agg.Entry(key)
}

// combineDetails unions detail records across checkers by (source, target)
// pair. Dark-pattern source directories are stripped of their corpus-name
// decoration before joining, since DP sources come from two distinct trees.
func combineDetails(in Inputs, key Key) []PairSummary {
	type pairKey struct{ src, tgt string }

	var order []pairKey
	summaries := make(map[pairKey]*PairSummary)

	touch := func(pk pairKey) *PairSummary {
		if s, ok := summaries[pk]; ok {
			return s
		}
		s := &PairSummary{SourceDirectory: pk.src, TargetDirectory: pk.tgt}
		summaries[pk] = s
		order = append(order, pk)
		return s
	}

	ingest := func(agg *Aggregator, assign func(*PairSummary, Detail)) {
		e, ok := entryFor(agg, key)
		if !ok {
			return
		}
		for _, d := range e.Details {
			pk := pairKey{src: d.SourceDirectory, tgt: d.TargetDirectory}
			assign(touch(pk), d)
		}
	}

	ingest(in.Clicks, func(s *PairSummary, d Detail) { s.Clicks = d.Result })
	ingest(in.Assertion, func(s *PairSummary, d Detail) { s.Assertion = d.Result })
	ingest(in.Scratchpad, func(s *PairSummary, d Detail) { s.Scratchpad = d.Result })

	if e, ok := entryFor(in.DP, key); ok {
		for _, d := range e.Details {
			pk := pairKey{src: NormalizeDPSource(d.SourceDirectory), tgt: d.TargetDirectory}
			s := touch(pk)
			s.DP = append(s.DP, d.Result)
			s.DPSourceDirectories = append(s.DPSourceDirectories, d.SourceDirectory)
			s.SourceDarkPatternCodes = appendUnique(s.SourceDarkPatternCodes, d.SourceDarkPatternCodes)
		}
	}

	out := make([]PairSummary, 0, len(order))
	for _, pk := range order {
		out = append(out, *summaries[pk])
	}
	return out
}

// NormalizeDPSource strips the corpus-name decoration from a dark-pattern
// source directory so it joins with the other checkers' pairs.
func NormalizeDPSource(src string) string {
	for _, token := range []string{string(DirectionFellForDP), string(DirectionDidNotFallForDP)} {
		if i := strings.Index(src, token); i >= 0 {
			return src[i+len(token):]
		}
	}
	return src
}

func appendUnique(dst []string, add []string) []string {
	for _, v := range add {
		found := false
		for _, existing := range dst {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
