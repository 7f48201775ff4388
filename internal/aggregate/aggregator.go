// Package aggregate folds pairwise comparison verdicts into per-(agent,
// site, task) statistics and joins the per-checker summaries into one
// combined record per key.
package aggregate

// Key groups pairwise verdicts for reporting. It is always derived from the
// target run's identity, never the source's, and the task text is the raw
// sidecar content.
type Key struct {
	Agent string
	Site  string
	Task  string
}

// Outcome is the tagged result of comparing one source run against one
// target run.
type Outcome string

const (
	OutcomeCorrect    Outcome = "correct"
	OutcomeIncorrect  Outcome = "incorrect"
	OutcomeMatched    Outcome = "matched"
	OutcomeNotMatched Outcome = "not_matched"

	// OutcomeExcluded marks pairs that contribute no counters: missing
	// artifacts, unreadable DBs, or empty dark-pattern intersections.
	OutcomeExcluded Outcome = "excluded"
)

// Direction tells which source corpus a dark-pattern pair was drawn from.
// The same click-overlap signal means opposite things depending on which
// behavior was being solicited.
type Direction string

const (
	DirectionFellForDP       Direction = "fell_for_dp"
	DirectionDidNotFallForDP Direction = "did_not_fall_for_dp"
)

// Detail records the provenance and outcome of a single pair comparison.
type Detail struct {
	Result          Outcome `json:"result"`
	SourceDirectory string  `json:"source_directory"`
	TargetDirectory string  `json:"target_directory"`

	// Dark-pattern pairs additionally record the direction and the raw
	// code sets, including codes that did not map to a label.
	ComparisonType         Direction `json:"comparison_type,omitempty"`
	SourceDarkPatternCodes []string  `json:"source_dark_pattern_codes,omitempty"`
	TargetDarkPatternCodes []string  `json:"target_dark_pattern_codes,omitempty"`
}

// Entry accumulates verdicts for one Key within one checker. Binary checkers
// use Correct/Incorrect; the dark-pattern checker uses the per-label maps.
type Entry struct {
	Correct   int
	Incorrect int

	FellForDP       map[string]int
	DidNotFallForDP map[string]int

	Details []Detail
}

// Aggregator accumulates entries for a single checker. It is not safe for
// concurrent use; parallel workers each own a private Aggregator and merge
// them when the pool drains.
type Aggregator struct {
	entries map[Key]*Entry
	order   []Key
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[Key]*Entry)}
}

// Touch returns the entry for key, creating it on first use. The first
// occurrence of a key establishes its position in the report.
func (a *Aggregator) Touch(key Key) *Entry {
	if e, ok := a.entries[key]; ok {
		return e
	}
	e := &Entry{}
	a.entries[key] = e
	a.order = append(a.order, key)
	return e
}

// IngestBinary records a correct/incorrect verdict for key. Excluded
// outcomes only append detail when asked to by the caller; they never touch
// the counters.
func (a *Aggregator) IngestBinary(key Key, outcome Outcome, detail Detail) {
	e := a.Touch(key)
	switch outcome {
	case OutcomeCorrect:
		e.Correct++
	case OutcomeIncorrect:
		e.Incorrect++
	default:
		return
	}
	e.Details = append(e.Details, detail)
}

// SeedLabels pre-seeds both direction maps with zero counts for every label,
// so that "0 occurrences" is distinguishable from "label inapplicable".
func (a *Aggregator) SeedLabels(key Key, labels []string) {
	e := a.Touch(key)
	if e.FellForDP == nil {
		e.FellForDP = make(map[string]int)
		e.DidNotFallForDP = make(map[string]int)
	}
	for _, lbl := range labels {
		if _, ok := e.FellForDP[lbl]; !ok {
			e.FellForDP[lbl] = 0
		}
		if _, ok := e.DidNotFallForDP[lbl]; !ok {
			e.DidNotFallForDP[lbl] = 0
		}
	}
}

// IngestDP credits every label identically for one dark-pattern pair:
// +1 per label when the clicks corroborated engagement, +0 otherwise.
func (a *Aggregator) IngestDP(key Key, direction Direction, labels []string, matched bool, detail Detail) {
	e := a.Touch(key)
	if e.FellForDP == nil {
		e.FellForDP = make(map[string]int)
		e.DidNotFallForDP = make(map[string]int)
	}

	counters := e.FellForDP
	if direction == DirectionDidNotFallForDP {
		counters = e.DidNotFallForDP
	}
	for _, lbl := range labels {
		if matched {
			counters[lbl]++
		} else if _, ok := counters[lbl]; !ok {
			counters[lbl] = 0
		}
	}

	e.Details = append(e.Details, detail)
}

// Merge folds other into a. Counts are sums and detail lists are append-only,
// so merging is commutative up to detail order; keys new to a keep other's
// insertion order.
func (a *Aggregator) Merge(other *Aggregator) {
	if other == nil {
		return
	}
	for _, key := range other.order {
		src := other.entries[key]
		dst := a.Touch(key)

		dst.Correct += src.Correct
		dst.Incorrect += src.Incorrect
		dst.Details = append(dst.Details, src.Details...)

		if src.FellForDP != nil {
			if dst.FellForDP == nil {
				dst.FellForDP = make(map[string]int)
				dst.DidNotFallForDP = make(map[string]int)
			}
			for lbl, n := range src.FellForDP {
				dst.FellForDP[lbl] += n
			}
			for lbl, n := range src.DidNotFallForDP {
				dst.DidNotFallForDP[lbl] += n
			}
		}
	}
}

// Keys returns all keys in insertion order.
func (a *Aggregator) Keys() []Key {
	return a.order
}

// Entry returns the entry for key, if present.
func (a *Aggregator) Entry(key Key) (*Entry, bool) {
	e, ok := a.entries[key]
	return e, ok
}

// Len returns the number of distinct keys.
func (a *Aggregator) Len() int {
	return len(a.order)
}
