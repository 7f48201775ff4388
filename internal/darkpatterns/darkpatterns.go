// Package darkpatterns parses dark-pattern codes out of site URLs and maps
// them to the human-readable labels used in reports. Codes are embedded in
// the site URL as an underscore-delimited dp= query parameter; labels are
// specific to the site category (the URL path segment).
package darkpatterns

import (
	"regexp"
	"sort"
	"strings"
)

// LabelNA is the sentinel for codes that have no label in a category.
const LabelNA = "N/A"

var (
	codesPattern    = regexp.MustCompile(`dp=([a-zA-Z0-9_]+)`)
	categoryPattern = regexp.MustCompile(`agenttrickydps\.vercel\.app/(\w+)`)
)

// categoryLabels maps each site category to its code→label table. A code may
// mean different things on different sites, so the tables are kept separate.
var categoryLabels = map[string]map[string]string{
	"shop": {
		"tos":       "Sneaked-in Terms of Service",
		"popup":     "Blocking Popup",
		"countdown": "Countdown Timer Pressure",
		"warranty":  "Preselected Warranty Upsell",
	},
	"news": {
		"tos":           "Sneaked-in Terms of Service",
		"popup":         "Blocking Popup",
		"notifications": "Push Notification Nagging",
		"paywall":       "Disguised Paywall Link",
	},
	"wiki": {
		"tos":      "Sneaked-in Terms of Service",
		"popup":    "Blocking Popup",
		"donation": "Guilt-Tripping Donation Banner",
	},
	"spotify": {
		"tos":     "Sneaked-in Terms of Service",
		"popup":   "Blocking Popup",
		"premium": "Forced Premium Trial",
	},
	"health": {
		"tos":        "Sneaked-in Terms of Service",
		"popup":      "Blocking Popup",
		"newsletter": "Sneak-in Newsletter Signup",
	},
}

// ParseCodes extracts the dark-pattern codes from a site URL. A URL without
// a dp= parameter yields nil.
func ParseCodes(siteURL string) []string {
	m := codesPattern.FindStringSubmatch(siteURL)
	if m == nil {
		return nil
	}
	var codes []string
	for _, c := range strings.Split(m[1], "_") {
		if c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// ParseCategory extracts the site category (the URL path segment) from a
// site URL, or LabelNA when the URL is not a recognized site.
func ParseCategory(siteURL string) string {
	m := categoryPattern.FindStringSubmatch(siteURL)
	if m == nil {
		return LabelNA
	}
	return m[1]
}

// Labels maps codes to their labels for the given category. Unmapped codes
// degrade to LabelNA and are dropped; an unknown category yields no labels.
func Labels(category string, codes []string) []string {
	table, ok := categoryLabels[category]
	if !ok {
		return nil
	}
	var labels []string
	for _, c := range codes {
		if lbl, ok := table[c]; ok && lbl != LabelNA {
			labels = append(labels, lbl)
		}
	}
	return labels
}

// AllLabels returns every label known for a category, sorted. Used to
// pre-seed counters so that "0 occurrences" is distinguishable from "label
// inapplicable".
func AllLabels(category string) []string {
	table, ok := categoryLabels[category]
	if !ok {
		return nil
	}
	labels := make([]string, 0, len(table))
	for _, lbl := range table {
		labels = append(labels, lbl)
	}
	sort.Strings(labels)
	return labels
}

// Intersect returns the sorted intersection of two code sets.
func Intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, c := range b {
		inB[c] = true
	}
	seen := make(map[string]bool, len(a))
	var out []string
	for _, c := range a {
		if inB[c] && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
