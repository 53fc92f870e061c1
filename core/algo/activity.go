package algo

import (
	"regexp"
	"strconv"
	"strings"
)

// durationPattern matches the "(15 mins)" style annotation appended to activity labels.
var durationPattern = regexp.MustCompile(`\(\s*(\d+(?:\.\d+)?)\s*min`)

// NormalizeActivity strips the parenthesized duration from a label.
// "Walking (15 mins)" becomes "Walking". Labels without "(" are only trimmed.
func NormalizeActivity(label string) string {
	if idx := strings.Index(label, "("); idx >= 0 {
		label = label[:idx]
	}
	return strings.TrimSpace(label)
}

// LabelMinutes extracts the minutes written inside a label's parentheses.
func LabelMinutes(label string) (float64, bool) {
	m := durationPattern.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
