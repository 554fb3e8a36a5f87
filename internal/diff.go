package internal

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinFragmentLength is the shortest trimmed fragment worth persisting.
// Shorter deltas are redraw noise.
const DefaultMinFragmentLength = 2

// ExtractNew returns the text that appeared in current since previous was observed.
//
// It only compares prefixes: growth yields the trimmed suffix, shrinking
// (reflow) yields nothing, and any other change is treated as entirely new
// text. It is not a general diff.
func ExtractNew(current, previous string) string {
	if previous == "" {
		return current
	}
	if strings.HasPrefix(current, previous) {
		return strings.TrimSpace(current[len(previous):])
	}
	if strings.HasPrefix(previous, current) {
		return ""
	}
	return current
}

// IsNoise reports whether a fragment is too short to keep
func IsNoise(text string, minLength int) bool {
	if minLength <= 0 {
		minLength = DefaultMinFragmentLength
	}
	return utf8.RuneCountInString(strings.TrimSpace(text)) < minLength
}
