package testutil

import (
	"fmt"
	"strings"
	"testing"
)

// CacheEntry is one "HH:MM:SS|text" cache line
type CacheEntry struct {
	Time string
	Text string
}

// WriteCacheFixture writes a session cache file with the given entries
func WriteCacheFixture(t *testing.T, dir, stamp string, entries []CacheEntry) string {
	t.Helper()
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s|%s\n", e.Time, e.Text)
	}
	return WriteFile(t, dir, stamp+"_cache.tmp", b.String())
}

// WriteTranscriptFixture writes a session transcript with preformatted lines
func WriteTranscriptFixture(t *testing.T, dir, stamp string, lines ...string) string {
	t.Helper()
	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	return WriteFile(t, dir, stamp+"_captions.txt", content)
}
