package internal

import (
	"fmt"
	"strings"
	"time"
)

// ClockLayout is the time-of-day format used in cache and transcript lines
const ClockLayout = "15:04:05"

// cacheDelimiter separates the timestamp from the text in a cache line
const cacheDelimiter = "|"

// Fragment is one timestamped piece of newly observed caption text
type Fragment struct {
	Time string `json:"time" yaml:"time"` // HH:MM:SS
	Text string `json:"text" yaml:"text"`
}

// NewFragment stamps text with the time of day of t
func NewFragment(t time.Time, text string) Fragment {
	return Fragment{Time: t.Format(ClockLayout), Text: text}
}

// CacheLine renders the fragment as a cache log line without the trailing newline.
// Line breaks inside the text are folded so a fragment always occupies one line.
func (f Fragment) CacheLine() string {
	return f.Time + cacheDelimiter + foldLineBreaks(f.Text)
}

// ParseCacheLine parses a "HH:MM:SS|text" line, splitting on the first delimiter
func ParseCacheLine(line string) (Fragment, error) {
	line = strings.TrimRight(line, "\r\n")
	ts, text, ok := strings.Cut(line, cacheDelimiter)
	if !ok {
		return Fragment{}, fmt.Errorf("missing %q delimiter", cacheDelimiter)
	}
	if ts == "" {
		return Fragment{}, fmt.Errorf("empty timestamp")
	}
	return Fragment{Time: ts, Text: text}, nil
}

func foldLineBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
