package internal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Line is one consolidated transcript line
type Line struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
	Text  string `json:"text" yaml:"text"`
}

// Stamp returns the bracket contents: a single time, or "start-end" for a range
func (l Line) Stamp() string {
	if l.End == "" || l.End == l.Start {
		return l.Start
	}
	return l.Start + "-" + l.End
}

// String renders the line in transcript form, without a newline
func (l Line) String() string {
	return fmt.Sprintf("[%s] %s", l.Stamp(), l.Text)
}

// ParseTranscriptLine parses "[HH:MM:SS] text" or "[HH:MM:SS-HH:MM:SS] text"
func ParseTranscriptLine(s string) (Line, error) {
	s = strings.TrimRight(s, "\r\n")
	if !strings.HasPrefix(s, "[") {
		return Line{}, fmt.Errorf("transcript line missing '[': %q", s)
	}
	stamp, text, ok := strings.Cut(s[1:], "] ")
	if !ok {
		stamp, ok = strings.CutSuffix(s[1:], "]")
		if !ok {
			return Line{}, fmt.Errorf("transcript line missing ']': %q", s)
		}
	}
	start, end, _ := strings.Cut(stamp, "-")
	if start == "" {
		return Line{}, fmt.Errorf("transcript line has empty time: %q", s)
	}
	return Line{Start: start, End: end, Text: text}, nil
}

// Transcript is the append-only output file of a session
type Transcript struct {
	path string
}

// NewTranscript returns a transcript writer for path
func NewTranscript(path string) *Transcript {
	return &Transcript{path: path}
}

// Path returns the transcript file path
func (t *Transcript) Path() string {
	return t.path
}

// Append writes lines to the end of the transcript in a single write and syncs it
func (t *Transcript) Append(lines []Line) error {
	if len(lines) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return &IOError{Op: "open", Path: t.path, Err: err}
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return &IOError{Op: "open", Path: t.path, Err: err}
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: t.path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return &IOError{Op: "sync", Path: t.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: t.path, Err: err}
	}
	return nil
}

// ReadTranscript parses every well-formed line of a transcript file
func ReadTranscript(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		l, err := ParseTranscriptLine(scanner.Text())
		if err != nil {
			LogDebug("Skipping transcript line: %v", err)
			continue
		}
		lines = append(lines, l)
	}
	return lines, scanner.Err()
}

// TranscriptTexts returns the texts already present in a transcript, used to
// seed a DedupSet when resuming work on an existing file. A missing file has none.
func TranscriptTexts(path string) ([]string, error) {
	lines, err := ReadTranscript(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	texts := make([]string, 0, len(lines))
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	return texts, nil
}

// Tail returns at most n trailing lines
func Tail(lines []Line, n int) []Line {
	if n <= 0 || len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
