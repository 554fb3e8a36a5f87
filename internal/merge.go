package internal

import (
	"fmt"
	"strings"
)

// Strategy selects how cached fragments are segmented into transcript lines
type Strategy string

const (
	// StrategySentence accumulates fragments until one carries a sentence
	// terminator and stamps each line with its own time range. This is the
	// default: it keeps per-line timing.
	StrategySentence Strategy = "sentence"

	// StrategyResegment joins the whole batch into one text and splits it
	// into sentences. Prose reads smoother, but every line carries the
	// time of the first fragment in the batch.
	StrategyResegment Strategy = "resegment"
)

// DefaultStrategy is the segmentation used when none is configured
const DefaultStrategy = StrategySentence

// sentenceTerminators are the marks that close a sentence
const sentenceTerminators = ".!?。！？"

// ParseStrategy converts a config or flag value into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySentence:
		return StrategySentence, nil
	case StrategyResegment:
		return StrategyResegment, nil
	default:
		return "", fmt.Errorf("unsupported merge strategy: %s (supported: sentence, resegment)", s)
	}
}

// Segment turns fragments into candidate transcript lines, before deduplication
func (s Strategy) Segment(fragments []Fragment) []Line {
	if s == StrategyResegment {
		return resegment(fragments)
	}
	return accumulateSentences(fragments)
}

func accumulateSentences(fragments []Fragment) []Line {
	var lines []Line
	var segment []Fragment

	for _, f := range fragments {
		segment = append(segment, f)
		if !strings.ContainsAny(f.Text, sentenceTerminators) {
			continue
		}

		var b strings.Builder
		for _, part := range segment {
			b.WriteString(part.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			lines = append(lines, Line{
				Start: segment[0].Time,
				End:   segment[len(segment)-1].Time,
				Text:  text,
			})
		}
		segment = nil
	}

	// Unterminated fragments stay separate, each with its own time.
	for _, f := range segment {
		if text := strings.TrimSpace(f.Text); text != "" {
			lines = append(lines, Line{Start: f.Time, Text: text})
		}
	}
	return lines
}

func resegment(fragments []Fragment) []Line {
	if len(fragments) == 0 {
		return nil
	}

	var b strings.Builder
	for _, f := range fragments {
		b.WriteString(f.Text)
	}
	text := strings.Join(strings.Fields(b.String()), " ")

	stamp := fragments[0].Time
	var lines []Line
	for _, sentence := range splitSentences(text) {
		lines = append(lines, Line{Start: stamp, Text: sentence})
	}
	return lines
}

// splitSentences splits after each run of terminators, keeping the run
// attached to the sentence it closes. Empty sentences are dropped.
func splitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	runes := []rune(text)

	for i := 0; i < len(runes); i++ {
		cur.WriteRune(runes[i])
		if !strings.ContainsRune(sentenceTerminators, runes[i]) {
			continue
		}
		for i+1 < len(runes) && strings.ContainsRune(sentenceTerminators, runes[i+1]) {
			i++
			cur.WriteRune(runes[i])
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// MergeResult summarises one merge pass
type MergeResult struct {
	Fragments  int    // fragments read from the cache log
	Candidates int    // lines produced by segmentation
	Written    []Line // lines appended to the transcript
}

// MergeEngine consolidates a session's cache log into its transcript
type MergeEngine struct {
	cache      *CacheLog
	transcript *Transcript
	dedup      *DedupSet
	strategy   Strategy

	// OnWrite, when set, receives the lines appended by each successful merge
	OnWrite func([]Line)
}

// NewMergeEngine wires a cache log, transcript and dedup set together
func NewMergeEngine(cache *CacheLog, transcript *Transcript, dedup *DedupSet, strategy Strategy) *MergeEngine {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	if dedup == nil {
		dedup = NewDedupSet()
	}
	return &MergeEngine{
		cache:      cache,
		transcript: transcript,
		dedup:      dedup,
		strategy:   strategy,
	}
}

// Strategy returns the segmentation strategy in use
func (m *MergeEngine) Strategy() Strategy {
	return m.strategy
}

// Dedup returns the engine's dedup set
func (m *MergeEngine) Dedup() *DedupSet {
	return m.dedup
}

// Merge moves every pending fragment into the transcript.
//
// The cache is cleared after a successful write even when every candidate
// was a duplicate. When the write fails the cache and dedup set are left
// untouched so the next merge retries the same fragments.
func (m *MergeEngine) Merge() (MergeResult, error) {
	var res MergeResult

	err := m.cache.Drain(func(fragments []Fragment) error {
		res.Fragments = len(fragments)
		if len(fragments) == 0 {
			return nil
		}

		candidates := m.strategy.Segment(fragments)
		res.Candidates = len(candidates)

		fresh := m.dedup.Filter(candidates)
		if err := m.transcript.Append(fresh); err != nil {
			return err
		}

		texts := make([]string, 0, len(fresh))
		for _, l := range fresh {
			texts = append(texts, l.Text)
			LogDebug("Merged to transcript: %s", l)
		}
		m.dedup.Add(texts...)
		res.Written = fresh
		return nil
	})
	if err != nil {
		LogError("Merge failed, cache kept for retry: %v", err)
		return MergeResult{}, err
	}

	if len(res.Written) > 0 && m.OnWrite != nil {
		m.OnWrite(res.Written)
	}
	return res, nil
}
