package internal

import (
	"sync"
	"time"
)

// Session is one start-to-stop recording with its own files and dedup state
type Session struct {
	ID        string
	Files     SessionFiles
	StartedAt time.Time

	cache      *CacheLog
	transcript *Transcript
	merger     *MergeEngine
	clock      func() time.Time

	// gate orders pause against appends: once setPaused(true) returns,
	// no further fragment reaches the cache.
	gate   sync.Mutex
	paused bool
	pauses uint64
}

func newSession(id string, files SessionFiles, startedAt time.Time, strategy Strategy, clock func() time.Time) *Session {
	cache := NewCacheLog(files.Cache)
	transcript := NewTranscript(files.Transcript)
	return &Session{
		ID:         id,
		Files:      files,
		StartedAt:  startedAt,
		cache:      cache,
		transcript: transcript,
		merger:     NewMergeEngine(cache, transcript, NewDedupSet(), strategy),
		clock:      clock,
	}
}

func (s *Session) setPaused(paused bool) {
	s.gate.Lock()
	if paused && !s.paused {
		s.pauses++
	}
	s.paused = paused
	s.gate.Unlock()
}

// pauseState returns whether the session is paused and how many times it has
// been paused so far
func (s *Session) pauseState() (bool, uint64) {
	s.gate.Lock()
	defer s.gate.Unlock()
	return s.paused, s.pauses
}

// Record stamps text with the current time and appends it to the cache log.
// It reports false when the session is paused and the text was dropped.
func (s *Session) Record(text string) (bool, error) {
	s.gate.Lock()
	defer s.gate.Unlock()
	if s.paused {
		return false, nil
	}
	if err := s.cache.Append(NewFragment(s.clock(), text)); err != nil {
		return false, err
	}
	return true, nil
}

// Merge consolidates pending fragments into the transcript
func (s *Session) Merge() (MergeResult, error) {
	return s.merger.Merge()
}

// Pending returns the number of fragments waiting for a merge
func (s *Session) Pending() int {
	return s.cache.Len()
}

// Emitted returns the number of distinct lines written this session
func (s *Session) Emitted() int {
	return s.merger.Dedup().Len()
}

// Strategy returns the session's segmentation strategy
func (s *Session) Strategy() Strategy {
	return s.merger.Strategy()
}

// TranscriptPath returns the session's transcript file
func (s *Session) TranscriptPath() string {
	return s.transcript.Path()
}

// CachePath returns the session's cache file
func (s *Session) CachePath() string {
	return s.cache.Path()
}

// teardown closes and deletes the cache file
func (s *Session) teardown() error {
	return s.cache.Delete()
}
