package internal

import (
	"context"
	"sync"
	"time"
)

// ScriptedSource is a Source that replays a fixed list of snapshots, one per
// poll, and then keeps returning the last one. It is used by tests.
type ScriptedSource struct {
	mu        sync.Mutex
	snapshots []string
	next      int
	polls     int
	DetectErr error
	PollErr   error
	// Absent makes every poll report the caption window as missing
	Absent bool
}

// NewScriptedSource creates a ScriptedSource
func NewScriptedSource(snapshots ...string) *ScriptedSource {
	return &ScriptedSource{snapshots: snapshots}
}

// Name returns a description of the source
func (s *ScriptedSource) Name() string {
	return "scripted"
}

// Detect returns DetectErr
func (s *ScriptedSource) Detect(ctx context.Context) error {
	return s.DetectErr
}

// Poll returns the next snapshot
func (s *ScriptedSource) Poll(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.PollErr != nil {
		return "", false, s.PollErr
	}
	if s.Absent || len(s.snapshots) == 0 {
		return "", false, nil
	}
	if s.next < len(s.snapshots) {
		s.next++
	}
	return s.snapshots[s.next-1], true, nil
}

// Push appends snapshots to the script
func (s *ScriptedSource) Push(snapshots ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, snapshots...)
}

// Polls returns how many times Poll was called
func (s *ScriptedSource) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// FixedClock returns a clock that starts at start and advances by step on every call
func FixedClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}
