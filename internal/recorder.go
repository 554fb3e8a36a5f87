package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the recorder's lifecycle state
type State int

const (
	StateStopped State = iota
	StateRecording
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SessionCatalog receives session lifecycle events and merged lines.
// Failures are logged and never interrupt recording.
type SessionCatalog interface {
	CreateSession(rec SessionRecord) error
	AppendLines(sessionID string, lines []Line) error
	EndSession(sessionID string, endedAt time.Time) error
}

// RecorderOptions configures a Recorder
type RecorderOptions struct {
	SaveDir           string
	Strategy          Strategy
	PollInterval      time.Duration
	MinFragmentLength int
	Catalog           SessionCatalog
	Clock             func() time.Time
	NewID             func() string
}

// Recorder is the session state machine: stopped, recording, paused.
// It owns the current Session and the capture loop feeding it.
type Recorder struct {
	source Source
	opts   RecorderOptions

	mu      sync.Mutex
	state   State
	session *Session
	loop    *captureLoop
}

// NewRecorder creates a stopped Recorder reading from source
func NewRecorder(source Source, opts RecorderOptions) *Recorder {
	if opts.Strategy == "" {
		opts.Strategy = DefaultStrategy
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MinFragmentLength <= 0 {
		opts.MinFragmentLength = DefaultMinFragmentLength
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Recorder{source: source, opts: opts}
}

// State returns the current lifecycle state
func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Session returns the active session, or nil when stopped
func (r *Recorder) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Start begins a new session. It fails with a *StateError unless the recorder
// is stopped, and with a *SourceUnavailableError when the source probe fails.
func (r *Recorder) Start(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateStopped {
		return nil, &StateError{Op: "start", State: r.state}
	}
	// A previous loop must be fully gone before a new one touches any cache.
	if r.loop != nil {
		r.loop.stop()
		r.loop = nil
	}

	if err := r.source.Detect(ctx); err != nil {
		var unavailable *SourceUnavailableError
		if !errors.As(err, &unavailable) {
			err = &SourceUnavailableError{Source: r.source.Name(), Err: err}
		}
		return nil, err
	}

	if err := os.MkdirAll(r.opts.SaveDir, 0755); err != nil {
		return nil, &IOError{Op: "mkdir", Path: r.opts.SaveDir, Err: err}
	}

	now := r.opts.Clock()
	files, err := ReserveSessionFiles(r.opts.SaveDir, now)
	if err != nil {
		return nil, err
	}
	session := newSession(r.opts.NewID(), files, now, r.opts.Strategy, r.opts.Clock)

	if r.opts.Catalog != nil {
		rec := SessionRecord{
			ID:             session.ID,
			Dir:            files.Dir,
			TranscriptPath: files.Transcript,
			Strategy:       string(session.Strategy()),
			StartedAt:      now,
		}
		if err := r.opts.Catalog.CreateSession(rec); err != nil {
			LogWarn("Failed to catalog session %s: %v", session.ID, err)
		}
		catalog := r.opts.Catalog
		session.merger.OnWrite = func(lines []Line) {
			if err := catalog.AppendLines(session.ID, lines); err != nil {
				LogWarn("Failed to index %d line(s) for session %s: %v", len(lines), session.ID, err)
			}
		}
	}

	capturer := NewCapturer(r.source, session, r.opts.MinFragmentLength)
	r.loop = startCaptureLoop(context.WithoutCancel(ctx), capturer, r.opts.PollInterval)
	r.session = session
	r.state = StateRecording

	LogInfo("Recording session %s to %s", session.ID, files.Transcript)
	return session, nil
}

// Pause stops new fragments from being recorded and merges what was cached.
// A failed merge is logged; the recorder is paused regardless.
func (r *Recorder) Pause() (MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return MergeResult{}, &StateError{Op: "pause", State: r.state}
	}
	r.session.setPaused(true)
	r.state = StatePaused

	res, err := r.session.Merge()
	if err != nil {
		LogWarn("Merge on pause failed: %v", err)
		return MergeResult{}, nil
	}
	LogInfo("Paused; merged %d line(s)", len(res.Written))
	return res, nil
}

// Resume continues recording into the same transcript with the same dedup set
func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePaused {
		return &StateError{Op: "resume", State: r.state}
	}
	r.session.setPaused(false)
	r.state = StateRecording
	LogInfo("Resumed recording")
	return nil
}

// MergeNow merges pending fragments on request
func (r *Recorder) MergeNow() (MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateStopped {
		return MergeResult{}, &StateError{Op: "merge", State: r.state}
	}
	return r.session.Merge()
}

// Preview merges pending fragments and returns the transcript path to show
func (r *Recorder) Preview() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateStopped {
		return "", &StateError{Op: "preview", State: r.state}
	}
	if _, err := r.session.Merge(); err != nil {
		LogWarn("Merge before preview failed: %v", err)
	}
	return r.session.TranscriptPath(), nil
}

// Stop ends the session: the capture loop is cancelled and awaited, pending
// fragments are merged and the cache file is deleted. When the final merge
// fails the recorder still stops, the cache file is kept for recovery and
// the merge error is returned.
func (r *Recorder) Stop() (MergeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateStopped {
		return MergeResult{}, &StateError{Op: "stop", State: r.state}
	}

	if r.loop != nil {
		r.loop.stop()
		r.loop = nil
	}

	session := r.session
	res, mergeErr := session.Merge()
	if mergeErr != nil {
		LogWarn("Final merge failed, keeping %s for recovery: %v", session.CachePath(), mergeErr)
		if err := session.cache.Close(); err != nil {
			LogWarn("Failed to close cache: %v", err)
		}
	} else if err := session.teardown(); err != nil {
		LogWarn("Failed to remove cache: %v", err)
	}

	if r.opts.Catalog != nil {
		if err := r.opts.Catalog.EndSession(session.ID, r.opts.Clock()); err != nil {
			LogWarn("Failed to close session %s in catalog: %v", session.ID, err)
		}
	}

	r.session = nil
	r.state = StateStopped
	if mergeErr != nil {
		return MergeResult{}, fmt.Errorf("final merge failed, cache kept at %s: %w", session.CachePath(), mergeErr)
	}
	LogInfo("Stopped session %s (%d line(s) written)", session.ID, session.Emitted())
	return res, nil
}

// Restart stops the active session, if any, and starts a new one
func (r *Recorder) Restart(ctx context.Context) (*Session, error) {
	if r.State() != StateStopped {
		if _, err := r.Stop(); err != nil {
			return nil, err
		}
	}
	return r.Start(ctx)
}
