package internal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
)

// Result is the outcome of a Manager operation
type Result struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func okResult() Result {
	return Result{OK: true}
}

func failed(err error) Result {
	return Result{Reason: err.Error()}
}

// SessionInfo is a snapshot of a managed session
type SessionInfo struct {
	ID             string `json:"id"`
	State          string `json:"state"`
	Dir            string `json:"dir"`
	TranscriptPath string `json:"transcript_path"`
	Pending        int    `json:"pending"`
	Emitted        int    `json:"emitted"`
}

// SourceFactory builds a fresh Source for each new session
type SourceFactory func() (Source, error)

// Manager runs recorders keyed by session ID. It is the control surface
// used by the interactive panel and the MCP server.
type Manager struct {
	newSource SourceFactory
	opts      RecorderOptions

	mu        sync.Mutex
	recorders map[string]*Recorder
	starting  map[string]struct{} // dirs whose session is being started
}

// NewManager creates a Manager. opts.SaveDir is used when StartSession is
// given an empty directory.
func NewManager(newSource SourceFactory, opts RecorderOptions) *Manager {
	return &Manager{
		newSource: newSource,
		opts:      opts,
		recorders: make(map[string]*Recorder),
		starting:  make(map[string]struct{}),
	}
}

// StartSession starts recording into dir and returns the new session ID
func (m *Manager) StartSession(ctx context.Context, dir string) (string, Result) {
	if dir == "" {
		dir = m.opts.SaveDir
	}
	if dir == "" {
		return "", Result{Reason: "no save directory given"}
	}
	dir = filepath.Clean(dir)

	if res := m.reserveDir(dir); !res.OK {
		return "", res
	}
	// m.mu is not held while the source is built and probed.
	defer func() {
		m.mu.Lock()
		delete(m.starting, dir)
		m.mu.Unlock()
	}()

	source, err := m.newSource()
	if err != nil {
		return "", failed(err)
	}

	opts := m.opts
	opts.SaveDir = dir
	rec := NewRecorder(source, opts)
	session, err := rec.Start(ctx)
	if err != nil {
		CloseSource(source)
		return "", failed(err)
	}

	m.mu.Lock()
	m.recorders[session.ID] = rec
	m.mu.Unlock()
	return session.ID, okResult()
}

// reserveDir claims dir for a starting session unless another session
// records or is starting there
func (m *Manager) reserveDir(dir string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.starting[dir]; busy {
		return Result{Reason: fmt.Sprintf("a session is already starting in %s", dir)}
	}
	for id, rec := range m.recorders {
		if s := rec.Session(); s != nil && s.Files.Dir == dir {
			return Result{Reason: fmt.Sprintf("session %s is already recording into %s", id, dir)}
		}
	}
	m.starting[dir] = struct{}{}
	return okResult()
}

// Pause pauses a session and merges its pending fragments
func (m *Manager) Pause(id string) Result {
	rec, err := m.lookup(id)
	if err != nil {
		return failed(err)
	}
	if _, err := rec.Pause(); err != nil {
		return failed(err)
	}
	return okResult()
}

// Resume resumes a paused session
func (m *Manager) Resume(id string) Result {
	rec, err := m.lookup(id)
	if err != nil {
		return failed(err)
	}
	if err := rec.Resume(); err != nil {
		return failed(err)
	}
	return okResult()
}

// MergeNow merges a session's pending fragments into its transcript
func (m *Manager) MergeNow(id string) Result {
	rec, err := m.lookup(id)
	if err != nil {
		return failed(err)
	}
	if _, err := rec.MergeNow(); err != nil {
		return failed(err)
	}
	return okResult()
}

// Stop stops a session and forgets it
func (m *Manager) Stop(id string) Result {
	m.mu.Lock()
	rec, found := m.recorders[id]
	if found {
		delete(m.recorders, id)
	}
	m.mu.Unlock()

	if !found {
		return failed(fmt.Errorf("%w: %s", ErrSessionNotFound, id))
	}
	_, err := rec.Stop()
	CloseSource(rec.source)
	if err != nil {
		return failed(err)
	}
	return okResult()
}

// StopAll stops every running session
func (m *Manager) StopAll() {
	for _, info := range m.List() {
		if res := m.Stop(info.ID); !res.OK {
			LogWarn("Failed to stop session %s: %s", info.ID, res.Reason)
		}
	}
}

// Info describes one managed session
func (m *Manager) Info(id string) (SessionInfo, error) {
	rec, err := m.lookup(id)
	if err != nil {
		return SessionInfo{}, err
	}
	info, ok := describe(id, rec)
	if !ok {
		return SessionInfo{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return info, nil
}

// List describes all managed sessions ordered by ID
func (m *Manager) List() []SessionInfo {
	m.mu.Lock()
	ids := make([]string, 0, len(m.recorders))
	recs := make(map[string]*Recorder, len(m.recorders))
	for id, rec := range m.recorders {
		ids = append(ids, id)
		recs[id] = rec
	}
	m.mu.Unlock()

	sort.Strings(ids)
	infos := make([]SessionInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := describe(id, recs[id]); ok {
			infos = append(infos, info)
		}
	}
	return infos
}

func (m *Manager) lookup(id string) (*Recorder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, found := m.recorders[id]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return rec, nil
}

func describe(id string, rec *Recorder) (SessionInfo, bool) {
	state := rec.State()
	session := rec.Session()
	if session == nil {
		return SessionInfo{}, false
	}
	return SessionInfo{
		ID:             id,
		State:          state.String(),
		Dir:            session.Files.Dir,
		TranscriptPath: session.TranscriptPath(),
		Pending:        session.Pending(),
		Emitted:        session.Emitted(),
	}, true
}

// CloseSource releases sources that hold a process or terminal
func CloseSource(source Source) {
	closer, ok := source.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil && !errors.Is(err, context.Canceled) {
		LogDebug("Closing %s: %v", source.Name(), err)
	}
}
