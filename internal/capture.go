package internal

import (
	"context"
	"strings"
	"time"
)

// DefaultPollInterval is how often the capture loop reads the source
const DefaultPollInterval = 300 * time.Millisecond

// Capturer turns successive source snapshots into cached fragments
type Capturer struct {
	source    Source
	session   *Session
	minLength int
	last      string
	rebase    bool
	pauses    uint64
}

// NewCapturer creates a Capturer feeding session from source
func NewCapturer(source Source, session *Session, minLength int) *Capturer {
	if minLength <= 0 {
		minLength = DefaultMinFragmentLength
	}
	return &Capturer{source: source, session: session, minLength: minLength}
}

// Step performs one poll. It returns the fragment text that was recorded,
// or "" when nothing new was kept. Paused sessions are not polled, and the
// first snapshot after any pause only becomes the new baseline so captions
// shown while paused stay out of the transcript, even when the pause began
// and ended between two polls.
func (c *Capturer) Step(ctx context.Context) (string, error) {
	paused, pauses := c.session.pauseState()
	if pauses != c.pauses {
		c.pauses = pauses
		c.rebase = true
	}
	if paused {
		return "", nil
	}

	text, ok, err := c.source.Poll(ctx)
	if err != nil || !ok {
		return "", err
	}
	text = strings.TrimSpace(text)
	if c.rebase {
		c.rebase = false
		c.last = text
		return "", nil
	}
	if text == "" || text == c.last {
		return "", nil
	}

	fresh := ExtractNew(text, c.last)
	c.last = text
	if IsNoise(fresh, c.minLength) {
		return "", nil
	}

	recorded, err := c.session.Record(fresh)
	if err != nil || !recorded {
		return "", err
	}
	return fresh, nil
}

// Run polls every interval until ctx is cancelled. Failed iterations are
// logged and the loop keeps going.
func (c *Capturer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := c.Step(ctx); err != nil && ctx.Err() == nil {
			LogWarn("Capture from %s failed: %v", c.source.Name(), err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// captureLoop is a running Capturer that can be cancelled and awaited
type captureLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func startCaptureLoop(parent context.Context, c *Capturer, interval time.Duration) *captureLoop {
	ctx, cancel := context.WithCancel(parent)
	loop := &captureLoop{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(loop.done)
		c.Run(ctx, interval)
	}()
	return loop
}

// stop cancels the loop and waits for its goroutine to return
func (l *captureLoop) stop() {
	l.cancel()
	<-l.done
}
