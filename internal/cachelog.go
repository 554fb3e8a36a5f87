package internal

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// CacheLog is the append-only, timestamped store of fragments awaiting a merge.
//
// Every fragment lives both in the cache file and in an in-memory mirror.
// The mirror is authoritative while a session is live; the file is what
// survives a crash. One mutex covers append, read and clear.
type CacheLog struct {
	path string

	mu     sync.Mutex
	file   *os.File
	mirror []Fragment
}

// NewCacheLog creates a cache log backed by path. The file is not opened until the first append.
func NewCacheLog(path string) *CacheLog {
	return &CacheLog{path: path}
}

// Path returns the cache file path
func (c *CacheLog) Path() string {
	return c.path
}

// Append durably writes a fragment and records it in the mirror.
// The write is synced before Append returns.
func (c *CacheLog) Append(f Fragment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.openLocked(); err != nil {
		return err
	}

	f.Text = foldLineBreaks(f.Text)
	if _, err := c.file.WriteString(f.CacheLine() + "\n"); err != nil {
		return &IOError{Op: "append", Path: c.path, Err: err}
	}
	if err := c.file.Sync(); err != nil {
		return &IOError{Op: "sync", Path: c.path, Err: err}
	}

	c.mirror = append(c.mirror, f)
	LogDebug("Saved to cache: %s", f.Text)
	return nil
}

// ReadAll returns every pending fragment in append order
func (c *CacheLog) ReadAll() ([]Fragment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readLocked()
}

// Len returns the number of fragments in the mirror
func (c *CacheLog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.mirror)
}

// Clear truncates the cache file and empties the mirror
func (c *CacheLog) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearLocked()
}

// Drain hands the pending fragments to fn and clears the log only if fn succeeds.
// Appends are blocked for the whole read, fn, clear sequence.
func (c *CacheLog) Drain(fn func([]Fragment) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fragments, err := c.readLocked()
	if err != nil {
		return err
	}
	if err := fn(fragments); err != nil {
		return err
	}
	return c.clearLocked()
}

// Close releases the file handle. The log can be appended to again afterwards.
func (c *CacheLog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

// Delete closes the log and removes the cache file
func (c *CacheLog) Delete() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	closeErr := c.closeLocked()
	c.mirror = nil
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "remove", Path: c.path, Err: err}
	}
	return closeErr
}

func (c *CacheLog) openLocked() error {
	if c.file != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return &IOError{Op: "open", Path: c.path, Err: err}
	}
	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return &IOError{Op: "open", Path: c.path, Err: err}
	}
	c.file = f
	return nil
}

func (c *CacheLog) closeLocked() error {
	if c.file == nil {
		return nil
	}
	err := c.file.Close()
	c.file = nil
	if err != nil {
		return &IOError{Op: "close", Path: c.path, Err: err}
	}
	return nil
}

func (c *CacheLog) readLocked() ([]Fragment, error) {
	if len(c.mirror) > 0 {
		out := make([]Fragment, len(c.mirror))
		copy(out, c.mirror)
		return out, nil
	}
	return ReadCacheFile(c.path)
}

func (c *CacheLog) clearLocked() error {
	c.mirror = nil
	if c.file != nil {
		if err := c.file.Truncate(0); err != nil {
			return &IOError{Op: "truncate", Path: c.path, Err: err}
		}
		return nil
	}
	if err := os.Truncate(c.path, 0); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "truncate", Path: c.path, Err: err}
	}
	return nil
}

// ReadCacheFile parses a cache file from disk. Malformed lines are logged and
// skipped; a missing file reads as empty.
func ReadCacheFile(path string) ([]Fragment, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var fragments []Fragment
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		frag, err := ParseCacheLine(line)
		if err != nil {
			LogWarn("%v", &MalformedCacheLineError{Path: path, Line: lineNo, Content: line})
			continue
		}
		fragments = append(fragments, frag)
	}
	if err := scanner.Err(); err != nil {
		return fragments, &IOError{Op: "read", Path: path, Err: err}
	}
	return fragments, nil
}
