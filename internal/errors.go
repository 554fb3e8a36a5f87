package internal

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by the Manager for unknown session IDs
var ErrSessionNotFound = errors.New("session not found")

// SourceUnavailableError is returned when the caption source cannot be found at session start
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("caption source unavailable [%s]", e.Source)
	}
	return fmt.Sprintf("caption source unavailable [%s]: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// IOError represents a failed cache append or transcript write
type IOError struct {
	Op   string // "create", "open", "append", "sync", "truncate", "write", "remove"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// MalformedCacheLineError describes a cache line that could not be parsed
type MalformedCacheLineError struct {
	Path    string
	Line    int
	Content string
}

func (e *MalformedCacheLineError) Error() string {
	return fmt.Sprintf("malformed cache line %s:%d: %q", e.Path, e.Line, e.Content)
}

// StateError represents an operation that is not valid in the recorder's current state
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.State)
}
