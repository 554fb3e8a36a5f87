package app

import "github.com/Scotlight/SaveLiveCaptions/internal"

// tickMsg refreshes the state, pending and emitted counters.
type tickMsg struct{}

// PausedMsg is sent when a pause request finished.
type PausedMsg struct {
	Result internal.MergeResult
	Err    error
}

// ResumedMsg is sent when a resume request finished.
type ResumedMsg struct {
	Err error
}

// MergedMsg is sent when a merge-now request finished.
type MergedMsg struct {
	Result internal.MergeResult
	Err    error
}

// PreviewMsg carries the last transcript lines after a preview merge.
type PreviewMsg struct {
	Path  string
	Lines []internal.Line
	Err   error
}

// StoppedMsg is sent once the session has been stopped and finalized.
type StoppedMsg struct {
	Result internal.MergeResult
	Err    error
}

// ClearNoticeMsg clears the transient notice line.
type ClearNoticeMsg struct{}
