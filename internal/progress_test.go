package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		message string
		fn      func() error
		wantErr bool
	}{
		{
			name:    "successful function",
			message: "Testing",
			fn: func() error {
				return nil
			},
			wantErr: false,
		},
		{
			name:    "function with error",
			message: "Testing error",
			fn: func() error {
				return errors.New("test error")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, tt.message, tt.fn)
			if (err != nil) != tt.wantErr {
				t.Errorf("ShowProgress() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunWithContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	err := runWithContext(ctx, func() error {
		<-release
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("runWithContext() error = %v, want %v", err, context.DeadlineExceeded)
	}
}

func TestPrintFunctions(t *testing.T) {
	tests := []struct {
		name  string
		print func(w io.Writer, message string)
		want  string
	}{
		{"success", PrintSuccess, "saved\n"},
		{"info", PrintInfo, "saved\n"},
		{"error", PrintError, "ERROR: saved\n"},
		{"warning", PrintWarning, "WARNING: saved\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf, "saved")
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStateStyle(t *testing.T) {
	for _, s := range []State{StateStopped, StateRecording, StatePaused} {
		if got := StateStyle(s).Render(s.String()); !strings.Contains(got, s.String()) {
			t.Errorf("StateStyle(%v).Render() = %q, want it to contain the state name", s, got)
		}
	}
}
