package internal

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	originalLevel := logLevel
	defer func() { logLevel = originalLevel }()

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogFunctions(t *testing.T) {
	originalLevel := logLevel
	defer func() {
		logLevel = originalLevel
		SetLogOutput(os.Stderr)
	}()

	var buf bytes.Buffer
	SetLogOutput(&buf)
	SetLogLevel(LogLevelWarn)

	LogError("test error message")
	LogWarn("test warning message")
	LogInfo("test info message")
	LogDebug("test debug message")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] test error message") {
		t.Errorf("output missing error line: %q", out)
	}
	if !strings.Contains(out, "[WARN] test warning message") {
		t.Errorf("output missing warning line: %q", out)
	}
	if strings.Contains(out, "info message") || strings.Contains(out, "debug message") {
		t.Errorf("output should drop messages below the level: %q", out)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"error", LogLevelError, false},
		{"WARN", LogLevelWarn, false},
		{"warning", LogLevelWarn, false},
		{"", LogLevelInfo, false},
		{" debug ", LogLevelDebug, false},
		{"trace", LogLevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !tt.wantErr {
			if back, _ := ParseLogLevel(got.String()); back != got {
				t.Errorf("ParseLogLevel(%v.String()) = %v", got, back)
			}
		}
	}
}

func TestLogLevels(t *testing.T) {
	// Test that log levels are properly defined
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
