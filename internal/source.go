package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Source supplies snapshots of the caption text currently on screen
type Source interface {
	// Name identifies the source in logs and errors
	Name() string
	// Detect is the one-time availability probe run before a session starts
	Detect(ctx context.Context) error
	// Poll returns the full caption text. ok is false when the caption
	// window is absent, which callers treat as "no change".
	Poll(ctx context.Context) (text string, ok bool, err error)
}

// SourceConfig describes which Source to build
type SourceConfig struct {
	Kind    string   `yaml:"kind"`              // "file", "command" or "pty"
	Path    string   `yaml:"path,omitempty"`    // file source
	Command string   `yaml:"command,omitempty"` // command and pty sources
	Args    []string `yaml:"args,omitempty"`
	Cols    int      `yaml:"cols,omitempty"` // pty source
	Rows    int      `yaml:"rows,omitempty"`
}

const (
	SourceKindFile    = "file"
	SourceKindCommand = "command"
	SourceKindPTY     = "pty"
)

// NewSource builds the Source described by cfg
func NewSource(cfg SourceConfig) (Source, error) {
	switch cfg.Kind {
	case SourceKindFile:
		if cfg.Path == "" {
			return nil, fmt.Errorf("file source requires a path")
		}
		return NewFileSource(cfg.Path), nil
	case SourceKindCommand:
		if cfg.Command == "" {
			return nil, fmt.Errorf("command source requires a command")
		}
		return NewCommandSource(cfg.Command, cfg.Args...), nil
	case SourceKindPTY:
		if cfg.Command == "" {
			return nil, fmt.Errorf("pty source requires a command")
		}
		return NewPTYSource(cfg.Command, cfg.Args, cfg.Cols, cfg.Rows), nil
	case "":
		return nil, fmt.Errorf("no caption source configured (set source.kind to file, command or pty)")
	default:
		return nil, fmt.Errorf("unsupported source kind: %s (supported: file, command, pty)", cfg.Kind)
	}
}

// FileSource reads the whole caption text from a file on every poll.
// Another process is expected to keep the file current.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name returns a description of the source
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Detect checks that the caption file exists and is readable
func (s *FileSource) Detect(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	return f.Close()
}

// Poll returns the file contents. A missing file is not an error.
func (s *FileSource) Poll(ctx context.Context) (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", s.path, err)
	}
	return string(data), true, nil
}

// CommandSource runs a helper program on every poll and uses its standard
// output as the snapshot. Platform accessibility readers plug in here.
// Exit status 3 from the helper means the caption window was not found.
type CommandSource struct {
	command string
	args    []string
}

// ExitCodeWindowAbsent is the helper exit status meaning "no caption window"
const ExitCodeWindowAbsent = 3

// NewCommandSource creates a CommandSource
func NewCommandSource(command string, args ...string) *CommandSource {
	return &CommandSource{command: command, args: args}
}

// Name returns a description of the source
func (s *CommandSource) Name() string {
	return "command:" + strings.TrimSpace(s.command+" "+strings.Join(s.args, " "))
}

// Detect runs the helper once and requires it to find the caption window
func (s *CommandSource) Detect(ctx context.Context) error {
	if _, err := exec.LookPath(s.command); err != nil {
		return &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	_, ok, err := s.Poll(ctx)
	if err != nil {
		return &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	if !ok {
		return &SourceUnavailableError{Source: s.Name(), Err: errors.New("caption window not found")}
	}
	return nil
}

// Poll runs the helper and returns its output
func (s *CommandSource) Poll(ctx context.Context) (string, bool, error) {
	cmd := exec.CommandContext(ctx, s.command, s.args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == ExitCodeWindowAbsent {
			return "", false, nil
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", false, fmt.Errorf("%s: %w: %s", s.command, err, msg)
		}
		return "", false, fmt.Errorf("%s: %w", s.command, err)
	}
	return stdout.String(), true, nil
}
