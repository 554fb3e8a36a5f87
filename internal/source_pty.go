package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/x/vt"
	"github.com/creack/pty"
)

const (
	defaultPTYCols = 120
	defaultPTYRows = 10
)

// PTYSource keeps a caption helper running under a pseudo terminal and
// reads what it renders. The helper may redraw with cursor movement and
// colours; the terminal emulator turns that back into plain screen text.
type PTYSource struct {
	command    string
	args       []string
	cols, rows int

	mu     sync.Mutex
	cmd    *exec.Cmd
	ptmx   *os.File
	emu    *vt.SafeEmulator
	exited chan struct{}
}

// NewPTYSource creates a PTYSource. Zero dimensions fall back to 120x10.
func NewPTYSource(command string, args []string, cols, rows int) *PTYSource {
	if cols <= 0 {
		cols = defaultPTYCols
	}
	if rows <= 0 {
		rows = defaultPTYRows
	}
	return &PTYSource{command: command, args: args, cols: cols, rows: rows}
}

// Name returns a description of the source
func (s *PTYSource) Name() string {
	return "pty:" + strings.TrimSpace(s.command+" "+strings.Join(s.args, " "))
}

// Detect starts the helper if it is not already running
func (s *PTYSource) Detect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.startLocked(); err != nil {
		return &SourceUnavailableError{Source: s.Name(), Err: err}
	}
	return nil
}

// Poll returns the helper's current screen, rows joined by spaces.
// Once the helper exits the caption window counts as absent.
func (s *PTYSource) Poll(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emu == nil {
		if err := s.startLocked(); err != nil {
			return "", false, err
		}
	}
	select {
	case <-s.exited:
		return "", false, nil
	default:
	}
	return screenText(s.emu.String()), true, nil
}

// Close stops the helper and releases the terminal
func (s *PTYSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return nil
	}
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	err := s.ptmx.Close()
	<-s.exited
	s.cmd, s.ptmx, s.emu = nil, nil, nil
	return err
}

func (s *PTYSource) startLocked() error {
	if s.cmd != nil {
		return nil
	}
	if _, err := exec.LookPath(s.command); err != nil {
		return err
	}

	cmd := exec.Command(s.command, s.args...)
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(s.rows), Cols: uint16(s.cols)})
	if err != nil {
		return fmt.Errorf("start %s: %w", s.command, err)
	}

	s.cmd = cmd
	s.ptmx = ptmx
	s.emu = vt.NewSafeEmulator(s.cols, s.rows)
	s.exited = make(chan struct{})

	go s.pump(ptmx, s.emu, cmd, s.exited)
	LogDebug("Started caption helper %s (pid %d)", s.command, cmd.Process.Pid)
	return nil
}

// pump copies helper output into the emulator until the helper exits
func (s *PTYSource) pump(ptmx *os.File, emu *vt.SafeEmulator, cmd *exec.Cmd, exited chan struct{}) {
	defer close(exited)
	_, err := io.Copy(emu, ptmx)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		LogDebug("Caption helper output ended: %v", err)
	}
	_ = cmd.Wait()
}

// screenText flattens an emulator screen into a single caption string
func screenText(screen string) string {
	var parts []string
	for _, row := range strings.Split(screen, "\n") {
		if row = strings.TrimSpace(row); row != "" {
			parts = append(parts, row)
		}
	}
	return strings.Join(parts, " ")
}
