package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// StateStyle returns the badge style for a recorder state
func StateStyle(s State) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch s {
	case StateRecording:
		return base.Background(lipgloss.Color("196")).Foreground(lipgloss.Color("231"))
	case StatePaused:
		return base.Background(lipgloss.Color("214")).Foreground(lipgloss.Color("16"))
	default:
		return base.Background(lipgloss.Color("240")).Foreground(lipgloss.Color("231"))
	}
}

// ShowProgress runs fn behind a spinner: gum when installed, a simple
// spinner otherwise, and a plain log line when stderr is not a terminal.
func ShowProgress(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(os.Stderr) {
		LogInfo(message)
		return fn()
	}
	if gumAvailable() {
		return showProgressWithGum(ctx, message, fn)
	}
	return showProgressSimple(ctx, message, fn)
}

func showProgressWithGum(ctx context.Context, message string, fn func() error) error {
	spinCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(spinCtx, "gum", "spin", "--spinner", "dot", "--title", message, "--", "sh", "-c", "while true; do sleep 0.1; done")
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stderr
	spinnerDone := make(chan struct{})
	go func() {
		defer close(spinnerDone)
		_ = cmd.Run()
	}()

	err := runWithContext(ctx, fn)
	cancel()
	<-spinnerDone
	return finishProgress(message, err)
}

func showProgressSimple(ctx context.Context, message string, fn func() error) error {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinCtx, cancel := context.WithCancel(ctx)
	spinnerDone := make(chan struct{})
	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-spinCtx.Done():
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\r%s %s", progressStyle.Render(frames[i%len(frames)]), message)
			}
		}
	}()

	err := runWithContext(ctx, fn)
	cancel()
	<-spinnerDone
	return finishProgress(message, err)
}

// runWithContext returns fn's error, or ctx's error if it is cancelled first
func runWithContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func finishProgress(message string, err error) error {
	if err != nil {
		fmt.Fprintf(os.Stderr, "\r%s %s\n", errorStyle.Render("✗"), message)
		return err
	}
	fmt.Fprintf(os.Stderr, "\r%s %s\n", successStyle.Render("✓"), message)
	return nil
}

func gumAvailable() bool {
	_, err := exec.LookPath("gum")
	return err == nil
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	printStyled(w, successStyle, "✓", "", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	printStyled(w, errorStyle, "✗", "ERROR: ", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	printStyled(w, progressStyle, "ℹ", "", message)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	printStyled(w, warningStyle, "⚠", "WARNING: ", message)
}

func printStyled(w io.Writer, style lipgloss.Style, icon, plainPrefix, message string) {
	if isTerminal(w) {
		fmt.Fprintf(w, "%s %s\n", style.Render(icon), message)
		return
	}
	fmt.Fprintf(w, "%s%s\n", plainPrefix, message)
}
