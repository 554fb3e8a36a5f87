package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	refreshInterval = 500 * time.Millisecond
	noticeDuration  = 4 * time.Second
	previewLines    = 8
)

// Controller is the session control surface the panel drives.
// *internal.Recorder satisfies it.
type Controller interface {
	State() internal.State
	Pause() (internal.MergeResult, error)
	Resume() error
	MergeNow() (internal.MergeResult, error)
	Preview() (string, error)
	Stop() (internal.MergeResult, error)
}

// sessionProvider is implemented by controllers that expose counters.
type sessionProvider interface {
	Session() *internal.Session
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	errorTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00")).
			Bold(true)

	footerDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Model is the bubbletea model for the recording control panel.
type Model struct {
	ctrl           Controller
	sourceName     string
	transcriptPath string

	state   internal.State
	pending int
	emitted int

	preview     []internal.Line
	notice      string
	errorText   string
	busy        bool
	stopping    bool
	finalResult *internal.MergeResult
	stopErr     error

	width int
}

// New creates a panel model for a session that is already recording.
func New(ctrl Controller, sourceName, transcriptPath string) Model {
	m := Model{
		ctrl:           ctrl,
		sourceName:     sourceName,
		transcriptPath: transcriptPath,
	}
	m.refresh()
	return m
}

// Init starts the periodic status refresh.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Stopped reports whether the session was stopped through the panel.
func (m Model) Stopped() bool {
	return m.finalResult != nil
}

// StopErr returns the error from stopping the session, if any
func (m Model) StopErr() error {
	return m.stopErr
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func clearNoticeCmd() tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

func pauseCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Pause()
		return PausedMsg{Result: res, Err: err}
	}
}

func resumeCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return ResumedMsg{Err: ctrl.Resume()}
	}
}

func mergeCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.MergeNow()
		return MergedMsg{Result: res, Err: err}
	}
}

func previewCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		path, err := ctrl.Preview()
		if err != nil {
			return PreviewMsg{Err: err}
		}
		lines, err := internal.ReadTranscript(path)
		if err != nil {
			return PreviewMsg{Path: path, Err: err}
		}
		return PreviewMsg{Path: path, Lines: internal.Tail(lines, previewLines)}
	}
}

func stopCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Stop()
		return StoppedMsg{Result: res, Err: err}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if m.stopping {
			return m, nil
		}
		m.refresh()
		return m, tickCmd()

	case PausedMsg:
		m.busy = false
		m.refresh()
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return m.announce(fmt.Sprintf("Paused, merged %d line(s)", len(msg.Result.Written)))

	case ResumedMsg:
		m.busy = false
		m.refresh()
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return m.announce("Recording resumed")

	case MergedMsg:
		m.busy = false
		m.refresh()
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		return m.announce(fmt.Sprintf("Merged %d fragment(s) into %d new line(s)", msg.Result.Fragments, len(msg.Result.Written)))

	case PreviewMsg:
		m.busy = false
		m.refresh()
		if msg.Err != nil {
			return m.fail(msg.Err)
		}
		m.preview = msg.Lines
		return m.announce("Preview of " + msg.Path)

	case StoppedMsg:
		m.busy = false
		res := msg.Result
		m.finalResult = &res
		m.stopErr = msg.Err
		m.state = internal.StateStopped
		return m, tea.Quit

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.stopping {
		return m, nil
	}

	switch msg.String() {
	case KeyQuit, KeyCtrlC:
		m.stopping = true
		m.busy = true
		m.notice = "Stopping, merging remaining captions..."
		return m, stopCmd(m.ctrl)
	}

	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case KeyPause, KeyPauseP:
		if m.state != internal.StateRecording {
			return m.announce("Already paused")
		}
		m.busy = true
		return m, pauseCmd(m.ctrl)

	case KeyResume:
		if m.state != internal.StatePaused {
			return m.announce("Already recording")
		}
		m.busy = true
		return m, resumeCmd(m.ctrl)

	case KeyPreview:
		m.busy = true
		return m, previewCmd(m.ctrl)

	case KeyMerge:
		m.busy = true
		return m, mergeCmd(m.ctrl)
	}

	return m, nil
}

func (m *Model) refresh() {
	m.state = m.ctrl.State()
	if sp, ok := m.ctrl.(sessionProvider); ok {
		if s := sp.Session(); s != nil {
			m.pending = s.Pending()
			m.emitted = s.Emitted()
		}
	}
}

func (m Model) announce(text string) (tea.Model, tea.Cmd) {
	m.notice = text
	m.errorText = ""
	return m, clearNoticeCmd()
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.errorText = err.Error()
	m.notice = ""
	return m, nil
}

// View renders the panel.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 60
	}

	var sections []string
	sections = append(sections, titleStyle.Render("SAVE LIVE CAPTIONS")+"  "+
		internal.StateStyle(m.state).Render(strings.ToUpper(m.state.String())))
	sections = append(sections, dimStyle.Render("source:     "+m.sourceName))
	sections = append(sections, dimStyle.Render("transcript: "+m.transcriptPath))
	sections = append(sections, fmt.Sprintf("pending fragments: %d   lines written: %d", m.pending, m.emitted))
	sections = append(sections, dividerStyle.Render(strings.Repeat("─", width)))

	if len(m.preview) > 0 {
		for _, line := range m.preview {
			sections = append(sections, dimStyle.Render("["+line.Stamp()+"]")+" "+line.Text)
		}
		sections = append(sections, dividerStyle.Render(strings.Repeat("─", width)))
	}

	if m.errorText != "" {
		sections = append(sections, errorTextStyle.Render("Error: "+m.errorText))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m Model) renderFooter() string {
	keys := []struct{ key, desc string }{
		{"space/p", "pause"},
		{"r", "resume"},
		{"o", "preview"},
		{"m", "merge"},
		{"q", "stop"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, footerKeyStyle.Render(k.key)+" "+footerDescStyle.Render(k.desc))
	}
	return strings.Join(parts, "  ")
}
