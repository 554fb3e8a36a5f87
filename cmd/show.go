package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	showTail  int
	showWidth int
)

var (
	// Styles for show command
	sessionHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	sessionMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// transcriptTarget is a transcript resolved from a session ID or a path
type transcriptTarget struct {
	Path   string
	Record *internal.SessionRecord
	Lines  []internal.Line
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <session-id | transcript>",
	Short: "Show the lines of a transcript",
	Long: `Display a transcript by catalog session ID (or unique ID prefix) or by
the path of a <timestamp>_captions.txt file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		target, err := resolveTranscript(cfg, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		displayTranscriptHeader(out, target)

		lines := target.Lines
		hidden := 0
		if showTail > 0 && showTail < len(lines) {
			hidden = len(lines) - showTail
			lines = internal.Tail(lines, showTail)
		}
		if hidden > 0 {
			_, _ = fmt.Fprintln(out, timestampStyle.Render(fmt.Sprintf("... (%d earlier line(s))", hidden)))
		}
		for _, line := range lines {
			displayLine(out, line, showWidth)
		}
		return nil
	},
}

// resolveTranscript finds the transcript named by arg. An existing file wins
// over a catalog lookup. Lines come from the transcript file; the catalog
// copy is used only when the file is gone.
func resolveTranscript(cfg internal.Config, arg string) (*transcriptTarget, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		if !internal.IsTranscriptFile(arg) {
			internal.LogDebug("%s is not named like a transcript, reading it anyway", arg)
		}
		lines, err := internal.ReadTranscript(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read transcript: %w", err)
		}
		target := &transcriptTarget{Path: arg, Lines: lines}
		if catalog, err := openCatalog(cfg); err == nil {
			if rec, err := catalog.SessionForTranscript(arg); err == nil {
				target.Record = &rec
			}
			_ = catalog.Close()
		}
		return target, nil
	}

	catalog, err := openCatalog(cfg)
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	rec, err := catalog.GetSession(arg)
	if err != nil {
		if errors.Is(err, internal.ErrSessionNotFound) {
			return nil, fmt.Errorf("no session or transcript named %q (use 'savecaptions list' to see sessions)", arg)
		}
		return nil, err
	}

	target := &transcriptTarget{Path: rec.TranscriptPath, Record: &rec}
	target.Lines, err = internal.ReadTranscript(rec.TranscriptPath)
	if errors.Is(err, os.ErrNotExist) {
		internal.LogWarn("Transcript %s is missing, showing catalogued lines", rec.TranscriptPath)
		target.Lines, err = catalog.SessionLines(rec.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return target, nil
}

func displayTranscriptHeader(out io.Writer, target *transcriptTarget) {
	_, _ = fmt.Fprintln(out, sessionHeaderStyle.Render(target.Path))

	var metaParts []string
	if rec := target.Record; rec != nil {
		metaParts = append(metaParts, "Session: "+rec.ID)
		metaParts = append(metaParts, "Started: "+rec.StartedAt.Format("2006-01-02 15:04:05"))
		if rec.Strategy != "" {
			metaParts = append(metaParts, "Strategy: "+rec.Strategy)
		}
	}
	metaParts = append(metaParts, fmt.Sprintf("Lines: %d", len(target.Lines)))
	_, _ = fmt.Fprintln(out, sessionMetaStyle.Render(strings.Join(metaParts, " • ")))
}

func displayLine(out io.Writer, line internal.Line, width int) {
	stamp := "[" + line.Stamp() + "]"
	text := line.Text
	if width > 0 {
		text = wrapText(text, width-len(stamp)-1)
		text = strings.ReplaceAll(text, "\n", "\n"+strings.Repeat(" ", len(stamp)+1))
	}
	_, _ = fmt.Fprintln(out, timestampStyle.Render(stamp)+" "+text)
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var wrapped []string
	for _, line := range strings.Split(text, "\n") {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}
		currentLine := ""
		for _, word := range strings.Fields(line) {
			switch {
			case currentLine == "":
				currentLine = word
			case len(currentLine)+len(word)+1 > width:
				wrapped = append(wrapped, currentLine)
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}
	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showTail, "tail", "n", 0, "Show only the last n lines")
	showCmd.Flags().IntVar(&showWidth, "width", 100, "Wrap lines at this width (0 disables wrapping)")
}
