package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	listLimit int
	listJSON  bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Long:  `List recording sessions from the session catalog, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()

		records, err := catalog.ListSessions(listLimit)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		displaySessions(out, records, time.Now())
		return nil
	},
}

func displaySessions(out io.Writer, records []internal.SessionRecord, now time.Time) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("No sessions recorded yet"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d session(s)", len(records))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Started")+"\t"+titleStyle.Render("Lines")+"\t"+titleStyle.Render("State")+"\t"+titleStyle.Render("Transcript")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, rec := range records {
		state := "done"
		if rec.Active() {
			state = "active"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID(rec.ID)),
			dateStyle.Render(formatWhen(rec.StartedAt, now)),
			countStyle.Render(strconv.Itoa(rec.LineCount)),
			state,
			dirStyle.Render(shortPath(rec.TranscriptPath)),
		)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, idStyle.Render("Tip: use an ID (or a unique prefix such as ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(shortID(records[0].ID))+
		idStyle.Render(") with `savecaptions show <id>`"))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// shortPath keeps the last directory and the file name
func shortPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	name := filepath.Base(path)
	if dir == "." || dir == string(filepath.Separator) {
		return name
	}
	return filepath.Join(dir, name)
}

// formatWhen renders t relative to now with decreasing precision
func formatWhen(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour && t.Day() == now.Day():
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of sessions to list (0 for all)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print sessions as JSON")
}
