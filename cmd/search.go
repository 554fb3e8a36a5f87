package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	searchLimit int
	searchJSON  bool
)

var matchStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("214")).
	Bold(true)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search catalogued transcripts",
	Long: `Find transcript lines containing query (case-insensitive) across all
catalogued sessions, newest sessions first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		catalog, err := openCatalog(cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()

		hits, err := catalog.Search(query, searchLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if searchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(hits)
		}
		if len(hits) == 0 {
			_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("No lines match %q", query)))
			return nil
		}

		_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%d match(es) for %q", len(hits), query)))
		_, _ = fmt.Fprintln(out)
		for _, hit := range hits {
			_, _ = fmt.Fprintf(out, "%s %s %s\n",
				idStyle.Render(shortID(hit.SessionID)),
				timestampStyle.Render("["+hit.Line.Stamp()+"]"),
				highlight(hit.Line.Text, query),
			)
		}
		return nil
	},
}

// highlight styles each case-insensitive occurrence of query in text
func highlight(text, query string) string {
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)
	if lowerQuery == "" || len(lowerText) != len(text) {
		return text
	}

	var b strings.Builder
	rest := 0
	for {
		i := strings.Index(lowerText[rest:], lowerQuery)
		if i < 0 {
			break
		}
		start := rest + i
		end := start + len(lowerQuery)
		b.WriteString(text[rest:start])
		b.WriteString(matchStyle.Render(text[start:end]))
		rest = end
	}
	b.WriteString(text[rest:])
	return b.String()
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "Maximum number of matching lines")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print matches as JSON")
}
