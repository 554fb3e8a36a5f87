package export

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Captions %s\n\n", doc.Name)

	if doc.SessionID != "" {
		_, _ = fmt.Fprintf(w, "**Session:** %s  \n", doc.SessionID)
	}
	_, _ = fmt.Fprintf(w, "**Source:** %s  \n", doc.Path)
	_, _ = fmt.Fprintf(w, "**Lines:** %d\n\n", len(doc.Lines))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for _, line := range doc.Lines {
		if _, err := fmt.Fprintf(w, "- `%s` %s\n", line.Stamp(), escapeMarkdown(line.Text)); err != nil {
			return err
		}
	}

	return nil
}

// escapeMarkdown escapes the inline markers captions are likely to contain
func escapeMarkdown(text string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		"*", `\*`,
		"_", `\_`,
	)
	return r.Replace(text)
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
