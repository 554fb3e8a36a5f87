package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Scotlight/SaveLiveCaptions/internal"
)

// Document is a transcript prepared for export
type Document struct {
	Name      string          `json:"name" yaml:"name"`
	SessionID string          `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Path      string          `json:"path" yaml:"path"`
	Lines     []internal.Line `json:"lines" yaml:"lines"`
}

// NewDocument prepares the lines of the transcript at path for export.
// The document is named after the file without its extension.
func NewDocument(path string, lines []internal.Line) *Document {
	return &Document{
		Name:  strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:  path,
		Lines: lines,
	}
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}
