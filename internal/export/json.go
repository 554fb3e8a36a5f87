package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports a transcript as one pretty-printed JSON document
type JSONExporter struct{}

// Export exports a transcript to JSON format
func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
