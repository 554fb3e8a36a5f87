package export

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONLExporter exports transcripts in JSONL format (one line per caption line)
type JSONLExporter struct{}

type jsonlRecord struct {
	Start   string `json:"start"`
	End     string `json:"end,omitempty"`
	Text    string `json:"text"`
	Session string `json:"session,omitempty"`
}

// Export exports a transcript to JSONL format
func (e *JSONLExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, line := range doc.Lines {
		rec := jsonlRecord{
			Start:   line.Start,
			Text:    line.Text,
			Session: doc.SessionID,
		}
		if line.End != line.Start {
			rec.End = line.End
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("failed to encode line: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
