package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/Scotlight/SaveLiveCaptions/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <session-id | transcript>",
	Short: "Export a transcript to another format",
	Long: `Export a transcript to jsonl, md, yaml or json.

The transcript is named by catalog session ID (or unique prefix) or by path.
Output goes to stdout unless --out names a file or an existing directory;
a directory receives <transcript-name>.<ext>.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		target, err := resolveTranscript(cfg, args[0])
		if err != nil {
			return err
		}

		doc := documentFor(target)

		if outputDir == "" || outputDir == "-" {
			return exporter.Export(doc, cmd.OutOrStdout())
		}

		path := outputDir
		if info, err := os.Stat(outputDir); err == nil && info.IsDir() {
			path = filepath.Join(outputDir, doc.Name+"."+exporter.Extension())
		} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", path, err)
		}
		if err := exporter.Export(doc, file); err != nil {
			_ = file.Close()
			return fmt.Errorf("failed to export %s: %w", target.Path, err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close file %s: %w", path, err)
		}

		internal.PrintSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Exported %d line(s) to %s", len(doc.Lines), path))
		return nil
	},
}

func documentFor(target *transcriptTarget) *export.Document {
	doc := export.NewDocument(target.Path, target.Lines)
	if target.Record != nil {
		doc.SessionID = target.Record.ID
	}
	return doc
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output file or directory (default: stdout)")
}
