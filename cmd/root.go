package cmd

import (
	"fmt"
	"os"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "savecaptions",
	Short: "Record live captions into timestamped transcripts",
	Long: `Save live captions shown on screen as a clean, timestamped transcript.

savecaptions polls a caption source, keeps only the text that is new since
the previous snapshot, and merges the pieces into whole sentences in a
<timestamp>_captions.txt file. Fragments are journaled to a cache file
first, so nothing is lost if the program stops unexpectedly.

Features:
  • Interactive control panel (pause, resume, preview, merge, stop)
  • Sentence-level merge with per-line time ranges
  • Crash recovery of unmerged cache files
  • Session catalog with full-text search
  • Export to JSONL, Markdown, YAML and JSON
  • MCP tool server for driving sessions from an assistant

Quick Start:
  savecaptions record                    # Record with the configured source
  savecaptions list                      # List recorded sessions
  savecaptions search "quarterly"        # Find a phrase in past sessions
  savecaptions export <id> --format md   # Export a transcript`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment overrides. The
// configured log level applies unless --verbose was given.
func loadConfig() (internal.Config, internal.AppPaths, error) {
	paths, err := internal.DetectAppPaths()
	if err != nil {
		return internal.Config{}, internal.AppPaths{}, err
	}
	loader := internal.ConfigLoader{
		Path:     configPath,
		Required: configPath != "",
		Paths:    paths,
	}
	cfg, err := loader.Load()
	if err != nil {
		return internal.Config{}, paths, err
	}
	if !verbose {
		level, _ := internal.ParseLogLevel(cfg.LogLevel)
		internal.SetLogLevel(level)
	}
	return cfg, paths, nil
}

// openCatalog opens the session catalog named in cfg
func openCatalog(cfg internal.Config) (*internal.Catalog, error) {
	catalog, err := internal.OpenCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open session catalog: %w", err)
	}
	return catalog, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is the per-user savecaptions/config.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
