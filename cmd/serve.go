package cmd

import (
	"fmt"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/Scotlight/SaveLiveCaptions/internal/mcpserver"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var serveNoCatalog bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve session controls as MCP tools over stdio",
	Long: `Run an MCP server on stdin/stdout so an assistant can start, pause,
resume, merge and stop recording sessions.

Tools: start_session, pause_session, resume_session, stop_session,
merge_now, list_sessions, tail_transcript.

Every session uses the caption source from the config file. Sessions still
running when the client disconnects are stopped and merged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Source.Kind == "" {
			return fmt.Errorf("serve needs a caption source: set source.kind in the config file")
		}

		opts := cfg.RecorderOptions()
		if !serveNoCatalog {
			catalog, err := openCatalog(cfg)
			if err != nil {
				internal.LogWarn("Serving without catalog: %v", err)
			} else {
				defer catalog.Close()
				opts.Catalog = catalog
			}
		}

		manager := internal.NewManager(func() (internal.Source, error) {
			return internal.NewSource(cfg.Source)
		}, opts)
		defer manager.StopAll()

		internal.LogInfo("Serving MCP tools on stdio (save dir %s)", cfg.SaveDir)
		return server.ServeStdio(mcpserver.New(manager, version))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoCatalog, "no-catalog", false, "Do not record sessions in the catalog")
}
