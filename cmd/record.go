package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/Scotlight/SaveLiveCaptions/internal/app"
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	recordHeadless      bool
	recordStrategy      string
	recordInterval      time.Duration
	recordSourceKind    string
	recordSourcePath    string
	recordSourceCommand string
	recordSourceArgs    []string
	recordNoCatalog     bool
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record [dir]",
	Short: "Record live captions into a new transcript",
	Long: `Start a recording session. Captions are polled from the configured source,
journaled to <timestamp>_cache.tmp and merged into <timestamp>_captions.txt
in dir (default: save_dir from the config file).

The control panel accepts:
  space/p  pause (merges pending captions)
  r        resume
  o        preview the last transcript lines
  m        merge now
  q        stop and finalize the transcript

With --headless there is no panel; the session stops on SIGINT or SIGTERM.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := applyRecordFlags(cmd, &cfg, args); err != nil {
			return err
		}

		source, err := internal.NewSource(cfg.Source)
		if err != nil {
			return err
		}
		defer internal.CloseSource(source)

		opts := cfg.RecorderOptions()
		if !recordNoCatalog {
			catalog, err := openCatalog(cfg)
			if err != nil {
				internal.LogWarn("Recording without catalog: %v", err)
			} else {
				defer catalog.Close()
				opts.Catalog = catalog
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rec := internal.NewRecorder(source, opts)
		session, err := rec.Start(ctx)
		if err != nil {
			return err
		}

		if recordHeadless {
			return runHeadless(ctx, cmd.OutOrStdout(), rec, session)
		}
		return runPanel(ctx, cmd.OutOrStdout(), cfg, rec, source, session)
	},
}

func applyRecordFlags(cmd *cobra.Command, cfg *internal.Config, args []string) error {
	if len(args) == 1 {
		cfg.SaveDir = args[0]
	}
	if cmd.Flags().Changed("strategy") {
		cfg.MergeStrategy = recordStrategy
	}
	if cmd.Flags().Changed("interval") {
		cfg.PollInterval = recordInterval
	}
	if cmd.Flags().Changed("source") {
		cfg.Source.Kind = recordSourceKind
	}
	if cmd.Flags().Changed("source-path") {
		cfg.Source.Path = recordSourcePath
	}
	if cmd.Flags().Changed("source-command") {
		cfg.Source.Command = recordSourceCommand
	}
	if cmd.Flags().Changed("source-arg") {
		cfg.Source.Args = recordSourceArgs
	}
	return cfg.Validate()
}

func runHeadless(ctx context.Context, out io.Writer, rec *internal.Recorder, session *internal.Session) error {
	internal.PrintInfo(out, fmt.Sprintf("Recording to %s (Ctrl+C to stop)", session.TranscriptPath()))
	<-ctx.Done()

	if _, err := rec.Stop(); err != nil {
		return err
	}
	printSummary(out, session)
	return nil
}

func runPanel(ctx context.Context, out io.Writer, cfg internal.Config, rec *internal.Recorder, source internal.Source, session *internal.Session) error {
	// Log lines would tear the panel; send them to a file next to the catalog.
	logPath := filepath.Join(filepath.Dir(cfg.CatalogPath), "savecaptions.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		if logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			internal.SetLogOutput(logFile)
			defer func() {
				internal.SetLogOutput(os.Stderr)
				_ = logFile.Close()
			}()
		}
	}

	p := tea.NewProgram(app.New(rec, source.Name(), session.TranscriptPath()))
	go func() {
		<-ctx.Done()
		p.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	}()

	final, err := p.Run()
	if err != nil {
		internal.LogError("Control panel failed: %v", err)
	}

	if m, ok := final.(app.Model); ok && m.Stopped() {
		if stopErr := m.StopErr(); stopErr != nil {
			return stopErr
		}
		printSummary(out, session)
		return nil
	}
	if rec.State() != internal.StateStopped {
		if _, stopErr := rec.Stop(); stopErr != nil {
			return stopErr
		}
		printSummary(out, session)
	}
	return err
}

func printSummary(out io.Writer, session *internal.Session) {
	internal.PrintSuccess(out, fmt.Sprintf("Transcript saved to %s (%d line(s))", session.TranscriptPath(), session.Emitted()))
}

func init() {
	rootCmd.AddCommand(recordCmd)
	recordCmd.Flags().BoolVar(&recordHeadless, "headless", false, "Run without the control panel; stop on SIGINT/SIGTERM")
	recordCmd.Flags().StringVar(&recordStrategy, "strategy", "", "Merge strategy: sentence or resegment")
	recordCmd.Flags().DurationVar(&recordInterval, "interval", internal.DefaultPollInterval, "Poll interval")
	recordCmd.Flags().StringVar(&recordSourceKind, "source", "", "Caption source kind: file, command or pty")
	recordCmd.Flags().StringVar(&recordSourcePath, "source-path", "", "Caption file for the file source")
	recordCmd.Flags().StringVar(&recordSourceCommand, "source-command", "", "Helper program for the command and pty sources")
	recordCmd.Flags().StringArrayVar(&recordSourceArgs, "source-arg", nil, "Argument for the helper program (repeatable)")
	recordCmd.Flags().BoolVar(&recordNoCatalog, "no-catalog", false, "Do not record the session in the catalog")
}
