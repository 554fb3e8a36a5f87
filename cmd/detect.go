package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const detectTimeout = 5 * time.Second

var (
	detectVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Check that savecaptions can record",
	Long: `Check the recording setup by verifying:
  • Config file and per-user paths
  • Caption source availability (one probe and one poll)
  • Save directory is writable
  • Session catalog is readable
  • Orphaned cache files waiting for 'savecaptions recover'

Exits with an error when recording would fail.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("SaveLiveCaptions setup check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: configuration
		step(out, 1, "Loading configuration...")
		cfg, paths, err := loadConfig()
		if err != nil {
			fail(out, "Configuration is invalid:", err)
			return err
		}
		pass(out, "Configuration loaded")
		detail(out, "Config file: %s", firstNonEmpty(configPath, paths.ConfigPath()))
		detail(out, "Save dir:    %s", cfg.SaveDir)
		detail(out, "Strategy:    %s, poll every %s", cfg.MergeStrategy, cfg.PollInterval)
		_, _ = fmt.Fprintln(out)

		problems := 0

		// Step 2: caption source
		step(out, 2, "Probing caption source...")
		if err := checkSource(cmd.Context(), out, cfg.Source); err != nil {
			fail(out, "Caption source unavailable:", err)
			problems++
		}
		_, _ = fmt.Fprintln(out)

		// Step 3: save directory
		step(out, 3, "Checking save directory...")
		if err := checkWritable(cfg.SaveDir); err != nil {
			fail(out, "Save directory is not writable:", err)
			problems++
		} else {
			pass(out, "Save directory is writable")
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: catalog
		step(out, 4, "Opening session catalog...")
		if catalog, err := openCatalog(cfg); err != nil {
			warn(out, "Catalog unavailable (recording still works):", err)
		} else {
			records, listErr := catalog.ListSessions(0)
			_ = catalog.Close()
			if listErr != nil {
				warn(out, "Catalog unreadable:", listErr)
			} else {
				pass(out, fmt.Sprintf("Catalog holds %d session(s)", len(records)))
				detail(out, "Catalog: %s", cfg.CatalogPath)
			}
		}
		_, _ = fmt.Fprintln(out)

		// Step 5: orphaned caches
		step(out, 5, "Looking for orphaned cache files...")
		orphans, err := internal.FindOrphanCaches(cfg.SaveDir)
		switch {
		case err != nil:
			warn(out, "Could not scan save directory:", err)
		case len(orphans) == 0:
			pass(out, "No orphaned cache files")
		default:
			warn(out, fmt.Sprintf("%d cache file(s) can be recovered with 'savecaptions recover'", len(orphans)), nil)
			for i, p := range orphans {
				if i == 5 {
					detail(out, "... and %d more", len(orphans)-5)
					break
				}
				detail(out, "[%d] %s", i+1, p)
			}
		}
		_, _ = fmt.Fprintln(out)

		if problems > 0 {
			_, _ = fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("❌ %d problem(s) found", problems)))
			return fmt.Errorf("setup check failed with %d problem(s)", problems)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Ready to record"))
		return nil
	},
}

func checkSource(ctx context.Context, out io.Writer, cfg internal.SourceConfig) error {
	source, err := internal.NewSource(cfg)
	if err != nil {
		return err
	}
	defer internal.CloseSource(source)

	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	if err := source.Detect(ctx); err != nil {
		return err
	}
	pass(out, "Source available: "+source.Name())

	text, ok, err := source.Poll(ctx)
	switch {
	case err != nil:
		return err
	case !ok:
		warn(out, "No caption window right now (recording waits for one)", nil)
	default:
		pass(out, fmt.Sprintf("Read %d character(s) of caption text", len([]rune(text))))
	}
	return nil
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".savecaptions-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	return errors.Join(f.Close(), os.Remove(name))
}

func step(out io.Writer, n int, msg string) {
	_, _ = fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("Step %d: %s", n, msg)))
}

func pass(out io.Writer, msg string) {
	_, _ = fmt.Fprintln(out, successStyle.Render("✅ "+msg))
}

func warn(out io.Writer, msg string, err error) {
	if err != nil {
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  "+msg), err)
		return
	}
	_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  "+msg))
}

func fail(out io.Writer, msg string, err error) {
	_, _ = fmt.Fprintln(out, errorStyle.Render("❌ "+msg), err)
}

func detail(out io.Writer, format string, args ...any) {
	if detectVerbose {
		_, _ = fmt.Fprintf(out, "   "+format+"\n", args...)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detectCmd.Flags().BoolVar(&detectVerbose, "details", false, "Show paths and orphaned cache files")
}
