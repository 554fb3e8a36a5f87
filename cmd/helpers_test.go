package cmd

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/Scotlight/SaveLiveCaptions/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type testPaths struct {
	Home    string
	SaveDir string
	Catalog string
}

// setupEnv points every per-user path at a temporary home
func setupEnv(t *testing.T) testPaths {
	t.Helper()
	home := t.TempDir()
	p := testPaths{
		Home:    home,
		SaveDir: filepath.Join(home, "captions"),
		Catalog: filepath.Join(home, "data", "catalog.sqlite"),
	}
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("SAVECAPTIONS_SAVE_DIR", p.SaveDir)
	t.Setenv("SAVECAPTIONS_CATALOG_PATH", p.Catalog)
	for _, key := range []string{
		"SAVECAPTIONS_MERGE_STRATEGY",
		"SAVECAPTIONS_LOG_LEVEL",
		"SAVECAPTIONS_SOURCE_KIND",
		"SAVECAPTIONS_SOURCE_PATH",
		"SAVECAPTIONS_SOURCE_COMMAND",
		"SAVECAPTIONS_POLL_INTERVAL",
		"SAVECAPTIONS_MIN_FRAGMENT_LENGTH",
	} {
		t.Setenv(key, "")
	}
	return p
}

// execute runs the root command with args and returns its combined output.
// Flags are reset first because cobra keeps parsed values between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// seedCatalog records one finished session with lines in both the
// transcript file and the catalog
func seedCatalog(t *testing.T, p testPaths, id string, started time.Time, lines ...internal.Line) string {
	t.Helper()
	files := internal.NewSessionFiles(p.SaveDir, started)
	if err := internal.NewTranscript(files.Transcript).Append(lines); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	catalog, err := internal.OpenCatalog(p.Catalog)
	if err != nil {
		t.Fatalf("OpenCatalog() error = %v", err)
	}
	defer catalog.Close()

	rec := internal.SessionRecord{
		ID:             id,
		Dir:            p.SaveDir,
		TranscriptPath: files.Transcript,
		Strategy:       string(internal.StrategySentence),
		StartedAt:      started,
	}
	if err := catalog.CreateSession(rec); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if err := catalog.AppendLines(id, lines); err != nil {
		t.Fatalf("AppendLines() error = %v", err)
	}
	if err := catalog.EndSession(id, started.Add(time.Minute)); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	return files.Transcript
}
