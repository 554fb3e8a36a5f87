package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/Scotlight/SaveLiveCaptions/testutil"
)

func TestDetectCommand_Ready(t *testing.T) {
	p := setupEnv(t)
	captions := testutil.WriteFile(t, p.Home, "live.txt", "Hello there")
	t.Setenv("SAVECAPTIONS_SOURCE_KIND", "file")
	t.Setenv("SAVECAPTIONS_SOURCE_PATH", captions)
	testutil.WriteCacheFixture(t, p.SaveDir, "2025-01-01_10-00-00", []testutil.CacheEntry{{Time: "10:00:00", Text: "x"}})

	out, err := execute(t, "detect", "--details")
	if err != nil {
		t.Fatalf("detect error = %v\n%s", err, out)
	}
	for _, want := range []string{
		"Source available: file:" + captions,
		"Read 11 character(s)",
		"Save directory is writable",
		"Catalog holds 0 session(s)",
		"1 cache file(s) can be recovered",
		"Ready to record",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("detect output missing %q:\n%s", want, out)
		}
	}
}

func TestDetectCommand_CommandSource(t *testing.T) {
	p := setupEnv(t)
	path := filepath.Join(p.Home, "config.yaml")
	writeTestFile(t, path, `source:
  kind: command
  command: sh
  args: ["-c", "printf 'Hi there'"]
`)

	out, err := execute(t, "--config", path, "detect")
	if err != nil {
		t.Fatalf("detect error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "Read 8 character(s)") {
		t.Errorf("detect output should report the helper's text:\n%s", out)
	}
}

func TestDetectCommand_MissingCaptionFile(t *testing.T) {
	p := setupEnv(t)
	t.Setenv("SAVECAPTIONS_SOURCE_KIND", "file")
	t.Setenv("SAVECAPTIONS_SOURCE_PATH", filepath.Join(p.Home, "not-yet.txt"))

	out, err := execute(t, "detect")
	if err == nil {
		t.Fatal("detect should fail when the caption file is missing")
	}
	if !strings.Contains(out, "1 problem(s) found") {
		t.Errorf("detect output should count the failed check:\n%s", out)
	}
}

func TestDetectCommand_NoSource(t *testing.T) {
	setupEnv(t)
	out, err := execute(t, "detect")
	if err == nil {
		t.Fatal("detect should fail without a caption source")
	}
	if !strings.Contains(out, "Caption source unavailable") {
		t.Errorf("detect output should name the failing check:\n%s", out)
	}
}
