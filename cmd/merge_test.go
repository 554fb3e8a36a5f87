package cmd

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Scotlight/SaveLiveCaptions/testutil"
)

func TestMergeCommand(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	cache := testutil.WriteCacheFixture(t, dir, "2025-01-01_10-00-00", []testutil.CacheEntry{
		{Time: "10:00:01", Text: "Hello "},
		{Time: "10:00:02", Text: "world."},
		{Time: "10:00:03", Text: " Next"},
	})
	transcript := filepath.Join(dir, "2025-01-01_10-00-00_captions.txt")

	out, err := execute(t, "merge", cache)
	if err != nil {
		t.Fatalf("merge error = %v", err)
	}
	if !strings.Contains(out, "3 fragment(s) into 2 new line(s)") {
		t.Errorf("output = %q, want merge counts", out)
	}

	want := []string{
		"[10:00:01-10:00:02] Hello world.",
		"[10:00:03] Next",
	}
	if got := testutil.ReadLines(t, transcript); !reflect.DeepEqual(got, want) {
		t.Errorf("transcript = %q, want %q", got, want)
	}

	// The cache is kept and a second merge writes nothing new.
	if _, err := execute(t, "merge", cache); err != nil {
		t.Fatalf("second merge error = %v", err)
	}
	if got := testutil.ReadLines(t, transcript); !reflect.DeepEqual(got, want) {
		t.Errorf("transcript after second merge = %q, want %q", got, want)
	}
}

func TestMergeCommand_OutAndStrategy(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	cache := testutil.WriteCacheFixture(t, dir, "2025-01-01_10-00-00", []testutil.CacheEntry{
		{Time: "10:00:01", Text: "One. Two"},
		{Time: "10:00:05", Text: " three."},
	})
	out := filepath.Join(dir, "custom.txt")

	if _, err := execute(t, "merge", cache, "--out", out, "--strategy", "resegment"); err != nil {
		t.Fatalf("merge error = %v", err)
	}
	want := []string{
		"[10:00:01] One.",
		"[10:00:01] Two three.",
	}
	if got := testutil.ReadLines(t, out); !reflect.DeepEqual(got, want) {
		t.Errorf("transcript = %q, want %q", got, want)
	}
}

func TestMergeCommand_Errors(t *testing.T) {
	setupEnv(t)
	dir := t.TempDir()
	plain := testutil.WriteFile(t, dir, "notes.txt", "10:00:00|hi\n")
	cache := testutil.WriteCacheFixture(t, dir, "2025-01-01_10-00-00", nil)

	tests := []struct {
		name string
		args []string
	}{
		{"no argument", []string{"merge"}},
		{"unpaired cache name", []string{"merge", plain}},
		{"missing cache", []string{"merge", filepath.Join(dir, "2025-02-02_00-00-00_cache.tmp")}},
		{"bad strategy", []string{"merge", cache, "--strategy", "hybrid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Errorf("Execute(%v) should fail", tt.args)
			}
		})
	}
}
