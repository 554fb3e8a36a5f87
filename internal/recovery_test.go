package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCache(t *testing.T, path string, lines ...string) {
	t.Helper()
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestMergeCacheFile(t *testing.T) {
	dir := t.TempDir()
	cache := filepath.Join(dir, "x_cache.tmp")
	out := filepath.Join(dir, "out.txt")
	writeCache(t, cache, "10:00:01|Hello ", "10:00:02|world.", "garbage", "10:00:03|Next")

	res, err := MergeCacheFile(cache, out, StrategySentence)
	if err != nil {
		t.Fatalf("MergeCacheFile() error = %v", err)
	}
	if res.Fragments != 3 || len(res.Written) != 2 {
		t.Errorf("MergeCacheFile() = %+v, want 3 fragments and 2 lines", res)
	}
	if _, err := os.Stat(cache); err != nil {
		t.Errorf("cache should be left in place: %v", err)
	}

	again, err := MergeCacheFile(cache, out, StrategySentence)
	if err != nil {
		t.Fatalf("second MergeCacheFile() error = %v", err)
	}
	if len(again.Written) != 0 {
		t.Errorf("second merge wrote %+v, want nothing", again.Written)
	}

	lines, _ := ReadTranscript(out)
	if len(lines) != 2 || lines[0].String() != "[10:00:01-10:00:02] Hello world." || lines[1].String() != "[10:00:03] Next" {
		t.Errorf("transcript = %+v", lines)
	}
}

func TestMergeCacheFile_Missing(t *testing.T) {
	dir := t.TempDir()
	_, err := MergeCacheFile(filepath.Join(dir, "none_cache.tmp"), filepath.Join(dir, "out.txt"), StrategySentence)
	var ioErr *IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("MergeCacheFile() error = %v, want IOError wrapping not-exist", err)
	}
}

func TestRecoverCache(t *testing.T) {
	dir := t.TempDir()
	files := NewSessionFiles(dir, testStart)
	writeCache(t, files.Cache, "10:00:01|Already saved.", "10:00:02|Lost line.")
	if err := NewTranscript(files.Transcript).Append([]Line{{Start: "10:00:01", Text: "Already saved."}}); err != nil {
		t.Fatal(err)
	}

	report, err := RecoverCache(files.Cache, StrategySentence)
	if err != nil {
		t.Fatalf("RecoverCache() error = %v", err)
	}
	if report.TranscriptPath != files.Transcript {
		t.Errorf("TranscriptPath = %q, want %q", report.TranscriptPath, files.Transcript)
	}
	if len(report.Result.Written) != 1 || report.Result.Written[0].Text != "Lost line." {
		t.Errorf("Written = %+v, want the lost line", report.Result.Written)
	}
	if _, err := os.Stat(files.Cache); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cache should be deleted, Stat() error = %v", err)
	}

	if _, err := RecoverCache(filepath.Join(dir, "notes.txt"), StrategySentence); err == nil {
		t.Error("RecoverCache() should reject files that are not caches")
	}
}

func TestRecoverDir(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	old := NewSessionFiles(dir, testStart)
	fresh := NewSessionFiles(dir, testStart.Add(time.Hour))
	writeCache(t, old.Cache, "09:00:00|Old words.")
	writeCache(t, fresh.Cache, "10:00:00|Live words.")
	if err := os.Chtimes(old.Cache, now.Add(-time.Hour), now.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}

	reports, err := RecoverDir(dir, StrategySentence, time.Minute, now)
	if err != nil {
		t.Fatalf("RecoverDir() error = %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("RecoverDir() = %+v, want 2 reports", reports)
	}

	if reports[0].CachePath != old.Cache || reports[0].Skipped != "" || reports[0].Err != nil {
		t.Errorf("report[0] = %+v, want recovered old cache", reports[0])
	}
	if reports[1].CachePath != fresh.Cache || reports[1].Skipped == "" {
		t.Errorf("report[1] = %+v, want skipped live cache", reports[1])
	}
	if _, err := os.Stat(fresh.Cache); err != nil {
		t.Errorf("live cache should be kept: %v", err)
	}
	if lines, _ := ReadTranscript(old.Transcript); len(lines) != 1 || lines[0].Text != "Old words." {
		t.Errorf("recovered transcript = %+v", lines)
	}

	reports, err = RecoverDir(dir, StrategySentence, 0, now)
	if err != nil || len(reports) != 1 || reports[0].Skipped != "" {
		t.Errorf("RecoverDir() without min age = %+v, %v", reports, err)
	}
}
