package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseCacheLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Fragment
		wantErr bool
	}{
		{"simple", "10:00:01|Hello", Fragment{Time: "10:00:01", Text: "Hello"}, false},
		{"delimiter in text", "10:00:01|a|b", Fragment{Time: "10:00:01", Text: "a|b"}, false},
		{"trailing newline", "10:00:01|Hi\r\n", Fragment{Time: "10:00:01", Text: "Hi"}, false},
		{"empty text", "10:00:01|", Fragment{Time: "10:00:01", Text: ""}, false},
		{"missing delimiter", "10:00:01 Hello", Fragment{}, true},
		{"empty timestamp", "|Hello", Fragment{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCacheLine(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCacheLine() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCacheLine() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFragmentCacheLine(t *testing.T) {
	f := NewFragment(time.Date(2025, 1, 1, 9, 5, 7, 0, time.UTC), "two\nlines\r\nhere")
	if got, want := f.CacheLine(), "09:05:07|two lines here"; got != want {
		t.Errorf("CacheLine() = %q, want %q", got, want)
	}
}

func TestCacheLog_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "2025-01-01_10-00-00_cache.tmp")
	c := NewCacheLog(path)
	defer c.Close()

	var want []Fragment
	for i := 0; i < 50; i++ {
		f := Fragment{Time: fmt.Sprintf("10:%02d:%02d", i/60, i%60), Text: fmt.Sprintf("fragment %d | with delimiter", i)}
		want = append(want, f)
		if err := c.Append(f); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := c.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() returned %d fragments, want the %d appended in order", len(got), len(want))
	}

	fromDisk, err := ReadCacheFile(path)
	if err != nil {
		t.Fatalf("ReadCacheFile() error = %v", err)
	}
	if !reflect.DeepEqual(fromDisk, want) {
		t.Errorf("ReadCacheFile() = %v, want %v", fromDisk, want)
	}
	if c.Len() != 50 {
		t.Errorf("Len() = %d, want 50", c.Len())
	}
}

func TestCacheLog_ClearAndReuse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_cache.tmp")
	c := NewCacheLog(path)
	defer c.Close()

	for _, text := range []string{"one", "two"} {
		if err := c.Append(Fragment{Time: "10:00:00", Text: text}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("cache size after Clear() = %d, want 0", info.Size())
	}
	if got, _ := c.ReadAll(); len(got) != 0 {
		t.Errorf("ReadAll() after Clear() = %v, want empty", got)
	}

	if err := c.Append(Fragment{Time: "10:00:05", Text: "three"}); err != nil {
		t.Fatalf("Append() after Clear() error = %v", err)
	}
	fromDisk, _ := ReadCacheFile(path)
	if want := []Fragment{{Time: "10:00:05", Text: "three"}}; !reflect.DeepEqual(fromDisk, want) {
		t.Errorf("ReadCacheFile() = %v, want %v", fromDisk, want)
	}
}

func TestCacheLog_DrainKeepsFragmentsOnError(t *testing.T) {
	c := NewCacheLog(filepath.Join(t.TempDir(), "x_cache.tmp"))
	defer c.Close()
	if err := c.Append(Fragment{Time: "10:00:00", Text: "kept"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	failure := errors.New("write failed")
	err := c.Drain(func(fragments []Fragment) error {
		if len(fragments) != 1 {
			t.Errorf("Drain() passed %d fragments, want 1", len(fragments))
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("Drain() error = %v, want %v", err, failure)
	}
	if c.Len() != 1 {
		t.Errorf("Len() after failed Drain() = %d, want 1", c.Len())
	}

	if err := c.Drain(func([]Fragment) error { return nil }); err != nil {
		t.Fatalf("Drain() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Drain() = %d, want 0", c.Len())
	}
}

func TestCacheLog_ReadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x_cache.tmp")
	content := "10:00:01|Hello \nnot a cache line\n\n10:00:02|world.\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := NewCacheLog(path).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := []Fragment{{Time: "10:00:01", Text: "Hello "}, {Time: "10:00:02", Text: "world."}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadAll() = %v, want %v", got, want)
	}
}

func TestCacheLog_Delete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_cache.tmp")
	c := NewCacheLog(path)
	if err := c.Append(Fragment{Time: "10:00:00", Text: "bye"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := c.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Stat() after Delete() error = %v, want not exist", err)
	}
	if err := c.Delete(); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestReadCacheFile_Missing(t *testing.T) {
	got, err := ReadCacheFile(filepath.Join(t.TempDir(), "none_cache.tmp"))
	if err != nil || got != nil {
		t.Errorf("ReadCacheFile() = %v, %v; want nil, nil", got, err)
	}
}
