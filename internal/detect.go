package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// SessionStampLayout names a session's files after its start time
const SessionStampLayout = "2006-01-02_15-04-05"

const (
	cacheSuffix      = "_cache.tmp"
	transcriptSuffix = "_captions.txt"
)

// maxStampSuffix bounds the search for a free session name in one directory
const maxStampSuffix = 1000

// AppPaths holds the per-user locations used by savecaptions
type AppPaths struct {
	ConfigDir   string // holds config.yaml
	DataDir     string // holds the session catalog
	CaptionsDir string // default parent for recordings
}

// DetectAppPaths resolves the per-user directories for the current operating system
func DetectAppPaths() (AppPaths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return AppPaths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var configDir, dataDir string
	switch runtime.GOOS {
	case "darwin":
		configDir = filepath.Join(home, "Library/Application Support/SaveLiveCaptions")
		dataDir = configDir
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "SaveLiveCaptions")
		dataDir = configDir
	default:
		configDir = filepath.Join(xdgDir("XDG_CONFIG_HOME", filepath.Join(home, ".config")), "savecaptions")
		dataDir = filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), "savecaptions")
	}

	return AppPaths{
		ConfigDir:   configDir,
		DataDir:     dataDir,
		CaptionsDir: filepath.Join(home, "Documents", "LiveCaptions"),
	}, nil
}

func xdgDir(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// ConfigPath returns the default config file path
func (p AppPaths) ConfigPath() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// CatalogPath returns the default session catalog path
func (p AppPaths) CatalogPath() string {
	return filepath.Join(p.DataDir, "catalog.sqlite")
}

// SessionFiles are the paths a session writes to
type SessionFiles struct {
	Dir        string
	Stamp      string
	Cache      string
	Transcript string
}

// NewSessionFiles names the cache and transcript files for a session started at t
func NewSessionFiles(dir string, t time.Time) SessionFiles {
	return sessionFilesForStamp(dir, t.Format(SessionStampLayout))
}

func sessionFilesForStamp(dir, stamp string) SessionFiles {
	return SessionFiles{
		Dir:        dir,
		Stamp:      stamp,
		Cache:      filepath.Join(dir, stamp+cacheSuffix),
		Transcript: filepath.Join(dir, stamp+transcriptSuffix),
	}
}

// ReserveSessionFiles names the files for a new session started at t and
// creates its empty cache file. Names already taken by a cache or transcript
// in dir get a "-2", "-3", ... suffix, so a new session never reuses the
// files of an earlier one.
func ReserveSessionFiles(dir string, t time.Time) (SessionFiles, error) {
	base := NewSessionFiles(dir, t)
	for n := 1; n <= maxStampSuffix; n++ {
		files := base
		if n > 1 {
			files = sessionFilesForStamp(dir, fmt.Sprintf("%s-%d", base.Stamp, n))
		}

		if _, err := os.Lstat(files.Transcript); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return SessionFiles{}, &IOError{Op: "stat", Path: files.Transcript, Err: err}
		}

		f, err := os.OpenFile(files.Cache, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return SessionFiles{}, &IOError{Op: "create", Path: files.Cache, Err: err}
		}
		if err := f.Close(); err != nil {
			return SessionFiles{}, &IOError{Op: "close", Path: files.Cache, Err: err}
		}
		return files, nil
	}
	return SessionFiles{}, fmt.Errorf("no free session name for %s in %s", base.Stamp, dir)
}

// TranscriptForCache returns the transcript path paired with a cache file
func TranscriptForCache(cachePath string) (string, bool) {
	base, ok := strings.CutSuffix(cachePath, cacheSuffix)
	if !ok {
		return "", false
	}
	return base + transcriptSuffix, true
}

// IsTranscriptFile reports whether path follows the transcript naming scheme
func IsTranscriptFile(path string) bool {
	return strings.HasSuffix(path, transcriptSuffix)
}

// FindOrphanCaches lists cache files left in dir, oldest first
func FindOrphanCaches(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+cacheSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}
