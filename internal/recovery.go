package internal

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// MergeCacheFile replays a cache file into the transcript at outPath without
// modifying the cache. Lines already present in the transcript are skipped.
func MergeCacheFile(cachePath, outPath string, strategy Strategy) (MergeResult, error) {
	if _, err := os.Stat(cachePath); err != nil {
		return MergeResult{}, &IOError{Op: "stat", Path: cachePath, Err: err}
	}
	fragments, err := ReadCacheFile(cachePath)
	if err != nil {
		return MergeResult{}, err
	}

	existing, err := TranscriptTexts(outPath)
	if err != nil {
		return MergeResult{}, err
	}
	dedup := NewDedupSet(existing...)

	res := MergeResult{Fragments: len(fragments)}
	candidates := strategy.Segment(fragments)
	res.Candidates = len(candidates)

	fresh := dedup.Filter(candidates)
	if err := NewTranscript(outPath).Append(fresh); err != nil {
		return MergeResult{}, err
	}
	res.Written = fresh
	return res, nil
}

// RecoveryReport describes what happened to one orphaned cache file
type RecoveryReport struct {
	CachePath      string
	TranscriptPath string
	Result         MergeResult
	Skipped        string
	Err            error
}

// RecoverCache merges an orphaned cache file into its paired transcript and
// deletes the cache once the transcript write succeeded.
func RecoverCache(cachePath string, strategy Strategy) (RecoveryReport, error) {
	report := RecoveryReport{CachePath: cachePath}
	transcript, ok := TranscriptForCache(cachePath)
	if !ok {
		return report, fmt.Errorf("%s is not a session cache file", cachePath)
	}
	report.TranscriptPath = transcript

	res, err := MergeCacheFile(cachePath, transcript, strategy)
	if err != nil {
		return report, err
	}
	report.Result = res

	if err := os.Remove(cachePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return report, &IOError{Op: "remove", Path: cachePath, Err: err}
	}
	return report, nil
}

// RecoverDir recovers every orphaned cache in dir. Caches modified within
// minAge are assumed to belong to a live session and are skipped.
func RecoverDir(dir string, strategy Strategy, minAge time.Duration, now time.Time) ([]RecoveryReport, error) {
	caches, err := FindOrphanCaches(dir)
	if err != nil {
		return nil, err
	}

	reports := make([]RecoveryReport, 0, len(caches))
	for _, cachePath := range caches {
		if minAge > 0 {
			info, err := os.Stat(cachePath)
			if err == nil && now.Sub(info.ModTime()) < minAge {
				reports = append(reports, RecoveryReport{CachePath: cachePath, Skipped: "recently modified"})
				continue
			}
		}

		report, err := RecoverCache(cachePath, strategy)
		if err != nil {
			LogWarn("Failed to recover %s: %v", cachePath, err)
			report.Err = err
		} else {
			LogInfo("Recovered %s: %d line(s) written", cachePath, len(report.Result.Written))
		}
		reports = append(reports, report)
	}
	return reports, nil
}
