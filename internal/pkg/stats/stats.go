// Package stats keeps the run-wide counters reported in the end-of-run
// summary.
package stats

import (
	"errors"
	"sync"
)

var ErrStatsAlreadyInitialized = errors.New("stats already initialized")

type stats struct {
	URLsExtracted      *counter
	DownloadsSucceeded *counter
	DownloadsFailed    *counter
	DownloadsSkipped   *counter
}

var (
	globalStats *stats
	doOnce      sync.Once
)

func Init() error {
	var done = false

	doOnce.Do(func() {
		globalStats = &stats{
			URLsExtracted:      &counter{},
			DownloadsSucceeded: &counter{},
			DownloadsFailed:    &counter{},
			DownloadsSkipped:   &counter{},
		}
		done = true
	})

	if !done {
		return ErrStatsAlreadyInitialized
	}

	return nil
}

func Reset() {
	globalStats.URLsExtracted.reset()
	globalStats.DownloadsSucceeded.reset()
	globalStats.DownloadsFailed.reset()
	globalStats.DownloadsSkipped.reset()
}

// GetMap returns a map of the current stats for the summary log.
func GetMap() map[string]interface{} {
	return map[string]interface{}{
		"URLs extracted":      globalStats.URLsExtracted.get(),
		"Downloads succeeded": globalStats.DownloadsSucceeded.get(),
		"Downloads failed":    globalStats.DownloadsFailed.get(),
		"Downloads skipped":   globalStats.DownloadsSkipped.get(),
	}
}
