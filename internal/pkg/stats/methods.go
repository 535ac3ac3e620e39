package stats

// URLsExtractedAdd increments the URLsExtracted counter by step.
func URLsExtractedAdd(step uint64) { globalStats.URLsExtracted.incr(step) }

// URLsExtractedGet returns the current value of the URLsExtracted counter.
func URLsExtractedGet() uint64 { return globalStats.URLsExtracted.get() }

// DownloadsSucceededIncr increments the DownloadsSucceeded counter by 1.
func DownloadsSucceededIncr() { globalStats.DownloadsSucceeded.incr(1) }

// DownloadsSucceededGet returns the current value of the DownloadsSucceeded counter.
func DownloadsSucceededGet() uint64 { return globalStats.DownloadsSucceeded.get() }

// DownloadsFailedIncr increments the DownloadsFailed counter by 1.
func DownloadsFailedIncr() { globalStats.DownloadsFailed.incr(1) }

// DownloadsFailedGet returns the current value of the DownloadsFailed counter.
func DownloadsFailedGet() uint64 { return globalStats.DownloadsFailed.get() }

// DownloadsSkippedIncr increments the DownloadsSkipped counter by 1.
func DownloadsSkippedIncr() { globalStats.DownloadsSkipped.incr(1) }

// DownloadsSkippedGet returns the current value of the DownloadsSkipped counter.
func DownloadsSkippedGet() uint64 { return globalStats.DownloadsSkipped.get() }
