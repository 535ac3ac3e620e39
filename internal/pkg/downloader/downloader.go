// Package downloader fetches every URL remaining in the work file, one at a
// time, and checkpoints the work file after each terminal outcome so an
// interrupted run can resume.
package downloader

import (
	"context"
	"math/rand"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/slack-tools/slackfetch/internal/pkg/namer"
	"github.com/slack-tools/slackfetch/internal/pkg/stats"
	"github.com/slack-tools/slackfetch/internal/pkg/utils"
	"github.com/slack-tools/slackfetch/internal/pkg/workfile"
)

const (
	// retryBackoff is slept after the first and second failed attempts,
	// lastRetryBackoff after the third.
	retryBackoff     = 30 * time.Second
	lastRetryBackoff = 90 * time.Second

	jitterMin = 1 * time.Second
	jitterMax = 5 * time.Second
)

// Options configures a Downloader.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	MaxRetry  int
}

// Downloader processes the work file sequentially. The sleep and jitter
// functions are swappable so tests do not wait out real backoffs.
type Downloader struct {
	fs        afero.Fs
	client    httpGetter
	userAgent string
	maxRetry  int

	sleep  func(time.Duration)
	jitter func() time.Duration
}

// Summary aggregates the per-URL outcomes of one run.
type Summary struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Total returns the number of URLs that reached a terminal outcome.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// New returns a Downloader backed by real sleeps and an HTTP client
// configured from opts.
func New(fs afero.Fs, opts Options) *Downloader {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Downloader{
		fs:        fs,
		client:    newHTTPClient(opts.Timeout),
		userAgent: opts.UserAgent,
		maxRetry:  opts.MaxRetry,
		sleep:     time.Sleep,
		jitter: func() time.Duration {
			return jitterMin + time.Duration(rand.Int63n(int64(jitterMax-jitterMin)))
		},
	}
}

// Run deduplicates the work file, then walks the remaining URLs in order:
// skip if the target file exists, otherwise attempt the download with
// bounded retries. The work file is rewritten after every success, every
// permanent failure, and at the end of a skip streak, so at most the
// in-flight attempt is lost on interruption.
func (d *Downloader) Run(ctx context.Context, workFilePath, downloadDir string) (Summary, error) {
	result, err := namer.DedupeAndMap(d.fs, workFilePath)
	if err != nil {
		return Summary{}, err
	}

	if err := d.fs.MkdirAll(downloadDir, 0755); err != nil {
		return Summary{}, err
	}

	var summary Summary
	remaining := result.UniqueURLs
	skipStreak := 0

	checkpoint := func() {
		if err := workfile.Write(d.fs, workFilePath, remaining, result.Failed); err != nil {
			log.WithFields(log.Fields{
				"work_file": workFilePath,
				"err":       err.Error(),
			}).Error("unable to checkpoint work file")
		}
	}

	flushSkips := func() {
		if skipStreak == 0 {
			return
		}
		log.WithFields(log.Fields{
			"files": skipStreak,
		}).Info("skipped files that already exist")
		skipStreak = 0
		checkpoint()
	}

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			flushSkips()
			return summary, err
		}

		currentURL := remaining[0]
		filename := d.resolveFilename(result.FilenameMapping, currentURL)
		destination := filepath.Join(downloadDir, filename)

		if utils.FileExists(d.fs, destination) {
			remaining = remaining[1:]
			summary.Skipped++
			skipStreak++
			stats.DownloadsSkippedIncr()
			continue
		}

		flushSkips()

		log.WithFields(log.Fields{
			"filename": filename,
			"url":      truncateURL(currentURL),
		}).Info("downloading")

		if d.attempt(ctx, currentURL, destination) {
			remaining = remaining[1:]
			summary.Succeeded++
			stats.DownloadsSucceededIncr()
		} else {
			remaining = remaining[1:]
			result.Failed = append(result.Failed, currentURL)
			summary.Failed++
			stats.DownloadsFailedIncr()
		}
		checkpoint()
	}

	flushSkips()

	return summary, nil
}

// attempt runs the bounded retry loop for one URL. Returns true on success,
// false once the retry budget is exhausted.
func (d *Downloader) attempt(ctx context.Context, currentURL, destination string) bool {
	for attempt := 1; attempt <= d.maxRetry+1; attempt++ {
		// Politeness delay before every attempt
		d.sleep(d.jitter())

		written, err := d.fetch(ctx, currentURL, destination)
		if err == nil {
			log.WithFields(log.Fields{
				"filename": filepath.Base(destination),
				"size":     humanize.Bytes(uint64(written)),
			}).Info("successfully downloaded")
			return true
		}

		if attempt > d.maxRetry {
			log.WithFields(log.Fields{
				"url": truncateURL(currentURL),
				"err": err.Error(),
			}).Error("failed to download after retries, marking as failed")
			return false
		}

		backoff := retryBackoff
		if attempt == d.maxRetry {
			backoff = lastRetryBackoff
		}

		log.WithFields(log.Fields{
			"url":     truncateURL(currentURL),
			"attempt": attempt,
			"backoff": backoff.String(),
			"err":     err.Error(),
		}).Warn("download failed, retrying")

		d.sleep(backoff)
	}

	return false
}

// resolveFilename looks the URL up in the mapping and sanitizes the result.
// A URL without a mapping (should not normally happen) falls back to the
// path basename, then to a synthetic name.
func (d *Downloader) resolveFilename(mapping map[string]string, currentURL string) string {
	filename := mapping[currentURL]

	if filename == "" {
		if parsed, err := url.Parse(currentURL); err == nil {
			filename = path.Base(parsed.Path)
		}
		if filename == "" || filename == "." || filename == "/" || filename == "download" {
			filename = "download_" + uuid.NewString()[:8] + ".bin"
		}
	}

	return sanitizeFilename(filename)
}

// sanitizeFilename keeps only characters safe on every filesystem we care
// about: alphanumerics, dot, underscore, hyphen and space.
func sanitizeFilename(filename string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-' || r == ' ':
			return r
		}
		return -1
	}, filename)
}

// truncateURL keeps log lines readable, Slack download URLs carry long
// signed tokens.
func truncateURL(rawURL string) string {
	if len(rawURL) <= 60 {
		return rawURL
	}
	return rawURL[:60] + "..."
}
