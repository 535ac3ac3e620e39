// Package workfile manages the persisted list of not-yet-downloaded URLs.
// The file holds one URL per line; lines carrying the "[FAILED] " prefix are
// URLs whose retry budget was exhausted on a previous run. The file is the
// single source of truth for remaining work, so every mutation is a full
// rewrite.
package workfile

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/asaskevich/govalidator"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// FailedPrefix tags URLs whose retry budget was exhausted.
const FailedPrefix = "[FAILED] "

var ErrWorkFileMissing = errors.New("work file not found")

// Append adds URLs to the work file, one per line, creating it lazily on
// first use. Nothing is written (and no file is created) for an empty slice.
func Append(fs afero.Fs, path string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, u := range urls {
		if _, err := fmt.Fprintln(f, u); err != nil {
			return err
		}
	}

	return nil
}

// Read returns the active URLs and the previously failed URLs (prefix
// stripped), in file order. Blank lines are skipped and lines that are not
// valid URLs are dropped with a warning.
func Read(fs afero.Fs, path string) (active, failed []string, err error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrWorkFileMissing, path)
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, FailedPrefix) {
			failed = append(failed, strings.TrimPrefix(line, FailedPrefix))
			continue
		}

		if !govalidator.IsURL(line) {
			log.WithFields(log.Fields{
				"line": line,
			}).Warn("dropping invalid URL from work file")
			continue
		}

		active = append(active, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	return active, failed, nil
}

// Write rewrites the work file from scratch: failed URLs first with their
// tag restored, then the active URLs, one per line.
func Write(fs afero.Fs, path string, active, failed []string) error {
	f, err := fs.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, u := range failed {
		if _, err := fmt.Fprintln(f, FailedPrefix+u); err != nil {
			return err
		}
	}

	for _, u := range active {
		if _, err := fmt.Fprintln(f, u); err != nil {
			return err
		}
	}

	return nil
}

// RequeueFailed strips the [FAILED] tag from every tagged URL, moving them
// back into the active list. Returns the number of URLs requeued.
func RequeueFailed(fs afero.Fs, path string) (int, error) {
	active, failed, err := Read(fs, path)
	if err != nil {
		return 0, err
	}

	if len(failed) == 0 {
		return 0, nil
	}

	if err := Write(fs, path, append(active, failed...), nil); err != nil {
		return 0, err
	}

	return len(failed), nil
}
