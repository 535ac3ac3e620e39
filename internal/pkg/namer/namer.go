// Package namer deduplicates the work file and derives a collision-free
// local filename for every unique URL.
//
// Slack download links look like
// https://files.slack.com/files-pri/TAC060NK1-F08FGTZMQ9W/download/report.pdf
// so the filename is the path segment after "download" and the file ID
// (second half of the TEAM-FILE pair) disambiguates identical names.
package namer

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/slack-tools/slackfetch/internal/pkg/utils"
	"github.com/slack-tools/slackfetch/internal/pkg/workfile"
)

const (
	// defaultDownloadName is used when "download" is the last path segment.
	defaultDownloadName = "download.bin"
	// defaultFallbackName is used when the path yields no basename at all.
	defaultFallbackName = "file.bin"
)

var idPattern = regexp.MustCompile(`/([A-Z0-9]+)-([A-Z0-9]+)/download/`)

// Result is the handoff to the download executor. UniqueURLs preserves
// first-seen order; FilenameMapping maps every unique URL to a distinct
// local filename. Failed carries the [FAILED]-tagged URLs so rewrites of
// the work file do not lose them.
type Result struct {
	UniqueURLs      []string
	FilenameMapping map[string]string
	Failed          []string
}

// DedupeAndMap reads the work file, removes duplicate URLs while keeping
// first-seen order, derives a unique filename per URL, and rewrites the
// work file with the deduplicated list. A missing work file is reported as
// an error with empty results, not a crash.
func DedupeAndMap(fs afero.Fs, workFilePath string) (Result, error) {
	urls, failed, err := workfile.Read(fs, workFilePath)
	if err != nil {
		log.WithFields(log.Fields{
			"work_file": workFilePath,
			"err":       err.Error(),
		}).Error("unable to read work file")
		return Result{FilenameMapping: map[string]string{}}, err
	}

	uniqueURLs := utils.DedupeStrings(urls)

	log.WithFields(log.Fields{
		"unique": len(uniqueURLs),
		"total":  len(urls),
	}).Info("deduplicated URLs")

	mapping := buildMapping(uniqueURLs)

	if err := workfile.Write(fs, workFilePath, uniqueURLs, failed); err != nil {
		return Result{FilenameMapping: map[string]string{}}, err
	}

	return Result{
		UniqueURLs:      uniqueURLs,
		FilenameMapping: mapping,
		Failed:          failed,
	}, nil
}

type urlInfo struct {
	original string
	base     string
	ext      string
	idSuffix string
}

// buildMapping derives a filename for every URL. Filenames occurring once
// keep their original name; colliding names get the file-ID suffix, and any
// residual collision gets a numeric counter so the mapping is always
// injective.
func buildMapping(uniqueURLs []string) map[string]string {
	infos := make([]urlInfo, 0, len(uniqueURLs))
	counts := make(map[string]int)

	for _, rawURL := range uniqueURLs {
		info := deriveInfo(rawURL)
		infos = append(infos, info)
		counts[info.original]++
	}

	mapping := make(map[string]string, len(uniqueURLs))
	taken := make(map[string]bool, len(uniqueURLs))
	modified := 0

	for i, rawURL := range uniqueURLs {
		info := infos[i]

		name := info.original
		if counts[info.original] > 1 {
			name = info.base + info.idSuffix + info.ext
		}

		// Counter fallback for names the ID suffix could not split apart
		if taken[name] {
			base, ext := splitExt(name)
			for n := 2; ; n++ {
				candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
				if !taken[candidate] {
					name = candidate
					break
				}
			}
		}

		taken[name] = true
		mapping[rawURL] = name

		if name != info.original {
			modified++
		}
	}

	if modified > 0 {
		log.WithFields(log.Fields{
			"renamed": modified,
		}).Info("renamed filenames to ensure uniqueness")
	}

	return mapping
}

func deriveInfo(rawURL string) urlInfo {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		log.WithFields(log.Fields{
			"url": rawURL,
			"err": err.Error(),
		}).Warn("unparseable URL in work file")
		base, ext := splitExt(defaultFallbackName)
		return urlInfo{original: defaultFallbackName, base: base, ext: ext}
	}

	filename := originalFilename(parsed.Path)

	idSuffix := ""
	if m := idPattern.FindStringSubmatch(parsed.Path); m != nil {
		idSuffix = "-" + m[2]
	}

	base, ext := splitExt(filename)

	return urlInfo{
		original: filename,
		base:     base,
		ext:      ext,
		idSuffix: idSuffix,
	}
}

// originalFilename picks the path segment following the literal "download"
// segment, falling back to the path basename when the marker is absent.
func originalFilename(urlPath string) string {
	segments := strings.Split(urlPath, "/")

	for i, segment := range segments {
		if segment != "download" {
			continue
		}

		if i < len(segments)-1 && segments[i+1] != "" {
			return segments[i+1]
		}
		return defaultDownloadName
	}

	base := path.Base(urlPath)
	if base == "" || base == "." || base == "/" {
		return defaultFallbackName
	}
	return base
}

// splitExt splits a filename on its last dot. A trailing dot or no dot at
// all yields an empty extension.
func splitExt(filename string) (base, ext string) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return filename, ""
	}
	if idx == len(filename)-1 {
		return filename[:idx], ""
	}
	return filename[:idx], filename[idx:]
}
