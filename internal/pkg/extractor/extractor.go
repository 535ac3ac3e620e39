// Package extractor scans exported Slack message records for file download
// links and appends them to the work file.
package extractor

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"mvdan.cc/xurls/v2"

	"github.com/slack-tools/slackfetch/internal/pkg/stats"
	"github.com/slack-tools/slackfetch/internal/pkg/workfile"
)

// downloadURLKey is the attachment metadata field Slack exports use for the
// authenticated download link.
const downloadURLKey = "url_private_download"

var linkRegex = xurls.Strict()

// Extract parses one JSON export file and appends every collected download
// URL to the work file, one per line. Errors are logged and reported back
// with a zero count so a directory batch can keep going.
func Extract(fs afero.Fs, path, workFilePath string, scanText bool) (int, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		log.WithFields(log.Fields{
			"file": path,
			"err":  err.Error(),
		}).Error("unable to read input file")
		return 0, err
	}

	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		log.WithFields(log.Fields{
			"file": path,
			"err":  err.Error(),
		}).Error("input file contains invalid JSON")
		return 0, err
	}

	// Exports come either as a single record or a list of records
	records, ok := parsed.([]interface{})
	if !ok {
		records = []interface{}{parsed}
	}

	var urls []string
	for _, record := range records {
		item, ok := record.(map[string]interface{})
		if !ok {
			continue
		}

		urls = append(urls, recordURLs(item, scanText)...)
	}

	if err := workfile.Append(fs, workFilePath, urls); err != nil {
		log.WithFields(log.Fields{
			"work_file": workFilePath,
			"err":       err.Error(),
		}).Error("unable to append URLs to work file")
		return 0, err
	}

	stats.URLsExtractedAdd(uint64(len(urls)))

	return len(urls), nil
}

// recordURLs collects the download URLs of a single record: the
// url_private_download of every attachment in its files list, then, when
// text scanning is on, any download link pasted in the message text.
func recordURLs(item map[string]interface{}, scanText bool) (urls []string) {
	if files, ok := item["files"].([]interface{}); ok {
		for _, file := range files {
			fileInfo, ok := file.(map[string]interface{})
			if !ok {
				continue
			}

			if u, ok := fileInfo[downloadURLKey].(string); ok {
				urls = append(urls, u)
			}
		}
	}

	if scanText {
		if text, ok := item["text"].(string); ok {
			for _, match := range linkRegex.FindAllString(text, -1) {
				if isDownloadLink(match) {
					urls = append(urls, match)
				}
			}
		}
	}

	return urls
}

// isDownloadLink keeps only links that point at a file download, the same
// path shape the files list carries.
func isDownloadLink(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return strings.Contains(parsed.Path, "/download/")
}

// ExtractDir runs Extract over every *.json file directly inside dir
// (subdirectories are not visited). A single file's failure does not halt
// the batch. Returns the total count of URLs extracted.
func ExtractDir(fs afero.Fs, dir, urlFileName string, scanText bool) (int, error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return 0, err
	}

	var jsonFiles []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			jsonFiles = append(jsonFiles, entry.Name())
		}
	}

	if len(jsonFiles) == 0 {
		log.WithFields(log.Fields{
			"dir": dir,
		}).Warn("no JSON files found in directory")
		return 0, nil
	}

	log.WithFields(log.Fields{
		"dir":   dir,
		"files": len(jsonFiles),
	}).Info("processing JSON files")

	workFilePath := filepath.Join(dir, urlFileName)

	total := 0
	for _, name := range jsonFiles {
		count, err := Extract(fs, filepath.Join(dir, name), workFilePath, scanText)
		if err != nil {
			continue
		}

		total += count
		log.WithFields(log.Fields{
			"file": name,
			"urls": count,
		}).Info("URLs extracted")
	}

	return total, nil
}
