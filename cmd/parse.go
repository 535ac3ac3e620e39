package cmd

import (
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/slack-tools/slackfetch/internal/pkg/extractor"
)

// runParse executes the extraction phase. The work file is written next to
// the input JSON, so a later download run can find it without extra flags.
func runParse(path string, isDir bool) {
	fs := afero.NewOsFs()

	if isDir {
		total, err := extractor.ExtractDir(fs, path, cfg.URLFile, cfg.ScanText)
		if err != nil {
			log.WithFields(log.Fields{
				"path": path,
				"err":  err.Error(),
			}).Error("extraction aborted")
			return
		}

		log.WithFields(log.Fields{
			"urls": total,
		}).Info("total URLs extracted")
		return
	}

	workFile := filepath.Join(filepath.Dir(path), cfg.URLFile)
	count, err := extractor.Extract(fs, path, workFile, cfg.ScanText)
	if err != nil {
		return
	}

	log.WithFields(log.Fields{
		"file": path,
		"urls": count,
	}).Info("URLs extracted")
}
