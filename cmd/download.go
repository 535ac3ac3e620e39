package cmd

import (
	"context"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/slack-tools/slackfetch/internal/pkg/downloader"
	"github.com/slack-tools/slackfetch/internal/pkg/workfile"
)

// runDownload executes the download phase against the work file sitting
// alongside the input path.
func runDownload(path string, isDir bool) {
	fs := afero.NewOsFs()

	dir := path
	if !isDir {
		dir = filepath.Dir(path)
	}

	workFilePath := filepath.Join(dir, cfg.URLFile)
	downloadDir := filepath.Join(dir, cfg.DownloadFolder)

	if cfg.RetryFailed {
		requeued, err := workfile.RequeueFailed(fs, workFilePath)
		if err != nil {
			log.WithFields(log.Fields{
				"work_file": workFilePath,
				"err":       err.Error(),
			}).Error("could not requeue failed URLs")
			return
		}

		if requeued > 0 {
			log.WithFields(log.Fields{
				"urls": requeued,
			}).Info("requeued previously failed URLs")
		}
	}

	d := downloader.New(fs, downloader.Options{
		UserAgent: cfg.UserAgent,
		Timeout:   time.Duration(cfg.HTTPTimeout) * time.Second,
		MaxRetry:  cfg.MaxRetry,
	})

	summary, err := d.Run(context.Background(), workFilePath, downloadDir)
	if err != nil {
		log.WithFields(log.Fields{
			"work_file": workFilePath,
			"err":       err.Error(),
		}).Error("download run exited due to error")
		return
	}

	log.WithFields(log.Fields{
		"succeeded": summary.Succeeded,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
		"total":     summary.Total(),
	}).Info("download summary")
}
