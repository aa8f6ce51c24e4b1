package controllers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"

	"subtitlarr/internal/models"
	"subtitlarr/internal/services/ffprobe"
	"subtitlarr/internal/utils"
)

// videoExtensions are the file extensions treated as video files
var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mkv": true,
	".mov": true,
	".wmv": true,
}

// LanguageDetector extracts audio-track language metadata from a media file
type LanguageDetector interface {
	Detect(ctx context.Context, filePath string) (*ffprobe.Result, error)
}

// ScanController walks a directory tree and registers the videos it finds
type ScanController struct {
	db     *models.Database
	prober LanguageDetector
	ignore *utils.IgnoreList
	logger *logrus.Logger
}

// NewScanController creates a new scan controller
func NewScanController(db *models.Database, prober LanguageDetector, ignore *utils.IgnoreList, logger *logrus.Logger) *ScanController {
	return &ScanController{
		db:     db,
		prober: prober,
		ignore: ignore,
		logger: logger,
	}
}

// ScanDirectory recursively scans root for video files, probes their audio
// language and creates a record per new video. Videos that already carry a
// Spanish audio track are skipped entirely. Walk errors abort the scan;
// per-file probe errors only downgrade that file to "no language detected".
func (c *ScanController) ScanDirectory(ctx context.Context, root string) (*models.ScanResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve scan path: %w", err)
	}

	c.logger.WithField("path", absRoot).Info("Starting directory scan")
	result := &models.ScanResult{}

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		result.Found++
		fileName := d.Name()

		if ignored, term := c.ignore.IsIgnored(fileName); ignored {
			c.logger.WithFields(logrus.Fields{
				"file": fileName,
				"term": term,
			}).Debug("Skipping ignored file")
			return nil
		}

		// Re-scans must not duplicate records for tracked paths
		if _, err := c.db.GetVideoByPath(path); err == nil {
			c.logger.WithField("file", fileName).Debug("Video already tracked, skipping")
			return nil
		} else if !errors.Is(err, bolthold.ErrNotFound) {
			return fmt.Errorf("failed to look up video by path: %w", err)
		}

		probe, err := c.prober.Detect(ctx, path)
		if err != nil {
			c.logger.WithError(err).WithField("file", fileName).Warn("Language detection failed, continuing without language")
			probe = &ffprobe.Result{}
		}

		if probe.HasSpanish() {
			c.logger.WithField("file", fileName).Info("Skipping video with Spanish audio")
			result.SkippedSpanish++
			return nil
		}

		content := utils.DetectContentType(fileName)
		subtitlePath, hasSubtitle := utils.FindExistingSubtitle(path)

		status := models.StatusPending
		if hasSubtitle {
			status = models.StatusCompleted
		}

		video := &models.Video{
			FilePath:     path,
			FileName:     fileName,
			Language:     probe.Primary(),
			ContentType:  content.Type,
			Season:       content.Season,
			Episode:      content.Episode,
			Status:       status,
			SubtitlePath: subtitlePath,
		}

		if err := c.db.CreateVideo(video); err != nil {
			return fmt.Errorf("failed to create video record for %s: %w", fileName, err)
		}

		result.Added++
		if hasSubtitle {
			result.WithSubtitles++
		}

		c.logger.WithFields(logrus.Fields{
			"file":     fileName,
			"language": video.Language,
			"type":     video.ContentType,
			"status":   video.Status,
		}).Info("Video registered")

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan of %s failed: %w", absRoot, err)
	}

	c.logger.WithFields(logrus.Fields{
		"found":           result.Found,
		"added":           result.Added,
		"with_subtitles":  result.WithSubtitles,
		"skipped_spanish": result.SkippedSpanish,
	}).Info("Directory scan completed")

	return result, nil
}
