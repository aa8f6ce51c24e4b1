package controllers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"subtitlarr/internal/models"
	"subtitlarr/internal/services/opensubtitles"
	"subtitlarr/internal/utils"
)

const maxDownloadAttempts = 3

// Outcome tells the boundary how a processing run ended
type Outcome int

const (
	// OutcomeNotFound means no subtitle could be acquired
	OutcomeNotFound Outcome = iota
	// OutcomeDownloaded means a subtitle was fetched and written to disk
	OutcomeDownloaded
	// OutcomeAlreadyHadSubtitle means a local subtitle was already present
	OutcomeAlreadyHadSubtitle
)

// rateLimitBackOff yields the delay the provider asked for on the last
// rate-limited response. Wrapped in backoff.WithMaxRetries to bound the
// download attempts.
type rateLimitBackOff struct {
	delay time.Duration
}

func (b *rateLimitBackOff) NextBackOff() time.Duration {
	if b.delay <= 0 {
		return 2 * time.Second
	}
	return b.delay
}

func (b *rateLimitBackOff) Reset() {}

// ProcessController drives subtitle acquisition for a single video record
type ProcessController struct {
	db     *models.Database
	client *opensubtitles.Client
	logger *logrus.Logger

	// sleep is swapped out in tests to avoid real rate-limit waits
	sleep func(time.Duration)
}

// NewProcessController creates a new process controller
func NewProcessController(db *models.Database, client *opensubtitles.Client, logger *logrus.Logger) *ProcessController {
	return &ProcessController{
		db:     db,
		client: client,
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Process runs the state machine for one video:
// pending/failed -> processing -> completed or failed.
// Completed videos whose subtitle is still on disk are left untouched.
// Returned errors have already been reflected in the record's status.
func (c *ProcessController) Process(ctx context.Context, video *models.Video) (Outcome, error) {
	c.logger.WithFields(logrus.Fields{
		"video_id": video.ID,
		"file":     video.FileName,
	}).Info("Processing video")

	if video.Status == models.StatusCompleted && video.SubtitlePath != "" {
		if _, err := os.Stat(video.SubtitlePath); err == nil {
			c.logger.WithField("file", video.FileName).Info("Video already completed, nothing to do")
			return OutcomeAlreadyHadSubtitle, nil
		}
	}

	// Persist the in-flight state so concurrent viewers see it
	video.Status = models.StatusProcessing
	if err := c.db.UpdateVideo(video); err != nil {
		return OutcomeNotFound, fmt.Errorf("failed to mark video as processing: %w", err)
	}

	outcome, err := c.fetchSubtitle(ctx, video)
	if err != nil {
		video.Status = models.StatusFailed
		if uerr := c.db.UpdateVideo(video); uerr != nil {
			c.logger.WithError(uerr).Error("Failed to persist failed status")
		}
		return OutcomeNotFound, err
	}

	if outcome == OutcomeNotFound {
		video.Status = models.StatusFailed
		if err := c.db.UpdateVideo(video); err != nil {
			return OutcomeNotFound, fmt.Errorf("failed to persist failed status: %w", err)
		}
	}

	return outcome, nil
}

// fetchSubtitle checks for a local subtitle first, then drives the remote
// search and download. Soft failures (no results, provider error responses)
// return OutcomeNotFound with a nil error; auth and transport failures
// propagate.
func (c *ProcessController) fetchSubtitle(ctx context.Context, video *models.Video) (Outcome, error) {
	if path, ok := utils.FindExistingSubtitle(video.FilePath); ok {
		c.logger.WithFields(logrus.Fields{
			"file":     video.FileName,
			"subtitle": path,
		}).Info("Existing subtitle found")

		// Local subtitles are Spanish by convention here
		video.Language = "es"
		video.SubtitlePath = path
		video.Status = models.StatusCompleted
		if err := c.db.UpdateVideo(video); err != nil {
			return OutcomeNotFound, fmt.Errorf("failed to persist completed status: %w", err)
		}
		return OutcomeAlreadyHadSubtitle, nil
	}

	params := opensubtitles.SearchParams{
		Query:     video.FileName,
		Languages: "spa",
	}
	if video.ContentType == models.ContentTypeTVShow {
		params.Season = video.Season
		params.Episode = video.Episode
	}

	subtitles, err := c.client.SearchSubtitles(ctx, params)
	if err != nil {
		var statusErr *opensubtitles.StatusError
		if errors.As(err, &statusErr) {
			c.logger.WithError(err).WithField("file", video.FileName).Error("Subtitle search returned an error response")
			return OutcomeNotFound, nil
		}
		return OutcomeNotFound, fmt.Errorf("subtitle search failed: %w", err)
	}

	if len(subtitles) == 0 {
		c.logger.WithField("file", video.FileName).Warn("No subtitles found")
		return OutcomeNotFound, nil
	}

	files := subtitles[0].Attributes.Files
	if len(files) == 0 {
		c.logger.WithField("file", video.FileName).Warn("Search result contains no downloadable files")
		return OutcomeNotFound, nil
	}

	return c.downloadAndSave(ctx, files[0].FileID, video)
}

// downloadAndSave requests a download link with bounded rate-limit retries,
// fetches the subtitle bytes and writes them next to the video file.
func (c *ProcessController) downloadAndSave(ctx context.Context, fileID int, video *models.Video) (Outcome, error) {
	limiter := &rateLimitBackOff{}
	policy := backoff.WithMaxRetries(limiter, maxDownloadAttempts-1)

	for attempt := 1; ; attempt++ {
		c.logger.WithFields(logrus.Fields{
			"file_id": fileID,
			"attempt": attempt,
			"max":     maxDownloadAttempts,
		}).Debug("Requesting download link")

		link, err := c.client.RequestDownload(ctx, fileID)
		if err != nil {
			var rateErr *opensubtitles.RateLimitError
			if errors.As(err, &rateErr) {
				limiter.delay = rateErr.RetryAfter
				wait := policy.NextBackOff()
				if wait == backoff.Stop {
					c.logger.WithField("file", video.FileName).Error("Download attempts exhausted")
					return OutcomeNotFound, nil
				}
				c.logger.WithFields(logrus.Fields{
					"wait":    wait,
					"attempt": attempt,
				}).Warn("Rate limited, waiting before retry")
				c.sleep(wait)
				continue
			}

			if errors.Is(err, opensubtitles.ErrMissingLink) {
				c.logger.WithError(err).Error("Download response was malformed")
				return OutcomeNotFound, nil
			}

			var statusErr *opensubtitles.StatusError
			if errors.As(err, &statusErr) {
				c.logger.WithError(err).Error("Download request rejected")
				return OutcomeNotFound, nil
			}

			return OutcomeNotFound, fmt.Errorf("download request failed: %w", err)
		}

		data, err := c.client.FetchSubtitle(ctx, link.Link)
		if err != nil {
			var statusErr *opensubtitles.StatusError
			if errors.As(err, &statusErr) {
				c.logger.WithError(err).Error("Subtitle fetch rejected")
				return OutcomeNotFound, nil
			}
			return OutcomeNotFound, fmt.Errorf("subtitle fetch failed: %w", err)
		}

		path, err := c.saveSubtitle(video, data)
		if err != nil {
			c.logger.WithError(err).WithField("file", video.FileName).Error("Failed to write subtitle file")
			return OutcomeNotFound, nil
		}

		video.SubtitlePath = path
		video.Status = models.StatusCompleted
		if err := c.db.UpdateVideo(video); err != nil {
			return OutcomeNotFound, fmt.Errorf("failed to persist completed status: %w", err)
		}

		c.logger.WithFields(logrus.Fields{
			"file":       video.FileName,
			"subtitle":   path,
			"size_bytes": len(data),
		}).Info("Subtitle downloaded")

		return OutcomeDownloaded, nil
	}
}

// saveSubtitle writes the subtitle beside the video as <base>.srt.
// The write goes to a temp file first and is renamed into place, so a
// reader never observes a partially written subtitle.
func (c *ProcessController) saveSubtitle(video *models.Video, data []byte) (string, error) {
	videoDir := filepath.Dir(video.FilePath)
	base := strings.TrimSuffix(video.FileName, filepath.Ext(video.FileName))
	finalPath := filepath.Join(videoDir, base+".srt")

	tmp, err := os.CreateTemp(videoDir, base+".srt.tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp subtitle file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write subtitle data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close temp subtitle file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move subtitle into place: %w", err)
	}

	return finalPath, nil
}
