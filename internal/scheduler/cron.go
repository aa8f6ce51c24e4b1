package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"subtitlarr/internal/controllers"
	"subtitlarr/internal/models"
)

// Scheduler manages scheduled library scans and pending-video processing
type Scheduler struct {
	cron        *cron.Cron
	scanCtrl    *controllers.ScanController
	processCtrl *controllers.ProcessController
	db          *models.Database
	mediaDir    string
	scanCron    string
	logger      *logrus.Logger
}

// NewScheduler creates a new scheduler. mediaDir may be empty, in which
// case no scheduled scans run and only pending videos are processed.
func NewScheduler(
	scanCtrl *controllers.ScanController,
	processCtrl *controllers.ProcessController,
	db *models.Database,
	mediaDir string,
	scanCron string,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		scanCtrl:    scanCtrl,
		processCtrl: processCtrl,
		db:          db,
		mediaDir:    mediaDir,
		scanCron:    scanCron,
		logger:      logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	if s.mediaDir != "" {
		if _, err := s.cron.AddFunc(s.scanCron, func() {
			s.runScan()
		}); err != nil {
			return fmt.Errorf("failed to add scan job: %w", err)
		}
	}

	// Every 30 minutes: fetch subtitles for pending videos
	if _, err := s.cron.AddFunc("*/30 * * * *", func() {
		s.runProcessPending()
	}); err != nil {
		return fmt.Errorf("failed to add processing job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Run an initial scan and processing pass immediately
	go func() {
		if s.mediaDir != "" {
			s.runScan()
		}
		s.runProcessPending()
	}()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runScan executes the scheduled library scan
func (s *Scheduler) runScan() {
	s.logger.WithField("path", s.mediaDir).Info("Running scheduled scan")

	result, err := s.scanCtrl.ScanDirectory(context.Background(), s.mediaDir)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled scan failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"found":           result.Found,
		"added":           result.Added,
		"skipped_spanish": result.SkippedSpanish,
	}).Info("Scheduled scan completed")
}

// runProcessPending fetches subtitles for all pending videos
func (s *Scheduler) runProcessPending() {
	videos, err := s.db.GetPendingVideos()
	if err != nil {
		s.logger.WithError(err).Error("Failed to get pending videos")
		return
	}

	if len(videos) == 0 {
		s.logger.Debug("No pending videos to process")
		return
	}

	s.logger.WithField("count", len(videos)).Info("Processing pending videos")

	for _, video := range videos {
		outcome, err := s.processCtrl.Process(context.Background(), video)
		if err != nil {
			s.logger.WithError(err).WithField("file", video.FileName).Error("Processing failed")
			continue
		}

		if outcome == controllers.OutcomeNotFound {
			s.logger.WithField("file", video.FileName).Warn("No subtitle acquired")
		}
	}

	s.logger.Info("Processing job completed")
}
