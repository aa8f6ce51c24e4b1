package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subtitlarr/internal/api"
	"subtitlarr/internal/config"
	"subtitlarr/internal/controllers"
	"subtitlarr/internal/models"
	"subtitlarr/internal/scheduler"
	"subtitlarr/internal/services/ffprobe"
	"subtitlarr/internal/services/opensubtitles"
	"subtitlarr/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Setup logger
	logger := utils.NewLogger(cfg.LogLevel)
	logger.Info("Starting subtitlarr")

	// 3. Initialize database
	db, err := models.NewDatabase(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()
	logger.Info("Database initialized")

	// 4. Load ignore list
	ignore, err := utils.LoadIgnoreList(cfg.IgnoreFile)
	if err != nil {
		logger.WithError(err).Warn("Failed to load ignore list, continuing without it")
		ignore = &utils.IgnoreList{}
	}

	// 5. Initialize services
	prober := ffprobe.NewProber(cfg.FFprobePath, time.Duration(cfg.FFprobeTimeoutSeconds)*time.Second, logger)

	osClient, err := opensubtitles.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenSubtitles client: %w", err)
	}
	logger.Info("OpenSubtitles client initialized")

	// 6. Initialize controllers
	scanCtrl := controllers.NewScanController(db, prober, ignore, logger)
	processCtrl := controllers.NewProcessController(db, osClient, logger)
	logger.Info("Controllers initialized")

	// 7. Initialize scheduler
	sched := scheduler.NewScheduler(scanCtrl, processCtrl, db, cfg.MediaDir, cfg.ScanCron, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// 8. Initialize HTTP server
	server := api.NewServer(cfg, db, scanCtrl, processCtrl, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// 9. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("subtitlarr is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
		if err := server.Shutdown(context.Background()); err != nil {
			logger.WithError(err).Error("Error during server shutdown")
		}
	}

	logger.Info("subtitlarr stopped")
	return nil
}
