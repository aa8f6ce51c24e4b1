package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"subtitlarr/internal/api/handlers"
	"subtitlarr/internal/api/middleware"
	"subtitlarr/internal/config"
	"subtitlarr/internal/controllers"
	"subtitlarr/internal/models"
)

// Server represents the HTTP server
type Server struct {
	server      *http.Server
	db          *models.Database
	scanCtrl    *controllers.ScanController
	processCtrl *controllers.ProcessController
	logger      *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, scanCtrl *controllers.ScanController, processCtrl *controllers.ProcessController, logger *logrus.Logger) *Server {
	s := &Server{
		db:          db,
		scanCtrl:    scanCtrl,
		processCtrl: processCtrl,
		logger:      logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(mux, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.Handle("GET /health", healthHandler)

	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.Handle("GET /status", statusHandler)

	scanHandler := handlers.NewScanHandler(s.scanCtrl, s.logger)
	mux.Handle("POST /api/scan", scanHandler)

	processHandler := handlers.NewProcessHandler(s.db, s.processCtrl, s.logger)
	mux.Handle("POST /api/videos/{id}/process", processHandler)

	videosHandler := handlers.NewVideosHandler(s.db, s.logger)
	mux.Handle("GET /api/videos", videosHandler)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
