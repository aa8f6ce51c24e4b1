package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"subtitlarr/internal/controllers"
	"subtitlarr/internal/models"
)

// ProcessHandler triggers subtitle acquisition for a single video
type ProcessHandler struct {
	db          *models.Database
	processCtrl *controllers.ProcessController
	logger      *logrus.Logger
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(db *models.Database, processCtrl *controllers.ProcessController, logger *logrus.Logger) *ProcessHandler {
	return &ProcessHandler{
		db:          db,
		processCtrl: processCtrl,
		logger:      logger,
	}
}

// ServeHTTP handles the per-video process endpoint
func (h *ProcessHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: "invalid video id",
		})
		return
	}

	video, err := h.db.GetVideoByID(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, apiResponse{
			Success: false,
			Message: fmt.Sprintf("video %d not found", id),
		})
		return
	}

	outcome, err := h.processCtrl.Process(r.Context(), video)
	if err != nil {
		h.logger.WithError(err).WithField("file", video.FileName).Error("Processing failed")
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: fmt.Sprintf("Error processing %s: %v", video.FileName, err),
			Data:    video,
		})
		return
	}

	switch outcome {
	case controllers.OutcomeDownloaded:
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Message: fmt.Sprintf("Subtitle downloaded for %s", video.FileName),
			Data:    video,
		})
	case controllers.OutcomeAlreadyHadSubtitle:
		writeJSON(w, http.StatusOK, apiResponse{
			Success: true,
			Message: fmt.Sprintf("%s already had a subtitle", video.FileName),
			Data:    video,
		})
	default:
		writeJSON(w, http.StatusOK, apiResponse{
			Success: false,
			Message: fmt.Sprintf("No subtitle found for %s", video.FileName),
			Data:    video,
		})
	}
}
