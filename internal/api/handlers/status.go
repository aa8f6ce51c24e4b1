package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"subtitlarr/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalVideos  int            `json:"total_videos"`
	Pending      int            `json:"pending"`
	Processing   int            `json:"processing"`
	Completed    int            `json:"completed"`
	Failed       int            `json:"failed"`
	VideosByType map[string]int `json:"videos_by_type"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	videos, err := h.db.GetAllVideos()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get videos")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalVideos:  len(videos),
		VideosByType: make(map[string]int),
	}

	for _, video := range videos {
		switch video.Status {
		case models.StatusPending:
			response.Pending++
		case models.StatusProcessing:
			response.Processing++
		case models.StatusCompleted:
			response.Completed++
		case models.StatusFailed:
			response.Failed++
		}

		response.VideosByType[string(video.ContentType)]++
	}

	writeJSON(w, http.StatusOK, response)
}
