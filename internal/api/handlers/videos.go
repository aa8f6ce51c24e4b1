package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"subtitlarr/internal/models"
)

const pageSize = 50

// Columns clients may sort the listing by, mapped to record fields
var sortColumns = map[string]string{
	"file_name":  "FileName",
	"language":   "Language",
	"status":     "Status",
	"created_at": "CreatedAt",
}

// VideosHandler serves the paginated video listing
type VideosHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewVideosHandler creates a new videos listing handler
func NewVideosHandler(db *models.Database, logger *logrus.Logger) *VideosHandler {
	return &VideosHandler{
		db:     db,
		logger: logger,
	}
}

// videosPage is the payload of one listing page
type videosPage struct {
	Videos  []*models.Video `json:"videos"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	Total   int             `json:"total"`
}

// ServeHTTP handles the video listing endpoint. Unknown sort columns and
// directions fall back to file_name ascending.
func (h *VideosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sortField, ok := sortColumns[r.URL.Query().Get("sort")]
	if !ok {
		sortField = sortColumns["file_name"]
	}

	descending := strings.EqualFold(r.URL.Query().Get("direction"), "desc")

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	videos, total, err := h.db.ListVideos(sortField, descending, page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list videos")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data: videosPage{
			Videos:  videos,
			Page:    page,
			PerPage: pageSize,
			Total:   total,
		},
	})
}
