package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"subtitlarr/internal/controllers"
)

// ScanHandler triggers directory scans
type ScanHandler struct {
	scanCtrl *controllers.ScanController
	logger   *logrus.Logger
}

// NewScanHandler creates a new scan handler
func NewScanHandler(scanCtrl *controllers.ScanController, logger *logrus.Logger) *ScanHandler {
	return &ScanHandler{
		scanCtrl: scanCtrl,
		logger:   logger,
	}
}

type scanRequest struct {
	Path string `json:"path"`
}

// ServeHTTP handles the scan endpoint
func (h *ScanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, apiResponse{
			Success: false,
			Message: "path is required",
		})
		return
	}

	result, err := h.scanCtrl.ScanDirectory(r.Context(), req.Path)
	if err != nil {
		h.logger.WithError(err).WithField("path", req.Path).Error("Scan failed")
		writeJSON(w, http.StatusInternalServerError, apiResponse{
			Success: false,
			Message: fmt.Sprintf("Error scanning directory: %v", err),
		})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: fmt.Sprintf("Scan completed. Found %d videos, %d added for subtitle tracking.", result.Found, result.Added),
		Data:    result,
	})
}
