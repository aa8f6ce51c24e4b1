package opensubtitles

import (
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"subtitlarr/internal/config"
)

const userAgent = "subtitlarr/1.0"

// Client handles communication with the OpenSubtitles REST API
type Client struct {
	baseURL    string
	apiKey     string
	username   string
	password   string
	httpClient *http.Client
	logger     *logrus.Logger

	// Token cache shared process-wide; concurrent cache misses are
	// collapsed into a single login through the singleflight group.
	tokenCache *cache.Cache
	loginGroup singleflight.Group
}

// NewClient creates a new OpenSubtitles API client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.OpenSubtitlesAPIKey == "" {
		return nil, fmt.Errorf("opensubtitles API key is required")
	}
	if cfg.OpenSubtitlesUsername == "" || cfg.OpenSubtitlesPassword == "" {
		return nil, fmt.Errorf("opensubtitles credentials are required")
	}

	return &Client{
		baseURL:  cfg.OpenSubtitlesURL,
		apiKey:   cfg.OpenSubtitlesAPIKey,
		username: cfg.OpenSubtitlesUsername,
		password: cfg.OpenSubtitlesPassword,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:     logger,
		tokenCache: cache.New(tokenTTL, time.Hour),
	}, nil
}

// setAuthHeaders sets the headers every authenticated request carries
func (c *Client) setAuthHeaders(req *http.Request, token string) {
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
}
