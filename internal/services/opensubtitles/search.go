package opensubtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
)

// SearchParams are the query parameters for a subtitle search
type SearchParams struct {
	Query     string
	Languages string
	Season    *int
	Episode   *int
}

// SubtitleFile is one downloadable file within a subtitle entry
type SubtitleFile struct {
	FileID   int    `json:"file_id"`
	FileName string `json:"file_name"`
}

// SubtitleAttributes holds the attributes of a search result
type SubtitleAttributes struct {
	Language      string         `json:"language"`
	Release       string         `json:"release"`
	DownloadCount int            `json:"download_count"`
	Files         []SubtitleFile `json:"files"`
}

// Subtitle is a single subtitle search result
type Subtitle struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Attributes SubtitleAttributes `json:"attributes"`
}

type searchResponse struct {
	TotalCount int        `json:"total_count"`
	Data       []Subtitle `json:"data"`
}

// SearchSubtitles queries the provider for subtitles matching the params.
// Non-2xx responses are returned as a StatusError so callers can treat
// them as a soft failure rather than an aborting one.
func (c *Client) SearchSubtitles(ctx context.Context, params SearchParams) ([]Subtitle, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("query", params.Query)
	query.Set("languages", params.Languages)
	if params.Season != nil {
		query.Set("season", strconv.Itoa(*params.Season))
	}
	if params.Episode != nil {
		query.Set("episode", strconv.Itoa(*params.Episode))
	}

	searchURL := c.baseURL + "/subtitles?" + query.Encode()
	c.logger.WithFields(logrus.Fields{
		"query":     params.Query,
		"languages": params.Languages,
		"season":    params.Season,
		"episode":   params.Episode,
	}).Debug("Searching OpenSubtitles")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	c.setAuthHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	c.logger.WithField("count", len(searchResp.Data)).Debug("OpenSubtitles search completed")
	return searchResp.Data, nil
}
