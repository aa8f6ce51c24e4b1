package opensubtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Subtitle files are small; anything bigger than this is not a subtitle.
const maxSubtitleSize = 10 * 1024 * 1024

type downloadRequest struct {
	FileID        int    `json:"file_id"`
	SubFormat     string `json:"sub_format"`
	ForceDownload int    `json:"force_download"`
}

// DownloadLink is the provider's answer to a download request
type DownloadLink struct {
	Link      string `json:"link"`
	FileName  string `json:"file_name"`
	Requests  int    `json:"requests"`
	Remaining int    `json:"remaining"`
}

// RequestDownload asks the provider for a download link for the given file,
// pinned to srt format. A 406 response, or a response with an exhausted
// rate-limit quota, is returned as a RateLimitError carrying the
// provider-requested wait. A 2xx response without a link is ErrMissingLink.
func (c *Client) RequestDownload(ctx context.Context, fileID int) (*DownloadLink, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(downloadRequest{
		FileID:        fileID,
		SubFormat:     "srt",
		ForceDownload: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal download request: %w", err)
	}

	c.logger.WithField("file_id", fileID).Debug("Requesting subtitle download link")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}
	c.setAuthHeaders(req, token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)

		if resp.StatusCode == http.StatusNotAcceptable || resp.Header.Get("Ratelimit-Remaining") == "0" {
			return nil, &RateLimitError{
				StatusCode: resp.StatusCode,
				RetryAfter: retryAfter(resp),
			}
		}

		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var link DownloadLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("failed to decode download response: %w", err)
	}

	if link.Link == "" {
		return nil, ErrMissingLink
	}

	c.logger.WithFields(logrus.Fields{
		"file_id":   fileID,
		"remaining": link.Remaining,
	}).Debug("Download link obtained")

	return &link, nil
}

// retryAfter derives the wait before the next attempt from the rate-limit
// reset header, falling back to a fixed pause when the header is absent.
func retryAfter(resp *http.Response) time.Duration {
	if reset := resp.Header.Get("Ratelimit-Reset"); reset != "" {
		if seconds, err := strconv.Atoi(reset); err == nil {
			return time.Duration(seconds+1) * time.Second
		}
	}
	return 2 * time.Second
}

// FetchSubtitle downloads the raw subtitle bytes from a link returned by
// RequestDownload.
func (c *Client) FetchSubtitle(ctx context.Context, link string) ([]byte, error) {
	c.logger.WithField("url", link).Debug("Fetching subtitle file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create subtitle fetch request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subtitle fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: "subtitle fetch failed"}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSubtitleSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle content: %w", err)
	}

	c.logger.WithField("size_bytes", len(data)).Debug("Subtitle file fetched")
	return data, nil
}
