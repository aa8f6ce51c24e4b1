package opensubtitles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	tokenCacheKey = "opensubtitles_token"
	tokenTTL      = 24 * time.Hour
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// getToken returns a valid bearer token, logging in on cache miss.
// Simultaneous cache misses share one login call.
func (c *Client) getToken(ctx context.Context) (string, error) {
	if cached, found := c.tokenCache.Get(tokenCacheKey); found {
		return cached.(string), nil
	}

	token, err, _ := c.loginGroup.Do(tokenCacheKey, func() (interface{}, error) {
		token, err := c.login(ctx)
		if err != nil {
			return "", err
		}
		c.tokenCache.Set(tokenCacheKey, token, tokenTTL)
		return token, nil
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

// login authenticates with the provider and returns a fresh token
func (c *Client) login(ctx context.Context) (string, error) {
	c.logger.Info("Authenticating with OpenSubtitles")

	body, err := json.Marshal(loginRequest{
		Username: c.username,
		Password: c.password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}

	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(map[string]interface{}{
			"status_code": resp.StatusCode,
			"body":        string(bodyBytes),
		}).Error("OpenSubtitles authentication failed")

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return "", &AuthError{StatusCode: resp.StatusCode, Reason: "invalid credentials"}
		case http.StatusTooManyRequests:
			return "", &AuthError{StatusCode: resp.StatusCode, Reason: "rate limited"}
		default:
			return "", &AuthError{StatusCode: resp.StatusCode, Reason: "unexpected status"}
		}
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", &AuthError{Reason: fmt.Sprintf("malformed login response: %v", err)}
	}

	if loginResp.Token == "" {
		return "", &AuthError{Reason: "login response missing token"}
	}

	c.logger.Info("OpenSubtitles authentication successful")
	return loginResp.Token, nil
}
