// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

// Package api implements the client for the remote product API consumed
// by the dashboard: credential-less login, admin verification, and the
// two metrics endpoints.
//
// The client is stateless and safe for concurrent use. Every failure is
// returned as a tagged *Error (see errors.go) so callers branch on
// structure rather than message content. Rate limiting (HTTP 429) is
// handled transparently with exponential backoff.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/pantrypartner/dashboard/internal/config"
	"github.com/pantrypartner/dashboard/internal/models"
)

// maxErrorBodySize caps how much of a failed response body is read for
// error reporting, preventing unbounded allocation on large responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// MetricsFetcher is the subset of the client the metrics synchronizer
// depends on. Implemented by *Client and *CircuitBreakerClient, and by
// stubs in tests.
type MetricsFetcher interface {
	Metrics(ctx context.Context, userID string) (*models.BackendMetrics, error)
	DailyMetrics(ctx context.Context, userID string) (*models.DailyMetrics, error)
}

// Client talks to the remote product API.
//
// Authentication model: metrics and verify endpoints authenticate with
// the x-user-id header. When no user id is supplied, a configured admin
// API key is sent instead via x-admin-api-key; that path is deprecated
// and exists only for contract completeness.
type Client struct {
	baseURL        string
	adminAPIKey    string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from configuration. The HTTP timeout
// defaults to 30 seconds; a timeout surfaces as a transport failure and
// is retried by the next poll cycle.
func NewClient(cfg *config.APIConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		adminAPIKey:    cfg.AdminAPIKey,
		client:         &http.Client{Timeout: timeout},
		maxRetries:     5,
		retryBaseDelay: 1 * time.Second,
	}
}

// loginRequest is the body of POST /auth/login.
type loginRequest struct {
	Email string `json:"email"`
}

// loginResponse wraps the login payload: { user: { id, email, ... } }.
type loginResponse struct {
	User *models.Identity `json:"user"`
}

// Login performs credential-less login by email. There is no password in
// this trust model; the remote service is solely responsible for identity
// issuance. Non-2xx responses surface the body's message verbatim as an
// authentication failure; a payload missing the user identifier is a
// malformed-response failure.
func (c *Client) Login(ctx context.Context, email string) (*models.Identity, error) {
	body, err := json.Marshal(loginRequest{Email: email})
	if err != nil {
		return nil, newError(KindMalformed, fmt.Sprintf("encode login request: %v", err))
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return nil, newError(KindTransport, fmt.Sprintf("login request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(KindAuthentication, errorMessageFromBody(resp))
	}

	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, newError(KindMalformed, fmt.Sprintf("decode login response: %v", err))
	}
	if payload.User == nil || payload.User.ID == "" {
		return nil, newError(KindMalformed, "invalid response from login endpoint: user data missing")
	}

	return payload.User, nil
}

// verifyData is the data member of the verify envelope. The admin flag
// may appear at the top level or nested under user.
type verifyData struct {
	IsAdmin bool `json:"is_admin"`
	User    *struct {
		IsAdmin bool `json:"is_admin"`
	} `json:"user"`
}

// verifyResponse is the envelope of GET /admin/auth/verify.
type verifyResponse struct {
	Success bool        `json:"success"`
	Data    *verifyData `json:"data"`
}

// VerifyAdmin reports whether the given user currently holds admin
// privilege. A 401 or 403 means "not admin" and is not an error; only
// transport and decode failures are. An empty user id verifies as false
// without a network call.
func (c *Client) VerifyAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	headers := map[string]string{"x-user-id": userID}
	resp, err := c.doRequest(ctx, http.MethodGet, "/admin/auth/verify", headers, nil)
	if err != nil {
		return false, newError(KindTransport, fmt.Sprintf("verify request failed: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		return false, newError(KindTransport, fmt.Sprintf(
			"failed to verify admin status: %d - %s", resp.StatusCode, readBodyForError(resp.Body)))
	}

	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, newError(KindMalformed, fmt.Sprintf("decode verify response: %v", err))
	}
	if !payload.Success || payload.Data == nil {
		return false, nil
	}

	if payload.Data.IsAdmin {
		return true, nil
	}
	return payload.Data.User != nil && payload.Data.User.IsAdmin, nil
}

// metricsResponse is the envelope of GET /admin/metrics.
type metricsResponse struct {
	Success bool                   `json:"success"`
	Data    *models.BackendMetrics `json:"data"`
	Error   string                 `json:"error"`
}

// Metrics fetches the point-in-time metrics aggregate.
func (c *Client) Metrics(ctx context.Context, userID string) (*models.BackendMetrics, error) {
	var payload metricsResponse
	if err := c.adminGet(ctx, "/admin/metrics", userID, &payload); err != nil {
		return nil, err
	}
	if !payload.Success || payload.Data == nil {
		return nil, newError(KindMalformed, envelopeError(payload.Error, "failed to fetch metrics"))
	}
	return payload.Data, nil
}

// dailyResponse is the envelope of GET /admin/metrics/daily.
type dailyResponse struct {
	Success bool                 `json:"success"`
	Data    *models.DailyMetrics `json:"data"`
	Error   string               `json:"error"`
}

// DailyMetrics fetches the per-day metrics breakdown.
func (c *Client) DailyMetrics(ctx context.Context, userID string) (*models.DailyMetrics, error) {
	var payload dailyResponse
	if err := c.adminGet(ctx, "/admin/metrics/daily", userID, &payload); err != nil {
		return nil, err
	}
	if !payload.Success || payload.Data == nil {
		return nil, newError(KindMalformed, envelopeError(payload.Error, "failed to fetch daily metrics"))
	}
	return payload.Data, nil
}

// adminGet performs an authenticated GET against an /admin endpoint and
// decodes the 200 body into result. Status mapping: 401 is an
// authentication failure, 403 is the privilege-loss sentinel, anything
// else non-200 is transport.
func (c *Client) adminGet(ctx context.Context, path, userID string, result any) error {
	headers := make(map[string]string, 1)
	switch {
	case userID != "":
		headers["x-user-id"] = userID
	case c.adminAPIKey != "":
		// Deprecated API-key fallback, only when no identity is bound.
		headers["x-admin-api-key"] = c.adminAPIKey
	default:
		return newError(KindAuthentication, "no credentials available for admin request")
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, headers, nil)
	if err != nil {
		return newError(KindTransport, fmt.Sprintf("%s request failed: %v", path, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return newError(KindMalformed, fmt.Sprintf("decode %s response: %v", path, err))
		}
		return nil
	case http.StatusUnauthorized:
		return newError(KindAuthentication, "Unauthorized - invalid credentials")
	case http.StatusForbidden:
		return newError(KindPrivilegeLoss, "admin access revoked by server")
	default:
		return newError(KindTransport, fmt.Sprintf(
			"%s request failed with status %d: %s", path, resp.StatusCode, readBodyForError(resp.Body)))
	}
}

// doRequest performs an HTTP request with automatic rate limit handling.
// HTTP 429 responses are retried with exponential backoff (1s, 2s, 4s,
// 8s, 16s), honoring Retry-After when present. The context is used for
// cancellation during backoff waits.
func (c *Client) doRequest(ctx context.Context, method, path string, headers map[string]string, body []byte) (*http.Response, error) {
	reqURL := c.baseURL + path
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var reqBody io.Reader = http.NoBody
		if body != nil {
			reqBody = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close() // retrying anyway

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// readBodyForError reads at most maxErrorBodySize of a response body for
// diagnostics, marking truncation.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// errorBody is the shape most error responses take; either field may
// carry the message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// errorMessageFromBody extracts a human-readable message from a failed
// response, preferring the JSON error/message fields, then the raw text,
// then the HTTP status line.
func errorMessageFromBody(resp *http.Response) string {
	raw := readBodyForError(resp.Body)

	var parsed errorBody
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return "Login failed: " + resp.Status
}

// envelopeError picks the envelope's error message or a fallback.
func envelopeError(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
