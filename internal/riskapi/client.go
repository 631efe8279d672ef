// Package riskapi talks to the dropout-risk backend.
package riskapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"dropoutwatch/internal/normalize"
)

// StudentSummary is one row of the student listing
type StudentSummary struct {
	RollNo string `json:"roll_no"`
	Name   string `json:"name"`
	Course string `json:"course"`
	Year   any    `json:"year"`
}

type listResponse struct {
	Total    int              `json:"total"`
	Students []StudentSummary `json:"students"`
}

type errorBody struct {
	Message string `json:"message"`
}

// Client is a thin JSON client for the backend. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. Zero disables it. The timeout is
// set on a copy, so a client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := http.Client{}
		if c.httpClient != nil {
			hc = *c.httpClient
		}
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithLogger logs each request at debug level
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c
}

// BaseURL returns the backend root this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetStudent fetches a student record. Any non-2xx answer is ErrStudentNotFound.
func (c *Client) GetStudent(ctx context.Context, rollNo string) (normalize.Record, error) {
	resp, body, err := c.do(ctx, http.MethodGet, "/api/student/"+url.PathEscape(rollNo))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student data: %w", err)
	}
	if !ok(resp.StatusCode) {
		return nil, ErrStudentNotFound
	}

	rec, err := normalize.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student data: %w", err)
	}
	return rec, nil
}

// Predict asks the backend for a dropout prediction. A non-2xx answer becomes a
// *PredictionError carrying the body's message field when there is one.
func (c *Client) Predict(ctx context.Context, rollNo string) (normalize.Record, error) {
	resp, body, err := c.do(ctx, http.MethodPost, "/api/predict/"+url.PathEscape(rollNo))
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	if !ok(resp.StatusCode) {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, &PredictionError{StatusCode: resp.StatusCode, Message: eb.Message}
	}

	rec, err := normalize.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}
	return rec, nil
}

// ListStudents returns the roll numbers known to the backend
func (c *Client) ListStudents(ctx context.Context) ([]StudentSummary, error) {
	const path = "/api/student"
	resp, body, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	if !ok(resp.StatusCode) {
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: path}
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to parse student list: %w", err)
	}
	return list.Students, nil
}

func (c *Client) do(ctx context.Context, method, path string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Debug("Backend request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug("Backend request completed", "method", method, "path", path, "request_id", requestID,
			"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	}
	return resp, body, nil
}

func ok(status int) bool {
	return status >= 200 && status < 300
}
