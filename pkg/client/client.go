// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the paddock daemon API.
//
// paddock supervises the apps of several checkouts of one codebase. The
// client gives typed access to its loopback API.
//
// # Getting Started
//
//	c := client.New("http://127.0.0.1:7070")
//
//	// List projects and their apps
//	projects, err := c.Projects.List(ctx)
//
//	// Start a project with a runtime profile
//	project, err := c.Projects.Start(ctx, "main", "dev_alt")
//
//	// Tail an app's log buffer
//	logs, err := c.Logs.Get(ctx, "main", "api", &client.LogOptions{Lines: 50})
//
// # Error Handling
//
// API errors are returned as *APIError values:
//
//	_, err := c.Projects.Get(ctx, "unknown")
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.NotFound() {
//	    ...
//	}
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a paddock API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client

	// Projects starts, stops, and inspects projects and their apps.
	Projects *ProjectClient

	// Logs reads and streams app log buffers.
	Logs *LogClient

	// Events reads and streams lifecycle events.
	Events *EventClient

	// Profiles lists runtime profiles and sets the default.
	Profiles *ProfileClient

	// Crashes reads and removes crash reports.
	Crashes *CrashClient
}

// Option configures a [Client]. Options are passed to [New] to customize
// client behavior.
type Option func(*Client)

// New creates a client for the daemon at baseURL (e.g. "http://127.0.0.1:7070").
//
// By default the client uses [LatestVersion] and a 60-second timeout, long
// enough for a project start that has to free busy ports first.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		version: LatestVersion,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Projects = &ProjectClient{c: c}
	c.Logs = &LogClient{c: c}
	c.Events = &EventClient{c: c}
	c.Profiles = &ProfileClient{c: c}
	c.Crashes = &CrashClient{c: c}

	return c
}

// WithVersion pins the API version sent with every request.
func WithVersion(v string) Option {
	return func(c *Client) {
		c.version = v
	}
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// Version returns the API version being used.
func (c *Client) Version() string {
	return c.version
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError represents an error response from the daemon.
//
// Codes are "NOT_FOUND", "BAD_REQUEST", "SUPERVISOR_ERROR", and
// "INTERNAL_ERROR".
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// NotFound reports whether the project or app does not exist.
func (e *APIError) NotFound() bool {
	return e.Code == "NOT_FOUND"
}

// get performs a GET request to the given path.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path)
}

// post performs a POST request to the given path with no body.
func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path)
}

// put performs a PUT request to the given path with no body.
func (c *Client) put(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path)
}

// delete performs a DELETE request to the given path.
func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path)
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(VersionHeader, c.version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp)
}

// wsURL converts path into a websocket URL on the daemon.
func (c *Client) wsURL(path string) string {
	u := c.baseURL + path
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// parseResponse reads and parses an API response.
func (c *Client) parseResponse(resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Try to parse as standard envelope
	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		// If we can't parse it and status is bad, return error
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		// Return raw body for non-envelope responses
		return respBody, nil
	}

	// Check for error in envelope
	if apiResp.Error != nil {
		return nil, apiResp.Error
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return apiResp.Data, nil
}
