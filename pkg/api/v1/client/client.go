// Package client provides the API client for querying the file dropbox
// server's completion ledger.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"filedropbox/internal/db/models"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 30 * time.Second

// Options contains configuration options for the API client
type Options struct {
	// BaseURL is the server base URL including any path prefix
	BaseURL string
	// Timeout is the request timeout
	Timeout time.Duration
}

// APIClient talks to the server's read-only uploads API
type APIClient struct {
	baseURL string
	http    *http.Client
}

// ListUploadsResponse is the payload of the uploads listing endpoint
type ListUploadsResponse struct {
	Uploads    []models.Upload `json:"uploads"`
	Pagination struct {
		Total int64 `json:"total"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	} `json:"pagination"`
}

// NewClient creates a new API client with the given options
func NewClient(opts Options) *APIClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &APIClient{
		baseURL: opts.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ListUploads retrieves a page of completed uploads
func (c *APIClient) ListUploads(ctx context.Context, page int) (*ListUploadsResponse, error) {
	url := fmt.Sprintf("%s/api/uploads?page=%d", c.baseURL, page)
	var out ListUploadsResponse
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUpload retrieves one completion record by upload ID
func (c *APIClient) GetUpload(ctx context.Context, id string) (*models.Upload, error) {
	url := fmt.Sprintf("%s/api/uploads/%s", c.baseURL, id)
	var out models.Upload
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthCheck verifies the server is reachable
func (c *APIClient) HealthCheck(ctx context.Context) error {
	var out map[string]string
	return c.getJSON(ctx, c.baseURL+"/health", &out)
}

func (c *APIClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
