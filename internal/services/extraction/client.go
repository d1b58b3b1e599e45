// Package extraction runs remote extraction jobs through the Apify actor API.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Apify API.
	DefaultBaseURL = "https://api.apify.com"

	// DefaultTimeout is the default HTTP timeout for a single request.
	DefaultTimeout = 60 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 2
)

// Actor run terminal statuses
const (
	runStatusSucceeded = "SUCCEEDED"
	runStatusFailed    = "FAILED"
	runStatusAborted   = "ABORTED"
	runStatusTimedOut  = "TIMED-OUT"
)

// Client is an Apify API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Apify API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the Apify API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apify API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// actorRun is the run envelope returned by the runs endpoints
type actorRun struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
	StatusMessage    string `json:"statusMessage"`
}

type runEnvelope struct {
	Data actorRun `json:"data"`
}

// StartRun launches an actor run with the given input.
func (c *Client) StartRun(ctx context.Context, actorID string, input map[string]interface{}) (*actorRun, error) {
	var envelope runEnvelope
	path := fmt.Sprintf("/v2/acts/%s/runs", actorID)
	if err := c.do(ctx, http.MethodPost, path, input, &envelope); err != nil {
		return nil, fmt.Errorf("failed to start actor run: %w", err)
	}
	return &envelope.Data, nil
}

// GetRun fetches the current state of an actor run.
func (c *Client) GetRun(ctx context.Context, runID string) (*actorRun, error) {
	var envelope runEnvelope
	path := fmt.Sprintf("/v2/actor-runs/%s", runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, fmt.Errorf("failed to get actor run: %w", err)
	}
	return &envelope.Data, nil
}

// GetDatasetItems fetches the items collected by a finished run.
func (c *Client) GetDatasetItems(ctx context.Context, datasetID string) ([]map[string]interface{}, error) {
	var items []map[string]interface{}
	path := fmt.Sprintf("/v2/datasets/%s/items?clean=true", datasetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, fmt.Errorf("failed to fetch dataset items: %w", err)
	}
	return items, nil
}

// do performs a request against the API.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("method", method).
			Str("url", c.baseURL+path).
			Msg("Apify API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
