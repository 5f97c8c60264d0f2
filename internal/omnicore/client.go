// Package omnicore talks to the local OmniMind Core command service.
package omnicore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const commandPath = "/command"

var ErrUnreachable = errors.New("OmniMind Core is unreachable")

// HTTPError is a non-2xx answer from the Core service.
type HTTPError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "HTTP error: " + e.Status
}

type commandRequest struct {
	RawCommand string `json:"raw_command"`
}

// Client posts free-text commands to the Core service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send posts raw to /command and decodes the structured result. Application
// level failures (status != "success") are returned as a Result, not an error.
func (c *Client) Send(ctx context.Context, raw string) (Result, error) {
	body, err := json.Marshal(commandRequest{RawCommand: raw})
	if err != nil {
		return Result{}, fmt.Errorf("encode command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+commandPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("core request failed", "err", err)
		return Result{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("core responded", "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &errBody) == nil {
			httpErr.Message = errBody.Message
		}
		if httpErr.Status == "" {
			httpErr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return Result{}, httpErr
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
