package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPClient represents an HTTP connection to saveconnectd
type HTTPClient struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

var _ ClientInterface = (*HTTPClient)(nil)

// NewHTTP creates a new HTTP client
func NewHTTP(logger *slog.Logger, baseURL string) *HTTPClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// request performs an HTTP request and decodes the JSON response
func (c *HTTPClient) request(method, path string, body any, resp any) error {
	u := c.baseURL + path
	c.logger.Debug("HTTP request", "method", method, "url", u)

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("HTTP request failed", "error", err)
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		c.logger.Debug("HTTP error response", "status", httpResp.StatusCode, "body", string(respBody))
		return newAPIError(httpResp.StatusCode, respBody)
	}

	if resp != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, resp); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var problem struct {
		Detail string `json:"detail"`
	}
	detail := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &problem) == nil && problem.Detail != "" {
		detail = problem.Detail
	}
	return &APIError{Status: status, Detail: detail}
}

// IsNotFound reports whether err is a 404 from the daemon
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func accessoryPath(id string, parts ...string) string {
	p := "/api/v1/accessories/" + url.PathEscape(id)
	for _, s := range parts {
		p += "/" + url.PathEscape(s)
	}
	return p
}

// GetVersion returns the running daemon's version information.
func (c *HTTPClient) GetVersion() (*Version, error) {
	var resp Version
	if err := c.request(http.MethodGet, "/api/v1/version", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccessories returns all accessories ordered by name
func (c *HTTPClient) GetAccessories() ([]Accessory, error) {
	var resp []Accessory
	if err := c.request(http.MethodGet, "/api/v1/accessories", nil, &resp); err != nil {
		return nil, err
	}
	if resp == nil {
		return []Accessory{}, nil
	}
	return resp, nil
}

// GetAccessory returns a specific accessory
func (c *HTTPClient) GetAccessory(id string) (*Accessory, error) {
	var resp Accessory
	if err := c.request(http.MethodGet, accessoryPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetSwitch turns the named boost switch ("refresh" or "crowded") on or off
func (c *HTTPClient) SetSwitch(id, name string, on bool) (*Accessory, error) {
	var resp Accessory
	body := map[string]bool{"on": on}
	if err := c.request(http.MethodPut, accessoryPath(id, "switches", name), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Poll reads the active mode of an accessory immediately
func (c *HTTPClient) Poll(id string) (*Reading, error) {
	var resp Reading
	if err := c.request(http.MethodPost, accessoryPath(id, "poll"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RemoveAccessory unregisters an accessory
func (c *HTTPClient) RemoveAccessory(id string) error {
	return c.request(http.MethodDelete, accessoryPath(id), nil, nil)
}

// GetLogLevel returns the daemon's global log level
func (c *HTTPClient) GetLogLevel() (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	if err := c.request(http.MethodGet, "/api/v1/logging/level", nil, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}

// SetLogLevel changes the daemon's global log level
func (c *HTTPClient) SetLogLevel(level string) (string, error) {
	var resp struct {
		Level string `json:"level"`
	}
	body := map[string]string{"level": level}
	if err := c.request(http.MethodPut, "/api/v1/logging/level", body, &resp); err != nil {
		return "", err
	}
	return resp.Level, nil
}
