package saveconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/errors"
)

// DefaultRequestTimeout bounds a single device request when no http.Client
// is supplied
const DefaultRequestTimeout = 5 * time.Second

// Client talks to the register interface of one SAVE CONNECT unit. Requests
// are never retried.
type Client struct {
	host       string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new client for the unit at host. host may carry a port.
func NewClient(host string, logger *slog.Logger, httpClient ...*http.Client) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	var hc *http.Client
	if len(httpClient) > 0 && httpClient[0] != nil {
		hc = httpClient[0]
	} else {
		hc = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &Client{
		host:       host,
		baseURL:    "http://" + urlHost(host),
		httpClient: hc,
		logger:     logger,
	}
}

// requestURL builds the URL for path with the percent-encoded payload as the
// raw query
func (c *Client) requestURL(path string, p Payload) string {
	return c.baseURL + path + "?" + url.QueryEscape(p.Encode())
}

// do issues a GET for path and returns the response on a 2xx status. The
// caller closes the body.
func (c *Client) do(ctx context.Context, path string, p Payload) (*http.Response, string, error) {
	u := c.requestURL(path, p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, u, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("device: request failed", "url", u, "error", err)
		return nil, u, errors.CommunicationFailuref("%s %s: %w", path, c.host, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.logger.Error("device: HTTP error", "url", u, "status", resp.StatusCode)
		return nil, u, errors.CommunicationFailuref("%s %s: unexpected status code %d", path, c.host, resp.StatusCode)
	}
	return resp, u, nil
}

// Write sends p to /mwrite. The response body is ignored.
func (c *Client) Write(ctx context.Context, p Payload) error {
	resp, _, err := c.do(ctx, "/mwrite", p)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	c.logger.Info("device: write", "host", c.host, "registers", p.Addresses(), "status", resp.StatusCode)
	return nil
}

// Read sends p to /mread and decodes the register values the device reports
func (c *Client) Read(ctx context.Context, p Payload) (Registers, error) {
	resp, u, err := c.do(ctx, "/mread", p)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var regs Registers
	if err := json.NewDecoder(resp.Body).Decode(&regs); err != nil {
		c.logger.Error("device: decode failed", "url", u, "error", err)
		return nil, errors.MalformedResponsef("/mread %s: %v", c.host, err)
	}
	if regs == nil {
		return nil, errors.MalformedResponsef("/mread %s: empty response", c.host)
	}

	c.logger.Debug("device: read", "url", u, "status", resp.StatusCode, "registers", regs)
	return regs, nil
}
