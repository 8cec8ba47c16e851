// Package history records every polled ventilation mode reading in
// InfluxDB.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/jmylchreest/saveconnectd/internal/config"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultBatchSize      = 50
	defaultFlushInterval  = 10 * time.Second
)

// ErrDisabled is returned by Connect when InfluxDB is not enabled
var ErrDisabled = errors.New("influxdb: disabled")

// Client is a connected InfluxDB write API
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	logger   *slog.Logger
}

// Connect creates the client and verifies the server answers a ping
func Connect(cfg config.InfluxDBConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(defaultBatchSize).
			SetFlushInterval(uint(defaultFlushInterval.Milliseconds())))

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()
	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb: ping %s: %w", cfg.URL, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("influxdb: server %s not healthy", cfg.URL)
	}

	c := &Client{
		client:   client,
		writeAPI: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger:   logger,
	}
	go func() {
		for err := range c.writeAPI.Errors() {
			c.logger.Error("history: write failed", "error", err)
		}
	}()
	logger.Info("history: connected to influxdb", "url", cfg.URL, "bucket", cfg.Bucket)
	return c, nil
}

// WriteAPI returns the non-blocking write API
func (c *Client) WriteAPI() api.WriteAPI {
	return c.writeAPI
}

// Close flushes pending points and closes the client
func (c *Client) Close() {
	c.writeAPI.Flush()
	c.client.Close()
}
