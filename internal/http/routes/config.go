// Package routes provides shared route registration for the saveconnectd
// HTTP API. Both the daemon and the OpenAPI generator use the same route
// definitions, so the published document always matches the server.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
)

// NewHumaConfig creates the shared Huma configuration for the API.
func NewHumaConfig(version, baseURL string) huma.Config {
	cfg := huma.DefaultConfig("saveconnectd API", version)
	cfg.Info.Description = "REST API for the Refresh and Crowded boost switches of Systemair SAVE CONNECT units managed by saveconnectd."

	// Disable $schema field in responses
	cfg.CreateHooks = nil

	if baseURL != "" {
		cfg.Servers = []*huma.Server{
			{URL: baseURL, Description: "API Server"},
		}
	}

	cfg.Tags = []*huma.Tag{
		{Name: "Accessories", Description: "Discovered units and their boost switches"},
		{Name: "Logging", Description: "Runtime log level management"},
	}

	return cfg
}
