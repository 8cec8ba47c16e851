// Package client is a REST client for the saveconnectd HTTP API.
package client

import (
	"fmt"
	"time"
)

// ClientInterface defines the methods for interacting with saveconnectd.
// Used for testability and mocking in the CLI.
type ClientInterface interface {
	GetVersion() (*Version, error)
	GetAccessories() ([]Accessory, error)
	GetAccessory(id string) (*Accessory, error)
	SetSwitch(id, name string, on bool) (*Accessory, error)
	Poll(id string) (*Reading, error)
	RemoveAccessory(id string) error
	GetLogLevel() (string, error)
	SetLogLevel(level string) (string, error)
}

// Switches is the state of the two boost switches.
type Switches struct {
	Refresh bool `json:"refresh"`
	Crowded bool `json:"crowded"`
}

// Reading is one active mode read.
type Reading struct {
	Code     int       `json:"code"`
	Mode     string    `json:"mode"`
	Switches Switches  `json:"switches"`
	At       time.Time `json:"at"`
}

// Accessory is a registered SAVE CONNECT unit.
type Accessory struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Host         string   `json:"host"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
	Switches     Switches `json:"switches"`
	LastReading  *Reading `json:"last_reading,omitempty"`
	LastError    string   `json:"last_error,omitempty"`
}

// Version is the daemon build information.
type Version struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Status int
	// Detail is the problem detail from the response, or the raw body when
	// the response was not a problem document.
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.Status, e.Detail)
}
