// Package handlers provides typed Huma request/response structs and handler
// implementations for the saveconnectd HTTP API.
package handlers

import (
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/internal/errors"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// --- Accessory types ---

// SwitchesResponse is the state of the two boost switches.
type SwitchesResponse struct {
	Refresh bool `json:"refresh" doc:"Refresh (5 minutes) switch state"`
	Crowded bool `json:"crowded" doc:"Crowded (1 hour) switch state"`
}

// ReadingResponse is the API representation of an active mode read.
type ReadingResponse struct {
	Code     int              `json:"code" doc:"Raw value of the active mode register"`
	Mode     string           `json:"mode" doc:"Classified boost mode (auto, refresh, crowded)"`
	Switches SwitchesResponse `json:"switches" doc:"Switch state derived from the code"`
	At       time.Time        `json:"at" doc:"When the register was read"`
}

// AccessoryResponse is the API representation of a registered unit.
type AccessoryResponse struct {
	ID           string           `json:"id" doc:"Stable accessory identifier derived from the host"`
	Name         string           `json:"name" doc:"Display name"`
	Host         string           `json:"host" doc:"Device address"`
	Manufacturer string           `json:"manufacturer" doc:"Manufacturer"`
	Model        string           `json:"model" doc:"Model"`
	Switches     SwitchesResponse `json:"switches" doc:"Current switch state"`
	LastReading  *ReadingResponse `json:"last_reading,omitempty" doc:"Most recent successful poll"`
	LastError    string           `json:"last_error,omitempty" doc:"Most recent device error, cleared on success"`
}

// SwitchesFromState converts a saveconnect.SwitchState.
func SwitchesFromState(s saveconnect.SwitchState) SwitchesResponse {
	return SwitchesResponse{Refresh: s.Refresh, Crowded: s.Crowded}
}

// ReadingFromPoll converts a saveconnect.Reading.
func ReadingFromPoll(r saveconnect.Reading) ReadingResponse {
	return ReadingResponse{
		Code:     r.Code,
		Mode:     string(r.Mode),
		Switches: SwitchesFromState(r.State),
		At:       r.At,
	}
}

// AccessoryFromSnapshot converts an accessory snapshot.
func AccessoryFromSnapshot(s accessory.Snapshot) AccessoryResponse {
	resp := AccessoryResponse{
		ID:           s.ID,
		Name:         s.DisplayName,
		Host:         s.Host,
		Manufacturer: s.Manufacturer,
		Model:        s.Model,
		Switches:     SwitchesFromState(s.Switches),
		LastError:    s.LastError,
	}
	if s.LastReading != nil {
		r := ReadingFromPoll(*s.LastReading)
		resp.LastReading = &r
	}
	return resp
}

// --- Errors ---

// humaError maps domain errors onto HTTP status codes. Device failures are
// reported as 502 since the daemon itself is healthy.
func humaError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.IsNotFound(err):
		return huma.Error404NotFound(err.Error())
	case errors.IsInvalidInput(err):
		return huma.Error400BadRequest(err.Error())
	case errors.IsCommunicationFailure(err), errors.IsMalformedResponse(err):
		return huma.Error502BadGateway(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
