package saveconnect

import (
	"strings"

	"github.com/google/uuid"
	"github.com/jmylchreest/saveconnectd/internal/errors"
)

// deviceNamespace scopes the name based device UUIDs
var deviceNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/jmylchreest/saveconnectd"))

// Device is a discovered SAVE CONNECT unit. Host is fixed for the lifetime of
// the device; a new address means a new device.
type Device struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Host        string `json:"host" yaml:"host"`
}

// NewDevice builds the device for a network address. The ID is derived from
// the address so the same unit keeps its identity across discovery runs.
func NewDevice(host string) Device {
	return Device{
		ID:          DeviceID(host),
		DisplayName: DisplayName(host),
		Host:        host,
	}
}

// DeviceID returns the stable identifier for a device at host
func DeviceID(host string) string {
	return uuid.NewSHA1(deviceNamespace, []byte("saveconnect-"+host)).String()
}

// DisplayName returns the default display name for a device at host
func DisplayName(host string) string {
	return "saveconnect-" + host
}

// BoostMode is a user mode of the ventilation unit
type BoostMode string

const (
	ModeAuto    BoostMode = "auto"
	ModeRefresh BoostMode = "refresh"
	ModeCrowded BoostMode = "crowded"
)

// Switches lists the modes exposed as switches, in display order
var Switches = []BoostMode{ModeRefresh, ModeCrowded}

// ParseBoostMode parses a mode name case-insensitively
func ParseBoostMode(s string) (BoostMode, error) {
	switch m := BoostMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAuto, ModeRefresh, ModeCrowded:
		return m, nil
	default:
		return "", errors.InvalidInputf("unknown mode %q", s)
	}
}

// IsSwitch reports whether m is backed by a switch
func (m BoostMode) IsSwitch() bool {
	return m == ModeRefresh || m == ModeCrowded
}

// RequestCode is the value written to RegUserModeRequest to select m
func (m BoostMode) RequestCode() int {
	switch m {
	case ModeRefresh:
		return RequestRefresh
	case ModeCrowded:
		return RequestCrowded
	default:
		return RequestAuto
	}
}

// DurationRegister returns the register and value that set the run time of
// m. ok is false for modes without a duration.
func (m BoostMode) DurationRegister() (reg Register, ok bool) {
	switch m {
	case ModeRefresh:
		return Register{Address: RegRefreshDuration, Value: RefreshDurationMinutes}, true
	case ModeCrowded:
		return Register{Address: RegCrowdedDuration, Value: CrowdedDurationHours}, true
	default:
		return Register{}, false
	}
}

// SwitchName is the name shown for the switch backing m
func (m BoostMode) SwitchName() string {
	switch m {
	case ModeRefresh:
		return "Refresh (5 minutes)"
	case ModeCrowded:
		return "Crowded (1 hour)"
	default:
		return "Auto"
	}
}

// ClassifyActiveMode maps a RegActiveUserMode value onto a mode. Any code
// other than the Refresh and Crowded ones is reported as ModeAuto.
func ClassifyActiveMode(code int) BoostMode {
	switch code {
	case ActiveRefresh:
		return ModeRefresh
	case ActiveCrowded:
		return ModeCrowded
	default:
		return ModeAuto
	}
}

// SwitchState mirrors the two switches. The device normally reports at most
// one boost mode, but nothing here enforces that.
type SwitchState struct {
	Refresh bool `json:"refresh"`
	Crowded bool `json:"crowded"`
}

// SwitchStateFor returns the switch state matching an active mode
func SwitchStateFor(m BoostMode) SwitchState {
	return SwitchState{
		Refresh: m == ModeRefresh,
		Crowded: m == ModeCrowded,
	}
}

// Get returns the state of the switch backing m
func (s SwitchState) Get(m BoostMode) bool {
	switch m {
	case ModeRefresh:
		return s.Refresh
	case ModeCrowded:
		return s.Crowded
	default:
		return false
	}
}

// With returns a copy of s with the switch backing m set to on
func (s SwitchState) With(m BoostMode, on bool) SwitchState {
	switch m {
	case ModeRefresh:
		s.Refresh = on
	case ModeCrowded:
		s.Crowded = on
	}
	return s
}
