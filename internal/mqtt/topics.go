package mqtt

import (
	"strings"

	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// Payloads used on state and availability topics
const (
	PayloadOn      = "ON"
	PayloadOff     = "OFF"
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Topics builds topic names under a prefix
type Topics struct {
	Prefix string
}

func (t Topics) join(parts ...string) string {
	return strings.TrimSuffix(t.Prefix, "/") + "/" + strings.Join(parts, "/")
}

// BridgeStatus is where the daemon's own availability is retained
func (t Topics) BridgeStatus() string {
	return t.join("bridge", "status")
}

// Available is an accessory's availability topic
func (t Topics) Available(id string) string {
	return t.join(id, "available")
}

// State is the retained state topic of one switch
func (t Topics) State(id string, mode saveconnect.BoostMode) string {
	return t.join(id, string(mode), "state")
}

// Set is the command topic of one switch
func (t Topics) Set(id string, mode saveconnect.BoostMode) string {
	return t.join(id, string(mode), "set")
}

// ParseSet splits a command topic into accessory ID and switch. ok is false
// for topics that are not command topics under the prefix.
func (t Topics) ParseSet(topic string) (id string, mode saveconnect.BoostMode, ok bool) {
	rest, found := strings.CutPrefix(topic, strings.TrimSuffix(t.Prefix, "/")+"/")
	if !found {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "set" || parts[0] == "" {
		return "", "", false
	}
	m, err := saveconnect.ParseBoostMode(parts[1])
	if err != nil || !m.IsSwitch() {
		return "", "", false
	}
	return parts[0], m, true
}

// StatePayload renders a switch value
func StatePayload(on bool) string {
	if on {
		return PayloadOn
	}
	return PayloadOff
}

// ParseSwitchPayload accepts ON/OFF, true/false and 1/0 in any case
func ParseSwitchPayload(payload []byte) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(string(payload))) {
	case "on", "true", "1":
		return true, true
	case "off", "false", "0":
		return false, true
	default:
		return false, false
	}
}
