package accessory

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// Host is a smart-home platform accessories are exposed on. Toggles made on
// the host come back through Accessory.SetSwitch.
type Host interface {
	// Name identifies the host in logs
	Name() string
	// Publish makes the accessory and its two switches visible
	Publish(a *Accessory) error
	// Unpublish withdraws the accessory
	Unpublish(a *Accessory) error
	// UpdateSwitch pushes an observed switch value to the host
	UpdateSwitch(a *Accessory, mode saveconnect.BoostMode, on bool)
}

// hostSet fans calls out to every registered host. A failing host does not
// stop the others.
type hostSet struct {
	mu     sync.RWMutex
	hosts  []Host
	logger *slog.Logger
}

func (hs *hostSet) add(h Host) {
	hs.mu.Lock()
	hs.hosts = append(hs.hosts, h)
	hs.mu.Unlock()
}

func (hs *hostSet) snapshot() []Host {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return append([]Host(nil), hs.hosts...)
}

func (hs *hostSet) publish(a *Accessory) {
	for _, h := range hs.snapshot() {
		if err := h.Publish(a); err != nil {
			hs.logger.Error("accessory: publish failed", "host", h.Name(), "id", a.ID(), "error", err)
		}
	}
}

func (hs *hostSet) unpublish(a *Accessory) {
	for _, h := range hs.snapshot() {
		if err := h.Unpublish(a); err != nil {
			hs.logger.Error("accessory: unpublish failed", "host", h.Name(), "id", a.ID(), "error", err)
		}
	}
}

func (hs *hostSet) updateSwitch(a *Accessory, mode saveconnect.BoostMode, on bool) {
	for _, h := range hs.snapshot() {
		h.UpdateSwitch(a, mode, on)
	}
}
