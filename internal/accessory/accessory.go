// Package accessory manages the lifecycle of SAVE CONNECT accessories: one
// per discovered unit, each with a mode controller, a poll loop and a pair
// of switches mirrored to every registered host.
package accessory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/events"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// Accessory information reported to hosts
const (
	Manufacturer = "Systemair"
	Model        = "SAVE CONNECT"
)

// Accessory is one ventilation unit exposed as two switches
type Accessory struct {
	device     saveconnect.Device
	controller *saveconnect.Controller
	poller     *saveconnect.Poller

	// notifyMu orders state changes together with their host pushes, so
	// hosts always end on the value held in state. Taken before mu.
	notifyMu sync.Mutex

	mu          sync.RWMutex
	state       saveconnect.SwitchState
	lastReading *saveconnect.Reading
	lastError   string
	removed     bool

	hosts  *hostSet
	bus    *events.Bus
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// Snapshot is a point-in-time view of an accessory
type Snapshot struct {
	ID           string                  `json:"id"`
	DisplayName  string                  `json:"displayName"`
	Host         string                  `json:"host"`
	Manufacturer string                  `json:"manufacturer"`
	Model        string                  `json:"model"`
	Switches     saveconnect.SwitchState `json:"switches"`
	LastReading  *saveconnect.Reading    `json:"lastReading,omitempty"`
	LastError    string                  `json:"lastError,omitempty"`
}

// SwitchEvent is the payload of events.SwitchChanged
type SwitchEvent struct {
	ID     string                `json:"id"`
	Switch saveconnect.BoostMode `json:"switch"`
	On     bool                  `json:"on"`
	Source string                `json:"source"`
}

// ReadingEvent is the payload of events.ModeRead
type ReadingEvent struct {
	ID   string `json:"id"`
	Host string `json:"host"`
	saveconnect.Reading
}

// Switch change sources
const (
	SourcePoll   = "poll"
	SourceToggle = "toggle"
)

// newAccessory wires a controller and poller for dev over the transport rw,
// normally a *saveconnect.Client
func newAccessory(dev saveconnect.Device, rw Transport, interval time.Duration, hosts *hostSet, bus *events.Bus, logger *slog.Logger) *Accessory {
	logger = logger.With("accessory", dev.DisplayName)
	a := &Accessory{
		device:     dev,
		controller: saveconnect.NewController(rw, logger),
		hosts:      hosts,
		bus:        bus,
		logger:     logger,
	}
	a.poller = saveconnect.NewPoller(rw, a, interval, logger)
	a.poller.OnReading = a.recordReading
	a.poller.OnError = a.setError
	return a
}

// Transport is the device transport an accessory needs
type Transport interface {
	saveconnect.RegisterReader
	saveconnect.RegisterWriter
}

// ID returns the stable accessory identifier
func (a *Accessory) ID() string { return a.device.ID }

// DisplayName returns the accessory name
func (a *Accessory) DisplayName() string { return a.device.DisplayName }

// Device returns the underlying device record
func (a *Accessory) Device() saveconnect.Device { return a.device }

// Switches returns the current switch state
func (a *Accessory) Switches() saveconnect.SwitchState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Switch returns the current value of one switch
func (a *Accessory) Switch(mode saveconnect.BoostMode) bool {
	return a.Switches().Get(mode)
}

// Removed reports whether the accessory has been removed
func (a *Accessory) Removed() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.removed
}

// Snapshot returns a copy of the accessory's state
func (a *Accessory) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Snapshot{
		ID:           a.device.ID,
		DisplayName:  a.device.DisplayName,
		Host:         a.device.Host,
		Manufacturer: Manufacturer,
		Model:        Model,
		Switches:     a.state,
		LastError:    a.lastError,
	}
	if a.lastReading != nil {
		r := *a.lastReading
		s.LastReading = &r
	}
	return s
}

// SetSwitch handles a toggle from any host. The switch only changes locally
// once the device accepted the request; on error the previous value stays.
func (a *Accessory) SetSwitch(ctx context.Context, mode saveconnect.BoostMode, on bool) error {
	a.logger.Info("accessory: switch toggled", "switch", mode, "on", on)
	if err := a.controller.SetSwitch(ctx, mode, on); err != nil {
		a.setError(err)
		return err
	}

	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()

	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		a.logger.Debug("accessory: ignoring toggle result after removal")
		return nil
	}
	changed := a.state.Get(mode) != on
	a.state = a.state.With(mode, on)
	a.lastError = ""
	a.mu.Unlock()

	a.hosts.updateSwitch(a, mode, on)
	if changed {
		a.publish(events.SwitchChanged, SwitchEvent{ID: a.device.ID, Switch: mode, On: on, Source: SourceToggle})
	}
	return nil
}

// UpdateSwitches applies the state read back from the device. Only switches
// whose value changed are pushed to hosts.
func (a *Accessory) UpdateSwitches(s saveconnect.SwitchState) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()

	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	prev := a.state
	a.state = s
	a.lastError = ""
	a.mu.Unlock()

	for _, mode := range saveconnect.Switches {
		on := s.Get(mode)
		if prev.Get(mode) == on {
			continue
		}
		a.hosts.updateSwitch(a, mode, on)
		a.publish(events.SwitchChanged, SwitchEvent{ID: a.device.ID, Switch: mode, On: on, Source: SourcePoll})
	}
}

// PollNow reads the active mode immediately
func (a *Accessory) PollNow(ctx context.Context) (saveconnect.Reading, error) {
	r, err := a.poller.Tick(ctx)
	if err != nil {
		a.setError(err)
	}
	return r, err
}

func (a *Accessory) recordReading(r saveconnect.Reading) {
	a.mu.Lock()
	if a.removed {
		a.mu.Unlock()
		return
	}
	a.lastReading = &r
	a.mu.Unlock()
	a.publish(events.ModeRead, ReadingEvent{ID: a.device.ID, Host: a.device.Host, Reading: r})
}

func (a *Accessory) setError(err error) {
	a.mu.Lock()
	a.lastError = err.Error()
	a.mu.Unlock()
}

func (a *Accessory) publish(t events.EventType, data any) {
	if a.bus != nil {
		a.bus.Publish(events.NewEvent(t, data))
	}
}

// start runs the poll loop until stop is called or ctx ends
func (a *Accessory) start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	a.cancel = cancel
	a.done = make(chan struct{})
	done := a.done
	a.mu.Unlock()

	go func() {
		defer close(done)
		a.poller.Run(ctx)
	}()
}

// stop marks the accessory removed, ends its poll loop and waits for it.
// Requests already in flight complete but their results are dropped.
func (a *Accessory) stop() {
	a.mu.Lock()
	a.removed = true
	cancel, done := a.cancel, a.done
	a.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
