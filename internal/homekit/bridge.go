// Package homekit exposes accessories as HomeKit switches through a
// brutella/hap bridge.
package homekit

import (
	"context"
	"encoding/binary"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/brutella/hap"
	hapaccessory "github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
	"github.com/google/uuid"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/internal/errors"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// bridgeID is the accessory ID HomeKit reserves for the bridge itself
const bridgeID = 1

// Config configures the HomeKit bridge
type Config struct {
	Name     string
	Pin      string
	Addr     string
	StoreDir string
	Version  string
	// SetTimeout bounds a switch toggle issued from the Home app
	SetTimeout time.Duration
}

// switchHandle is one switch service and the toggle handler behind it
type switchHandle struct {
	svc   *service.Switch
	name  *characteristic.Name
	onSet func(on bool) error
}

type entry struct {
	acc      *accessory.Accessory
	a        *hapaccessory.A
	switches map[saveconnect.BoostMode]*switchHandle
}

// Bridge is an accessory.Host backed by a HAP bridge. hap serves a fixed
// set of accessories, so accessories published after Start only appear
// after a restart.
type Bridge struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	started bool
}

// NewBridge creates a HomeKit host
func NewBridge(cfg Config, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SetTimeout <= 0 {
		cfg.SetTimeout = 2 * saveconnect.DefaultRequestTimeout
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Bridge{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// Name implements accessory.Host
func (b *Bridge) Name() string { return "homekit" }

// AccessoryID maps an accessory ID onto a HAP accessory ID. IDs 0 and 1
// are reserved.
func AccessoryID(id string) uint64 {
	u, err := uuid.Parse(id)
	if err != nil {
		u = uuid.NewSHA1(uuid.NameSpaceOID, []byte(id))
	}
	n := binary.BigEndian.Uint64(u[:8])
	if n <= bridgeID {
		n += bridgeID + 1
	}
	return n
}

// Publish implements accessory.Host
func (b *Bridge) Publish(acc *accessory.Accessory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.entries[acc.ID()]; exists {
		return nil
	}

	dev := acc.Device()
	a := hapaccessory.New(hapaccessory.Info{
		Name:         dev.DisplayName,
		SerialNumber: dev.Host,
		Manufacturer: accessory.Manufacturer,
		Model:        accessory.Model,
		Firmware:     b.cfg.Version,
	}, hapaccessory.TypeFan)
	a.Id = AccessoryID(acc.ID())

	e := &entry{acc: acc, a: a, switches: make(map[saveconnect.BoostMode]*switchHandle)}
	for _, mode := range saveconnect.Switches {
		h := b.newSwitch(acc, mode)
		a.AddS(h.svc.S)
		e.switches[mode] = h
	}
	b.entries[acc.ID()] = e

	if b.started {
		b.logger.Warn("homekit: accessory published after bridge start, visible after restart", "name", dev.DisplayName)
	} else {
		b.logger.Debug("homekit: accessory published", "name", dev.DisplayName, "aid", a.Id)
	}
	return nil
}

func (b *Bridge) newSwitch(acc *accessory.Accessory, mode saveconnect.BoostMode) *switchHandle {
	svc := service.NewSwitch()

	name := characteristic.NewName()
	name.SetValue(mode.SwitchName())
	svc.AddC(name.C)
	svc.On.SetValue(acc.Switch(mode))

	h := &switchHandle{svc: svc, name: name}
	h.onSet = func(on bool) error {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.SetTimeout)
		defer cancel()
		if err := acc.SetSwitch(ctx, mode, on); err != nil {
			// hap answers -70402 (service communication failure) for any
			// error returned here
			return errors.CommunicationFailuref("%s %s: %w", acc.DisplayName(), mode, err)
		}
		return nil
	}
	svc.On.OnSetRemoteValue(h.onSet)
	return h
}

// Unpublish implements accessory.Host
func (b *Bridge) Unpublish(acc *accessory.Accessory) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.entries[acc.ID()]; !exists {
		return nil
	}
	delete(b.entries, acc.ID())
	if b.started {
		b.logger.Warn("homekit: accessory removed after bridge start, gone after restart", "name", acc.DisplayName())
	}
	return nil
}

// UpdateSwitch implements accessory.Host
func (b *Bridge) UpdateSwitch(acc *accessory.Accessory, mode saveconnect.BoostMode, on bool) {
	b.mu.Lock()
	e, ok := b.entries[acc.ID()]
	b.mu.Unlock()
	if !ok {
		return
	}
	if h, ok := e.switches[mode]; ok {
		h.svc.On.SetValue(on)
	}
}

// accessories returns the published HAP accessories ordered by ID
func (b *Bridge) accessories() []*hapaccessory.A {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*hapaccessory.A, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// Start serves the bridge until ctx is cancelled
func (b *Bridge) Start(ctx context.Context) error {
	if err := os.MkdirAll(b.cfg.StoreDir, 0o700); err != nil {
		return errors.WrapErrorf(err, "create homekit store %s", b.cfg.StoreDir)
	}

	bridge := hapaccessory.NewBridge(hapaccessory.Info{
		Name:         b.cfg.Name,
		SerialNumber: "saveconnectd",
		Manufacturer: accessory.Manufacturer,
		Model:        "saveconnectd",
		Firmware:     b.cfg.Version,
	})
	bridge.A.Id = bridgeID

	accs := b.accessories()
	server, err := hap.NewServer(hap.NewFsStore(b.cfg.StoreDir), bridge.A, accs...)
	if err != nil {
		return errors.WrapErrorf(err, "create homekit server")
	}
	server.Pin = b.cfg.Pin
	server.Addr = b.cfg.Addr

	b.mu.Lock()
	b.started = true
	b.mu.Unlock()

	b.logger.Info("homekit: bridge started", "name", b.cfg.Name, "accessories", len(accs), "addr", b.cfg.Addr)
	err = server.ListenAndServe(ctx)
	if err != nil && ctx.Err() == nil {
		return errors.LogErrorAndReturn(b.logger, err, "homekit: bridge stopped")
	}
	return nil
}
