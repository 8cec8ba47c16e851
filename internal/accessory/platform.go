package accessory

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/errors"
	"github.com/jmylchreest/saveconnectd/internal/events"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// Options configures a Platform
type Options struct {
	// Name is the platform name used in logs
	Name         string
	PollInterval time.Duration
	// HTTPClient is shared by every device client. nil selects a client
	// with saveconnect.DefaultRequestTimeout.
	HTTPClient *http.Client
	Cache      *Cache
	Bus        *events.Bus
	Logger     *slog.Logger

	// NewTransport overrides the device transport, for tests
	NewTransport func(host string) Transport
}

// Platform owns all accessories. Accessories are created from discovered
// addresses, restored from the cache, or removed when a cached unit was not
// discovered again.
type Platform struct {
	opts   Options
	hosts  *hostSet
	logger *slog.Logger

	mu          sync.RWMutex
	accessories map[string]*Accessory
	cached      map[string]saveconnect.Device
}

// SetupResult lists what a Setup call did, by accessory ID
type SetupResult struct {
	Added    []string `json:"added"`
	Restored []string `json:"restored"`
	Removed  []string `json:"removed"`
}

// NewPlatform creates a platform publishing to hosts
func NewPlatform(opts Options, hosts ...Host) *Platform {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = saveconnect.DefaultPollInterval
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: saveconnect.DefaultRequestTimeout}
	}
	return &Platform{
		opts:        opts,
		hosts:       &hostSet{hosts: hosts, logger: opts.Logger},
		logger:      opts.Logger,
		accessories: make(map[string]*Accessory),
		cached:      make(map[string]saveconnect.Device),
	}
}

// AddHost registers another host. Hosts should be added before Setup.
func (p *Platform) AddHost(h Host) {
	p.hosts.add(h)
}

// ConfigureCached records a device known from a previous run
func (p *Platform) ConfigureCached(dev saveconnect.Device) {
	p.logger.Info("platform: loading accessory from cache", "name", dev.DisplayName)
	p.mu.Lock()
	p.cached[dev.ID] = dev
	p.mu.Unlock()
}

// LoadCache reads the accessory cache and records each entry with
// ConfigureCached
func (p *Platform) LoadCache() error {
	devs, err := p.opts.Cache.Load()
	if err != nil {
		return err
	}
	for _, d := range devs {
		p.ConfigureCached(d)
	}
	return nil
}

func (p *Platform) transport(host string) Transport {
	if p.opts.NewTransport != nil {
		return p.opts.NewTransport(host)
	}
	return saveconnect.NewClient(host, p.logger, p.opts.HTTPClient)
}

// Setup registers an accessory for each discovered address and starts its
// poll loop on ctx. Addresses already registered are skipped. Cached
// accessories that were not discovered are removed afterwards.
func (p *Platform) Setup(ctx context.Context, addrs []string) SetupResult {
	var res SetupResult
	seen := make(map[string]bool, len(addrs))

	for _, addr := range addrs {
		dev := saveconnect.NewDevice(addr)
		if seen[dev.ID] {
			continue
		}
		seen[dev.ID] = true

		p.mu.Lock()
		if _, exists := p.accessories[dev.ID]; exists {
			p.mu.Unlock()
			continue
		}
		cached, restored := p.cached[dev.ID]
		if restored {
			dev = cached
		}
		a := newAccessory(dev, p.transport(dev.Host), p.opts.PollInterval, p.hosts, p.opts.Bus, p.logger)
		p.accessories[dev.ID] = a
		p.mu.Unlock()

		if restored {
			p.logger.Info("platform: restoring existing accessory from cache", "name", dev.DisplayName)
			res.Restored = append(res.Restored, dev.ID)
		} else {
			p.logger.Info("platform: adding new SAVE CONNECT device", "name", dev.DisplayName, "host", dev.Host)
			res.Added = append(res.Added, dev.ID)
		}

		p.hosts.publish(a)
		a.start(ctx)

		evt := events.AccessoryAdded
		if restored {
			evt = events.AccessoryRestored
		}
		p.publish(evt, a.Snapshot())
	}

	p.mu.Lock()
	var stale []saveconnect.Device
	for id, dev := range p.cached {
		if !seen[id] {
			stale = append(stale, dev)
		}
		delete(p.cached, id)
	}
	p.mu.Unlock()

	for _, dev := range stale {
		p.logger.Info("platform: removing existing SAVE CONNECT device from cache", "name", dev.DisplayName)
		p.hosts.unpublish(&Accessory{device: dev, removed: true})
		res.Removed = append(res.Removed, dev.ID)
		p.publish(events.AccessoryRemoved, Snapshot{ID: dev.ID, DisplayName: dev.DisplayName, Host: dev.Host})
	}

	p.saveCache()
	return res
}

// Discover runs one discovery window with b and sets up what it found. On
// a discovery error nothing is set up and cached accessories are kept.
func (p *Platform) Discover(ctx context.Context, b saveconnect.Browser, opts saveconnect.DiscoveryOptions) (SetupResult, error) {
	if opts.Logger == nil {
		opts.Logger = p.logger
	}
	addrs, err := saveconnect.Discover(ctx, b, opts)
	if err != nil {
		return SetupResult{}, err
	}
	res := p.Setup(ctx, addrs)
	p.publish(events.DiscoveryCompleted, map[string]any{
		"addresses": addrs,
		"added":     res.Added,
		"restored":  res.Restored,
		"removed":   res.Removed,
	})
	return res, nil
}

// Accessories returns all registered accessories ordered by name
func (p *Platform) Accessories() []*Accessory {
	p.mu.RLock()
	out := make([]*Accessory, 0, len(p.accessories))
	for _, a := range p.accessories {
		out = append(out, a)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName() < out[j].DisplayName() })
	return out
}

// Accessory returns the accessory with the given ID
func (p *Platform) Accessory(id string) (*Accessory, error) {
	p.mu.RLock()
	a, ok := p.accessories[id]
	p.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("accessory %s", id)
	}
	return a, nil
}

// Remove stops and unpublishes an accessory and drops it from the cache
func (p *Platform) Remove(id string) error {
	p.mu.Lock()
	a, ok := p.accessories[id]
	if ok {
		delete(p.accessories, id)
	}
	p.mu.Unlock()
	if !ok {
		return errors.NotFoundf("accessory %s", id)
	}

	a.stop()
	p.hosts.unpublish(a)
	p.logger.Info("platform: accessory removed", "name", a.DisplayName())
	p.publish(events.AccessoryRemoved, a.Snapshot())
	p.saveCache()
	return nil
}

// Shutdown stops every poll loop. Accessories stay registered and cached.
func (p *Platform) Shutdown() {
	for _, a := range p.Accessories() {
		a.stop()
	}
}

func (p *Platform) saveCache() {
	accs := p.Accessories()
	devs := make([]saveconnect.Device, 0, len(accs))
	for _, a := range accs {
		devs = append(devs, a.Device())
	}
	if err := p.opts.Cache.Save(devs); err != nil {
		p.logger.Error("platform: failed to save accessory cache", "path", p.opts.Cache.Path(), "error", err)
	}
}

func (p *Platform) publish(t events.EventType, data any) {
	if p.opts.Bus != nil {
		p.opts.Bus.Publish(events.NewEvent(t, data))
	}
}
