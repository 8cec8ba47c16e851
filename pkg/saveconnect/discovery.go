package saveconnect

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/errors"
)

// Discovery defaults
const (
	DefaultServiceType     = "_http._tcp"
	DefaultServiceDomain   = "local."
	DefaultServiceMarker   = "saveconnect"
	DefaultDiscoveryWindow = 5 * time.Second
)

// ServiceEntry is a resolved DNS-SD service instance
type ServiceEntry struct {
	Instance string
	HostName string
	Port     int
	AddrIPv4 []net.IP
	AddrIPv6 []net.IP
}

// Address returns the address used to reach the entry, preferring IPv4.
// ok is false when the entry carries no address.
func (e ServiceEntry) Address() (string, bool) {
	for _, ip := range e.AddrIPv4 {
		if ip != nil {
			return ip.String(), true
		}
	}
	for _, ip := range e.AddrIPv6 {
		if ip != nil {
			return ip.String(), true
		}
	}
	return "", false
}

// Browser browses a DNS-SD service type. Entries and errors are delivered
// until ctx is cancelled; either channel may be nil.
type Browser interface {
	Browse(ctx context.Context, serviceType, domain string) (<-chan ServiceEntry, <-chan error, error)
}

// DiscoveryOptions controls a discovery run. Zero values select the defaults.
type DiscoveryOptions struct {
	ServiceType string
	Domain      string
	Marker      string
	Window      time.Duration
	Logger      *slog.Logger

	// After starts the window timer. Defaults to time.After.
	After func(time.Duration) <-chan time.Time
}

func (o *DiscoveryOptions) applyDefaults() {
	if o.ServiceType == "" {
		o.ServiceType = DefaultServiceType
	}
	if o.Domain == "" {
		o.Domain = DefaultServiceDomain
	}
	if o.Marker == "" {
		o.Marker = DefaultServiceMarker
	}
	if o.Window <= 0 {
		o.Window = DefaultDiscoveryWindow
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.After == nil {
		o.After = time.After
	}
}

// IsSaveConnect reports whether a DNS-SD instance name belongs to a SAVE
// CONNECT unit, i.e. contains marker in any letter case
func IsSaveConnect(instance, marker string) bool {
	if marker == "" {
		marker = DefaultServiceMarker
	}
	name := strings.ToLower(UnescapeRFC6763Label(instance))
	return strings.Contains(name, strings.ToLower(marker))
}

// Discover browses for one window and returns the address of every matching
// service instance in the order they were seen. Duplicates are kept. An
// error from the browser ends the run at once with ErrDiscoveryFailure and
// no addresses.
func Discover(ctx context.Context, b Browser, opts DiscoveryOptions) ([]string, error) {
	opts.applyDefaults()
	logger := opts.Logger

	browseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("discovery: browsing", "service", opts.ServiceType, "window", opts.Window)
	entries, errs, err := b.Browse(browseCtx, opts.ServiceType, opts.Domain)
	if err != nil {
		return nil, errors.LogErrorAndReturn(logger,
			errors.DiscoveryFailuref("browse %s: %w", opts.ServiceType, err),
			"discovery: failed to start")
	}

	deadline := opts.After(opts.Window)
	addrs := []string{}
	for {
		select {
		case <-ctx.Done():
			return addrs, ctx.Err()
		case <-deadline:
			logger.Info("discovery: finished", "found", len(addrs))
			return addrs, nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return nil, errors.LogErrorAndReturn(logger,
				errors.DiscoveryFailuref("browse %s: %w", opts.ServiceType, err),
				"discovery: browser error")
		case e, ok := <-entries:
			if !ok {
				entries = nil
				continue
			}
			if !IsSaveConnect(e.Instance, opts.Marker) {
				logger.Debug("discovery: ignoring service", "instance", e.Instance)
				continue
			}
			addr, ok := e.Address()
			if !ok {
				logger.Debug("discovery: service has no address", "instance", e.Instance, "host", e.HostName)
				continue
			}
			logger.Info("discovery: found device", "instance", e.Instance, "host", e.HostName, "addr", addr)
			addrs = append(addrs, addr)
		}
	}
}
