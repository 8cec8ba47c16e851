package saveconnect

import (
	"context"
	"log/slog"

	"github.com/grandcat/zeroconf"
)

// ZeroconfBrowser browses the network with github.com/grandcat/zeroconf
type ZeroconfBrowser struct {
	logger *slog.Logger
}

// NewZeroconfBrowser creates a browser on all multicast interfaces
func NewZeroconfBrowser(logger *slog.Logger) *ZeroconfBrowser {
	if logger == nil {
		logger = slog.Default()
	}
	return &ZeroconfBrowser{logger: logger}
}

// Browse implements Browser. zeroconf only fails when starting, so the
// returned error channel is nil.
func (z *ZeroconfBrowser) Browse(ctx context.Context, serviceType, domain string) (<-chan ServiceEntry, <-chan error, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, nil, err
	}

	raw := make(chan *zeroconf.ServiceEntry)
	if err := resolver.Browse(ctx, serviceType, domain, raw); err != nil {
		return nil, nil, err
	}

	out := make(chan ServiceEntry)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-raw:
				if !ok {
					return
				}
				if e == nil {
					continue
				}
				z.logger.Debug("discovery: service resolved", "instance", e.Instance, "host", e.HostName, "port", e.Port)
				entry := ServiceEntry{
					Instance: e.Instance,
					HostName: e.HostName,
					Port:     e.Port,
					AddrIPv4: e.AddrIPv4,
					AddrIPv6: e.AddrIPv6,
				}
				select {
				case out <- entry:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil, nil
}
