package saveconnect

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/errors"
)

// DefaultPollInterval is how often the active mode is read back
const DefaultPollInterval = 30 * time.Second

// RegisterReader reads register values from a device
type RegisterReader interface {
	Read(ctx context.Context, p Payload) (Registers, error)
}

// SwitchUpdater receives the switch state derived from each successful read
type SwitchUpdater interface {
	UpdateSwitches(state SwitchState)
}

// Reading is the outcome of one successful poll
type Reading struct {
	Code  int         `json:"code"`
	Mode  BoostMode   `json:"mode"`
	State SwitchState `json:"state"`
	At    time.Time   `json:"at"`
}

// Ticker is the part of time.Ticker the poller uses
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

type timeTicker struct{ *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.C }

// NewTimeTicker wraps time.NewTicker
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{time.NewTicker(d)}
}

// Poller periodically reads the active user mode and pushes the matching
// switch state to its updater
type Poller struct {
	reader   RegisterReader
	updater  SwitchUpdater
	interval time.Duration
	logger   *slog.Logger

	// NewTicker creates the tick source for Run. Defaults to NewTimeTicker.
	NewTicker func(time.Duration) Ticker
	// OnReading, when set, is called after each successful read
	OnReading func(Reading)
	// OnError, when set, is called when a scheduled read fails
	OnError func(error)
	// Now is the clock used to stamp readings
	Now func() time.Time
}

// NewPoller creates a poller. A non-positive interval selects
// DefaultPollInterval.
func NewPoller(r RegisterReader, u SwitchUpdater, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		reader:    r,
		updater:   u,
		interval:  interval,
		logger:    logger,
		NewTicker: NewTimeTicker,
		Now:       time.Now,
	}
}

// Interval returns the time between polls
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Tick reads RegActiveUserMode once. On failure the updater is not called
// and the error is returned.
func (p *Poller) Tick(ctx context.Context) (Reading, error) {
	regs, err := p.reader.Read(ctx, ReadPayload(RegActiveUserMode))
	if err != nil {
		return Reading{}, err
	}
	code, ok := regs.Get(RegActiveUserMode)
	if !ok {
		return Reading{}, errors.MalformedResponsef("register %d missing from response, got %v", RegActiveUserMode, regs.Addresses())
	}

	mode := ClassifyActiveMode(code)
	r := Reading{
		Code:  code,
		Mode:  mode,
		State: SwitchStateFor(mode),
		At:    p.Now(),
	}
	p.logger.Debug("poll: fetched current mode", "code", code, "mode", mode)

	p.updater.UpdateSwitches(r.State)
	if p.OnReading != nil {
		p.OnReading(r)
	}
	return r, nil
}

// Run polls every interval until ctx is cancelled. The first read happens
// after one interval. Errors are logged, passed to OnError and polling
// continues.
func (p *Poller) Run(ctx context.Context) {
	t := p.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("poll: stopped")
			return
		case <-t.Chan():
			if _, err := p.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Error("poll: error", "error", err)
				if p.OnError != nil {
					p.OnError(err)
				}
			}
		}
	}
}
