package saveconnect

import (
	"context"
	"log/slog"

	"github.com/jmylchreest/saveconnectd/internal/errors"
)

// RegisterWriter writes a payload to a device
type RegisterWriter interface {
	Write(ctx context.Context, p Payload) error
}

// Controller turns switch toggles into register writes. It keeps no state;
// every call issues its own requests.
type Controller struct {
	writer RegisterWriter
	logger *slog.Logger
}

// NewController creates a controller writing through w
func NewController(w RegisterWriter, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{writer: w, logger: logger}
}

// Activate starts a boost mode. The duration register is written first and
// the mode request second, as two separate requests. If the second write
// fails the duration stays changed on the device. Activating ModeAuto is the
// same as Deactivate.
func (c *Controller) Activate(ctx context.Context, mode BoostMode) error {
	reg, ok := mode.DurationRegister()
	if !ok {
		return c.Deactivate(ctx)
	}

	c.logger.Info("mode: activating", "mode", mode)
	if err := c.writer.Write(ctx, Payload{reg}); err != nil {
		return errors.LogErrorAndReturn(c.logger,
			errors.WrapErrorf(err, "set %s duration", mode),
			"mode: activation failed", "mode", mode)
	}
	if err := c.writer.Write(ctx, ModeRequestPayload(mode)); err != nil {
		return errors.LogErrorAndReturn(c.logger,
			errors.WrapErrorf(err, "request %s after duration was set", mode),
			"mode: activation partially applied", "mode", mode, "register", reg.Address)
	}
	c.logger.Info("mode: activated", "mode", mode)
	return nil
}

// Deactivate returns the unit to ModeAuto with a single write
func (c *Controller) Deactivate(ctx context.Context) error {
	c.logger.Info("mode: returning to auto")
	if err := c.writer.Write(ctx, ModeRequestPayload(ModeAuto)); err != nil {
		return errors.LogErrorAndReturn(c.logger,
			errors.WrapErrorf(err, "request %s", ModeAuto),
			"mode: deactivation failed")
	}
	return nil
}

// SetSwitch applies a switch toggle. Turning a switch off always requests
// ModeAuto, whichever boost mode is running.
func (c *Controller) SetSwitch(ctx context.Context, mode BoostMode, on bool) error {
	if !mode.IsSwitch() {
		return errors.InvalidInputf("%q is not a switch", mode)
	}
	c.logger.Info("mode: switch set", "switch", mode, "on", on)
	if on {
		return c.Activate(ctx, mode)
	}
	return c.Deactivate(ctx)
}
