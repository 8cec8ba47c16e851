package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/saveconnectd/internal/accessory"
	"github.com/jmylchreest/saveconnectd/pkg/saveconnect"
)

// DefaultToggleTimeout bounds the two device writes behind a switch toggle.
const DefaultToggleTimeout = 10 * time.Second

// AccessoryManager is the part of accessory.Platform the API needs.
type AccessoryManager interface {
	Accessories() []*accessory.Accessory
	Accessory(id string) (*accessory.Accessory, error)
	Remove(id string) error
}

// --- List Accessories ---

// ListAccessoriesInput is the input for listing accessories.
type ListAccessoriesInput struct{}

// ListAccessoriesOutput is the output for listing accessories.
type ListAccessoriesOutput struct {
	Body []AccessoryResponse
}

// --- Get Accessory ---

// GetAccessoryInput is the input for getting a single accessory.
type GetAccessoryInput struct {
	ID string `path:"id" doc:"Accessory identifier"`
}

// GetAccessoryOutput is the output for getting a single accessory.
type GetAccessoryOutput struct {
	Body AccessoryResponse
}

// --- Set Switch ---

// SetSwitchInput is the input for toggling a boost switch.
type SetSwitchInput struct {
	ID     string `path:"id" doc:"Accessory identifier"`
	Switch string `path:"switch" enum:"refresh,crowded" doc:"Boost switch"`
	Body   struct {
		On bool `json:"on" doc:"true activates the boost mode, false returns the unit to auto"`
	}
}

// SetSwitchOutput is the accessory after the toggle.
type SetSwitchOutput struct {
	Body AccessoryResponse
}

// --- Poll ---

// PollAccessoryInput is the input for an immediate poll.
type PollAccessoryInput struct {
	ID string `path:"id" doc:"Accessory identifier"`
}

// PollAccessoryOutput is the reading taken by the poll.
type PollAccessoryOutput struct {
	Body ReadingResponse
}

// --- Remove ---

// RemoveAccessoryInput is the input for removing an accessory.
type RemoveAccessoryInput struct {
	ID string `path:"id" doc:"Accessory identifier"`
}

// RemoveAccessoryOutput is empty; the endpoint answers 204.
type RemoveAccessoryOutput struct{}

// AccessoryHandler implements accessory HTTP handlers.
type AccessoryHandler struct {
	Accessories   AccessoryManager
	Logger        *slog.Logger
	ToggleTimeout time.Duration
}

// ListAccessories returns every registered accessory ordered by name.
func (h *AccessoryHandler) ListAccessories(_ context.Context, _ *ListAccessoriesInput) (*ListAccessoriesOutput, error) {
	accs := h.Accessories.Accessories()
	out := &ListAccessoriesOutput{Body: make([]AccessoryResponse, 0, len(accs))}
	for _, a := range accs {
		out.Body = append(out.Body, AccessoryFromSnapshot(a.Snapshot()))
	}
	return out, nil
}

// GetAccessory returns a single accessory by ID.
func (h *AccessoryHandler) GetAccessory(_ context.Context, input *GetAccessoryInput) (*GetAccessoryOutput, error) {
	a, err := h.Accessories.Accessory(input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	return &GetAccessoryOutput{Body: AccessoryFromSnapshot(a.Snapshot())}, nil
}

// SetSwitch turns a boost switch on or off.
func (h *AccessoryHandler) SetSwitch(ctx context.Context, input *SetSwitchInput) (*SetSwitchOutput, error) {
	a, err := h.Accessories.Accessory(input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	mode, err := saveconnect.ParseBoostMode(input.Switch)
	if err != nil {
		return nil, humaError(err)
	}

	timeout := h.ToggleTimeout
	if timeout <= 0 {
		timeout = DefaultToggleTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.SetSwitch(ctx, mode, input.Body.On); err != nil {
		h.logger().Warn("api: switch toggle failed", "accessory", a.DisplayName(), "switch", mode, "on", input.Body.On, "error", err)
		return nil, humaError(err)
	}
	return &SetSwitchOutput{Body: AccessoryFromSnapshot(a.Snapshot())}, nil
}

// PollAccessory reads the active mode now instead of waiting for the loop.
func (h *AccessoryHandler) PollAccessory(ctx context.Context, input *PollAccessoryInput) (*PollAccessoryOutput, error) {
	a, err := h.Accessories.Accessory(input.ID)
	if err != nil {
		return nil, humaError(err)
	}
	r, err := a.PollNow(ctx)
	if err != nil {
		return nil, humaError(err)
	}
	return &PollAccessoryOutput{Body: ReadingFromPoll(r)}, nil
}

// RemoveAccessory unregisters an accessory and drops it from the cache. It
// comes back on the next discovery if the unit is still on the network.
func (h *AccessoryHandler) RemoveAccessory(_ context.Context, input *RemoveAccessoryInput) (*RemoveAccessoryOutput, error) {
	if err := h.Accessories.Remove(input.ID); err != nil {
		return nil, humaError(err)
	}
	return &RemoveAccessoryOutput{}, nil
}

func (h *AccessoryHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Ensure AccessoryHandler implements the interface at compile time.
var _ AccessoryHandlers = (*AccessoryHandler)(nil)

// AccessoryHandlers defines the interface for accessory operations.
type AccessoryHandlers interface {
	ListAccessories(ctx context.Context, input *ListAccessoriesInput) (*ListAccessoriesOutput, error)
	GetAccessory(ctx context.Context, input *GetAccessoryInput) (*GetAccessoryOutput, error)
	SetSwitch(ctx context.Context, input *SetSwitchInput) (*SetSwitchOutput, error)
	PollAccessory(ctx context.Context, input *PollAccessoryInput) (*PollAccessoryOutput, error)
	RemoveAccessory(ctx context.Context, input *RemoveAccessoryInput) (*RemoveAccessoryOutput, error)
}
