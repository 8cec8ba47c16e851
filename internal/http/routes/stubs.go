package routes

import (
	"context"

	"github.com/jmylchreest/saveconnectd/internal/http/handlers"
)

// StubHandlers returns a Handlers instance with stub implementations.
// They return nil responses and exist only for OpenAPI generation, where
// Huma reads type information from the function signatures.
func StubHandlers() *Handlers {
	return &Handlers{
		HealthCheck:  handlers.HealthCheck,
		VersionCheck: handlers.VersionCheck("", "", ""),
		Accessory:    &stubAccessoryHandlers{},
		Logging:      &stubLoggingHandlers{},
	}
}

// --- Accessory stubs ---

type stubAccessoryHandlers struct{}

func (s *stubAccessoryHandlers) ListAccessories(_ context.Context, _ *handlers.ListAccessoriesInput) (*handlers.ListAccessoriesOutput, error) {
	return nil, nil
}

func (s *stubAccessoryHandlers) GetAccessory(_ context.Context, _ *handlers.GetAccessoryInput) (*handlers.GetAccessoryOutput, error) {
	return nil, nil
}

func (s *stubAccessoryHandlers) SetSwitch(_ context.Context, _ *handlers.SetSwitchInput) (*handlers.SetSwitchOutput, error) {
	return nil, nil
}

func (s *stubAccessoryHandlers) PollAccessory(_ context.Context, _ *handlers.PollAccessoryInput) (*handlers.PollAccessoryOutput, error) {
	return nil, nil
}

func (s *stubAccessoryHandlers) RemoveAccessory(_ context.Context, _ *handlers.RemoveAccessoryInput) (*handlers.RemoveAccessoryOutput, error) {
	return nil, nil
}

// --- Logging stubs ---

type stubLoggingHandlers struct{}

func (s *stubLoggingHandlers) GetLevel(_ context.Context, _ *handlers.GetLevelInput) (*handlers.GetLevelOutput, error) {
	return nil, nil
}

func (s *stubLoggingHandlers) SetLevel(_ context.Context, _ *handlers.SetLevelInput) (*handlers.SetLevelOutput, error) {
	return nil, nil
}
