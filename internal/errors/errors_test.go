package errors

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrCommunicationFailure", ErrCommunicationFailure, "device communication failure"},
		{"ErrDiscoveryFailure", ErrDiscoveryFailure, "discovery failed"},
		{"ErrMalformedResponse", ErrMalformedResponse, "malformed device response"},
		{"ErrNotFound", ErrNotFound, "resource not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrInternal", ErrInternal, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.expected)
			}
		})
	}
}

func TestLogErrorAndReturn(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("returns nil for nil error", func(t *testing.T) {
		result := LogErrorAndReturn(logger, nil, "test message")
		if result != nil {
			t.Errorf("LogErrorAndReturn(nil) = %v, want nil", result)
		}
	})

	t.Run("returns the same error", func(t *testing.T) {
		err := errors.New("test error")
		result := LogErrorAndReturn(logger, err, "test message", "key", "value")
		if result != err {
			t.Errorf("LogErrorAndReturn returned different error")
		}
	})
}

func TestWrapErrorf(t *testing.T) {
	t.Run("returns nil for nil error", func(t *testing.T) {
		if WrapErrorf(nil, "context %s", "value") != nil {
			t.Error("WrapErrorf(nil) should be nil")
		}
	})

	t.Run("wraps error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := WrapErrorf(original, "context %s", "value")

		if !strings.Contains(wrapped.Error(), "context value") {
			t.Errorf("wrapped error should contain context: %v", wrapped)
		}
		if !errors.Is(wrapped, original) {
			t.Error("wrapped error should unwrap to original")
		}
	})
}

func TestCommunicationFailuref(t *testing.T) {
	t.Run("wraps sentinel", func(t *testing.T) {
		err := CommunicationFailuref("GET %s returned %d", "http://10.0.0.5/mwrite", 500)
		if !IsCommunicationFailure(err) {
			t.Error("CommunicationFailuref should wrap ErrCommunicationFailure")
		}
		if !strings.Contains(err.Error(), "returned 500") {
			t.Errorf("unexpected message: %v", err)
		}
	})

	t.Run("keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := CommunicationFailuref("request failed: %w", cause)
		if !errors.Is(err, cause) {
			t.Error("cause should be reachable through errors.Is")
		}
		if !IsCommunicationFailure(err) {
			t.Error("sentinel should be reachable through errors.Is")
		}
	})

	t.Run("does not match other kinds", func(t *testing.T) {
		if IsCommunicationFailure(ErrMalformedResponse) {
			t.Error("IsCommunicationFailure(ErrMalformedResponse) = true, want false")
		}
	})
}

func TestDiscoveryFailuref(t *testing.T) {
	err := DiscoveryFailuref("browse %s", "_http._tcp")
	if !IsDiscoveryFailure(err) {
		t.Error("DiscoveryFailuref should wrap ErrDiscoveryFailure")
	}
	if IsCommunicationFailure(err) {
		t.Error("discovery failure must be distinguishable from communication failure")
	}
}

func TestMalformedResponsef(t *testing.T) {
	err := MalformedResponsef("register %d missing", 1160)
	if !IsMalformedResponse(err) {
		t.Error("MalformedResponsef should wrap ErrMalformedResponse")
	}
	if !strings.Contains(err.Error(), "register 1160 missing") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFoundf("accessory %s", "abc")) {
		t.Error("IsNotFound(wrapped) = false, want true")
	}
	if IsNotFound(ErrInvalidInput) {
		t.Error("IsNotFound(ErrInvalidInput) = true, want false")
	}
}

func TestIsInvalidInput(t *testing.T) {
	if !IsInvalidInput(InvalidInputf("switch %s", "turbo")) {
		t.Error("IsInvalidInput(wrapped) = false, want true")
	}
	if IsInvalidInput(ErrNotFound) {
		t.Error("IsInvalidInput(ErrNotFound) = true, want false")
	}
}

func TestInternalf(t *testing.T) {
	err := Internalf("unexpected state: %s", "nil pointer")

	if !strings.Contains(err.Error(), "unexpected state: nil pointer") {
		t.Errorf("Internalf error message incorrect: %v", err)
	}
	if !errors.Is(err, ErrInternal) {
		t.Error("Internalf should wrap ErrInternal")
	}
}
