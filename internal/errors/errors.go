package errors

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrCommunicationFailure is returned when a device request fails at the
// transport level or the device answers with a non-2xx status
var ErrCommunicationFailure = errors.New("device communication failure")

// ErrDiscoveryFailure is returned when the service browser reports an error
// during a discovery window
var ErrDiscoveryFailure = errors.New("discovery failed")

// ErrMalformedResponse is returned when a device response cannot be decoded
var ErrMalformedResponse = errors.New("malformed device response")

// ErrNotFound is returned when a requested resource doesn't exist
var ErrNotFound = errors.New("resource not found")

// ErrInvalidInput is returned when the provided input is invalid
var ErrInvalidInput = errors.New("invalid input")

// ErrInternal is returned for unexpected internal errors
var ErrInternal = errors.New("internal error")

// LogErrorAndReturn logs an error with structured context and returns it
func LogErrorAndReturn(logger *slog.Logger, err error, message string, args ...any) error {
	if err == nil {
		return nil
	}

	logger.Error(message, append([]any{"error", err}, args...)...)
	return err
}

// WrapErrorf wraps an error with additional context using fmt.Errorf
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// IsCommunicationFailure returns true if the error is or wraps ErrCommunicationFailure
func IsCommunicationFailure(err error) bool {
	return errors.Is(err, ErrCommunicationFailure)
}

// IsDiscoveryFailure returns true if the error is or wraps ErrDiscoveryFailure
func IsDiscoveryFailure(err error) bool {
	return errors.Is(err, ErrDiscoveryFailure)
}

// IsMalformedResponse returns true if the error is or wraps ErrMalformedResponse
func IsMalformedResponse(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// IsNotFound returns true if the error is or wraps ErrNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput returns true if the error is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// CommunicationFailuref returns a formatted ErrCommunicationFailure error.
// A %w verb in format keeps the underlying cause reachable as well.
func CommunicationFailuref(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrCommunicationFailure)...)
}

// DiscoveryFailuref returns a formatted ErrDiscoveryFailure error
func DiscoveryFailuref(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDiscoveryFailure)...)
}

// MalformedResponsef returns a formatted ErrMalformedResponse error
func MalformedResponsef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrMalformedResponse)...)
}

// NotFoundf returns a formatted ErrNotFound error
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// InvalidInputf returns a formatted ErrInvalidInput error
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// Internalf returns a formatted ErrInternal error
func Internalf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInternal)...)
}
