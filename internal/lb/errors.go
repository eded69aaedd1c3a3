package lb

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound indicates the requested capsule or device does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a request was rejected before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrNotYetOpen indicates an open attempt before the capsule's unlock time.
	ErrNotYetOpen = errors.New("letter cannot be opened yet")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotYetOpenError is returned when a capsule is opened before OpenAt.
// It carries the scheduled time so clients can render a countdown.
type NotYetOpenError struct {
	OpenAt time.Time
}

func (e *NotYetOpenError) Error() string {
	return fmt.Sprintf("letter cannot be opened until %s", e.OpenAt.UTC().Format(time.RFC3339))
}

func (e *NotYetOpenError) Unwrap() error { return ErrNotYetOpen }
