package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same key already exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a record breaks a table constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrInvalidTimestamp is returned when a stored timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("persistence: invalid timestamp")
)

// TimestampError reports the column and raw value that failed to parse.
type TimestampError struct {
	EventID string
	Column  string
	Value   string
}

// Error implements the error interface.
func (e *TimestampError) Error() string {
	return fmt.Sprintf("persistence: event %s: cannot parse %s %q", e.EventID, e.Column, e.Value)
}

// Unwrap allows errors.Is(err, ErrInvalidTimestamp).
func (e *TimestampError) Unwrap() error {
	return ErrInvalidTimestamp
}

// ValidateEvent checks the invariants shared by every store.
func ValidateEvent(event Event) error {
	if event.Kind != KindAppointment && event.Kind != KindOpening {
		return fmt.Errorf("%w: unknown kind %q", ErrConstraintViolation, event.Kind)
	}
	if event.StartsAt.IsZero() || event.EndsAt.IsZero() {
		return fmt.Errorf("%w: starts_at and ends_at are required", ErrConstraintViolation)
	}
	if !event.StartsAt.Before(event.EndsAt) {
		return fmt.Errorf("%w: starts_at must be before ends_at", ErrConstraintViolation)
	}
	return nil
}
