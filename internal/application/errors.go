package application

import (
	"errors"

	"github.com/example/slot-availability/internal/availability"
)

var (
	// ErrSourceUnavailable is returned when events cannot be fetched from the source.
	ErrSourceUnavailable = errors.New("application: event source unavailable")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
	Err         error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Err != nil {
		return "validation failed: " + v.Err.Error()
	}
	return "validation failed"
}

// Unwrap exposes the sentinel behind the validation failure, if any.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Err
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
// The HTTP layer uses the same labels as error codes.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var eventErr *availability.EventError
	if errors.As(err, &eventErr) {
		return "invalid_event"
	}

	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return "source_unavailable"
	case errors.Is(err, availability.ErrInvalidTimestamp):
		return "invalid_timestamp"
	case errors.Is(err, availability.ErrInvalidInterval):
		return "invalid_event"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
