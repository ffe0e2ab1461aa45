package availability

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimestamp is returned when an event carries a missing or unparsable timestamp.
	ErrInvalidTimestamp = errors.New("availability: invalid timestamp")
	// ErrInvalidInterval is returned when an event does not start strictly before it ends.
	ErrInvalidInterval = errors.New("availability: invalid interval")
)

// EventError ties a validation failure to the event that caused it.
type EventError struct {
	EventID string
	Err     error
}

// Error implements the error interface.
func (e *EventError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("event: %v", e.Err)
	}
	return fmt.Sprintf("event %s: %v", e.EventID, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *EventError) Unwrap() error {
	return e.Err
}
