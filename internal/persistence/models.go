package persistence

import "time"

// Event kinds accepted by the events table.
const (
	KindAppointment = "appointment"
	KindOpening     = "opening"
)

// Event represents a row of the events table.
type Event struct {
	ID              string
	StartsAt        time.Time
	EndsAt          time.Time
	Kind            string
	WeeklyRecurring *bool
}

// Recurring reports whether the event is flagged as weekly recurring.
// A NULL flag is treated as false.
func (e Event) Recurring() bool {
	return e.WeeklyRecurring != nil && *e.WeeklyRecurring
}
