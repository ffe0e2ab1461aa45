// Package availability derives bookable 30 minute slots for a 7 day horizon
// from opening and appointment events.
package availability

import (
	"sort"
	"time"
)

// Kind partitions events into openings and appointments.
type Kind string

const (
	// KindAppointment marks an interval that is already booked.
	KindAppointment Kind = "appointment"
	// KindOpening marks an interval during which bookings are allowed.
	KindOpening Kind = "opening"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindAppointment || k == KindOpening
}

// Event is a calendar entry supplied by the event source.
type Event struct {
	ID              string
	StartsAt        time.Time
	EndsAt          time.Time
	Kind            Kind
	WeeklyRecurring bool
}

// Validate checks the interval invariants required before expansion.
func (e Event) Validate() error {
	if e.StartsAt.IsZero() || e.EndsAt.IsZero() {
		return &EventError{EventID: e.ID, Err: ErrInvalidTimestamp}
	}
	if !e.StartsAt.Before(e.EndsAt) {
		return &EventError{EventID: e.ID, Err: ErrInvalidInterval}
	}
	return nil
}

// In returns a copy of the event with both timestamps converted to loc.
func (e Event) In(loc *time.Location) Event {
	if loc == nil {
		return e
	}
	e.StartsAt = e.StartsAt.In(loc)
	e.EndsAt = e.EndsAt.In(loc)
	return e
}

func sortByStart(events []Event) []Event {
	sorted := append([]Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartsAt.Before(sorted[j].StartsAt)
	})
	return sorted
}

func partition(events []Event) (appointments, openings []Event) {
	for _, event := range events {
		switch event.Kind {
		case KindAppointment:
			appointments = append(appointments, event)
		case KindOpening:
			openings = append(openings, event)
		}
	}
	return sortByStart(appointments), sortByStart(openings)
}
