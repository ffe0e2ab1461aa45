package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/slot-availability/internal/availability"
	"github.com/example/slot-availability/internal/persistence"
)

var eventCounter uint64

// referenceTime is the Sunday before the canonical recurring-opening scenario.
var referenceTime = time.Date(2014, time.August, 10, 0, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// EventFixture is a deterministic event that can be materialised for domain
// or persistence tests.
type EventFixture struct {
	ID              string
	Kind            availability.Kind
	StartsAt        time.Time
	EndsAt          time.Time
	WeeklyRecurring bool
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewOpeningFixture returns a one hour opening on the reference day at 09:00.
func NewOpeningFixture(opts ...EventOption) EventFixture {
	return newEventFixture(availability.KindOpening, opts)
}

// NewAppointmentFixture returns a one hour appointment on the reference day at 09:00.
func NewAppointmentFixture(opts ...EventOption) EventFixture {
	return newEventFixture(availability.KindAppointment, opts)
}

func newEventFixture(kind availability.Kind, opts []EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(9 * time.Hour)
	fixture := EventFixture{
		ID:       fmt.Sprintf("%s-%03d", kind, idx),
		Kind:     kind,
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithInterval overrides both timestamps.
func WithInterval(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.StartsAt = start
		f.EndsAt = end
	}
}

// WithKind overrides the event kind, including values the resolver ignores.
func WithKind(kind availability.Kind) EventOption {
	return func(f *EventFixture) {
		f.Kind = kind
	}
}

// WithWeeklyRecurring flags the event as repeating every week.
func WithWeeklyRecurring() EventOption {
	return func(f *EventFixture) {
		f.WeeklyRecurring = true
	}
}

// Domain converts the fixture into the resolver representation.
func (f EventFixture) Domain() availability.Event {
	return availability.Event{
		ID:              f.ID,
		Kind:            f.Kind,
		StartsAt:        f.StartsAt,
		EndsAt:          f.EndsAt,
		WeeklyRecurring: f.WeeklyRecurring,
	}
}

// Persistence converts the fixture into a storage row.
func (f EventFixture) Persistence() persistence.Event {
	recurring := f.WeeklyRecurring
	return persistence.Event{
		ID:              f.ID,
		Kind:            string(f.Kind),
		StartsAt:        f.StartsAt,
		EndsAt:          f.EndsAt,
		WeeklyRecurring: &recurring,
	}
}

// Domains converts a batch of fixtures.
func Domains(fixtures ...EventFixture) []availability.Event {
	events := make([]availability.Event, len(fixtures))
	for i, f := range fixtures {
		events[i] = f.Domain()
	}
	return events
}

// WeeklyOpeningScenario returns a Monday 09:30-12:30 recurring opening and a
// 10:30-11:30 appointment one week later. Computed from ReferenceTime, the
// Monday in the horizon offers 9:30, 10:00, 11:30 and 12:00.
func WeeklyOpeningScenario() []EventFixture {
	return []EventFixture{
		NewOpeningFixture(
			WithInterval(
				time.Date(2014, time.August, 4, 9, 30, 0, 0, time.UTC),
				time.Date(2014, time.August, 4, 12, 30, 0, 0, time.UTC),
			),
			WithWeeklyRecurring(),
		),
		NewAppointmentFixture(
			WithInterval(
				time.Date(2014, time.August, 11, 10, 30, 0, 0, time.UTC),
				time.Date(2014, time.August, 11, 11, 30, 0, 0, time.UTC),
			),
		),
	}
}
