package availability

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/example/slot-availability/internal/recurrence"
)

// Options toggles the behaviour changes that depart from the historical output.
// The zero value keeps verbatim labels and insertion order with duplicates.
type Options struct {
	// SnapLabels floors slot labels to their containing half hour.
	SnapLabels bool
	// DedupeSlots drops a label already appended to the same day by another opening.
	DedupeSlots bool
}

// Availability is the ordered day key to slot labels mapping produced by Compute.
type Availability struct {
	days  []string
	slots map[string][]string
	seen  map[string]map[string]struct{}
}

func newAvailability(h Horizon) Availability {
	a := Availability{
		days:  h.Days(),
		slots: make(map[string][]string, HorizonDays),
	}
	for _, day := range a.days {
		a.slots[day] = []string{}
	}
	return a
}

// Days returns the day keys in horizon order.
func (a Availability) Days() []string {
	return append([]string(nil), a.days...)
}

// Slots returns the labels available on day in insertion order.
func (a Availability) Slots(day string) []string {
	slots, ok := a.slots[day]
	if !ok {
		return nil
	}
	return append([]string{}, slots...)
}

// Len returns the number of days, which is HorizonDays for a computed value.
func (a Availability) Len() int {
	return len(a.days)
}

// SlotCount returns the number of labels across every day.
func (a Availability) SlotCount() int {
	n := 0
	for _, day := range a.days {
		n += len(a.slots[day])
	}
	return n
}

// Map returns a copy of the mapping.
func (a Availability) Map() map[string][]string {
	out := make(map[string][]string, len(a.days))
	for _, day := range a.days {
		out[day] = a.Slots(day)
	}
	return out
}

// MarshalJSON emits the mapping as an object whose keys follow horizon order.
func (a Availability) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range a.days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(day)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(a.Slots(day))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a *Availability) add(day, label string, dedupe bool) {
	slots, ok := a.slots[day]
	if !ok {
		return
	}
	if dedupe {
		if a.seen == nil {
			a.seen = make(map[string]map[string]struct{})
		}
		if a.seen[day] == nil {
			a.seen[day] = make(map[string]struct{})
		}
		if _, dup := a.seen[day][label]; dup {
			return
		}
		a.seen[day][label] = struct{}{}
	}
	a.slots[day] = append(slots, label)
}

// Compute derives the slots bookable in the 7 days starting at reference.
//
// Every event is validated first; a single invalid event aborts the whole
// computation. Openings flagged as weekly recurring are moved forward by whole
// weeks until they land in the horizon, so each one targets at most one day.
func Compute(reference time.Time, events []Event, opts Options) (Availability, error) {
	if reference.IsZero() {
		return Availability{}, ErrInvalidTimestamp
	}
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return Availability{}, err
		}
	}

	appointments, openings := partition(events)
	horizon := BuildHorizon(reference)
	result := newAvailability(horizon)

	booked, err := IndexBookedSlots(appointments, horizon, opts)
	if err != nil {
		return Availability{}, err
	}

	engine := recurrence.NewEngine(horizon.Location())
	window := horizon.Window()
	label := labelFunc(opts)

	for _, opening := range openings {
		if !horizon.startsWithin(opening.StartsAt) {
			continue
		}

		target := DayKey(opening.StartsAt)
		if opening.WeeklyRecurring {
			day, ok := engine.ResolveWeekly(opening.StartsAt, window)
			if !ok {
				continue
			}
			target = DayKey(day)
		}
		if !horizon.Contains(target) {
			continue
		}

		slots, err := ExpandInterval(opening.StartsAt, opening.EndsAt, label)
		if err != nil {
			return Availability{}, &EventError{EventID: opening.ID, Err: err}
		}
		for _, slot := range slots {
			if booked.Has(target, slot) {
				continue
			}
			result.add(target, slot, opts.DedupeSlots)
		}
	}

	return result, nil
}
