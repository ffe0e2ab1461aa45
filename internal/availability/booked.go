package availability

import "sort"

// BookedSlots maps horizon day keys to the labels consumed by appointments.
type BookedSlots struct {
	days map[string]map[string]struct{}
}

// Has reports whether label is booked on day.
func (b BookedSlots) Has(day, label string) bool {
	slots, ok := b.days[day]
	if !ok {
		return false
	}
	_, booked := slots[label]
	return booked
}

// Slots returns the booked labels of day in lexical order.
func (b BookedSlots) Slots(day string) []string {
	slots := b.days[day]
	if len(slots) == 0 {
		return nil
	}
	labels := make([]string, 0, len(slots))
	for label := range slots {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Days returns the day keys that carry at least one booked slot, sorted.
func (b BookedSlots) Days() []string {
	days := make([]string, 0, len(b.days))
	for day := range b.days {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// Len returns the total number of booked slots.
func (b BookedSlots) Len() int {
	total := 0
	for _, slots := range b.days {
		total += len(slots)
	}
	return total
}

func (b *BookedSlots) add(day, label string) {
	if b.days == nil {
		b.days = make(map[string]map[string]struct{})
	}
	slots, ok := b.days[day]
	if !ok {
		slots = make(map[string]struct{})
		b.days[day] = slots
	}
	slots[label] = struct{}{}
}

// IndexBookedSlots expands appointments into the labels they occupy.
//
// Every slot of an appointment is attributed to the day it starts on, even
// when the appointment runs past midnight. Appointments starting after the
// horizon are skipped and only horizon days are kept.
func IndexBookedSlots(appointments []Event, h Horizon, opts Options) (BookedSlots, error) {
	label := labelFunc(opts)
	var booked BookedSlots

	for _, appointment := range sortByStart(appointments) {
		if err := appointment.Validate(); err != nil {
			return BookedSlots{}, err
		}
		if !h.startsWithin(appointment.StartsAt) {
			continue
		}
		day := DayKey(appointment.StartsAt)
		if !h.Contains(day) {
			continue
		}
		slots, err := ExpandInterval(appointment.StartsAt, appointment.EndsAt, label)
		if err != nil {
			return BookedSlots{}, &EventError{EventID: appointment.ID, Err: err}
		}
		for _, slot := range slots {
			booked.add(day, slot)
		}
	}

	return booked, nil
}
