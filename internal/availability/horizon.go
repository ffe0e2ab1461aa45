package availability

import (
	"time"

	"github.com/example/slot-availability/internal/recurrence"
)

// HorizonDays is the number of consecutive days covered by a computation.
const HorizonDays = 7

// Horizon is the ordered set of day keys bounding one computation.
type Horizon struct {
	days     []string
	dates    []time.Time
	index    map[string]int
	location *time.Location
}

// BuildHorizon returns the HorizonDays day keys starting at reference's own day.
func BuildHorizon(reference time.Time) Horizon {
	loc := reference.Location()
	y, m, d := reference.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)

	h := Horizon{
		days:     make([]string, 0, HorizonDays),
		dates:    make([]time.Time, 0, HorizonDays),
		index:    make(map[string]int, HorizonDays),
		location: loc,
	}
	for offset := 0; offset < HorizonDays; offset++ {
		date := start.AddDate(0, 0, offset)
		key := DayKey(date)
		h.index[key] = len(h.days)
		h.days = append(h.days, key)
		h.dates = append(h.dates, date)
	}
	return h
}

// Days returns the day keys in ascending order.
func (h Horizon) Days() []string {
	return append([]string(nil), h.days...)
}

// First returns the reference day key.
func (h Horizon) First() string {
	if len(h.days) == 0 {
		return ""
	}
	return h.days[0]
}

// Last returns the final day key of the horizon.
func (h Horizon) Last() string {
	if len(h.days) == 0 {
		return ""
	}
	return h.days[len(h.days)-1]
}

// Contains reports whether day is one of the horizon keys.
func (h Horizon) Contains(day string) bool {
	_, ok := h.index[day]
	return ok
}

// Location returns the location the horizon dates are anchored to.
func (h Horizon) Location() *time.Location {
	if h.location == nil {
		return time.UTC
	}
	return h.location
}

// Window returns the horizon as an inclusive date window.
func (h Horizon) Window() recurrence.Window {
	if len(h.dates) == 0 {
		return recurrence.Window{}
	}
	return recurrence.Window{Start: h.dates[0], End: h.dates[len(h.dates)-1]}
}

// startsWithin reports whether t's day key is not after the horizon's last day.
// Day keys are ISO dates, so lexical order matches calendar order.
func (h Horizon) startsWithin(t time.Time) bool {
	return DayKey(t) <= h.Last()
}
