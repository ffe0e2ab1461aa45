package recurrence

import (
	"errors"
	"time"
)

// Window is an inclusive range of calendar dates. Both bounds are expected at
// midnight of their day in the same location.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the window.
func (w Window) Contains(day time.Time) bool {
	return !day.Before(w.Start) && !day.After(w.End)
}

// ErrInvalidWindow indicates the window ends before it starts.
var ErrInvalidWindow = errors.New("recurrence: window end precedes start")

// Engine resolves weekly recurring dates against a bounded window.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that normalizes dates to loc.
// If loc is nil, UTC is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{location: loc}
}

// Date returns midnight of t's calendar date, re-anchored to the engine location.
// The calendar date is read in t's own location so that day keys never shift.
func (e *Engine) Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, e.loc())
}

// ResolveWeekly steps whole weeks forward from literal until it reaches the
// window. It returns false when literal lies after the window or the window
// is inverted. Dates before the window are never moved backwards.
func (e *Engine) ResolveWeekly(literal time.Time, w Window) (time.Time, bool) {
	if w.End.Before(w.Start) {
		return time.Time{}, false
	}
	current := e.Date(literal)
	for current.Before(w.Start) {
		current = current.AddDate(0, 0, 7)
	}
	if current.After(w.End) {
		return time.Time{}, false
	}
	return current, true
}

// WeeklyOccurrences returns every date inside w that shares literal's weekday
// and is reachable by whole-week steps from it.
func (e *Engine) WeeklyOccurrences(literal time.Time, w Window) ([]time.Time, error) {
	if w.End.Before(w.Start) {
		return nil, ErrInvalidWindow
	}
	first, ok := e.ResolveWeekly(literal, w)
	if !ok {
		return nil, nil
	}
	occurrences := make([]time.Time, 0, 1)
	for current := first; !current.After(w.End); current = current.AddDate(0, 0, 7) {
		occurrences = append(occurrences, current)
	}
	return occurrences, nil
}

func (e *Engine) loc() *time.Location {
	if e == nil || e.location == nil {
		return time.UTC
	}
	return e.location
}
