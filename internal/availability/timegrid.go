package availability

import (
	"fmt"
	"time"
)

const (
	// DayKeyLayout is the canonical, sortable day key format.
	DayKeyLayout = "2006-01-02"
	// SlotDuration is the booking granularity.
	SlotDuration = 30 * time.Minute
)

// DayKey truncates t to its calendar date in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// SlotLabel renders the hour and minute of t verbatim as "H:MM".
// A slot starting at 09:05 is labelled "9:05", not "9:00".
func SlotLabel(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

// SnappedSlotLabel renders t floored to its containing half hour.
func SnappedSlotLabel(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute()-t.Minute()%30)
}

// Advance adds d to t. time.Time arithmetic rolls over day, month and year
// boundaries; wall clock shifts around DST transitions are accepted.
func Advance(t time.Time, d time.Duration) time.Time {
	return t.Add(d)
}

// ExpandInterval walks [start, end) in SlotDuration steps and labels each
// cursor position. The first position is always emitted; walking continues
// while at least one whole slot remains before end.
func ExpandInterval(start, end time.Time, label func(time.Time) string) ([]string, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrInvalidTimestamp
	}
	if !start.Before(end) {
		return nil, ErrInvalidInterval
	}
	if label == nil {
		label = SlotLabel
	}

	slots := make([]string, 0, int(end.Sub(start)/SlotDuration)+1)
	cursor := start
	for {
		slots = append(slots, label(cursor))
		cursor = Advance(cursor, SlotDuration)
		if wholeMinutes(end.Sub(cursor)) < int64(SlotDuration/time.Minute) {
			break
		}
	}
	return slots, nil
}

// wholeMinutes truncates d toward zero.
func wholeMinutes(d time.Duration) int64 {
	return int64(d / time.Minute)
}

func labelFunc(opts Options) func(time.Time) string {
	if opts.SnapLabels {
		return SnappedSlotLabel
	}
	return SlotLabel
}
