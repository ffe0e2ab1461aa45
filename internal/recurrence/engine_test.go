package recurrence

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEngine_ResolveWeekly(t *testing.T) {
	t.Parallel()

	engine := NewEngine(nil)
	window := Window{Start: date(2022, time.January, 8), End: date(2022, time.January, 14)}

	t.Run("steps whole weeks into the window", func(t *testing.T) {
		t.Parallel()
		got, ok := engine.ResolveWeekly(time.Date(2022, time.January, 3, 9, 0, 0, 0, time.UTC), window)
		if !ok {
			t.Fatalf("expected a resolved date")
		}
		if !got.Equal(date(2022, time.January, 10)) {
			t.Fatalf("expected 2022-01-10, got %s", got)
		}
	})

	t.Run("keeps dates already inside the window", func(t *testing.T) {
		t.Parallel()
		got, ok := engine.ResolveWeekly(date(2022, time.January, 12), window)
		if !ok || !got.Equal(date(2022, time.January, 12)) {
			t.Fatalf("expected 2022-01-12, got %s (ok=%v)", got, ok)
		}
	})

	t.Run("never moves later dates backwards", func(t *testing.T) {
		t.Parallel()
		if _, ok := engine.ResolveWeekly(date(2022, time.January, 20), window); ok {
			t.Fatalf("expected no resolution for a date after the window")
		}
	})

	t.Run("handles distant past dates", func(t *testing.T) {
		t.Parallel()
		got, ok := engine.ResolveWeekly(date(2019, time.January, 7), window)
		if !ok || got.Weekday() != time.Monday || !window.Contains(got) {
			t.Fatalf("expected a Monday inside the window, got %s (ok=%v)", got, ok)
		}
	})

	t.Run("reads the calendar date in the source location", func(t *testing.T) {
		t.Parallel()
		tokyo := time.FixedZone("JST", 9*60*60)
		late := time.Date(2022, time.January, 3, 23, 30, 0, 0, tokyo)
		got, ok := engine.ResolveWeekly(late, window)
		if !ok || !got.Equal(date(2022, time.January, 10)) {
			t.Fatalf("expected 2022-01-10, got %s (ok=%v)", got, ok)
		}
	})

	t.Run("rejects inverted windows", func(t *testing.T) {
		t.Parallel()
		inverted := Window{Start: window.End, End: window.Start}
		if _, ok := engine.ResolveWeekly(date(2022, time.January, 3), inverted); ok {
			t.Fatalf("expected no resolution for an inverted window")
		}
	})
}

func TestEngine_WeeklyOccurrences(t *testing.T) {
	t.Parallel()

	engine := NewEngine(time.UTC)

	t.Run("matches ResolveWeekly for a seven day window", func(t *testing.T) {
		t.Parallel()
		window := Window{Start: date(2022, time.January, 8), End: date(2022, time.January, 14)}
		for offset := 0; offset < 14; offset++ {
			literal := date(2021, time.December, 20).AddDate(0, 0, offset)
			occurrences, err := engine.WeeklyOccurrences(literal, window)
			if err != nil {
				t.Fatalf("WeeklyOccurrences returned error: %v", err)
			}
			if len(occurrences) != 1 {
				t.Fatalf("expected exactly one occurrence for %s, got %v", literal, occurrences)
			}
			resolved, _ := engine.ResolveWeekly(literal, window)
			if !occurrences[0].Equal(resolved) {
				t.Fatalf("expected %s, got %s", resolved, occurrences[0])
			}
		}
	})

	t.Run("repeats across longer windows", func(t *testing.T) {
		t.Parallel()
		window := Window{Start: date(2022, time.January, 1), End: date(2022, time.January, 31)}
		occurrences, err := engine.WeeklyOccurrences(date(2021, time.December, 27), window)
		if err != nil {
			t.Fatalf("WeeklyOccurrences returned error: %v", err)
		}
		if len(occurrences) != 5 {
			t.Fatalf("expected 5 Mondays in January 2022, got %d", len(occurrences))
		}
	})

	t.Run("reports inverted windows", func(t *testing.T) {
		t.Parallel()
		_, err := engine.WeeklyOccurrences(date(2022, time.January, 3), Window{Start: date(2022, time.January, 9), End: date(2022, time.January, 1)})
		if !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("expected ErrInvalidWindow, got %v", err)
		}
	})
}
