package availability

import (
	"reflect"
	"testing"
	"time"
)

func TestBuildHorizon(t *testing.T) {
	t.Parallel()

	t.Run("covers seven consecutive days from the reference", func(t *testing.T) {
		t.Parallel()
		h := BuildHorizon(at("2022-01-01T15:30"))
		want := []string{"2022-01-01", "2022-01-02", "2022-01-03", "2022-01-04", "2022-01-05", "2022-01-06", "2022-01-07"}
		if got := h.Days(); !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		if h.First() != "2022-01-01" || h.Last() != "2022-01-07" {
			t.Fatalf("unexpected bounds %s..%s", h.First(), h.Last())
		}
	})

	t.Run("rolls over month and leap day boundaries", func(t *testing.T) {
		t.Parallel()
		h := BuildHorizon(at("2024-02-27T00:00"))
		want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04"}
		if got := h.Days(); !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	})

	t.Run("stays on calendar days across DST changes", func(t *testing.T) {
		t.Parallel()
		loc, err := time.LoadLocation("Europe/Paris")
		if err != nil {
			t.Skipf("timezone database unavailable: %v", err)
		}
		h := BuildHorizon(time.Date(2022, time.March, 25, 0, 0, 0, 0, loc))
		if h.Last() != "2022-03-31" {
			t.Fatalf("expected last day 2022-03-31, got %s", h.Last())
		}
	})

	t.Run("strictly increasing window", func(t *testing.T) {
		t.Parallel()
		h := BuildHorizon(at("2022-12-29T08:00"))
		days := h.Days()
		for i := 1; i < len(days); i++ {
			if days[i] <= days[i-1] {
				t.Fatalf("days not increasing at %d: %v", i, days)
			}
		}
		w := h.Window()
		if !w.Start.Before(w.End) || DayKey(w.End) != "2023-01-04" {
			t.Fatalf("unexpected window %v", w)
		}
	})
}
