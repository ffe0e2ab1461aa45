package availability

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func opening(id, start, end string, weekly bool) Event {
	return Event{ID: id, StartsAt: at(start), EndsAt: at(end), Kind: KindOpening, WeeklyRecurring: weekly}
}

func appointment(id, start, end string) Event {
	return Event{ID: id, StartsAt: at(start), EndsAt: at(end), Kind: KindAppointment}
}

func assertOnlyDay(t *testing.T, got Availability, day string, want []string) {
	t.Helper()
	for _, key := range got.Days() {
		slots := got.Slots(key)
		if key == day {
			if !reflect.DeepEqual(slots, want) {
				t.Fatalf("expected %s to contain %v, got %v", day, want, slots)
			}
			continue
		}
		if len(slots) != 0 {
			t.Fatalf("expected %s to be empty, got %v", key, slots)
		}
	}
}

func TestCompute(t *testing.T) {
	t.Parallel()

	t.Run("single opening on its literal day", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-01T00:00"), []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", false),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if got.Len() != HorizonDays {
			t.Fatalf("expected %d days, got %d", HorizonDays, got.Len())
		}
		if got.SlotCount() != 2 {
			t.Fatalf("expected 2 slots, got %d", got.SlotCount())
		}
		assertOnlyDay(t, got, "2022-01-03", []string{"9:00", "9:30"})
	})

	t.Run("weekly opening lands on the matching weekday", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-08T00:00"), []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", true),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		assertOnlyDay(t, got, "2022-01-10", []string{"9:00", "9:30"})
	})

	t.Run("weekly opening several weeks earlier", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-03-01T00:00"), []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", true),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		assertOnlyDay(t, got, "2022-03-07", []string{"9:00", "9:30"})
	})

	t.Run("appointments remove booked slots", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-01T00:00"), []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", false),
			appointment("a-1", "2022-01-03T09:00", "2022-01-03T09:30"),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		assertOnlyDay(t, got, "2022-01-03", []string{"9:30"})
	})

	t.Run("appointments remove slots from recurring openings", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-08T00:00"), []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T11:00", true),
			appointment("a-1", "2022-01-10T09:30", "2022-01-10T10:30"),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		assertOnlyDay(t, got, "2022-01-10", []string{"9:00", "10:30"})
	})

	t.Run("non recurring openings outside the horizon contribute nothing", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-08T00:00"), []Event{
			opening("before", "2022-01-03T09:00", "2022-01-03T10:00", false),
			opening("after", "2022-01-20T09:00", "2022-01-20T10:00", false),
			opening("after-weekly", "2022-01-20T09:00", "2022-01-20T10:00", true),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		for _, day := range got.Days() {
			if len(got.Slots(day)) != 0 {
				t.Fatalf("expected %s to be empty, got %v", day, got.Slots(day))
			}
		}
	})

	t.Run("openings on the last horizon day are kept", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-01T00:00"), []Event{
			opening("o-1", "2022-01-07T13:00", "2022-01-07T14:00", false),
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		assertOnlyDay(t, got, "2022-01-07", []string{"13:00", "13:30"})
	})

	t.Run("unsorted input yields the same result as sorted input", func(t *testing.T) {
		t.Parallel()
		events := []Event{
			opening("late", "2022-01-05T14:00", "2022-01-05T15:00", false),
			appointment("a-1", "2022-01-05T14:30", "2022-01-05T15:00"),
			opening("out", "2022-02-01T09:00", "2022-02-01T10:00", false),
			opening("early", "2022-01-02T08:00", "2022-01-02T09:00", false),
		}
		got, err := Compute(at("2022-01-01T00:00"), events, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if slots := got.Slots("2022-01-05"); !reflect.DeepEqual(slots, []string{"14:00"}) {
			t.Fatalf("unexpected 2022-01-05 slots: %v", slots)
		}
		if slots := got.Slots("2022-01-02"); !reflect.DeepEqual(slots, []string{"8:00", "8:30"}) {
			t.Fatalf("unexpected 2022-01-02 slots: %v", slots)
		}
	})

	t.Run("overlapping openings keep duplicates unless deduped", func(t *testing.T) {
		t.Parallel()
		events := []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", false),
			opening("o-2", "2022-01-03T09:30", "2022-01-03T10:30", false),
		}
		got, err := Compute(at("2022-01-01T00:00"), events, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if slots := got.Slots("2022-01-03"); !reflect.DeepEqual(slots, []string{"9:00", "9:30", "9:30", "10:00"}) {
			t.Fatalf("unexpected slots: %v", slots)
		}

		deduped, err := Compute(at("2022-01-01T00:00"), events, Options{DedupeSlots: true})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if slots := deduped.Slots("2022-01-03"); !reflect.DeepEqual(slots, []string{"9:00", "9:30", "10:00"}) {
			t.Fatalf("unexpected deduped slots: %v", slots)
		}
	})

	t.Run("snapped labels match appointments on the grid", func(t *testing.T) {
		t.Parallel()
		events := []Event{
			opening("o-1", "2022-01-03T09:05", "2022-01-03T10:10", false),
			appointment("a-1", "2022-01-03T09:00", "2022-01-03T09:30"),
		}
		verbatim, err := Compute(at("2022-01-01T00:00"), events, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if slots := verbatim.Slots("2022-01-03"); !reflect.DeepEqual(slots, []string{"9:05", "9:35"}) {
			t.Fatalf("unexpected verbatim slots: %v", slots)
		}
		snapped, err := Compute(at("2022-01-01T00:00"), events, Options{SnapLabels: true})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if slots := snapped.Slots("2022-01-03"); !reflect.DeepEqual(slots, []string{"9:30"}) {
			t.Fatalf("unexpected snapped slots: %v", slots)
		}
	})

	t.Run("a single invalid event aborts the computation", func(t *testing.T) {
		t.Parallel()
		_, err := Compute(at("2022-01-01T00:00"), []Event{
			opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", false),
			{ID: "broken", StartsAt: at("2022-01-03T10:00"), EndsAt: at("2022-01-03T10:00"), Kind: KindOpening},
		}, Options{})
		if !errors.Is(err, ErrInvalidInterval) {
			t.Fatalf("expected ErrInvalidInterval, got %v", err)
		}

		_, err = Compute(at("2022-01-01T00:00"), []Event{{ID: "zero", Kind: KindAppointment}}, Options{})
		if !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
		}
	})

	t.Run("unknown kinds are ignored", func(t *testing.T) {
		t.Parallel()
		got, err := Compute(at("2022-01-01T00:00"), []Event{
			{ID: "x", StartsAt: at("2022-01-03T09:00"), EndsAt: at("2022-01-03T10:00"), Kind: "holiday"},
		}, Options{})
		if err != nil {
			t.Fatalf("Compute returned error: %v", err)
		}
		if len(got.Slots("2022-01-03")) != 0 {
			t.Fatalf("expected no slots, got %v", got.Slots("2022-01-03"))
		}
	})

	t.Run("rejects a zero reference date", func(t *testing.T) {
		t.Parallel()
		if _, err := Compute(time.Time{}, nil, Options{}); !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
		}
	})
}

func TestCompute_Properties(t *testing.T) {
	t.Parallel()

	events := []Event{
		opening("o-1", "2022-01-03T09:00", "2022-01-03T12:00", true),
		opening("o-2", "2022-01-05T13:00", "2022-01-05T15:00", false),
		opening("o-3", "2021-12-29T08:00", "2021-12-29T09:30", true),
		appointment("a-1", "2022-01-10T10:00", "2022-01-10T11:00"),
		appointment("a-2", "2022-01-12T08:30", "2022-01-12T09:00"),
	}

	for offset := 0; offset < 21; offset++ {
		reference := at("2022-01-01T00:00").AddDate(0, 0, offset)
		got, err := Compute(reference, events, Options{})
		if err != nil {
			t.Fatalf("Compute(%s) returned error: %v", DayKey(reference), err)
		}

		horizon := BuildHorizon(reference)
		if !reflect.DeepEqual(got.Days(), horizon.Days()) {
			t.Fatalf("keys %v do not match horizon %v", got.Days(), horizon.Days())
		}
		for _, day := range got.Days() {
			if _, err := time.Parse(DayKeyLayout, day); err != nil {
				t.Fatalf("invalid day key %q", day)
			}
		}

		appointments, _ := partition(events)
		booked, err := IndexBookedSlots(appointments, horizon, Options{})
		if err != nil {
			t.Fatalf("IndexBookedSlots returned error: %v", err)
		}
		for _, day := range got.Days() {
			for _, slot := range got.Slots(day) {
				if booked.Has(day, slot) {
					t.Fatalf("slot %s on %s is booked but reported available", slot, day)
				}
			}
		}

		again, err := Compute(reference, events, Options{})
		if err != nil {
			t.Fatalf("second Compute returned error: %v", err)
		}
		if !reflect.DeepEqual(got.Map(), again.Map()) {
			t.Fatalf("Compute is not idempotent for %s", DayKey(reference))
		}

		// Each recurring opening contributes to at most one day.
		for _, id := range []string{"o-1", "o-3"} {
			var single []Event
			for _, event := range events {
				if event.ID == id {
					single = append(single, event)
				}
			}
			alone, err := Compute(reference, single, Options{})
			if err != nil {
				t.Fatalf("Compute returned error: %v", err)
			}
			filled := 0
			for _, day := range alone.Days() {
				if len(alone.Slots(day)) > 0 {
					filled++
					parsed, _ := time.Parse(DayKeyLayout, day)
					if parsed.Weekday() != single[0].StartsAt.Weekday() {
						t.Fatalf("opening %s landed on %s with the wrong weekday", id, day)
					}
				}
			}
			if filled > 1 {
				t.Fatalf("opening %s contributed to %d days", id, filled)
			}
		}
	}
}

func TestCompute_ConcurrentCalls(t *testing.T) {
	t.Parallel()

	events := []Event{
		opening("o-1", "2022-01-03T09:00", "2022-01-03T12:00", true),
		appointment("a-1", "2022-01-10T10:00", "2022-01-10T11:00"),
	}
	want, err := Compute(at("2022-01-08T00:00"), events, Options{})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Compute(at("2022-01-08T00:00"), events, Options{})
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got.Map(), want.Map()) {
				errs <- errors.New("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestAvailability_MarshalJSON(t *testing.T) {
	t.Parallel()

	got, err := Compute(at("2022-01-01T00:00"), []Event{
		opening("o-1", "2022-01-03T09:00", "2022-01-03T10:00", false),
	}, Options{})
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}
	payload, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	want := `{"2022-01-01":[],"2022-01-02":[],"2022-01-03":["9:00","9:30"],"2022-01-04":[],"2022-01-05":[],"2022-01-06":[],"2022-01-07":[]}`
	if string(payload) != want {
		t.Fatalf("unexpected JSON:\n got %s\nwant %s", payload, want)
	}
}
