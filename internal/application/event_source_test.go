package application

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/example/slot-availability/internal/availability"
	"github.com/example/slot-availability/internal/persistence"
	"github.com/example/slot-availability/internal/testfixtures"
)

type failingRepository struct {
	persistence.EventRepository
	err error
}

func (f failingRepository) ListEvents(context.Context, persistence.EventFilter) ([]persistence.Event, error) {
	return nil, f.err
}

func TestRepositorySource_EndToEnd(t *testing.T) {
	t.Parallel()

	harness := testfixtures.NewSQLiteHarness(t)
	harness.Seed(t, testfixtures.WeeklyOpeningScenario()...)

	service := NewAvailabilityServiceWithLogger(NewRepositorySource(harness.Events), availability.Options{}, nil, nil, quietLogger())
	result, err := service.GetAvailabilities(context.Background(), testfixtures.ReferenceTime())
	if err != nil {
		t.Fatalf("GetAvailabilities returned error: %v", err)
	}
	if got := result.Slots("2014-08-11"); !reflect.DeepEqual(got, []string{"9:30", "10:00", "11:30", "12:00"}) {
		t.Fatalf("unexpected slots: %v", got)
	}
}

func TestRepositorySource_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unparseable timestamps become event errors", func(t *testing.T) {
		t.Parallel()
		source := NewRepositorySource(failingRepository{err: &persistence.TimestampError{EventID: "e9", Column: "ends_at", Value: "?"}})
		_, err := source.ListEvents(context.Background())
		var eventErr *availability.EventError
		if !errors.As(err, &eventErr) || eventErr.EventID != "e9" || !errors.Is(err, availability.ErrInvalidTimestamp) {
			t.Fatalf("expected EventError for e9, got %v", err)
		}
	})

	t.Run("other failures pass through", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("disk I/O error")
		source := NewRepositorySource(failingRepository{err: boom})
		if _, err := source.ListEvents(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("expected repository error, got %v", err)
		}
	})
}

func TestPersistenceConversion(t *testing.T) {
	t.Parallel()

	fixture := testfixtures.NewOpeningFixture(testfixtures.WithWeeklyRecurring())
	event := FromPersistence(ToPersistence(fixture.Domain()))
	if !reflect.DeepEqual(event, fixture.Domain()) {
		t.Fatalf("conversion lost data: %#v vs %#v", event, fixture.Domain())
	}

	nullFlag := persistence.Event{ID: "x", Kind: persistence.KindAppointment}
	if FromPersistence(nullFlag).WeeklyRecurring {
		t.Fatalf("expected NULL flag to convert to false")
	}
}
