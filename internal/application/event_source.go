package application

import (
	"context"
	"errors"

	"github.com/example/slot-availability/internal/availability"
	"github.com/example/slot-availability/internal/persistence"
)

// RepositorySource adapts a persistence.EventRepository to EventSource.
type RepositorySource struct {
	repo persistence.EventRepository
}

// NewRepositorySource wraps repo.
func NewRepositorySource(repo persistence.EventRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

// ListEvents returns every stored event. Rows whose timestamps cannot be
// parsed surface as availability.ErrInvalidTimestamp.
func (s *RepositorySource) ListEvents(ctx context.Context) ([]availability.Event, error) {
	rows, err := s.repo.ListEvents(ctx, persistence.EventFilter{})
	if err != nil {
		var tsErr *persistence.TimestampError
		if errors.As(err, &tsErr) {
			return nil, &availability.EventError{EventID: tsErr.EventID, Err: availability.ErrInvalidTimestamp}
		}
		return nil, err
	}

	events := make([]availability.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, FromPersistence(row))
	}
	return events, nil
}

// FromPersistence converts a stored row to a domain event. Unknown kinds are
// carried through and ignored by the resolver.
func FromPersistence(row persistence.Event) availability.Event {
	return availability.Event{
		ID:              row.ID,
		StartsAt:        row.StartsAt,
		EndsAt:          row.EndsAt,
		Kind:            availability.Kind(row.Kind),
		WeeklyRecurring: row.Recurring(),
	}
}

// ToPersistence converts a domain event to a row for storage.
func ToPersistence(event availability.Event) persistence.Event {
	recurring := event.WeeklyRecurring
	return persistence.Event{
		ID:              event.ID,
		StartsAt:        event.StartsAt,
		EndsAt:          event.EndsAt,
		Kind:            string(event.Kind),
		WeeklyRecurring: &recurring,
	}
}
