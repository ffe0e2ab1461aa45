package persistence

import (
	"context"
	"time"
)

// EventFilter narrows event queries. Zero values disable a criterion.
type EventFilter struct {
	Kind         string
	StartsBefore *time.Time
}

// EventRepository stores opening and appointment events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
