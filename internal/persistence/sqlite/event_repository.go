package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/slot-availability/internal/persistence"
	"github.com/google/uuid"
)

// timestampLayouts lists the formats accepted for starts_at and ends_at.
// Layouts without an offset are interpreted in the repository location.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// EventRepository implements persistence.EventRepository using SQLite
type EventRepository struct {
	pool     *ConnectionPool
	mapper   *ErrorMapper
	retry    *RetryHelper
	location *time.Location
}

var _ persistence.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new SQLite event repository
func NewEventRepository(pool *ConnectionPool, loc *time.Location) *EventRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &EventRepository{
		pool:     pool,
		mapper:   NewErrorMapper(),
		retry:    NewRetryHelper(DefaultRetryConfig()),
		location: loc,
	}
}

// CreateEvent inserts event, assigning a UUID when the ID is empty
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	if err := persistence.ValidateEvent(event); err != nil {
		return persistence.Event{}, err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var recurring sql.NullBool
	if event.WeeklyRecurring != nil {
		recurring = sql.NullBool{Bool: *event.WeeklyRecurring, Valid: true}
	}

	query := `
		INSERT INTO events (id, starts_at, ends_at, kind, weekly_recurring)
		VALUES (?, ?, ?, ?, ?)
	`
	err := r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.DB().ExecContext(ctx, query,
			event.ID,
			event.StartsAt.Format(time.RFC3339Nano),
			event.EndsAt.Format(time.RFC3339Nano),
			event.Kind,
			recurring,
		)
		return err
	})
	if err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}

// GetEvent retrieves an event by ID
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, starts_at, ends_at, kind, weekly_recurring
		FROM events
		WHERE id = ?
	`
	event, err := r.scanEvent(r.pool.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Event{}, r.mapper.MapError(err)
	}
	return event, nil
}

// ListEvents returns events matching filter. Rows are returned in insertion
// order; callers sort by start time themselves.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := `
		SELECT id, starts_at, ends_at, kind, weekly_recurring
		FROM events
	`
	var args []any
	if filter.Kind != "" {
		query += " WHERE kind = ?"
		args = append(args, filter.Kind)
	}
	query += " ORDER BY rowid"

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		if filter.StartsBefore != nil && !event.StartsAt.Before(*filter.StartsBefore) {
			continue
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return events, nil
}

// DeleteEvent removes an event by ID
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	var affected int64
	err := r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.DB().ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EventRepository) scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event            persistence.Event
		startsAt, endsAt string
		recurring        sql.NullInt64
	)
	if err := row.Scan(&event.ID, &startsAt, &endsAt, &event.Kind, &recurring); err != nil {
		return persistence.Event{}, err
	}

	var err error
	if event.StartsAt, err = r.parseTimestamp(startsAt); err != nil {
		return persistence.Event{}, &persistence.TimestampError{EventID: event.ID, Column: "starts_at", Value: startsAt}
	}
	if event.EndsAt, err = r.parseTimestamp(endsAt); err != nil {
		return persistence.Event{}, &persistence.TimestampError{EventID: event.ID, Column: "ends_at", Value: endsAt}
	}
	if recurring.Valid {
		flag := recurring.Int64 != 0
		event.WeeklyRecurring = &flag
	}
	return event, nil
}

// parseTimestamp accepts the text layouts above and integer epoch milliseconds.
func (r *EventRepository) parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if millis, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.UnixMilli(millis).In(r.location), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, r.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}
