package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/slot-availability/internal/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// EventRepository implements persistence.EventRepository on PostgreSQL.
type EventRepository struct {
	pool     *Pool
	location *time.Location
}

var _ persistence.EventRepository = (*EventRepository)(nil)

// NewEventRepository returns a repository reading timestamps in loc (UTC when nil).
func NewEventRepository(pool *Pool, loc *time.Location) *EventRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &EventRepository{pool: pool, location: loc}
}

func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	if err := persistence.ValidateEvent(event); err != nil {
		return persistence.Event{}, err
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (id, starts_at, ends_at, kind, weekly_recurring)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.StartsAt, event.EndsAt, event.Kind, event.WeeklyRecurring)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}
	return event, nil
}

func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, starts_at, ends_at, kind, weekly_recurring
		FROM events
		WHERE id = $1
	`, id)
	event, err := r.scan(row)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}
	return event, nil
}

func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		clauses = append(clauses, fmt.Sprintf("kind = $%d", len(args)))
	}
	if filter.StartsBefore != nil {
		args = append(args, *filter.StartsBefore)
		clauses = append(clauses, fmt.Sprintf("starts_at < $%d", len(args)))
	}

	query := "SELECT id, starts_at, ends_at, kind, weekly_recurring FROM events"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY starts_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := r.scan(rows)
		if err != nil {
			return nil, mapError(err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM events WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *EventRepository) scan(row pgx.Row) (persistence.Event, error) {
	var event persistence.Event
	if err := row.Scan(&event.ID, &event.StartsAt, &event.EndsAt, &event.Kind, &event.WeeklyRecurring); err != nil {
		return persistence.Event{}, err
	}
	event.StartsAt = event.StartsAt.In(r.location)
	event.EndsAt = event.EndsAt.In(r.location)
	return event, nil
}

// mapError translates pgx errors into persistence sentinels.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return persistence.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", persistence.ErrDuplicate, pgErr.Message)
		case "23514", "23502":
			return fmt.Errorf("%w: %s", persistence.ErrConstraintViolation, pgErr.Message)
		}
	}
	return err
}
