package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/slot-availability/internal/availability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/example/slot-availability/internal/application"

// EventSource supplies the events availability is computed from.
type EventSource interface {
	ListEvents(ctx context.Context) ([]availability.Event, error)
}

// AvailabilityService fetches events and computes the weekly availability.
type AvailabilityService struct {
	source   EventSource
	options  availability.Options
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewAvailabilityService constructs an availability service with the provided dependencies.
func NewAvailabilityService(source EventSource, opts availability.Options, loc *time.Location, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(source, opts, loc, now, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(source EventSource, opts availability.Options, loc *time.Location, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{
		source:   source,
		options:  opts,
		location: loc,
		now:      now,
		logger:   defaultLogger(logger),
		tracer:   otel.Tracer(tracerName),
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// Location returns the location day keys are computed in.
func (s *AvailabilityService) Location() *time.Location {
	return s.location
}

// ParseReference turns a yyyy-MM-dd (or RFC 3339) value into a reference
// instant in the service location. An empty value means today.
func (s *AvailabilityService) ParseReference(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		now := s.now().In(s.location)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.location), nil
	}
	if t, err := time.ParseInLocation(availability.DayKeyLayout, raw, s.location); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(s.location), nil
	}

	vErr := &ValidationError{Err: availability.ErrInvalidTimestamp}
	vErr.add("date", fmt.Sprintf("%q is not a yyyy-MM-dd date", raw))
	return time.Time{}, vErr
}

// GetAvailabilities fetches every event and computes the 7 day availability
// starting at reference.
func (s *AvailabilityService) GetAvailabilities(ctx context.Context, reference time.Time) (result availability.Availability, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	ctx, span := s.tracer.Start(ctx, "availability.compute")
	defer span.End()

	logger := s.loggerWith(ctx, "GetAvailabilities")
	var eventCount int
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, ErrorKind(err))
			logger.ErrorContext(ctx, "failed to compute availabilities", "error", err, "error_kind", ErrorKind(err))
			return
		}
		span.SetAttributes(attribute.Int("availability.slots", result.SlotCount()))
		logger.InfoContext(ctx, "availabilities computed",
			"reference_day", availability.DayKey(reference),
			"events", eventCount,
			"slots", result.SlotCount(),
		)
	}()

	if reference.IsZero() {
		vErr := &ValidationError{Err: availability.ErrInvalidTimestamp}
		vErr.add("date", "reference date is required")
		err = vErr
		return
	}
	reference = reference.In(s.location)
	span.SetAttributes(attribute.String("availability.reference_day", availability.DayKey(reference)))

	if s.source == nil {
		err = fmt.Errorf("%w: no event source configured", ErrSourceUnavailable)
		return
	}

	var events []availability.Event
	events, err = s.fetch(ctx)
	if err != nil {
		return
	}
	eventCount = len(events)
	span.SetAttributes(attribute.Int("availability.events", eventCount))

	normalised := make([]availability.Event, len(events))
	for i, event := range events {
		normalised[i] = event.In(s.location)
	}

	result, err = availability.Compute(reference, normalised, s.options)
	return
}

func (s *AvailabilityService) fetch(ctx context.Context) ([]availability.Event, error) {
	ctx, span := s.tracer.Start(ctx, "availability.list_events")
	defer span.End()

	events, err := s.source.ListEvents(ctx)
	if err == nil {
		return events, nil
	}
	span.RecordError(err)

	var eventErr *availability.EventError
	if errors.As(err, &eventErr) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
}
