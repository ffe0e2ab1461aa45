package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/example/slot-availability/internal/persistence"
)

// seedEvent is one entry of a seed file:
//
//	[{"id": "o1", "kind": "opening", "starts_at": "2014-08-04T09:30:00Z",
//	  "ends_at": "2014-08-04T12:30:00Z", "weekly_recurring": true}]
type seedEvent struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	WeeklyRecurring *bool     `json:"weekly_recurring"`
}

func seedFile(ctx context.Context, repo persistence.EventRepository, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var entries []seedEvent
	if err := json.Unmarshal(raw, &entries); err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	for i, entry := range entries {
		_, err := repo.CreateEvent(ctx, persistence.Event{
			ID:              entry.ID,
			Kind:            entry.Kind,
			StartsAt:        entry.StartsAt,
			EndsAt:          entry.EndsAt,
			WeeklyRecurring: entry.WeeklyRecurring,
		})
		if err != nil {
			return i, fmt.Errorf("seed event %d (%s): %w", i, entry.ID, err)
		}
	}
	return len(entries), nil
}
