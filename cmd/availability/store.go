package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/slot-availability/internal/config"
	"github.com/example/slot-availability/internal/persistence"
	"github.com/example/slot-availability/internal/persistence/postgres"
	"github.com/example/slot-availability/internal/persistence/sqlite"
)

// eventStore hides which backend the events live in.
type eventStore struct {
	events  persistence.EventRepository
	ping    func(context.Context) error
	migrate func(context.Context) error
	close   func()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (*eventStore, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := postgres.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &eventStore{
			events:  postgres.NewEventRepository(pool, cfg.Location),
			ping:    pool.Ping,
			migrate: pool.Migrate,
			close:   pool.Close,
		}, nil
	default:
		storage, err := sqlite.Open(cfg.SQLiteDSN, cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &eventStore{
			events: storage.Events(),
			ping:   storage.Ping,
			migrate: func(ctx context.Context) error {
				return storage.Migrate(ctx, logger)
			},
			close: func() {
				if err := storage.Close(); err != nil {
					logger.Error("failed to close storage", "error", err)
				}
			},
		}, nil
	}
}
