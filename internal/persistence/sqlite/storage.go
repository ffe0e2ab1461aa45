package sqlite

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/slot-availability/internal/persistence/sqlite/migration"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationDir = "migrations"

// Storage bundles the connection pool with the repositories built on it.
type Storage struct {
	pool   *ConnectionPool
	events *EventRepository
}

// Open opens dsn with DefaultConfig. Timestamps stored without an offset are
// read in loc (UTC when nil).
func Open(dsn string, loc *time.Location) (*Storage, error) {
	return OpenConfig(DefaultConfig(dsn), loc)
}

// OpenConfig opens the database described by cfg.
func OpenConfig(cfg Config, loc *time.Location) (*Storage, error) {
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{
		pool:   pool,
		events: NewEventRepository(pool, loc),
	}, nil
}

// Events returns the event repository.
func (s *Storage) Events() *EventRepository {
	return s.events
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context, logger *slog.Logger) error {
	manager := migration.NewMigrationManager(
		migration.NewFileScanner(migrationFiles),
		migration.NewSQLiteExecutor(s.pool.DB()),
		migrationDir,
		logger,
	)
	if err := manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
