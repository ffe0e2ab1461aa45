package testfixtures

import (
	"context"
	"testing"

	"github.com/example/slot-availability/internal/persistence"
	"github.com/example/slot-availability/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a migrated in-memory
// SQLite database.
type SQLiteHarness struct {
	Storage *sqlite.Storage
	Events  persistence.EventRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a private in-memory database. Callers
// may invoke Close, but a cleanup is also registered with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	storage, err := sqlite.Open(sqlite.MemoryDSN, nil)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background(), nil); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage: storage,
		Events:  storage.Events(),
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// Seed stores every fixture, failing the test on the first error.
func (h *SQLiteHarness) Seed(tb testing.TB, fixtures ...EventFixture) {
	tb.Helper()

	for _, fixture := range fixtures {
		if _, err := h.Events.CreateEvent(context.Background(), fixture.Persistence()); err != nil {
			tb.Fatalf("failed to seed event %s: %v", fixture.ID, err)
		}
	}
}
