package testfixtures

import (
	"context"
	"sync"

	"github.com/example/slot-availability/internal/availability"
)

// MemorySource is an in-memory event source for service and handler tests.
type MemorySource struct {
	mu     sync.Mutex
	events []availability.Event
	err    error
	calls  int
}

// NewMemorySource returns a source serving the given fixtures.
func NewMemorySource(fixtures ...EventFixture) *MemorySource {
	return &MemorySource{events: Domains(fixtures...)}
}

// Add appends events to the source.
func (s *MemorySource) Add(events ...availability.Event) {
	s.mu.Lock()
	s.events = append(s.events, events...)
	s.mu.Unlock()
}

// FailWith makes subsequent ListEvents calls return err. A nil err restores
// normal behaviour.
func (s *MemorySource) FailWith(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Calls reports how many times ListEvents was invoked.
func (s *MemorySource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// ListEvents returns a copy of the stored events.
func (s *MemorySource) ListEvents(ctx context.Context) ([]availability.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	return append([]availability.Event(nil), s.events...), nil
}
