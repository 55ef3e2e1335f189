package cacheinval

import (
	"context"
	"errors"
	"sync"
)

// TestBackend records published events for verification in tests and can be
// configured to fail a number of publish attempts.
type TestBackend struct {
	mu sync.RWMutex

	events       []Event
	failuresLeft int
}

// NewTestBackend creates a recording backend.
func NewTestBackend() *TestBackend {
	return &TestBackend{}
}

// Name returns the backend identifier.
func (b *TestBackend) Name() string {
	return "test"
}

// FailNext makes the next n Publish calls return an error.
func (b *TestBackend) FailNext(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failuresLeft = n
}

// Publish records the event, or fails if failures are pending.
func (b *TestBackend) Publish(ctx context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failuresLeft > 0 {
		b.failuresLeft--
		return errors.New("injected publish failure")
	}

	b.events = append(b.events, event)
	return nil
}

// Events returns a copy of all recorded events.
func (b *TestBackend) Events() []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}
