// Package cacheinval signals an external rendering cache that a document's
// stored representation is stale. Invalidation is fire-and-forget: the
// owning mutation has already committed by the time a signal is published,
// so delivery failures are logged and never surfaced.
package cacheinval

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Event is a single cache-invalidation signal.
type Event struct {
	// ID uniquely identifies this event for downstream deduplication.
	ID string `json:"id"`

	// DocumentID is the document whose cached representation is stale.
	DocumentID string `json:"documentId"`

	// Operation names the mutation that triggered the invalidation,
	// e.g. "update" or "version-advance".
	Operation string `json:"operation"`

	OccurredAt time.Time `json:"occurredAt"`
}

// Backend delivers invalidation events to the cache layer.
type Backend interface {
	// Name returns the backend identifier.
	Name() string

	// Publish delivers one event. Returning an error triggers a retry.
	Publish(ctx context.Context, event Event) error
}

// DefaultPublishTimeout bounds the total delivery attempt (including
// retries) for one event.
const DefaultPublishTimeout = 30 * time.Second

// Notifier publishes invalidation events on detached goroutines.
type Notifier struct {
	backend Backend
	log     hclog.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

// NewNotifier creates a notifier over the given backend.
func NewNotifier(backend Backend, log hclog.Logger) *Notifier {
	return &Notifier{
		backend: backend,
		log:     log,
		timeout: DefaultPublishTimeout,
	}
}

// Invalidate signals that a document's cached representation is stale. It
// returns immediately; delivery happens asynchronously with exponential
// backoff, and failures are logged, never propagated.
func (n *Notifier) Invalidate(documentID, operation string) {
	event := Event{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Operation:  operation,
		OccurredAt: time.Now(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		policy := backoff.WithContext(
			backoff.NewExponentialBackOff(), ctx)

		err := backoff.Retry(func() error {
			return n.backend.Publish(ctx, event)
		}, policy)
		if err != nil {
			n.log.Error("error publishing cache invalidation event",
				"error", err,
				"backend", n.backend.Name(),
				"doc_id", event.DocumentID,
				"operation", event.Operation,
			)
			return
		}

		n.log.Debug("published cache invalidation event",
			"backend", n.backend.Name(),
			"doc_id", event.DocumentID,
			"operation", event.Operation,
		)
	}()
}

// Wait blocks until all in-flight publishes finish. Used on shutdown and in
// tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
