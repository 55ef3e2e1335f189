package cacheinval

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// LogBackend logs invalidation events instead of delivering them. Used in
// zero-config mode when no cache brokers are configured.
type LogBackend struct {
	log hclog.Logger
}

// NewLogBackend creates a log-only backend.
func NewLogBackend(log hclog.Logger) *LogBackend {
	return &LogBackend{log: log}
}

// Name returns the backend identifier.
func (b *LogBackend) Name() string {
	return "log"
}

// Publish logs the event.
func (b *LogBackend) Publish(ctx context.Context, event Event) error {
	b.log.Info("cache invalidation",
		"doc_id", event.DocumentID,
		"operation", event.Operation,
		"event_id", event.ID,
	)
	return nil
}
