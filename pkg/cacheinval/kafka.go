package cacheinval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaBackend publishes invalidation events to a Kafka/Redpanda topic. The
// rendering cache consumes the topic and evicts stale entries.
type KafkaBackend struct {
	client *kgo.Client
	topic  string
}

// KafkaConfig holds configuration for the Kafka backend.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// NewKafkaBackend creates a Kafka-backed publisher.
func NewKafkaBackend(cfg KafkaConfig) (*KafkaBackend, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),

		// Wait for all in-sync replicas so an acknowledged invalidation
		// is never lost.
		kgo.RequiredAcks(kgo.AllISRAcks()),

		kgo.ProducerBatchCompression(kgo.GzipCompression()),
		kgo.ProducerLinger(10*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &KafkaBackend{
		client: client,
		topic:  cfg.Topic,
	}, nil
}

// Name returns the backend identifier.
func (b *KafkaBackend) Name() string {
	return "kafka"
}

// Publish delivers one event, keyed by document ID so invalidations for the
// same document stay ordered within a partition.
func (b *KafkaBackend) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal invalidation event: %w", err)
	}

	record := &kgo.Record{
		Topic: b.topic,
		Key:   []byte(event.DocumentID),
		Value: payload,
	}

	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish invalidation event: %w", err)
	}

	return nil
}

// Close closes the underlying Kafka client.
func (b *KafkaBackend) Close() {
	b.client.Close()
}
