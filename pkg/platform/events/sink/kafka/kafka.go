// Package kafka fans event records out to a Kafka topic for downstream
// consumers (reporting, notification workers). The durable store remains
// the source of truth; this sink is best-effort.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"aidchain/pkg/platform/events"
)

// Sink publishes event records to a single topic, keyed by unit id so all
// records for one unit land in one partition in order.
type Sink struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers. Returns nil if no brokers are configured.
func New(brokers []string, topic string) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

func (s *Sink) Publish(ctx context.Context, record events.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal event record: %w", err)
	}
	result := s.client.ProduceSync(ctx, &kgo.Record{
		Topic: s.topic,
		Key:   []byte(record.UnitID.String()),
		Value: payload,
	})
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce event record: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
