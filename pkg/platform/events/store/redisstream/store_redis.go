// Package redisstream persists event streams in Redis Streams, one stream
// per kind. Sequence numbers come from a shared INCR counter so replays
// across kinds keep a total order, matching the memory and Postgres stores.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"aidchain/pkg/platform/events"
)

const (
	seqKey       = "aidchain:events:seq"
	streamPrefix = "aidchain:events:"
)

// Store is a Redis-backed implementation of events.Store.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Append(ctx context.Context, record events.Record) (events.Record, error) {
	seq, err := s.client.Incr(ctx, seqKey).Result()
	if err != nil {
		return events.Record{}, fmt.Errorf("allocate event seq: %w", err)
	}
	record.Seq = uint64(seq)

	payload, err := json.Marshal(record)
	if err != nil {
		return events.Record{}, fmt.Errorf("marshal event record: %w", err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(record.Kind),
		Values: map[string]any{"seq": record.Seq, "payload": payload},
	}).Err()
	if err != nil {
		return events.Record{}, fmt.Errorf("append event record: %w", err)
	}
	return record, nil
}

func (s *Store) List(ctx context.Context, kind events.Kind, from, to uint64) ([]events.Record, error) {
	entries, err := s.client.XRange(ctx, streamKey(kind), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("read event stream: %w", err)
	}

	var out []events.Record
	for _, entry := range entries {
		raw, ok := entry.Values["payload"].(string)
		if !ok {
			continue
		}
		var record events.Record
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("decode event record: %w", err)
		}
		if record.Seq < from {
			continue
		}
		if to != 0 && record.Seq > to {
			break
		}
		out = append(out, record)
	}
	return out, nil
}

func streamKey(kind events.Kind) string {
	return streamPrefix + string(kind)
}
