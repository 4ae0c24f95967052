package memory

import (
	"context"
	"sync"

	"aidchain/pkg/platform/events"
)

// InMemoryStore keeps stream records in append order. Suitable for tests
// and single-process deployments; use the Redis or Postgres store when
// records must survive a restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextSeq uint64
	records map[events.Kind][]events.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[events.Kind][]events.Record)}
}

func (s *InMemoryStore) Append(_ context.Context, record events.Record) (events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	record.Seq = s.nextSeq
	s.records[record.Kind] = append(s.records[record.Kind], record)
	return record, nil
}

func (s *InMemoryStore) List(_ context.Context, kind events.Kind, from, to uint64) ([]events.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []events.Record
	for _, record := range s.records[kind] {
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
