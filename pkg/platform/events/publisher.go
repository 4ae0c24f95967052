package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Store persists stream records. Append assigns the sequence number and
// returns the completed record; List replays a kind over an inclusive
// sequence range, where to == 0 means unbounded.
type Store interface {
	Append(ctx context.Context, record Record) (Record, error)
	List(ctx context.Context, kind Kind, from, to uint64) ([]Record, error)
}

// Sink receives every appended record for fan-out to external systems.
// Sinks are best-effort: the store is the source of truth, a sink failure
// must not fail the domain operation that emitted the event.
type Sink interface {
	Publish(ctx context.Context, record Record) error
}

// Publisher captures structured stream events. It is append-only and uses
// the storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{store: store, sinks: sinks, logger: logger}
}

// Emit stamps, persists, and fans out a record.
func (p *Publisher) Emit(ctx context.Context, record Record) error {
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	appended, err := p.store.Append(ctx, record)
	if err != nil {
		return err
	}

	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, appended); err != nil {
			p.logger.WarnContext(ctx, "event sink publish failed",
				"kind", string(appended.Kind),
				"seq", appended.Seq,
				"error", err,
			)
		}
	}
	return nil
}

// List replays a stream over an inclusive sequence range.
func (p *Publisher) List(ctx context.Context, kind Kind, from, to uint64) ([]Record, error) {
	return p.store.List(ctx, kind, from, to)
}
