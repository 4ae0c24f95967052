package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"aidchain/pkg/domain"
	"aidchain/pkg/platform/events"
)

// Store is a Postgres-backed implementation of events.Store. The
// event_records table is append-only; seq comes from a BIGSERIAL so the
// database preserves the total order.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, record events.Record) (events.Record, error) {
	donors := make([]string, 0, len(record.Donors))
	for _, donor := range record.Donors {
		donors = append(donors, donor.String())
	}

	query := `
		INSERT INTO event_records (id, kind, unit_id, actor, new_status, donors, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq
	`
	err := s.db.QueryRowContext(ctx, query,
		record.ID,
		string(record.Kind),
		int64(record.UnitID),
		record.Actor.String(),
		int16(record.NewStatus),
		pq.Array(donors),
		record.OccurredAt,
	).Scan(&record.Seq)
	if err != nil {
		return events.Record{}, fmt.Errorf("insert event record: %w", err)
	}
	return record, nil
}

func (s *Store) List(ctx context.Context, kind events.Kind, from, to uint64) ([]events.Record, error) {
	query := `
		SELECT seq, id, unit_id, actor, new_status, donors, occurred_at
		FROM event_records
		WHERE kind = $1 AND seq >= $2 AND ($3 = 0 OR seq <= $3)
		ORDER BY seq
	`
	rows, err := s.db.QueryContext(ctx, query, string(kind), int64(from), int64(to))
	if err != nil {
		return nil, fmt.Errorf("query event records: %w", err)
	}
	defer rows.Close()

	var out []events.Record
	for rows.Next() {
		var (
			record    events.Record
			unitID    int64
			actor     string
			newStatus int16
			donors    pq.StringArray
		)
		if err := rows.Scan(&record.Seq, &record.ID, &unitID, &actor, &newStatus, &donors, &record.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event record: %w", err)
		}
		record.Kind = kind
		record.UnitID = domain.UnitID(unitID)
		record.Actor = domain.Account(actor)
		record.NewStatus = domain.DeliveryStatus(newStatus)
		for _, donor := range donors {
			record.Donors = append(record.Donors, domain.Account(donor))
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
