// Package events holds the append-only streams the UI replays for audit and
// reporting: unit issuance and delivery status changes. Records are
// sequenced at append time and never mutated.
package events

import (
	"time"

	"aidchain/pkg/domain"
)

// Kind names a stream.
type Kind string

const (
	// KindUnitIssued records {unitId, donors[]} at every threshold crossing.
	KindUnitIssued Kind = "unit_issued"
	// KindStatusChanged records {unitId, actor, newStatus} at every
	// successful delivery transition.
	KindStatusChanged Kind = "status_changed"
)

// Record is one entry in a stream. Seq is assigned by the store at append
// time and is strictly increasing across all kinds, so a range replay of one
// stream interleaves correctly with the other.
type Record struct {
	ID         string                `json:"id"`
	Seq        uint64                `json:"seq"`
	Kind       Kind                  `json:"kind"`
	UnitID     domain.UnitID         `json:"unit_id"`
	Donors     []domain.Account      `json:"donors,omitempty"`
	Actor      domain.Account        `json:"actor,omitempty"`
	NewStatus  domain.DeliveryStatus `json:"new_status,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

// UnitIssued builds an issuance record for the completed donation cycle.
func UnitIssued(unitID domain.UnitID, donors []domain.Account) Record {
	return Record{
		Kind:   KindUnitIssued,
		UnitID: unitID,
		Donors: append([]domain.Account(nil), donors...),
	}
}

// StatusChanged builds a transition record.
func StatusChanged(unitID domain.UnitID, actor domain.Account, newStatus domain.DeliveryStatus) Record {
	return Record{
		Kind:      KindStatusChanged,
		UnitID:    unitID,
		Actor:     actor,
		NewStatus: newStatus,
	}
}
