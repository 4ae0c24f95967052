package domain

import dErrors "aidchain/pkg/domain-errors"

// DeliveryStatus is an aid unit's position in the delivery lifecycle.
// Invariant: strictly ordered Issued < InTransit < Delivered < Claimed;
// Claimed is terminal. The numeric values match the original deployment and
// are part of the public read API.
type DeliveryStatus uint8

const (
	StatusIssued DeliveryStatus = iota
	StatusInTransit
	StatusDelivered
	StatusClaimed
)

var statusLabels = map[DeliveryStatus]string{
	StatusIssued:    "Issued",
	StatusInTransit: "InTransit",
	StatusDelivered: "Delivered",
	StatusClaimed:   "Claimed",
}

// Label returns the canonical display label. The mapping is fixed by the
// public API contract; UIs must not see anything else.
func (s DeliveryStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "Issued"
}

func (s DeliveryStatus) String() string { return s.Label() }

// ParseDeliveryStatus constructs a DeliveryStatus from its canonical label.
func ParseDeliveryStatus(s string) (DeliveryStatus, error) {
	for status, label := range statusLabels {
		if label == s {
			return status, nil
		}
	}
	return StatusIssued, dErrors.Newf(dErrors.CodeInvalidInput, "unknown delivery status %q", s)
}
