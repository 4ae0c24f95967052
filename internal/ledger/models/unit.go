package models

import "aidchain/pkg/domain"

// AidUnit is one issued, trackable unit of pooled aid. Units persist
// forever once issued; assignment slots hold the zero account until the
// administrator assigns them.
type AidUnit struct {
	ID           domain.UnitID
	TransferTeam domain.Account
	GroundRelief domain.Account
	Recipient    domain.Account
	Location     string
	Status       domain.DeliveryStatus
}

// Assigned reports whether the administrator has filled the role slots.
func (u AidUnit) Assigned() bool {
	return !u.TransferTeam.IsZero() && !u.GroundRelief.IsZero() && !u.Recipient.IsZero()
}

// Assignment is the read view of a unit's role slots.
type Assignment struct {
	TransferTeam domain.Account
	GroundRelief domain.Account
	Recipient    domain.Account
	Location     string
}

// PoolState is the read view of the donation pool.
type PoolState struct {
	CurrentBalance domain.Amount
	Threshold      domain.Amount
	MinDonation    domain.Amount
	NextUnitID     domain.UnitID
}

// DonationOutcome reports what a single donation did to the pool.
type DonationOutcome struct {
	DonorBalance domain.Amount
	PoolBalance  domain.Amount
	Issued       bool
	UnitID       domain.UnitID
}
