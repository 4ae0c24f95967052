package store

import (
	"context"

	"aidchain/internal/ledger/models"
	"aidchain/pkg/domain"
)

// LedgerStore persists donor balances, the pool counters, the in-progress
// donation cycle, and the append-only unit catalog.
//
// Methods are individually atomic; the issuance engine serializes compound
// operations under its single writer lock, so no two mutating calls ever
// interleave mid-update. Compound writes that must commit or fail as one
// unit run inside WithTx.
type LedgerStore interface {
	// WithTx runs fn against a store view whose writes commit together when
	// fn returns nil and are discarded entirely when it returns an error.
	WithTx(ctx context.Context, fn func(LedgerStore) error) error

	CreditDonor(ctx context.Context, donor domain.Account, amount domain.Amount) (domain.Amount, error)
	DonorBalance(ctx context.Context, account domain.Account) (domain.Amount, error)

	Pool(ctx context.Context) (balance domain.Amount, nextUnitID domain.UnitID, err error)
	SetPool(ctx context.Context, balance domain.Amount, nextUnitID domain.UnitID) error

	AddCycleDonor(ctx context.Context, donor domain.Account) error
	CycleDonors(ctx context.Context) ([]domain.Account, error)
	ClearCycleDonors(ctx context.Context) error

	InsertUnit(ctx context.Context, unit models.AidUnit) error
	GetUnit(ctx context.Context, id domain.UnitID) (models.AidUnit, bool, error)
	UpdateAssignment(ctx context.Context, id domain.UnitID, assignment models.Assignment) error
	UpdateStatus(ctx context.Context, id domain.UnitID, status domain.DeliveryStatus) error
}
