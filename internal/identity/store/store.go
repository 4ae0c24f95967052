package store

import (
	"context"

	"aidchain/internal/identity/models"
	"aidchain/pkg/domain"
)

// RegistryStore persists role records and the append-only membership sets.
//
// SaveRecord overwrites any prior record for the account. AddMember is
// idempotent: an account joins a role's set at most once, in first-join
// order, and never leaves it even if its live record is later overwritten.
type RegistryStore interface {
	SaveRecord(ctx context.Context, record models.RoleRecord) error
	GetRecord(ctx context.Context, account domain.Account) (models.RoleRecord, bool, error)
	AddMember(ctx context.Context, role domain.Role, account domain.Account) error
	ListMembers(ctx context.Context, role domain.Role) ([]domain.Account, error)
}
