package models

import "aidchain/pkg/domain"

// RoleRecord is the registry's view of one account. Exactly one record per
// account; re-registration overwrites the whole record.
type RoleRecord struct {
	Account    domain.Account
	Identifier string
	Role       domain.Role
	Location   string
}

// IdentifierFor derives the DID-style identifier written at registration.
func IdentifierFor(account domain.Account) string {
	return "did:aidchain:" + account.String()
}
