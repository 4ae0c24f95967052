package memory

import (
	"context"
	"sync"

	"aidchain/internal/identity/models"
	"aidchain/pkg/domain"
)

// InMemoryStore implements store.RegistryStore for tests and single-process
// deployments.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.Account]models.RoleRecord
	members map[domain.Role][]domain.Account
	joined  map[domain.Role]map[domain.Account]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[domain.Account]models.RoleRecord),
		members: make(map[domain.Role][]domain.Account),
		joined:  make(map[domain.Role]map[domain.Account]bool),
	}
}

func (s *InMemoryStore) SaveRecord(_ context.Context, record models.RoleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Account] = record
	return nil
}

func (s *InMemoryStore) GetRecord(_ context.Context, account domain.Account) (models.RoleRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[account]
	return record, ok, nil
}

func (s *InMemoryStore) AddMember(_ context.Context, role domain.Role, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joined[role] == nil {
		s.joined[role] = make(map[domain.Account]bool)
	}
	if s.joined[role][account] {
		return nil
	}
	s.joined[role][account] = true
	s.members[role] = append(s.members[role], account)
	return nil
}

func (s *InMemoryStore) ListMembers(_ context.Context, role domain.Role) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account{}, s.members[role]...), nil
}
