package memory

import (
	"context"
	"sync"

	"aidchain/internal/ledger/models"
	"aidchain/internal/ledger/store"
	"aidchain/pkg/domain"
	dErrors "aidchain/pkg/domain-errors"
)

// InMemoryStore implements store.LedgerStore for tests and single-process
// deployments.
type InMemoryStore struct {
	mu          sync.RWMutex
	donors      map[domain.Account]domain.Amount
	poolBalance domain.Amount
	nextUnitID  domain.UnitID
	cycleDonors []domain.Account
	inCycle     map[domain.Account]bool
	units       map[domain.UnitID]models.AidUnit
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		donors:      make(map[domain.Account]domain.Amount),
		poolBalance: domain.ZeroAmount(),
		inCycle:     make(map[domain.Account]bool),
		units:       make(map[domain.UnitID]models.AidUnit),
	}
}

// WithTx snapshots the full state, runs fn against the store, and restores
// the snapshot when fn fails, so a mid-flow error discards every write.
func (s *InMemoryStore) WithTx(_ context.Context, fn func(store.LedgerStore) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	donors      map[domain.Account]domain.Amount
	poolBalance domain.Amount
	nextUnitID  domain.UnitID
	cycleDonors []domain.Account
	inCycle     map[domain.Account]bool
	units       map[domain.UnitID]models.AidUnit
}

func (s *InMemoryStore) snapshot() memSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := memSnapshot{
		donors:      make(map[domain.Account]domain.Amount, len(s.donors)),
		poolBalance: s.poolBalance,
		nextUnitID:  s.nextUnitID,
		cycleDonors: append([]domain.Account(nil), s.cycleDonors...),
		inCycle:     make(map[domain.Account]bool, len(s.inCycle)),
		units:       make(map[domain.UnitID]models.AidUnit, len(s.units)),
	}
	for k, v := range s.donors {
		snap.donors[k] = v
	}
	for k, v := range s.inCycle {
		snap.inCycle[k] = v
	}
	for k, v := range s.units {
		snap.units[k] = v
	}
	return snap
}

func (s *InMemoryStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donors = snap.donors
	s.poolBalance = snap.poolBalance
	s.nextUnitID = snap.nextUnitID
	s.cycleDonors = snap.cycleDonors
	s.inCycle = snap.inCycle
	s.units = snap.units
}

func (s *InMemoryStore) CreditDonor(_ context.Context, donor domain.Account, amount domain.Amount) (domain.Amount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance := s.donors[donor].Add(amount)
	s.donors[donor] = balance
	return balance, nil
}

func (s *InMemoryStore) DonorBalance(_ context.Context, account domain.Account) (domain.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.donors[account], nil
}

func (s *InMemoryStore) Pool(_ context.Context) (domain.Amount, domain.UnitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poolBalance, s.nextUnitID, nil
}

func (s *InMemoryStore) SetPool(_ context.Context, balance domain.Amount, nextUnitID domain.UnitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolBalance = balance
	s.nextUnitID = nextUnitID
	return nil
}

func (s *InMemoryStore) AddCycleDonor(_ context.Context, donor domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inCycle[donor] {
		return nil
	}
	s.inCycle[donor] = true
	s.cycleDonors = append(s.cycleDonors, donor)
	return nil
}

func (s *InMemoryStore) CycleDonors(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Account{}, s.cycleDonors...), nil
}

func (s *InMemoryStore) ClearCycleDonors(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycleDonors = nil
	s.inCycle = make(map[domain.Account]bool)
	return nil
}

func (s *InMemoryStore) InsertUnit(_ context.Context, unit models.AidUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[unit.ID] = unit
	return nil
}

func (s *InMemoryStore) GetUnit(_ context.Context, id domain.UnitID) (models.AidUnit, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	unit, ok := s.units[id]
	return unit, ok, nil
}

func (s *InMemoryStore) UpdateAssignment(_ context.Context, id domain.UnitID, assignment models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[id]
	if !ok {
		return dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", id)
	}
	unit.TransferTeam = assignment.TransferTeam
	unit.GroundRelief = assignment.GroundRelief
	unit.Recipient = assignment.Recipient
	unit.Location = assignment.Location
	s.units[id] = unit
	return nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.UnitID, status domain.DeliveryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unit, ok := s.units[id]
	if !ok {
		return dErrors.Newf(dErrors.CodeUnknownUnit, "unit %s was never issued", id)
	}
	unit.Status = status
	s.units[id] = unit
	return nil
}
